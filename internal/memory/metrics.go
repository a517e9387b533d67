package memory

import (
	"github.com/prometheus/client_golang/prometheus"

	"acestepd/pkg/types"
)

var (
	ramGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "acestepd",
			Subsystem: "memory",
			Name:      "ram_gb",
			Help:      "Host RAM readings in GB",
		},
		[]string{"kind"},
	)

	gpuGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "acestepd",
			Subsystem: "memory",
			Name:      "gpu_gb",
			Help:      "GPU VRAM readings in GB",
		},
		[]string{"kind"},
	)

	tierGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "acestepd",
			Subsystem: "memory",
			Name:      "tier",
			Help:      "Active memory tier (1 for the current tier, 0 otherwise)",
		},
		[]string{"tier"},
	)

	admissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "acestepd",
			Subsystem: "memory",
			Name:      "admissions_total",
			Help:      "Generation admission decisions",
		},
		[]string{"decision"},
	)
)

func init() {
	prometheus.MustRegister(ramGauge, gpuGauge, tierGauge, admissionsTotal)
}

func observeUsage(u types.MemoryUsage) {
	ramGauge.WithLabelValues("total").Set(u.RAMTotalGB)
	ramGauge.WithLabelValues("available").Set(u.RAMAvailableGB)
	ramGauge.WithLabelValues("used").Set(u.RAMUsedGB)
	ramGauge.WithLabelValues("process").Set(u.ProcessGB)
	gpuGauge.WithLabelValues("total").Set(u.GPUTotalGB)
	gpuGauge.WithLabelValues("used").Set(u.GPUUsedGB)
}

func observeTier(active Tier) {
	for _, t := range []Tier{TierCritical, TierLow, TierNormal, TierOptimal} {
		v := 0.0
		if t == active {
			v = 1.0
		}
		tierGauge.WithLabelValues(string(t)).Set(v)
	}
}

// CountAdmission records an admission decision for the metrics endpoint.
func CountAdmission(allowed bool) {
	if allowed {
		admissionsTotal.WithLabelValues("allowed").Inc()
		return
	}
	admissionsTotal.WithLabelValues("blocked").Inc()
}
