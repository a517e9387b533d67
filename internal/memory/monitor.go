package memory

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
)

// defaultMonitorInterval matches the sampling cadence of the old
// background monitoring logger.
const defaultMonitorInterval = 30 * time.Second

// Monitor periodically samples memory state and appends one line per
// sample to w. It replaces the background logger the launch scripts
// started and killed via an exit trap; here the lifecycle is the ctx.
type Monitor struct {
	mgr      *Manager
	w        io.Writer
	interval time.Duration
	done     chan struct{}
}

// NewMonitor builds a Monitor writing to w every interval.
// interval <= 0 selects the default.
func NewMonitor(mgr *Manager, w io.Writer, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = defaultMonitorInterval
	}
	return &Monitor{mgr: mgr, w: w, interval: interval, done: make(chan struct{})}
}

// Run samples until ctx is canceled. It always writes one sample up front
// so a short-lived run still leaves a trace.
func (m *Monitor) Run(ctx context.Context) {
	defer close(m.done)
	m.sample()
	t := time.NewTicker(m.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.sample()
		}
	}
}

// Done is closed once Run has returned.
func (m *Monitor) Done() <-chan struct{} { return m.done }

func (m *Monitor) sample() {
	u := m.mgr.Usage()
	c := m.mgr.Constraints()
	line := fmt.Sprintf("%s ram_available=%.2fGB ram_used=%.2fGB process=%.2fGB gpu_used=%.2fGB tier=%s healthy=%t\n",
		time.Now().Format(time.RFC3339),
		u.RAMAvailableGB, u.RAMUsedGB, u.ProcessGB, u.GPUUsedGB,
		c.MemoryTier, u.RAMAvailableGB >= m.mgr.Config().MinFreeRAMGB)
	if _, err := io.WriteString(m.w, line); err != nil {
		log.Warn().Err(err).Msg("memory monitor write failed")
	}
	if u.RAMAvailableGB < m.mgr.Config().MinFreeRAMGB {
		log.Warn().Float64("available_gb", u.RAMAvailableGB).Msg("free RAM below hard floor")
	}
}
