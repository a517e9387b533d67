package memory

import (
	"github.com/rs/zerolog/log"

	appcfg "acestepd/internal/config"
)

// Hard limits carried over from the pipeline's memory policy.
const (
	// MinFreeRAMGB is the floor of free host RAM that must be preserved
	// at all times.
	MinFreeRAMGB = 5.0
	// DefaultLimitGB is the memory budget when none is configured.
	DefaultLimitGB = 4.0
	// MaxAllowedGB is the absolute ceiling for any configured budget.
	MaxAllowedGB = 10.0

	warningThresholdGB  = 6.0
	criticalThresholdGB = 4.0

	gpuMemoryFraction = 0.9
	maxDurationCap    = 180
)

// Config is the effective memory policy.
type Config struct {
	MaxMemoryGB        float64
	MinFreeRAMGB       float64
	GPUMemoryFraction  float64
	MaxDurationSeconds int
	MaxBatchSize       int
	OffloadToCPU       bool
	OffloadDiTToCPU    bool
	EnableLM           bool
	AggressiveGC       bool
	PreCheckMemory     bool
	WarningGB          float64
	CriticalGB         float64
}

// ConfigFrom derives the memory policy from the launcher configuration and
// the current host state, clamping anything unsafe. Offload and batch
// limits are always forced regardless of what was configured.
func ConfigFrom(app appcfg.Config, sys SystemInfo) Config {
	limit := app.MemoryLimitGB
	if limit <= 0 {
		limit = DefaultLimitGB
	}
	if app.MaxCUDAVRAMGB > 0 && app.MaxCUDAVRAMGB < limit {
		limit = app.MaxCUDAVRAMGB
	}
	if limit > MaxAllowedGB {
		limit = MaxAllowedGB
	}

	cfg := Config{
		MaxMemoryGB:        limit,
		MinFreeRAMGB:       MinFreeRAMGB,
		GPUMemoryFraction:  gpuMemoryFraction,
		MaxDurationSeconds: app.MaxDurationSeconds,
		MaxBatchSize:       app.MaxBatchSize,
		OffloadToCPU:       app.OffloadToCPU,
		OffloadDiTToCPU:    app.OffloadDiTToCPU,
		EnableLM:           app.InitLMDefault,
		AggressiveGC:       true,
		PreCheckMemory:     true,
		WarningGB:          warningThresholdGB,
		CriticalGB:         criticalThresholdGB,
	}
	if cfg.MaxDurationSeconds <= 0 || cfg.MaxDurationSeconds > maxDurationCap {
		cfg.MaxDurationSeconds = maxDurationCap
	}

	// Cap the budget so the hard floor survives even a fully used budget.
	if maxSafe := sys.TotalGB - cfg.MinFreeRAMGB; maxSafe > 0 && cfg.MaxMemoryGB > maxSafe {
		log.Warn().
			Float64("limit_gb", cfg.MaxMemoryGB).
			Float64("safe_max_gb", maxSafe).
			Msg("memory limit exceeds safe maximum, capping")
		cfg.MaxMemoryGB = maxSafe
	}

	// Starting low on memory tightens everything immediately.
	if sys.AvailableGB > 0 && sys.AvailableGB < cfg.WarningGB {
		log.Warn().Float64("available_gb", sys.AvailableGB).Msg("low memory at startup")
		if cfg.MaxMemoryGB > 2 {
			cfg.MaxMemoryGB = 2
		}
		if cfg.MaxDurationSeconds > 60 {
			cfg.MaxDurationSeconds = 60
		}
		cfg.EnableLM = false
	}

	// Always enforced for stability.
	cfg.MaxBatchSize = 1
	cfg.OffloadToCPU = true
	cfg.OffloadDiTToCPU = true
	return cfg
}
