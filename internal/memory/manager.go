package memory

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog/log"

	"acestepd/pkg/types"
)

// Tier buckets the host by available RAM; constraints tighten as the
// tier drops.
type Tier string

const (
	TierCritical Tier = "critical"
	TierLow      Tier = "low"
	TierNormal   Tier = "normal"
	TierOptimal  Tier = "optimal"
)

// deepCleanupEvery triggers a full cleanup after this many generations.
const deepCleanupEvery = 5

// Manager owns the memory policy and answers admission questions.
type Manager struct {
	mu    sync.RWMutex
	cfg   Config
	probe Prober

	generationCount uint64
}

// NewManager builds a Manager around the given policy and prober.
// A nil prober falls back to the /proc-backed default.
func NewManager(cfg Config, probe Prober) *Manager {
	if probe == nil {
		probe = NewProber()
	}
	m := &Manager{cfg: cfg, probe: probe}
	log.Info().
		Float64("max_memory_gb", cfg.MaxMemoryGB).
		Float64("min_free_ram_gb", cfg.MinFreeRAMGB).
		Float64("warning_gb", cfg.WarningGB).
		Msg("memory manager initialized")
	return m
}

// Config returns a copy of the active policy.
func (m *Manager) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Usage assembles the combined RAM/process/GPU snapshot.
func (m *Manager) Usage() types.MemoryUsage {
	sys := m.probe.System()
	gpu := m.probe.GPU()
	u := types.MemoryUsage{
		RAMTotalGB:     sys.TotalGB,
		RAMUsedGB:      sys.UsedGB,
		RAMAvailableGB: sys.AvailableGB,
		RAMFreeGB:      sys.FreeGB,
		ProcessGB:      m.probe.ProcessRSSGB(),
		GPUTotalGB:     gpu.TotalGB,
		GPUUsedGB:      gpu.UsedGB,
	}
	if gpu.TotalGB > 0 {
		u.GPUAvailableGB = gpu.TotalGB - gpu.UsedGB
	}
	observeUsage(u)
	return u
}

// CanGenerate decides whether a generation estimated at estimatedGB may
// start. The returned message is non-empty for refusals and for
// warn-but-proceed conditions.
func (m *Manager) CanGenerate(estimatedGB float64) (bool, string) {
	if estimatedGB <= 0 {
		estimatedGB = 2.0
	}
	cfg := m.Config()
	available := m.probe.System().AvailableGB

	if available < cfg.MinFreeRAMGB {
		return false, fmt.Sprintf(
			"blocked: only %.2fGB RAM available, need at least %.1fGB free; close other applications and try again",
			available, cfg.MinFreeRAMGB)
	}
	if remaining := available - estimatedGB; remaining < cfg.MinFreeRAMGB {
		return false, fmt.Sprintf(
			"generation requires ~%.1fGB but only %.2fGB available; would leave less than %.1fGB free, try a shorter duration",
			estimatedGB, available, cfg.MinFreeRAMGB)
	}
	if available < cfg.CriticalGB {
		if m.EmergencyCleanup() {
			return true, "memory was low, cleanup performed; proceeding with caution"
		}
		return false, "critical memory shortage, restart the application"
	}
	if available < cfg.WarningGB {
		return true, fmt.Sprintf("low memory warning: %.2fGB available", available)
	}
	return true, ""
}

// Admit wraps CanGenerate into the error form used by the HTTP layer.
func (m *Manager) Admit(estimatedGB float64) error {
	ok, msg := m.CanGenerate(estimatedGB)
	if !ok {
		return ErrBlocked(msg)
	}
	if msg != "" {
		log.Warn().Msg(msg)
	}
	return nil
}

// ValidateParams clamps generation parameters to what the current memory
// state can sustain and reports what was changed.
func (m *Manager) ValidateParams(durationSec float64, batchSize int) (float64, int, []string) {
	cfg := m.Config()
	available := m.probe.System().AvailableGB

	maxDuration := cfg.MaxDurationSeconds
	switch {
	case available < 6.0:
		maxDuration = 60
	case available < 8.0:
		maxDuration = 120
	}

	var warnings []string
	if durationSec > float64(maxDuration) {
		warnings = append(warnings, fmt.Sprintf(
			"duration %.0fs clamped to %ds (%.1fGB free)", durationSec, maxDuration, available))
		durationSec = float64(maxDuration)
	}
	if batchSize > 1 {
		warnings = append(warnings, fmt.Sprintf("batch size %d clamped to 1", batchSize))
		batchSize = 1
	}
	return durationSec, batchSize, warnings
}

// Constraints derives the limits in force from the live memory tier.
func (m *Manager) Constraints() types.Constraints {
	cfg := m.Config()
	available := m.probe.System().AvailableGB

	maxDuration := cfg.MaxDurationSeconds
	tier := TierOptimal
	switch {
	case available < 6.0:
		maxDuration, tier = 60, TierCritical
	case available < 8.0:
		maxDuration, tier = 120, TierLow
	case available < 10.0:
		maxDuration, tier = min(cfg.MaxDurationSeconds, 180), TierNormal
	}

	observeTier(tier)
	return types.Constraints{
		MaxDurationSeconds: maxDuration,
		MaxBatchSize:       1,
		LMEnabled:          cfg.EnableLM && available > 8.0,
		OffloadToCPU:       true,
		OffloadDiTToCPU:    true,
		MemoryLimitGB:      cfg.MaxMemoryGB,
		AvailableMemoryGB:  available,
		MemoryTier:         string(tier),
		MinFreeRAMGB:       cfg.MinFreeRAMGB,
	}
}

// Status builds the complete memory report.
func (m *Manager) Status() types.MemoryStatus {
	cfg := m.Config()
	usage := m.Usage()
	m.mu.RLock()
	count := m.generationCount
	m.mu.RUnlock()
	return types.MemoryStatus{
		Config: types.MemoryConfigView{
			MaxMemoryGB:    cfg.MaxMemoryGB,
			MinFreeRAMGB:   cfg.MinFreeRAMGB,
			OffloadEnabled: cfg.OffloadToCPU,
			LMEnabled:      cfg.EnableLM,
			AggressiveGC:   cfg.AggressiveGC,
		},
		Usage:           usage,
		Constraints:     m.Constraints(),
		Healthy:         usage.RAMAvailableGB >= cfg.MinFreeRAMGB,
		GenerationCount: count,
	}
}

// Healthy reports whether free RAM is above the hard floor.
func (m *Manager) Healthy() bool {
	return m.probe.System().AvailableGB >= m.Config().MinFreeRAMGB
}

// RecordGeneration bumps the admission counter and runs the post-run
// cleanup, with a deep pass every deepCleanupEvery generations.
func (m *Manager) RecordGeneration() {
	cfg := m.Config()
	if cfg.AggressiveGC {
		runtime.GC()
	}
	m.mu.Lock()
	m.generationCount++
	count := m.generationCount
	m.mu.Unlock()
	if count%deepCleanupEvery == 0 {
		log.Info().Uint64("generations", count).Msg("periodic deep cleanup")
		m.EmergencyCleanup()
	}
}

// EmergencyCleanup releases what the supervisor itself can release and
// reports whether the host recovered above the hard floor.
func (m *Manager) EmergencyCleanup() bool {
	log.Warn().Msg("emergency memory cleanup")
	runtime.GC()
	debug.FreeOSMemory()
	sys := m.probe.System()
	log.Info().Float64("available_gb", sys.AvailableGB).Msg("memory after cleanup")
	return sys.AvailableGB >= m.Config().MinFreeRAMGB
}

// CheckStartup refuses to start the stack when the host is already below
// the hard floor.
func (m *Manager) CheckStartup() error {
	sys := m.probe.System()
	cfg := m.Config()
	if sys.AvailableGB < cfg.MinFreeRAMGB {
		return ErrBlocked(fmt.Sprintf(
			"startup blocked: only %.2fGB RAM available, minimum required %.1fGB free",
			sys.AvailableGB, cfg.MinFreeRAMGB))
	}
	if sys.AvailableGB < 8.0 {
		log.Warn().
			Float64("available_gb", sys.AvailableGB).
			Msg("low memory at startup, generation capabilities will be limited")
	}
	return nil
}
