package memory

import (
	"testing"

	appcfg "acestepd/internal/config"
)

func TestConfigFromDefaults(t *testing.T) {
	app := appcfg.Defaults()
	cfg := ConfigFrom(app, sysWithAvailable(12.0))
	if cfg.MaxMemoryGB != 4.0 {
		t.Fatalf("limit=%g", cfg.MaxMemoryGB)
	}
	if cfg.MinFreeRAMGB != MinFreeRAMGB {
		t.Fatalf("floor=%g", cfg.MinFreeRAMGB)
	}
	if cfg.MaxDurationSeconds != 120 {
		t.Fatalf("duration=%d", cfg.MaxDurationSeconds)
	}
}

func TestConfigFromZeroLimitFallsBack(t *testing.T) {
	app := appcfg.Defaults()
	app.MemoryLimitGB = -1
	cfg := ConfigFrom(app, sysWithAvailable(12.0))
	if cfg.MaxMemoryGB != DefaultLimitGB {
		t.Fatalf("limit=%g want %g", cfg.MaxMemoryGB, DefaultLimitGB)
	}
}

func TestConfigFromVRAMCapsLimit(t *testing.T) {
	app := appcfg.Defaults()
	app.MemoryLimitGB = 8
	app.MaxCUDAVRAMGB = 6
	cfg := ConfigFrom(app, sysWithAvailable(12.0))
	if cfg.MaxMemoryGB != 6 {
		t.Fatalf("limit=%g want 6", cfg.MaxMemoryGB)
	}
}

func TestConfigFromAbsoluteCeiling(t *testing.T) {
	app := appcfg.Defaults()
	app.MemoryLimitGB = 64
	cfg := ConfigFrom(app, SystemInfo{TotalGB: 64, AvailableGB: 32})
	if cfg.MaxMemoryGB != MaxAllowedGB {
		t.Fatalf("limit=%g want %g", cfg.MaxMemoryGB, MaxAllowedGB)
	}
}

func TestConfigFromCapsToSafeMax(t *testing.T) {
	app := appcfg.Defaults()
	app.MemoryLimitGB = 8
	// 10GB total minus the 5GB floor leaves a 5GB safe budget.
	cfg := ConfigFrom(app, SystemInfo{TotalGB: 10, AvailableGB: 9})
	if cfg.MaxMemoryGB != 5 {
		t.Fatalf("limit=%g want 5", cfg.MaxMemoryGB)
	}
}

func TestConfigFromLowMemoryStartupTightens(t *testing.T) {
	app := appcfg.Defaults()
	app.InitLMDefault = true
	app.MaxDurationSeconds = 120
	cfg := ConfigFrom(app, SystemInfo{TotalGB: 16, AvailableGB: 5})
	if cfg.MaxMemoryGB != 2 {
		t.Fatalf("limit=%g want 2", cfg.MaxMemoryGB)
	}
	if cfg.MaxDurationSeconds != 60 {
		t.Fatalf("duration=%d want 60", cfg.MaxDurationSeconds)
	}
	if cfg.EnableLM {
		t.Fatalf("LM should be disabled at low-memory startup")
	}
}

func TestConfigFromForcedSettings(t *testing.T) {
	app := appcfg.Defaults()
	app.OffloadToCPU = false
	app.OffloadDiTToCPU = false
	app.MaxBatchSize = 8
	cfg := ConfigFrom(app, sysWithAvailable(12.0))
	if !cfg.OffloadToCPU || !cfg.OffloadDiTToCPU {
		t.Fatalf("offload must always be forced on: %+v", cfg)
	}
	if cfg.MaxBatchSize != 1 {
		t.Fatalf("batch=%d want 1", cfg.MaxBatchSize)
	}
}

func TestConfigFromDurationCap(t *testing.T) {
	app := appcfg.Defaults()
	app.MaxDurationSeconds = 600
	cfg := ConfigFrom(app, sysWithAvailable(12.0))
	if cfg.MaxDurationSeconds != maxDurationCap {
		t.Fatalf("duration=%d want %d", cfg.MaxDurationSeconds, maxDurationCap)
	}
}
