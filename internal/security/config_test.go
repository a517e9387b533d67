package security

import (
	"os"
	"testing"
)

func setenv(t *testing.T, key, val string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
	os.Setenv(key, val)
}

func TestConfigFromEnvDefaults(t *testing.T) {
	for _, k := range []string{
		EnvAuthEnabled, EnvAuthUsername, EnvAuthPassword, EnvAPIKey,
		EnvRateLimitPerMinute, EnvGenerationPerHour, EnvLocalhostOnly,
		EnvAllowedIPs, EnvBlockedIPs, EnvSessionTimeoutMin,
	} {
		if v, ok := os.LookupEnv(k); ok {
			k, v := k, v
			t.Cleanup(func() { os.Setenv(k, v) })
			os.Unsetenv(k)
		}
	}
	cfg := ConfigFromEnv()
	if !cfg.AuthEnabled || cfg.AuthUsername != "admin" || cfg.AuthPassword != "music2026" {
		t.Fatalf("auth defaults: %+v", cfg)
	}
	if cfg.RateLimitPerMinute != 30 || cfg.GenerationLimitPerHour != 20 || cfg.SessionTimeoutMinutes != 60 {
		t.Fatalf("limit defaults: %+v", cfg)
	}
	if cfg.LocalhostOnly || len(cfg.AllowedIPs) != 0 || len(cfg.BlockedIPs) != 0 {
		t.Fatalf("ip defaults: %+v", cfg)
	}
}

func TestConfigFromEnvOverrides(t *testing.T) {
	setenv(t, EnvAuthEnabled, "false")
	setenv(t, EnvRateLimitPerMinute, "5")
	setenv(t, EnvAllowedIPs, "10.0.0.1, 10.0.0.2 ,,")
	setenv(t, EnvLocalhostOnly, "1")
	cfg := ConfigFromEnv()
	if cfg.AuthEnabled {
		t.Fatalf("auth should be disabled")
	}
	if cfg.RateLimitPerMinute != 5 {
		t.Fatalf("rate limit: %d", cfg.RateLimitPerMinute)
	}
	if len(cfg.AllowedIPs) != 2 {
		t.Fatalf("allowed ips: %v", cfg.AllowedIPs)
	}
	if !cfg.LocalhostOnly {
		t.Fatalf("localhost-only should be on")
	}
}
