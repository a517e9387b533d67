// Package security implements the access policy for the control surface:
// credential and API key checks, per-IP rate limiting, generation quotas,
// IP allow/block lists and session tracking.
package security

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names for the security surface.
const (
	EnvAuthEnabled        = "ACESTEP_AUTH_ENABLED"
	EnvAuthUsername       = "ACESTEP_AUTH_USERNAME"
	EnvAuthPassword       = "ACESTEP_AUTH_PASSWORD"
	EnvAPIKey             = "ACESTEP_API_KEY"
	EnvRateLimitPerMinute = "ACESTEP_RATE_LIMIT_PER_MINUTE"
	EnvGenerationPerHour  = "ACESTEP_GENERATION_LIMIT_PER_HOUR"
	EnvLocalhostOnly      = "ACESTEP_LOCALHOST_ONLY"
	EnvAllowedIPs         = "ACESTEP_ALLOWED_IPS"
	EnvBlockedIPs         = "ACESTEP_BLOCKED_IPS"
	EnvSessionTimeoutMin  = "ACESTEP_SESSION_TIMEOUT_MINUTES"
	EnvLogAccess          = "ACESTEP_LOG_ACCESS"
	EnvLogAuthFailures    = "ACESTEP_LOG_AUTH_FAILURES"
)

// Config is the security policy loaded from the environment.
type Config struct {
	AuthEnabled  bool
	AuthUsername string
	AuthPassword string

	APIKey string

	RateLimitPerMinute     int
	GenerationLimitPerHour int

	LocalhostOnly bool
	AllowedIPs    map[string]struct{}
	BlockedIPs    map[string]struct{}

	SessionTimeoutMinutes int

	LogAccess       bool
	LogAuthFailures bool
}

// ConfigFromEnv loads the policy with the documented defaults.
func ConfigFromEnv() Config {
	return Config{
		AuthEnabled:            envBool(EnvAuthEnabled, true),
		AuthUsername:           envStr(EnvAuthUsername, "admin"),
		AuthPassword:           envStr(EnvAuthPassword, "music2026"),
		APIKey:                 os.Getenv(EnvAPIKey),
		RateLimitPerMinute:     envInt(EnvRateLimitPerMinute, 30),
		GenerationLimitPerHour: envInt(EnvGenerationPerHour, 20),
		LocalhostOnly:          envBool(EnvLocalhostOnly, false),
		AllowedIPs:             envSet(EnvAllowedIPs),
		BlockedIPs:             envSet(EnvBlockedIPs),
		SessionTimeoutMinutes:  envInt(EnvSessionTimeoutMin, 60),
		LogAccess:              envBool(EnvLogAccess, true),
		LogAuthFailures:        envBool(EnvLogAuthFailures, true),
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return def
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// envSet parses a comma-separated list into a set, dropping blanks.
func envSet(key string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, part := range strings.Split(os.Getenv(key), ",") {
		ip := strings.TrimSpace(part)
		if ip != "" {
			out[ip] = struct{}{}
		}
	}
	return out
}
