package security

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"acestepd/pkg/types"
)

// Manager combines the policy pieces behind one front door.
type Manager struct {
	cfg Config

	RateLimiter       *RateLimiter
	GenerationLimiter *GenerationLimiter
	Sessions          *SessionManager
}

// NewManager wires the limiters and session store from cfg.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		cfg:               cfg,
		RateLimiter:       NewRateLimiter(cfg.RateLimitPerMinute, time.Minute),
		GenerationLimiter: NewGenerationLimiter(cfg.GenerationLimitPerHour, time.Hour),
		Sessions:          NewSessionManager(time.Duration(cfg.SessionTimeoutMinutes) * time.Minute),
	}
	log.Info().Bool("auth_enabled", cfg.AuthEnabled).Msg("security manager initialized")
	return m
}

// Config returns the active policy.
func (m *Manager) Config() Config { return m.cfg }

// VerifyCredentials checks the configured username/password pair in
// constant time. Always true when auth is disabled.
func (m *Manager) VerifyCredentials(username, password string) bool {
	if !m.cfg.AuthEnabled {
		return true
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.cfg.AuthUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(m.cfg.AuthPassword)) == 1
	valid := userOK && passOK
	if !valid && m.cfg.LogAuthFailures {
		log.Warn().Str("username", username).Msg("failed login attempt")
	}
	return valid
}

// VerifyAPIKey checks a provided key against the configured one.
// True when no key is configured; a "Bearer " prefix is stripped.
func (m *Manager) VerifyAPIKey(provided string) bool {
	if m.cfg.APIKey == "" {
		return true
	}
	if provided == "" {
		return false
	}
	provided = strings.TrimPrefix(provided, "Bearer ")
	valid := subtle.ConstantTimeCompare([]byte(provided), []byte(m.cfg.APIKey)) == 1
	if !valid && m.cfg.LogAuthFailures {
		tail := provided
		if len(tail) > 8 {
			tail = tail[:8]
		}
		log.Warn().Str("key_prefix", tail).Msg("invalid API key attempt")
	}
	return valid
}

// CheckIPAccess applies block list, localhost-only and allow list in
// that order.
func (m *Manager) CheckIPAccess(ip string) (bool, string) {
	ip = strings.TrimSpace(ip)
	if _, blocked := m.cfg.BlockedIPs[ip]; blocked {
		if m.cfg.LogAccess {
			log.Warn().Str("ip", ip).Msg("blocked IP attempted access")
		}
		return false, "access blocked"
	}
	if m.cfg.LocalhostOnly {
		switch ip {
		case "127.0.0.1", "localhost", "::1":
		default:
			return false, "local access only"
		}
	}
	if len(m.cfg.AllowedIPs) > 0 {
		if _, ok := m.cfg.AllowedIPs[ip]; !ok {
			return false, "IP not authorized"
		}
	}
	return true, ""
}

// CheckRateLimit applies the per-minute limiter for an IP.
func (m *Manager) CheckRateLimit(ip string) (bool, int, string) {
	ok, remaining := m.RateLimiter.Allow(ip)
	if !ok {
		reset := m.RateLimiter.ResetAfter(ip)
		if m.cfg.LogAccess {
			log.Warn().Str("ip", ip).Msg("rate limit exceeded")
		}
		return false, 0, fmt.Sprintf("rate limit exceeded, try again in %d seconds", int(reset.Seconds())+1)
	}
	return true, remaining, ""
}

// CheckGenerationLimit applies the per-hour generation quota.
func (m *Manager) CheckGenerationLimit(identifier string) (bool, int, string) {
	return m.GenerationLimiter.CanGenerate(identifier)
}

// RecordGeneration registers a completed generation for quota purposes.
func (m *Manager) RecordGeneration(identifier string) {
	m.GenerationLimiter.Record(identifier)
}

// SecurityHeaders are added to every control API response.
func (m *Manager) SecurityHeaders() map[string]string {
	return map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"X-XSS-Protection":       "1; mode=block",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
		"Cache-Control":          "no-store, no-cache, must-revalidate",
	}
}

// Status summarizes the active policy for monitoring.
func (m *Manager) Status() types.SecurityStatus {
	return types.SecurityStatus{
		AuthEnabled:            m.cfg.AuthEnabled,
		APIKeyConfigured:       m.cfg.APIKey != "",
		RateLimitPerMinute:     m.cfg.RateLimitPerMinute,
		GenerationLimitPerHour: m.cfg.GenerationLimitPerHour,
		LocalhostOnly:          m.cfg.LocalhostOnly,
		AllowedIPCount:         len(m.cfg.AllowedIPs),
		BlockedIPCount:         len(m.cfg.BlockedIPs),
		SessionTimeoutMinutes:  m.cfg.SessionTimeoutMinutes,
	}
}
