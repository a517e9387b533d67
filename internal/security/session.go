package security

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Session is one authenticated user session.
type Session struct {
	ID              string
	Username        string
	IPAddress       string
	CreatedAt       time.Time
	LastActivity    time.Time
	GenerationCount int
}

// SessionManager tracks sessions with idle timeout. A timeout <= 0
// disables expiry.
type SessionManager struct {
	timeout time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewSessionManager builds a manager with the given idle timeout.
func NewSessionManager(timeout time.Duration) *SessionManager {
	return &SessionManager{
		timeout:  timeout,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create registers a new session and returns its id.
func (sm *SessionManager) Create(username, ipAddress string) string {
	id := uuid.NewString()
	now := sm.now()
	sm.mu.Lock()
	sm.sessions[id] = &Session{
		ID:           id,
		Username:     username,
		IPAddress:    ipAddress,
		CreatedAt:    now,
		LastActivity: now,
	}
	sm.mu.Unlock()
	log.Info().Str("user", username).Str("ip", ipAddress).Msg("session created")
	return id
}

// Validate returns the session when it exists and has not idled out,
// refreshing its activity timestamp.
func (sm *SessionManager) Validate(id string) (Session, bool) {
	if id == "" {
		return Session{}, false
	}
	now := sm.now()
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s := sm.sessions[id]
	if s == nil {
		return Session{}, false
	}
	if sm.timeout > 0 && now.Sub(s.LastActivity) > sm.timeout {
		delete(sm.sessions, id)
		log.Info().Str("user", s.Username).Msg("session expired")
		return Session{}, false
	}
	s.LastActivity = now
	return *s, true
}

// End terminates a session (logout).
func (sm *SessionManager) End(id string) {
	sm.mu.Lock()
	s, ok := sm.sessions[id]
	if ok {
		delete(sm.sessions, id)
	}
	sm.mu.Unlock()
	if ok {
		log.Info().Str("user", s.Username).Msg("session ended")
	}
}

// CleanupExpired drops every idled-out session.
func (sm *SessionManager) CleanupExpired() {
	if sm.timeout <= 0 {
		return
	}
	now := sm.now()
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for id, s := range sm.sessions {
		if now.Sub(s.LastActivity) > sm.timeout {
			delete(sm.sessions, id)
		}
	}
}

// Len reports the number of live sessions.
func (sm *SessionManager) Len() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.sessions)
}
