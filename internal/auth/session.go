package auth

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CookieName is the session cookie issued on staff login.
const CookieName = "reunite_session"

type Session struct {
	Token     string
	StaffID   uuid.UUID
	StaffRef  string // human-readable staff id, for logging
	ExpiresAt time.Time
}

// SessionManager issues and validates opaque session tokens for staff
// dashboard logins. Sessions live in memory; a restart logs everyone out.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]Session
	ttl      time.Duration
}

func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]Session),
		ttl:      ttl,
	}
}

func newToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic("session token entropy unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf)
}

// Create issues a new session for the staff member and returns it.
func (m *SessionManager) Create(staffID uuid.UUID, staffRef string) Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Session{
		Token:     newToken(),
		StaffID:   staffID,
		StaffRef:  staffRef,
		ExpiresAt: time.Now().Add(m.ttl),
	}
	m.sessions[s.Token] = s
	return s
}

// Get returns the session for a token if it exists and has not expired.
// Expired sessions are evicted on access.
func (m *SessionManager) Get(token string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return Session{}, false
	}
	if time.Now().After(s.ExpiresAt) {
		delete(m.sessions, token)
		return Session{}, false
	}
	return s, true
}

// Destroy invalidates a session token. Unknown tokens are a no-op.
func (m *SessionManager) Destroy(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}
