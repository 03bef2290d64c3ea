package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mirrorsensei/sensei/internal/auth"
)

// Manager keeps the sessions of a multi-visitor front end such as the
// HTTP API.
type Manager struct {
	mu       sync.RWMutex
	auth     auth.Authenticator
	sessions map[string]*Session
}

func NewManager(a auth.Authenticator) *Manager {
	return &Manager{auth: a, sessions: make(map[string]*Session)}
}

// Create starts a new session with a random id.
func (m *Manager) Create() *Session {
	s := New(uuid.NewString(), m.auth)
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Prune drops sessions idle for longer than maxIdle and returns how many
// were removed.
func (m *Manager) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
