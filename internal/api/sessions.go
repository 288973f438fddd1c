package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxSessions caps the live chat sessions. Anonymous clients can mint a
// session per request, so the map must not grow without bound.
const maxSessions = 256

// session pairs an assistant with the lock that serializes its pipeline. The
// assistant keeps per-conversation history, so concurrent messages on one
// session must queue.
type session struct {
	mu        sync.Mutex
	assistant Assistant

	// lastSeen is guarded by the manager's mutex, not the session mutex.
	lastSeen time.Time
}

// sessionManager owns the live chat sessions, keyed by opaque IDs handed to
// clients. When the cap is hit, the least recently used session is evicted.
type sessionManager struct {
	mu           sync.Mutex
	sessions     map[string]*session
	newAssistant func() Assistant
}

func newSessionManager(newAssistant func() Assistant) *sessionManager {
	return &sessionManager{
		sessions:     make(map[string]*session),
		newAssistant: newAssistant,
	}
}

// create starts a fresh session and returns its ID.
func (m *sessionManager) create() string {
	id := uuid.New().String()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) >= maxSessions {
		m.evictOldest()
	}
	m.sessions[id] = &session{assistant: m.newAssistant(), lastSeen: time.Now()}
	return id
}

func (m *sessionManager) get(id string) (*session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if ok {
		s.lastSeen = time.Now()
	}
	return s, ok
}

// evictOldest drops the least recently used session. Callers hold m.mu.
func (m *sessionManager) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, s := range m.sessions {
		if oldestID == "" || s.lastSeen.Before(oldest) {
			oldestID = id
			oldest = s.lastSeen
		}
	}
	if oldestID != "" {
		delete(m.sessions, oldestID)
	}
}
