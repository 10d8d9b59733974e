package memory

import (
	"sync"

	"blindtest-service/internal/game"
)

// SessionStore is an in-memory implementation of game.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*game.Session),
	}
}

func (s *SessionStore) Put(session *game.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
}

func (s *SessionStore) Get(sessionID string) (*game.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) DeleteIfFinished(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	if session.Status() == game.StatusFinished {
		delete(s.sessions, sessionID)
	}
}
