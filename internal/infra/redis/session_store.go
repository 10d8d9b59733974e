package redis

import (
	"context"
	"sync"
	"time"

	"blindtest-service/internal/game"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of game.SessionStore.
// Notes:
//   - Play sessions are live objects (timer goroutine, clip wiring), so they
//     stay in a local in-process map.
//   - Redis marks session liveness with a TTL key, which lets operators see
//     active play-throughs and reap abandoned ones across instances.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*game.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*game.Session),
	}
}

func (s *SessionStore) Put(session *game.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.ID()), session.GameID(), s.ttl).Err()
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
		_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
	}
}

func (s *SessionStore) key(sessionID string) string {
	return "game:session:" + sessionID
}
