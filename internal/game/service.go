package game

import (
	"context"

	"blindtest-service/internal/domain"
)

// SessionStore abstracts how play sessions are kept (in-memory, Redis, etc).
type SessionStore interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	DeleteIfFinished(sessionID string)
}

// GameRepository loads game definitions (from cache/backing store).
type GameRepository interface {
	GetGame(ctx context.Context, gameID string) (domain.Game, error)
}

// Service contains the session use cases: starting a play-through from a
// game definition and looking it up for a connected renderer.
type Service struct {
	games    GameRepository
	sessions SessionStore
	scoring  ScoringService
	clips    ClipProvider
	tickMs   int64
}

func NewService(games GameRepository, sessions SessionStore, scoring ScoringService, clips ClipProvider) *Service {
	return &Service{games: games, sessions: sessions, scoring: scoring, clips: clips, tickMs: defaultTickMs}
}

// SetTickInterval overrides the timer granularity for sessions created by
// this service.
func (s *Service) SetTickInterval(tickMs int64) {
	if tickMs > 0 {
		s.tickMs = tickMs
	}
}

// StartSession builds a session from the game definition and registers it.
// The session is returned in NotStarted state; the renderer drives Start.
func (s *Service) StartSession(ctx context.Context, gameID string) (*Session, error) {
	return s.StartSessionWithClips(ctx, gameID, s.clips)
}

// StartSessionWithClips lets a transport supply its own clip wiring, e.g.
// clips proxied to a connected renderer's audio device.
func (s *Service) StartSessionWithClips(ctx context.Context, gameID string, clips ClipProvider) (*Session, error) {
	g, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	session := NewSessionWithTick(g, s.scoring, clips, s.tickMs)
	s.sessions.Put(session)
	return session, nil
}

// Session looks up a registered play session.
func (s *Service) Session(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Release drops the session from the store once it has finished.
func (s *Service) Release(sessionID string) {
	s.sessions.DeleteIfFinished(sessionID)
}
