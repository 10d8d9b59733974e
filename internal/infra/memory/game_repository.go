package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"blindtest-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// GameLoader fetches game definitions from a backing store (e.g., Postgres).
type GameLoader interface {
	LoadGame(ctx context.Context, gameID string) (domain.Game, error)
}

// GameRepository caches game definitions with TTL to avoid repeated DB hits.
type GameRepository struct {
	loader GameLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedGame
}

type cachedGame struct {
	game      domain.Game
	expiresAt time.Time
}

func NewGameRepository(loader GameLoader, ttl time.Duration) *GameRepository {
	return &GameRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedGame),
	}
}

func (r *GameRepository) GetGame(ctx context.Context, gameID string) (domain.Game, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[gameID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.game, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(gameID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[gameID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.game, nil
		}
		r.mu.RUnlock()

		g, err := r.loader.LoadGame(ctx, gameID)
		if err != nil {
			return domain.Game{}, err
		}

		r.mu.Lock()
		r.cache[gameID] = cachedGame{
			game:      g,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return g, nil
	})
	if err != nil {
		return domain.Game{}, err
	}
	return result.(domain.Game), nil
}

// StaticGameLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticGameLoader struct {
	games map[string]domain.Game
}

func NewStaticGameLoader(games map[string]domain.Game) *StaticGameLoader {
	return &StaticGameLoader{games: games}
}

func (l *StaticGameLoader) LoadGame(_ context.Context, gameID string) (domain.Game, error) {
	if g, ok := l.games[gameID]; ok {
		return g, nil
	}
	return domain.Game{}, domain.ErrGameNotFound
}

func (r *GameRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
