package redis

import (
	"context"
	"testing"
	"time"

	"blindtest-service/internal/domain"
	"blindtest-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestGameRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		GameLoader: memory.NewStaticGameLoader(map[string]domain.Game{
			"game-1": sampleGame(),
		}),
	}
	repo := NewGameRepository(client, loader, time.Minute)

	_, err = repo.GetGame(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}

	// Second call should hit the Redis hash, loader not incremented.
	g, err := repo.GetGame(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("get game 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}

	// The cache-rebuilt form keeps the correct choice and its metadata.
	if len(g.Tracks) != 1 || len(g.Tracks[0].Choices) != 1 {
		t.Fatalf("unexpected cached shape %+v", g)
	}
	winner := g.Tracks[0].Choices[0]
	if winner.ID != "a1" || !winner.Correct || winner.Artist != "The Who" || winner.Title != "Baba O'Riley" {
		t.Fatalf("unexpected cached winner %+v", winner)
	}
}

type countingLoader struct {
	memory.GameLoader
	calls int
}

func (l *countingLoader) LoadGame(ctx context.Context, gameID string) (domain.Game, error) {
	l.calls++
	return l.GameLoader.LoadGame(ctx, gameID)
}

func sampleGame() domain.Game {
	return domain.Game{
		ID:           "game-1",
		TimeBudgetMs: 60000,
		Tracks: []domain.GameTrack{
			{ID: "t1", ClipURL: "clip-1", Choices: []domain.Choice{
				{ID: "a1", Artist: "The Who", Title: "Baba O'Riley", Correct: true},
				{ID: "a2", Artist: "The Kinks", Title: "Lola"},
			}},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
