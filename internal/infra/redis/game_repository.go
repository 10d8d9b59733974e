package redis

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"blindtest-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// GameLoader fetches game definitions from a backing store (e.g., Postgres).
type GameLoader interface {
	LoadGame(ctx context.Context, gameID string) (domain.Game, error)
}

// GameRepository caches the scoring-relevant part of game definitions in
// Redis (hash per game) and falls back to a loader on cache miss.
// Correct answers are stored as: HSET game:{gameID}:answers {trackID} {choiceID}
// Track metadata is stored as:   HSET game:{gameID}:meta    {trackID} {artist}\t{title}
type GameRepository struct {
	client *redis.Client
	loader GameLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewGameRepository(client *redis.Client, loader GameLoader, ttl time.Duration) *GameRepository {
	return &GameRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *GameRepository) GetGame(ctx context.Context, gameID string) (domain.Game, error) {
	answerKey := r.answersKey(gameID)
	metaKey := r.metaKey(gameID)

	answers, err := r.client.HGetAll(ctx, answerKey).Result()
	if err == nil && len(answers) > 0 {
		meta, _ := r.client.HGetAll(ctx, metaKey).Result()
		return buildGameFromCache(gameID, answers, meta), nil
	}

	result, err, _ := r.sf.Do(gameID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		answers, err := r.client.HGetAll(ctx, answerKey).Result()
		if err == nil && len(answers) > 0 {
			meta, _ := r.client.HGetAll(ctx, metaKey).Result()
			return buildGameFromCache(gameID, answers, meta), nil
		}

		g, err := r.loader.LoadGame(ctx, gameID)
		if err != nil {
			return domain.Game{}, err
		}

		ttl := r.ttlWithJitter()
		pipe := r.client.Pipeline()
		for _, track := range g.Tracks {
			winner := firstCorrectChoice(track)
			pipe.HSet(ctx, answerKey, track.ID, winner.ID)
			pipe.HSet(ctx, metaKey, track.ID, winner.Artist+"\t"+winner.Title)
		}
		if ttl > 0 {
			pipe.Expire(ctx, answerKey, ttl)
			pipe.Expire(ctx, metaKey, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return g, nil
	})
	if err != nil {
		return domain.Game{}, err
	}
	return result.(domain.Game), nil
}

func (r *GameRepository) answersKey(gameID string) string {
	return "game:" + gameID + ":answers"
}

func (r *GameRepository) metaKey(gameID string) string {
	return "game:" + gameID + ":meta"
}

// buildGameFromCache reassembles a lightweight definition: one choice per
// track, the correct one. That is all the scoring path needs; clip URLs and
// wrong choices are not cached in this form.
func buildGameFromCache(gameID string, answers map[string]string, meta map[string]string) domain.Game {
	tracks := make([]domain.GameTrack, 0, len(answers))
	for trackID, choiceID := range answers {
		artist, title := "", ""
		if m, ok := meta[trackID]; ok {
			if i := strings.IndexByte(m, '\t'); i >= 0 {
				artist, title = m[:i], m[i+1:]
			}
		}
		tracks = append(tracks, domain.GameTrack{
			ID: trackID,
			Choices: []domain.Choice{
				{ID: choiceID, Artist: artist, Title: title, Correct: true},
			},
		})
	}
	return domain.Game{ID: gameID, Tracks: tracks}
}

func firstCorrectChoice(t domain.GameTrack) domain.Choice {
	for _, c := range t.Choices {
		if c.Correct {
			return c
		}
	}
	// Fallback to the first choice if no correct flag is set.
	if len(t.Choices) > 0 {
		return t.Choices[0]
	}
	return domain.Choice{}
}

func (r *GameRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
