package scoring

import (
	"context"
	"errors"
	"testing"

	"blindtest-service/internal/domain"
)

type staticRepo struct {
	games map[string]domain.Game
}

func (r *staticRepo) GetGame(_ context.Context, gameID string) (domain.Game, error) {
	if g, ok := r.games[gameID]; ok {
		return g, nil
	}
	return domain.Game{}, domain.ErrGameNotFound
}

func sampleGame() domain.Game {
	return domain.Game{
		ID: "game-1",
		Tracks: []domain.GameTrack{
			{ID: "t1", Choices: []domain.Choice{
				{ID: "a1", Artist: "The Who", Title: "Baba O'Riley", Correct: true},
				{ID: "a2", Artist: "The Kinks", Title: "Lola"},
			}},
			{ID: "t2", Choices: []domain.Choice{
				{ID: "a3", Artist: "Led Zeppelin", Title: "Kashmir", Correct: true},
				{ID: "a4", Artist: "Deep Purple", Title: "Smoke on the Water"},
			}},
		},
	}
}

func TestLocalSubmitAnswer(t *testing.T) {
	judge := NewLocal(&staticRepo{games: map[string]domain.Game{"game-1": sampleGame()}})
	ctx := context.Background()

	v, err := judge.SubmitAnswer(ctx, "game-1", domain.SubmittedAnswer{TrackID: "t1", AnswerID: "a1"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if v.Result != "correct" || v.CorrectArtist != "The Who" || v.CorrectTitle != "Baba O'Riley" {
		t.Fatalf("unexpected verdict %+v", v)
	}

	v, err = judge.SubmitAnswer(ctx, "game-1", domain.SubmittedAnswer{TrackID: "t1", AnswerID: "a2"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if v.Result != "incorrect" {
		t.Fatalf("expected incorrect, got %+v", v)
	}
	// The correct metadata is revealed either way.
	if v.CorrectArtist != "The Who" {
		t.Fatalf("expected correct artist in verdict, got %+v", v)
	}

	if _, err := judge.SubmitAnswer(ctx, "game-1", domain.SubmittedAnswer{TrackID: "t99", AnswerID: "a1"}); !errors.Is(err, domain.ErrTrackNotFound) {
		t.Fatalf("expected ErrTrackNotFound, got %v", err)
	}
	if _, err := judge.SubmitAnswer(ctx, "nope", domain.SubmittedAnswer{TrackID: "t1", AnswerID: "a1"}); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestLocalCheckGame(t *testing.T) {
	judge := NewLocal(&staticRepo{games: map[string]domain.Game{"game-1": sampleGame()}})
	ctx := context.Background()

	// 1 of 2 correct passes the half threshold.
	v, err := judge.CheckGame(ctx, "game-1", []domain.SubmittedAnswer{
		{TrackID: "t1", AnswerID: "a1"},
		{TrackID: "t2", AnswerID: "a4"},
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if v.Status != "good" {
		t.Fatalf("expected good, got %s", v.Status)
	}

	v, err = judge.CheckGame(ctx, "game-1", []domain.SubmittedAnswer{
		{TrackID: "t1", AnswerID: "a2"},
		{TrackID: "t2", AnswerID: ""},
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if v.Status != "bad" {
		t.Fatalf("expected bad, got %s", v.Status)
	}
}
