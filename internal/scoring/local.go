// Package scoring provides the implementations of game.ScoringService: a
// local judge backed by the game definitions and an HTTP client for a
// remote scoring backend.
package scoring

import (
	"context"

	"blindtest-service/internal/domain"
	"blindtest-service/internal/game"
)

// Local judges submissions against the game definition itself. It plays the
// scoring backend's role when the service runs standalone. It only needs
// the correct choice per track, so it works with lightweight cache-rebuilt
// definitions as well as fully loaded ones.
type Local struct {
	games game.GameRepository
}

func NewLocal(games game.GameRepository) *Local {
	return &Local{games: games}
}

func (l *Local) SubmitAnswer(ctx context.Context, gameID string, sub domain.SubmittedAnswer) (domain.AnswerVerdict, error) {
	g, err := l.games.GetGame(ctx, gameID)
	if err != nil {
		return domain.AnswerVerdict{}, err
	}

	track := findTrack(g, sub.TrackID)
	if track == nil {
		return domain.AnswerVerdict{}, domain.ErrTrackNotFound
	}
	winner := correctChoice(*track)
	if winner == nil {
		return domain.AnswerVerdict{}, domain.ErrAnswerNotFound
	}

	result := "incorrect"
	if sub.AnswerID == winner.ID {
		result = "correct"
	}
	return domain.AnswerVerdict{
		TrackID:       sub.TrackID,
		Result:        result,
		CorrectArtist: winner.Artist,
		CorrectTitle:  winner.Title,
		AnswerID:      sub.AnswerID,
	}, nil
}

// CheckGame passes the play-through when at least half the tracks were
// answered correctly.
func (l *Local) CheckGame(ctx context.Context, gameID string, answers []domain.SubmittedAnswer) (domain.GameVerdict, error) {
	g, err := l.games.GetGame(ctx, gameID)
	if err != nil {
		return domain.GameVerdict{}, err
	}

	correct := 0
	for _, a := range answers {
		track := findTrack(g, a.TrackID)
		if track == nil {
			continue
		}
		if winner := correctChoice(*track); winner != nil && winner.ID == a.AnswerID {
			correct++
		}
	}

	status := "bad"
	if len(g.Tracks) > 0 && correct*2 >= len(g.Tracks) {
		status = "good"
	}
	return domain.GameVerdict{Status: status}, nil
}

func findTrack(g domain.Game, trackID string) *domain.GameTrack {
	for i := range g.Tracks {
		if g.Tracks[i].ID == trackID {
			return &g.Tracks[i]
		}
	}
	return nil
}

func correctChoice(t domain.GameTrack) *domain.Choice {
	for i := range t.Choices {
		if t.Choices[i].Correct {
			return &t.Choices[i]
		}
	}
	return nil
}
