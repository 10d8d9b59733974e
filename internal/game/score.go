package game

import (
	"fmt"

	"blindtest-service/internal/domain"
)

const pointsPerTrack = 1000

// ComputeResult derives the final screen record from the terminal session
// state. It is a pure function: the same outcomes, remaining time and
// verdict always produce the same result. Remaining time is an additive
// bonus on top of the per-track points.
func ComputeResult(tracks []domain.Track, remainingMs int64, verdict domain.GameVerdict) domain.Result {
	correct := 0
	for _, t := range tracks {
		if t.Outcome == domain.Correct {
			correct++
		}
	}
	if remainingMs < 0 {
		remainingMs = 0
	}

	title := "Quite there!"
	if verdict.Status == "good" {
		title = "You made it!"
	}

	return domain.Result{
		Title: title,
		Ratio: fmt.Sprintf("%d/%d", correct, len(tracks)),
		Score: int64(pointsPerTrack*correct) + remainingMs,
	}
}
