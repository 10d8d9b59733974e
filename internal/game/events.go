package game

import (
	"time"

	"blindtest-service/internal/domain"
)

// Event is a notification emitted by a Session. The set of concrete event
// types is fixed; renderers switch on the type instead of matching strings.
type Event interface {
	isEvent()
}

// TimeRemaining reports the countdown after a timer tick.
type TimeRemaining struct {
	Ms int64
}

// TrackActivated marks the track at Index as the one with active focus.
type TrackActivated struct {
	Index int
}

// AnswersCleared means the previous answer list is gone and the renderer
// should tear down its answer UI before signalling AnswerListRemoved.
type AnswersCleared struct {
	Index int
}

// AnswersLoaded carries the fresh catalog for the active track; the renderer
// signals AnswerListRendered once it has drawn them.
type AnswersLoaded struct {
	TrackID string
	Answers []domain.Answer
}

// ClipPosition relays playback progress of the current clip.
type ClipPosition struct {
	Position time.Duration
	Duration time.Duration
}

// Progress reports how many tracks are resolved out of the total.
type Progress struct {
	Answered int
	Total    int
}

// GameFinished carries the final result; it is the last event of a session.
type GameFinished struct {
	Result domain.Result
}

func (TimeRemaining) isEvent()  {}
func (TrackActivated) isEvent() {}
func (AnswersCleared) isEvent() {}
func (AnswersLoaded) isEvent()  {}
func (ClipPosition) isEvent()   {}
func (Progress) isEvent()       {}
func (GameFinished) isEvent()   {}
