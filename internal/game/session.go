package game

import (
	"context"
	"sync"
	"time"

	"blindtest-service/internal/domain"
	"github.com/google/uuid"
)

// Status is the session lifecycle state. Finished is terminal.
type Status int

const (
	StatusNotStarted Status = iota
	StatusInProgress
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "inProgress"
	case StatusFinished:
		return "finished"
	default:
		return "notStarted"
	}
}

const (
	defaultBudgetMs = 60000
	defaultTickMs   = 10
)

// ScoringService judges submissions. Implementations live in
// internal/scoring (local judge and HTTP client).
type ScoringService interface {
	SubmitAnswer(ctx context.Context, gameID string, sub domain.SubmittedAnswer) (domain.AnswerVerdict, error)
	CheckGame(ctx context.Context, gameID string, answers []domain.SubmittedAnswer) (domain.GameVerdict, error)
}

// Session is one play-through of a game: the track list, the shared
// countdown, the active-track cursor and the answer catalog, tied together
// by the lifecycle protocol the renderer drives.
//
// Operations arrive from two goroutines (the transport's read loop and the
// timer); the mutex serializes them. Side effects that can re-enter the
// session (clip control, network calls, event publishing) run outside the
// lock.
type Session struct {
	id      string
	gameID  string
	scoring ScoringService

	mu          sync.Mutex
	status      Status
	tracks      []domain.Track
	current     int
	remainingMs int64
	tickMs      int64
	answered    int
	ending      bool
	catalog     *Catalog
	clips       []AudioClip
	currentClip AudioClip
	detachClip  func()
	result      *domain.Result

	timer *Timer

	subMu       sync.Mutex
	subscribers map[chan Event]struct{}
}

func NewSession(g domain.Game, scoring ScoringService, clips ClipProvider) *Session {
	return NewSessionWithTick(g, scoring, clips, defaultTickMs)
}

// NewSessionWithTick sets the timer granularity explicitly; tests use a
// coarse tick to drive the countdown deterministically.
func NewSessionWithTick(g domain.Game, scoring ScoringService, clips ClipProvider, tickMs int64) *Session {
	if clips == nil {
		clips = LoopbackProvider
	}
	if tickMs <= 0 {
		tickMs = defaultTickMs
	}
	budget := g.TimeBudgetMs
	if budget <= 0 {
		budget = defaultBudgetMs
	}

	s := &Session{
		id:          uuid.NewString(),
		gameID:      g.ID,
		scoring:     scoring,
		status:      StatusNotStarted,
		tracks:      buildTracks(g),
		current:     -1,
		remainingMs: budget,
		tickMs:      tickMs,
		catalog:     NewCatalog(),
		subscribers: make(map[chan Event]struct{}),
	}
	s.timer = NewTimer(time.Duration(tickMs)*time.Millisecond, s.tick)
	s.clips = make([]AudioClip, len(s.tracks))
	for i, t := range s.tracks {
		s.clips[i] = clips(t)
	}
	return s
}

func buildTracks(g domain.Game) []domain.Track {
	tracks := make([]domain.Track, 0, len(g.Tracks))
	for _, gt := range g.Tracks {
		answers := make([]domain.Answer, 0, len(gt.Choices))
		for _, c := range gt.Choices {
			answers = append(answers, domain.Answer{
				ID:      c.ID,
				Label:   c.Artist + " - " + c.Title,
				TrackID: gt.ID,
			})
		}
		tracks = append(tracks, domain.Track{
			ID:      gt.ID,
			ClipRef: gt.ClipURL,
			Answers: answers,
			Outcome: domain.Unanswered,
		})
	}
	return tracks
}

func (s *Session) ID() string     { return s.id }
func (s *Session) GameID() string { return s.gameID }

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Session) RemainingMs() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remainingMs
}

func (s *Session) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answered
}

// Tracks returns a snapshot copy of the track list.
func (s *Session) Tracks() []domain.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// Result returns the final score record once the session is finished.
func (s *Session) Result() (domain.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.Result{}, false
	}
	return *s.result, true
}

// Subscribe returns a channel receiving the session's events. The caller
// must invoke the cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 32)
	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.subMu.Unlock()
	}
	return ch, cancel
}

func (s *Session) publish(ev Event) {
	s.subMu.Lock()
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// Drop the oldest buffered event so a slow renderer never
			// blocks the session.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
	s.subMu.Unlock()
}

// Start transitions the session into play and moves the cursor to the first
// unanswered track. Playback does not begin here; it waits for the renderer
// to confirm the answer list is visible (AnswerListRendered).
func (s *Session) Start() error {
	s.mu.Lock()
	if s.status != StatusNotStarted {
		s.mu.Unlock()
		return domain.ErrInvalidState
	}
	s.status = StatusInProgress
	answered, total := s.answered, len(s.tracks)
	s.mu.Unlock()

	s.publish(Progress{Answered: answered, Total: total})
	return s.AdvanceToNextTrack()
}

// AdvanceToNextTrack moves the cursor to the next unanswered track, wrapping
// cyclically. Callers must run CheckProgress first when an answer was just
// resolved; invoking this with every track resolved is a contract violation
// and fails with ErrInvalidState instead of looping forever.
func (s *Session) AdvanceToNextTrack() error {
	s.mu.Lock()
	if s.status != StatusInProgress {
		s.mu.Unlock()
		return domain.ErrInvalidState
	}
	if s.answered >= len(s.tracks) {
		s.mu.Unlock()
		return domain.ErrInvalidState
	}
	idx := s.nextUnansweredLocked()
	s.current = idx
	s.catalog.Clear()
	prev := s.currentClip
	s.mu.Unlock()

	if prev != nil {
		// Hooks are still attached, so the stop's pause notification halts
		// the timer. BeginPlayback detaches them before rebinding.
		prev.Stop()
	} else {
		// Very first transition: no clip was playing yet.
		s.timer.Pause()
	}
	s.publish(AnswersCleared{Index: idx})
	return nil
}

func (s *Session) nextUnansweredLocked() int {
	n := len(s.tracks)
	idx := s.current + 1
	for {
		if idx >= n {
			idx = 0
		}
		if s.tracks[idx].Outcome == domain.Unanswered {
			return idx
		}
		idx++
	}
}

// AnswerListRemoved is signalled by the renderer once the answer UI of the
// previous track is torn down.
func (s *Session) AnswerListRemoved(ctx context.Context) error {
	return s.CheckProgress(ctx)
}

// AnswerListRendered is signalled by the renderer once the active track's
// answers are visible; only then does audio start.
func (s *Session) AnswerListRendered() error {
	s.mu.Lock()
	idx := s.current
	s.mu.Unlock()
	return s.BeginPlayback(idx)
}

// CheckProgress either finishes the game (every track resolved) or loads
// the active track's answers into the catalog and reports progress.
func (s *Session) CheckProgress(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusInProgress || s.ending {
		s.mu.Unlock()
		return domain.ErrInvalidState
	}
	answered := 0
	for _, t := range s.tracks {
		if t.Outcome != domain.Unanswered {
			answered++
		}
	}
	s.answered = answered
	total := len(s.tracks)
	if answered == total {
		s.mu.Unlock()
		return s.EndGame(ctx)
	}
	track := s.tracks[s.current]
	s.catalog.Reset(track)
	s.mu.Unlock()

	s.publish(AnswersLoaded{TrackID: track.ID, Answers: track.Answers})
	s.publish(Progress{Answered: answered, Total: total})
	return nil
}

// BeginPlayback activates the track at index: detaches the previous clip's
// hooks, subscribes to the new clip and starts it. The clip's own play
// notification resumes the timer.
func (s *Session) BeginPlayback(index int) error {
	s.mu.Lock()
	if s.status != StatusInProgress || s.ending {
		s.mu.Unlock()
		return domain.ErrInvalidState
	}
	if index < 0 || index >= len(s.clips) {
		s.mu.Unlock()
		return domain.ErrTrackNotFound
	}
	prev := s.currentClip
	detach := s.detachClip
	clip := s.clips[index]
	s.currentClip = clip
	s.detachClip = nil
	s.mu.Unlock()

	if detach != nil {
		detach()
	}
	if prev != nil && prev != clip {
		prev.Stop()
	}

	d := clip.Subscribe(ClipHooks{
		OnPlay:  s.ResumeTimer,
		OnPause: s.PauseTimer,
		// Reaching the natural end of a clip must not stall the countdown;
		// the track stays answerable, so the timer keeps running.
		OnEnded: s.ResumeTimer,
		OnTimeUpdate: func(pos, dur time.Duration) {
			s.publish(ClipPosition{Position: pos, Duration: dur})
		},
	})

	s.mu.Lock()
	s.detachClip = d
	s.mu.Unlock()

	s.publish(TrackActivated{Index: index})
	clip.Play()
	return nil
}

// ResumeTimer starts the countdown ticking; duplicate resumes are no-ops.
func (s *Session) ResumeTimer() {
	s.mu.Lock()
	ok := s.status == StatusInProgress && !s.ending && s.remainingMs > 0
	s.mu.Unlock()
	if ok {
		s.timer.Resume()
	}
}

// PauseTimer halts the countdown; pausing a stopped timer is a no-op.
func (s *Session) PauseTimer() {
	s.timer.Pause()
}

// SelectAnswer submits the chosen answer for a track. The timer is paused
// for the duration of the scoring round trip so the countdown cannot hit
// zero mid-submission. On backend failure the track stays Unanswered, the
// timer resumes and the error is surfaced for retry.
func (s *Session) SelectAnswer(ctx context.Context, trackID, answerID string) error {
	s.mu.Lock()
	if s.status != StatusInProgress || s.ending {
		s.mu.Unlock()
		return domain.ErrInvalidState
	}
	track := s.trackByIDLocked(trackID)
	if track == nil {
		s.mu.Unlock()
		return domain.ErrTrackNotFound
	}
	if track.Outcome != domain.Unanswered {
		s.mu.Unlock()
		return domain.ErrInvalidState
	}
	answer, ok := s.catalog.Get(answerID)
	if !ok || answer.TrackID != trackID {
		s.mu.Unlock()
		return domain.ErrAnswerNotFound
	}
	gameID := s.gameID
	s.mu.Unlock()

	s.timer.Pause()

	verdict, err := s.scoring.SubmitAnswer(ctx, gameID, domain.SubmittedAnswer{
		TrackID:  trackID,
		AnswerID: answerID,
	})
	if err != nil {
		s.ResumeTimer()
		return err
	}
	return s.resolveAnswer(verdict)
}

// resolveAnswer maps the backend verdict onto the track and advances past
// it, correct or not. Verdicts arriving after the game finished (or for an
// already-resolved track) are dropped.
func (s *Session) resolveAnswer(v domain.AnswerVerdict) error {
	s.mu.Lock()
	if s.status != StatusInProgress || s.ending {
		s.mu.Unlock()
		return nil
	}
	track := s.trackByIDLocked(v.TrackID)
	if track == nil {
		s.mu.Unlock()
		return domain.ErrTrackNotFound
	}
	if track.Outcome != domain.Unanswered {
		s.mu.Unlock()
		return nil
	}
	if v.Result == "correct" {
		track.Outcome = domain.Correct
	} else {
		track.Outcome = domain.Incorrect
	}
	track.ResolvedArtist = v.CorrectArtist
	track.ResolvedTitle = v.CorrectTitle
	track.ChosenAnswerID = v.AnswerID
	s.answered++
	allDone := s.answered >= len(s.tracks)
	s.mu.Unlock()

	if allDone {
		// Nothing left to advance to; the renderer's AnswerListRemoved
		// lands in CheckProgress, which ends the game. Stop audio now.
		s.mu.Lock()
		clip := s.currentClip
		s.mu.Unlock()
		if clip != nil {
			clip.Stop()
		} else {
			s.timer.Pause()
		}
		s.publish(AnswersCleared{Index: s.CurrentIndex()})
		return nil
	}
	return s.AdvanceToNextTrack()
}

func (s *Session) trackByIDLocked(id string) *domain.Track {
	for i := range s.tracks {
		if s.tracks[i].ID == id {
			return &s.tracks[i]
		}
	}
	return nil
}

// tick runs on the timer goroutine.
func (s *Session) tick() {
	s.mu.Lock()
	if s.status != StatusInProgress || s.ending {
		s.mu.Unlock()
		return
	}
	s.remainingMs -= s.tickMs
	remaining := s.remainingMs
	s.mu.Unlock()

	if remaining < 0 {
		remaining = 0
	}
	s.publish(TimeRemaining{Ms: remaining})

	if remaining <= 0 {
		s.timer.Pause()
		// Time-out is a normal terminal path; unanswered tracks stay
		// unanswered. EndGame's own guard makes a second zero-tick a no-op.
		_ = s.EndGame(context.Background())
	}
}

// EndGame submits every track's chosen answer to the scoring backend and,
// on its verdict, transitions to Finished and computes the final score. It
// runs at most once; concurrent or repeated calls fail with
// ErrInvalidState. A backend failure leaves the session InProgress so the
// call can be retried.
func (s *Session) EndGame(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusInProgress || s.ending {
		s.mu.Unlock()
		return domain.ErrInvalidState
	}
	s.ending = true
	answers := make([]domain.SubmittedAnswer, 0, len(s.tracks))
	for _, t := range s.tracks {
		answers = append(answers, domain.SubmittedAnswer{TrackID: t.ID, AnswerID: t.ChosenAnswerID})
	}
	clip := s.currentClip
	gameID := s.gameID
	s.mu.Unlock()

	s.timer.Pause()
	if clip != nil {
		clip.Stop()
	}

	verdict, err := s.scoring.CheckGame(ctx, gameID, answers)
	if err != nil {
		s.mu.Lock()
		s.ending = false
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.status = StatusFinished
	res := ComputeResult(s.tracks, s.remainingMs, verdict)
	s.result = &res
	s.mu.Unlock()

	s.publish(GameFinished{Result: res})
	return nil
}
