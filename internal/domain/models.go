package domain

// Outcome is the per-track resolution state.
type Outcome int

const (
	Unanswered Outcome = iota
	Correct
	Incorrect
)

func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "unanswered"
	}
}

// Answer is one selectable choice shown for a track.
type Answer struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	TrackID string `json:"trackId"`
}

// Track is one quiz item: a prompt clip plus candidate answers, and the
// mutable outcome filled in exactly once when the answer is resolved.
type Track struct {
	ID             string
	ClipRef        string
	Answers        []Answer
	Outcome        Outcome
	ResolvedArtist string
	ResolvedTitle  string
	ChosenAnswerID string
}

// Choice is a candidate in a game definition, including the truth bit and
// the metadata revealed once the track is resolved.
type Choice struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	ClipURL string `json:"clipUrl"`
	Correct bool   `json:"correct"`
}

// GameTrack is one track of a game definition with exactly one correct choice.
type GameTrack struct {
	ID      string   `json:"id"`
	ClipURL string   `json:"url"`
	Choices []Choice `json:"choices"`
}

// Game is the server-side definition a play session is built from.
type Game struct {
	ID           string      `json:"id"`
	Genre        string      `json:"genre"`
	Tracks       []GameTrack `json:"tracks"`
	TimeBudgetMs int64       `json:"timeBudgetMs"`
}

// SubmittedAnswer pairs a track with the answer chosen for it.
type SubmittedAnswer struct {
	TrackID  string `json:"trackId"`
	AnswerID string `json:"answerId"`
}

// AnswerVerdict is the scoring backend's judgement of a single submission.
type AnswerVerdict struct {
	TrackID       string `json:"trackId"`
	Result        string `json:"result"` // "correct" or "incorrect"
	CorrectArtist string `json:"correctArtist"`
	CorrectTitle  string `json:"correctTitle"`
	AnswerID      string `json:"answerId"`
}

// GameVerdict is the backend's overall pass/fail call on a finished game.
type GameVerdict struct {
	Status string `json:"status"` // "good" or "bad"
}

// Result is what the final screen renders.
type Result struct {
	Title string `json:"title"`
	Ratio string `json:"ratio"`
	Score int64  `json:"score"`
}
