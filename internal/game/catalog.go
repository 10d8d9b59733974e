package game

import "blindtest-service/internal/domain"

// Catalog holds the active track's selectable answers, keyed by answer ID.
// It is cleared and rebuilt on every track transition; answers from a
// previous track never survive into the next one.
type Catalog struct {
	answers map[string]domain.Answer
}

func NewCatalog() *Catalog {
	return &Catalog{answers: make(map[string]domain.Answer)}
}

// Reset replaces the catalog contents with the track's answers.
func (c *Catalog) Reset(track domain.Track) {
	c.answers = make(map[string]domain.Answer, len(track.Answers))
	for _, a := range track.Answers {
		a.TrackID = track.ID
		c.answers[a.ID] = a
	}
}

func (c *Catalog) Clear() {
	c.answers = make(map[string]domain.Answer)
}

func (c *Catalog) Get(id string) (domain.Answer, bool) {
	a, ok := c.answers[id]
	return a, ok
}

func (c *Catalog) Len() int {
	return len(c.answers)
}
