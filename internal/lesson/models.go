package lesson

import "github.com/lingopath/lingopath/internal/exercise"

// Kind selects the exercise flow for a lesson.
type Kind string

const (
	KindChoice    Kind = "choice"    // multiple choice, lives budget
	KindRewriting Kind = "rewriting" // sentence assembly, lives budget
	KindOrdering  Kind = "ordering"  // paragraph reordering, score threshold
)

func (k Kind) Valid() bool {
	switch k {
	case KindChoice, KindRewriting, KindOrdering:
		return true
	}
	return false
}

// Mode maps a lesson kind to its session mode.
func (k Kind) Mode() exercise.Mode {
	if k == KindOrdering {
		return exercise.ModeOrdering
	}
	return exercise.ModeLives
}

// DefaultReward is the XP paid for passing a lesson of this kind when the
// lesson row does not override it.
func (k Kind) DefaultReward() int {
	if k == KindOrdering {
		return exercise.XPOrderingReward
	}
	return exercise.XPLessonReward
}

// Lesson IDs form the curriculum sequence; the user's lesson pointer indexes
// into this sequence.
type Lesson struct {
	ID        int             `json:"id"`
	Title     string          `json:"title"`
	Kind      Kind            `json:"kind"`
	XPReward  int             `json:"xp_reward"`
	Items     []exercise.Item `json:"items,omitempty"`
	CreatedAt int64           `json:"created_at,omitempty"`
}

type Summary struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Kind     Kind   `json:"kind"`
	XPReward int    `json:"xp_reward"`
	Items    int    `json:"item_count"`
}
