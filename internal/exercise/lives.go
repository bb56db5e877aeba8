package exercise

// DefaultLives is the wrong-answer budget for choice and rewriting lessons.
// Ordering challenges carry no budget and track a point score instead.
const DefaultLives = 5

// LivesTracker counts down a fixed wrong-answer budget. There is no
// regeneration within a session; reaching zero is terminal.
type LivesTracker struct {
	remaining int
}

func NewLivesTracker(budget int) *LivesTracker {
	if budget <= 0 {
		budget = DefaultLives
	}
	return &LivesTracker{remaining: budget}
}

func (t *LivesTracker) OnWrongAnswer() {
	if t.remaining > 0 {
		t.remaining--
	}
}

// OnCorrectAnswer is a no-op; correct answers never restore lives.
func (t *LivesTracker) OnCorrectAnswer() {}

func (t *LivesTracker) Remaining() int { return t.remaining }

func (t *LivesTracker) Depleted() bool { return t.remaining == 0 }
