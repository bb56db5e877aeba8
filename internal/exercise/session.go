package exercise

import "errors"

var (
	// ErrEmptySession rejects construction over zero items; an empty lesson
	// is a data error, not a degenerate success.
	ErrEmptySession = errors.New("exercise: session requires at least one item")
	// ErrOutOfRange means Current was called past the last item; callers
	// must check State first.
	ErrOutOfRange = errors.New("exercise: cursor past end of items")
	// ErrSessionOver rejects submissions to a completed or depleted session.
	ErrSessionOver = errors.New("exercise: session already terminal")
	// ErrAdvanceWithoutCorrect rejects Advance before the current item has
	// been answered correctly.
	ErrAdvanceWithoutCorrect = errors.New("exercise: current item not answered correctly")
)

type Mode string

const (
	// ModeLives: choice/rewriting flow, 5-lives budget, fixed XP reward.
	ModeLives Mode = "lives"
	// ModeOrdering: reordering challenge, unlimited retries, point score
	// against a pass threshold.
	ModeOrdering Mode = "ordering"
)

type Outcome string

const (
	OutcomeUnanswered Outcome = "unanswered"
	OutcomeCorrect    Outcome = "correct"
	OutcomeIncorrect  Outcome = "incorrect"
)

type Step string

const (
	StepContinuing Step = "continuing"
	StepComplete   Step = "session_complete"
)

type State string

const (
	StateInProgress State = "in_progress"
	StateComplete   State = "complete"
	// StateDepleted is the forced-exit terminal: lives ran out and the
	// caller must route to remedial review, never to progression.
	StateDepleted State = "depleted"
)

// Session sequences one learner through one lesson's items. It is not safe
// for concurrent use; each attempt owns exactly one Session.
type Session struct {
	ID       string
	UserID   string
	LessonID int

	mode     Mode
	items    []Item
	cursor   int
	outcome  Outcome
	state    State
	verifier *Verifier
	lives    *LivesTracker
	score    *ScoreKeeper
}

// NewSession builds a session over fetched items. Reward is the XP paid on a
// passing finish; zero selects the default for the mode.
func NewSession(id, userID string, lessonID int, mode Mode, items []Item, reward int) (*Session, error) {
	if len(items) == 0 {
		return nil, ErrEmptySession
	}
	s := &Session{
		ID:       id,
		UserID:   userID,
		LessonID: lessonID,
		mode:     mode,
		items:    items,
		outcome:  OutcomeUnanswered,
		state:    StateInProgress,
		verifier: NewVerifier(),
	}
	switch mode {
	case ModeOrdering:
		if reward == 0 {
			reward = XPOrderingReward
		}
		s.score = newThresholdScore(reward)
	default:
		s.mode = ModeLives
		if reward == 0 {
			reward = XPLessonReward
		}
		s.lives = NewLivesTracker(DefaultLives)
		s.score = newFixedScore(reward)
	}
	return s, nil
}

// Current returns the item under the cursor.
func (s *Session) Current() (Item, error) {
	if s.cursor >= len(s.items) {
		return nil, ErrOutOfRange
	}
	return s.items[s.cursor], nil
}

// Submit verifies the response against the current item. A wrong answer
// never moves the cursor: the learner retries the same item, burning a life
// in lives mode. Advancing after a correct answer is a separate call so the
// UI can show feedback first.
func (s *Session) Submit(response interface{}) (Outcome, error) {
	if s.state != StateInProgress {
		return OutcomeUnanswered, ErrSessionOver
	}
	item, err := s.Current()
	if err != nil {
		return OutcomeUnanswered, err
	}
	if s.verifier.Verify(item, response) {
		s.outcome = OutcomeCorrect
		if s.lives != nil {
			s.lives.OnCorrectAnswer()
		}
		s.score.MarkSolved(s.cursor)
		return OutcomeCorrect, nil
	}
	s.outcome = OutcomeIncorrect
	if s.lives != nil {
		s.lives.OnWrongAnswer()
		if s.lives.Depleted() {
			s.state = StateDepleted
		}
	}
	return OutcomeIncorrect, nil
}

// Advance moves the cursor to the next item. Lives mode requires the current
// item answered correctly first; ordering mode lets the learner move on with
// the puzzle unsolved, forfeiting its points. Reaching the end completes the
// session and makes it ready for scoring.
func (s *Session) Advance() (Step, error) {
	if s.state != StateInProgress {
		return "", ErrSessionOver
	}
	if s.mode == ModeLives && s.outcome != OutcomeCorrect {
		return "", ErrAdvanceWithoutCorrect
	}
	s.cursor++
	s.outcome = OutcomeUnanswered
	if s.cursor == len(s.items) {
		s.state = StateComplete
		return StepComplete, nil
	}
	return StepContinuing, nil
}

func (s *Session) State() State     { return s.state }
func (s *Session) Mode() Mode       { return s.mode }
func (s *Session) Outcome() Outcome { return s.outcome }
func (s *Session) Cursor() int      { return s.cursor }
func (s *Session) Len() int         { return len(s.items) }
func (s *Session) Score() int       { return s.score.Total() }

// LivesRemaining reports -1 for modes without a budget.
func (s *Session) LivesRemaining() int {
	if s.lives == nil {
		return -1
	}
	return s.lives.Remaining()
}

func (s *Session) Depleted() bool { return s.state == StateDepleted }

// Finalize grades the session for the progression step.
func (s *Session) Finalize() (xp int, grade Grade) {
	return s.score.Finalize(s.state == StateComplete)
}
