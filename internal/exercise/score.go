package exercise

// Reward and threshold constants. The ordering pass mark and per-puzzle
// points come straight from the product's tuning; they are named here rather
// than derived from any formula.
const (
	XPLessonReward   = 300 // choice and rewriting lessons, on completion
	XPOrderingReward = 700 // ordering challenge, on passing the threshold

	PointsPerPuzzle = 10
	PassThreshold   = 70
)

type Grade string

const (
	GradePassed Grade = "passed"
	GradeFailed Grade = "failed"
)

// ScoreKeeper accumulates the session's reward. Fixed mode pays a constant
// XP amount on completion; threshold mode (ordering) pays per-puzzle points
// and gates the reward behind a pass mark.
type ScoreKeeper struct {
	threshold bool
	reward    int
	total     int
	solved    map[int]struct{}
}

func newFixedScore(reward int) *ScoreKeeper {
	return &ScoreKeeper{reward: reward}
}

func newThresholdScore(reward int) *ScoreKeeper {
	return &ScoreKeeper{threshold: true, reward: reward, solved: map[int]struct{}{}}
}

// MarkSolved credits one puzzle index exactly once. Re-solving an
// already-scored puzzle never double-counts.
func (s *ScoreKeeper) MarkSolved(index int) {
	if !s.threshold {
		return
	}
	if _, done := s.solved[index]; done {
		return
	}
	s.solved[index] = struct{}{}
	s.total += PointsPerPuzzle
}

func (s *ScoreKeeper) Total() int { return s.total }

// Finalize grades the session. completed reports whether the session reached
// its terminal COMPLETE state; an abandoned or depleted session earns nothing.
func (s *ScoreKeeper) Finalize(completed bool) (xp int, grade Grade) {
	if !completed {
		return 0, GradeFailed
	}
	if s.threshold && s.total < PassThreshold {
		return 0, GradeFailed
	}
	return s.reward, GradePassed
}
