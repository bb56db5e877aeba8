package exercise_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lingopath/lingopath/internal/exercise"
)

func choiceItems(t *testing.T, n int) []exercise.Item {
	t.Helper()
	items := make([]exercise.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, exercise.MultipleChoice{
			Prompt:        fmt.Sprintf("question %d", i+1),
			Options:       []string{"right", "wrong", "also wrong"},
			CorrectOption: "right",
		})
	}
	return items
}

func orderingItems(t *testing.T, puzzles int) []exercise.Item {
	t.Helper()
	items := make([]exercise.Item, 0, puzzles)
	for i := 0; i < puzzles; i++ {
		items = append(items, exercise.ParagraphOrdering{Segments: []exercise.ParagraphSegment{
			{ID: "a", Content: "one", CorrectOrder: 1},
			{ID: "b", Content: "two", CorrectOrder: 2},
		}})
	}
	return items
}

func TestNewSession_RejectsEmptyItems(t *testing.T) {
	_, err := exercise.NewSession("s1", "u1", 1, exercise.ModeLives, nil, 0)
	if !errors.Is(err, exercise.ErrEmptySession) {
		t.Fatalf("expected ErrEmptySession, got %v", err)
	}
}

func TestSession_WrongAnswerRetriesSameItem(t *testing.T) {
	s, err := exercise.NewSession("s1", "u1", 1, exercise.ModeLives, choiceItems(t, 2), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out, _ := s.Submit("wrong"); out != exercise.OutcomeIncorrect {
		t.Fatalf("expected incorrect outcome, got %v", out)
	}
	if s.Cursor() != 0 {
		t.Fatalf("wrong answer must not advance cursor, cursor=%d", s.Cursor())
	}
	if s.LivesRemaining() != 4 {
		t.Fatalf("expected 4 lives, got %d", s.LivesRemaining())
	}
	// Advance without a correct answer is rejected in lives mode.
	if _, err := s.Advance(); !errors.Is(err, exercise.ErrAdvanceWithoutCorrect) {
		t.Fatalf("expected ErrAdvanceWithoutCorrect, got %v", err)
	}
	// Retry of the same item succeeds and advances.
	if out, _ := s.Submit("right"); out != exercise.OutcomeCorrect {
		t.Fatalf("expected correct outcome, got %v", out)
	}
	if step, _ := s.Advance(); step != exercise.StepContinuing {
		t.Fatalf("expected continuing, got %v", step)
	}
	if s.Cursor() != 1 {
		t.Fatalf("expected cursor 1, got %d", s.Cursor())
	}
}

func TestSession_FiveWrongAnswersDepletes(t *testing.T) {
	s, _ := exercise.NewSession("s1", "u1", 1, exercise.ModeLives, choiceItems(t, 3), 0)
	for i := 0; i < 5; i++ {
		if _, err := s.Submit("wrong"); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if !s.Depleted() {
		t.Fatalf("expected depleted session after 5 wrong answers")
	}
	if s.State() != exercise.StateDepleted {
		t.Fatalf("expected StateDepleted, got %v", s.State())
	}
	// Terminal: no further submissions, never completes.
	if _, err := s.Submit("right"); !errors.Is(err, exercise.ErrSessionOver) {
		t.Fatalf("expected ErrSessionOver after depletion, got %v", err)
	}
	if xp, grade := s.Finalize(); grade != exercise.GradeFailed || xp != 0 {
		t.Fatalf("depleted session must grade failed with zero xp, got %d/%v", xp, grade)
	}
}

func TestSession_CompletionAwardsFixedReward(t *testing.T) {
	s, _ := exercise.NewSession("s1", "u1", 1, exercise.ModeLives, choiceItems(t, 2), 0)
	for i := 0; i < 2; i++ {
		if out, _ := s.Submit("right"); out != exercise.OutcomeCorrect {
			t.Fatalf("item %d: expected correct", i)
		}
		step, err := s.Advance()
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if i == 1 && step != exercise.StepComplete {
			t.Fatalf("expected session complete, got %v", step)
		}
	}
	if s.State() != exercise.StateComplete {
		t.Fatalf("expected StateComplete, got %v", s.State())
	}
	if _, err := s.Current(); !errors.Is(err, exercise.ErrOutOfRange) {
		t.Fatalf("Current past the end must return ErrOutOfRange, got %v", err)
	}
	if xp, grade := s.Finalize(); grade != exercise.GradePassed || xp != exercise.XPLessonReward {
		t.Fatalf("expected %d xp passed, got %d/%v", exercise.XPLessonReward, xp, grade)
	}
}

func TestSession_OrderingScoresOncePerPuzzle(t *testing.T) {
	s, _ := exercise.NewSession("s1", "u1", 2, exercise.ModeOrdering, orderingItems(t, 10), 0)
	if s.LivesRemaining() != -1 {
		t.Fatalf("ordering mode has no lives budget, got %d", s.LivesRemaining())
	}
	// Wrong arrangements cost nothing and can be retried forever.
	for i := 0; i < 7; i++ {
		if out, _ := s.Submit([]string{"b", "a"}); out != exercise.OutcomeIncorrect {
			t.Fatalf("expected incorrect")
		}
	}
	if s.Score() != 0 {
		t.Fatalf("unsolved puzzle must not score, got %d", s.Score())
	}
	// Solving twice must not double-count.
	if out, _ := s.Submit([]string{"a", "b"}); out != exercise.OutcomeCorrect {
		t.Fatalf("expected correct")
	}
	if out, _ := s.Submit([]string{"a", "b"}); out != exercise.OutcomeCorrect {
		t.Fatalf("expected correct on re-solve")
	}
	if s.Score() != exercise.PointsPerPuzzle {
		t.Fatalf("expected %d points after first solve, got %d", exercise.PointsPerPuzzle, s.Score())
	}
}

func TestSession_OrderingBelowThresholdFails(t *testing.T) {
	s, _ := exercise.NewSession("s1", "u1", 2, exercise.ModeOrdering, orderingItems(t, 10), 0)
	// Solve 6 of 10 puzzles (60 points), skip the rest.
	for i := 0; i < 10; i++ {
		if i < 6 {
			if out, _ := s.Submit([]string{"a", "b"}); out != exercise.OutcomeCorrect {
				t.Fatalf("puzzle %d: expected correct", i)
			}
		}
		if _, err := s.Advance(); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}
	if s.State() != exercise.StateComplete {
		t.Fatalf("expected complete session, got %v", s.State())
	}
	if s.Score() != 60 {
		t.Fatalf("expected 60 points, got %d", s.Score())
	}
	if xp, grade := s.Finalize(); grade != exercise.GradeFailed || xp != 0 {
		t.Fatalf("60/100 must fail with zero xp, got %d/%v", xp, grade)
	}
}

func TestSession_OrderingAtThresholdPasses(t *testing.T) {
	s, _ := exercise.NewSession("s1", "u1", 2, exercise.ModeOrdering, orderingItems(t, 10), 0)
	// Solve 8 of 10 puzzles (80 points).
	for i := 0; i < 10; i++ {
		if i < 8 {
			if out, _ := s.Submit([]string{"a", "b"}); out != exercise.OutcomeCorrect {
				t.Fatalf("puzzle %d: expected correct", i)
			}
		}
		if _, err := s.Advance(); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}
	if xp, grade := s.Finalize(); grade != exercise.GradePassed || xp != exercise.XPOrderingReward {
		t.Fatalf("80/100 must pass with %d xp, got %d/%v", exercise.XPOrderingReward, xp, grade)
	}
}
