package progression_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lingopath/lingopath/internal/progression"
	"github.com/lingopath/lingopath/internal/rank"
)

/* ------- In-memory fakes satisfying the progression service contracts ------- */

type fakeProgress struct {
	pointer      map[string]int
	fetchErr     error
	advanceErr   error
	advanceCalls int
}

func (f *fakeProgress) CurrentLesson(_ context.Context, userID string) (int, error) {
	if f.fetchErr != nil {
		return 0, f.fetchErr
	}
	if p, ok := f.pointer[userID]; ok {
		return p, nil
	}
	return 1, nil
}

func (f *fakeProgress) AdvanceLesson(_ context.Context, userID string, newLessonID int) error {
	if f.advanceErr != nil {
		return f.advanceErr
	}
	f.advanceCalls++
	f.pointer[userID] = newLessonID
	return nil
}

type fakeXP struct {
	state    map[string]progression.XPState
	setCalls int
	setErr   error
}

func (f *fakeXP) TotalXP(_ context.Context, userID string) (progression.XPState, error) {
	if st, ok := f.state[userID]; ok {
		return st, nil
	}
	return progression.XPState{TotalXP: 0, AchievementID: 1}, nil
}

func (f *fakeXP) SetTotalXP(_ context.Context, userID string, totalXP, achievementID int) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.setCalls++
	f.state[userID] = progression.XPState{TotalXP: totalXP, AchievementID: achievementID}
	return nil
}

type fakeNotifier struct {
	calls    int
	lastKind string
	err      error
}

func (f *fakeNotifier) Dispatch(_ context.Context, userID, title, body, iconURL, kind string) error {
	if f.err != nil {
		return f.err
	}
	f.calls++
	f.lastKind = kind
	return nil
}

type fakeCatalog struct{ max int }

func (f fakeCatalog) MaxLessonID(context.Context) (int, error) { return f.max, nil }

func seed(t *testing.T) (*fakeProgress, *fakeXP, *fakeNotifier, *progression.Advancer) {
	t.Helper()
	fp := &fakeProgress{pointer: map[string]int{}}
	fx := &fakeXP{state: map[string]progression.XPState{}}
	fn := &fakeNotifier{}
	adv := progression.NewAdvancer(fp, fx, fn, fakeCatalog{max: 50})
	return fp, fx, fn, adv
}

/* ------------------------------------ Tests ------------------------------------ */

func TestComplete_AdvancesAndAwardsXP(t *testing.T) {
	fp, fx, fn, adv := seed(t)
	fp.pointer["u1"] = 3
	fx.state["u1"] = progression.XPState{TotalXP: 100, AchievementID: 1}

	res, err := adv.Complete(context.Background(), "u1", 3, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Advanced || res.XPAwarded != 50 {
		t.Fatalf("expected advanced with 50 xp, got %+v", res)
	}
	if res.LeveledUp || res.NewAchievementID != nil {
		t.Fatalf("100+50 xp must not promote, got %+v", res)
	}
	if fp.pointer["u1"] != 4 {
		t.Fatalf("pointer should advance to 4, got %d", fp.pointer["u1"])
	}
	if fx.state["u1"].TotalXP != 150 {
		t.Fatalf("expected 150 total xp, got %d", fx.state["u1"].TotalXP)
	}
	if fn.calls != 0 {
		t.Fatalf("no promotion, no notification; got %d calls", fn.calls)
	}
}

func TestComplete_StaleCompletionIsIdempotent(t *testing.T) {
	fp, fx, fn, adv := seed(t)
	fp.pointer["u1"] = 3
	fx.state["u1"] = progression.XPState{TotalXP: 400, AchievementID: 2}

	// First completion advances.
	first, err := adv.Complete(context.Background(), "u1", 3, 300)
	if err != nil || !first.Advanced {
		t.Fatalf("first completion should advance: %+v, %v", first, err)
	}
	// Replaying the same lesson after the pointer moved past it is a no-op.
	second, err := adv.Complete(context.Background(), "u1", 3, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Advanced || second.XPAwarded != 0 || second.LeveledUp {
		t.Fatalf("stale completion must award nothing, got %+v", second)
	}
	if fp.advanceCalls != 1 || fx.setCalls != 1 {
		t.Fatalf("stale completion must not write: advance=%d set=%d", fp.advanceCalls, fx.setCalls)
	}
	if fn.calls != 0 {
		t.Fatalf("stale completion must not notify")
	}
}

func TestComplete_ServerTwoLessonsAhead(t *testing.T) {
	fp, fx, _, adv := seed(t)
	fp.pointer["u1"] = 7 // two past the completed lesson
	fx.state["u1"] = progression.XPState{TotalXP: 500, AchievementID: 2}

	res, err := adv.Complete(context.Background(), "u1", 5, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Advanced || res.XPAwarded != 0 {
		t.Fatalf("completion behind the pointer must not advance, got %+v", res)
	}
	if fx.setCalls != 0 {
		t.Fatalf("xp must stay untouched")
	}
}

func TestComplete_PromotionCrossesBand(t *testing.T) {
	fp, fx, fn, adv := seed(t)
	fp.pointer["u1"] = 10
	fx.state["u1"] = progression.XPState{TotalXP: 850, AchievementID: rank.Lookup(850).AchievementID}

	res, err := adv.Complete(context.Background(), "u1", 10, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.LeveledUp || res.NewAchievementID == nil {
		t.Fatalf("850+300 xp crosses the 900 threshold, got %+v", res)
	}
	want := rank.Lookup(1150).AchievementID
	if *res.NewAchievementID != want {
		t.Fatalf("expected achievement %d, got %d", want, *res.NewAchievementID)
	}
	if fx.state["u1"].AchievementID != want {
		t.Fatalf("persisted achievement must be %d, got %d", want, fx.state["u1"].AchievementID)
	}
	if fn.calls != 1 {
		t.Fatalf("promotion must dispatch exactly one notification, got %d", fn.calls)
	}
	if fn.lastKind != "level" {
		t.Fatalf("promotion notification must carry kind \"level\", got %q", fn.lastKind)
	}
}

func TestComplete_NotifyFailureKeepsCommit(t *testing.T) {
	fp, fx, fn, adv := seed(t)
	fp.pointer["u1"] = 2
	fx.state["u1"] = progression.XPState{TotalXP: 850, AchievementID: 2}
	fn.err = errors.New("push gateway down")

	res, err := adv.Complete(context.Background(), "u1", 2, 300)
	if err != nil {
		t.Fatalf("notification failure must not fail the commit: %v", err)
	}
	if !res.Advanced || !res.LeveledUp {
		t.Fatalf("commit result must survive a failed notification, got %+v", res)
	}
	if fx.state["u1"].TotalXP != 1150 {
		t.Fatalf("xp commit must stand, got %d", fx.state["u1"].TotalXP)
	}
	if fp.pointer["u1"] != 3 {
		t.Fatalf("pointer commit must stand, got %d", fp.pointer["u1"])
	}
}

func TestComplete_PointerClampsToLastLesson(t *testing.T) {
	fp, fx, _, adv := seed(t)
	fp.pointer["u1"] = 50 // already on the final lesson
	fx.state["u1"] = progression.XPState{TotalXP: 10, AchievementID: 1}

	res, err := adv.Complete(context.Background(), "u1", 50, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Advanced {
		t.Fatalf("completing the final lesson still counts, got %+v", res)
	}
	if fp.pointer["u1"] != 50 {
		t.Fatalf("pointer must clamp to the curriculum ceiling, got %d", fp.pointer["u1"])
	}
}

func TestComplete_ServiceFailureWrapsSentinel(t *testing.T) {
	fp, _, _, adv := seed(t)
	fp.fetchErr = errors.New("progress service timeout")

	_, err := adv.Complete(context.Background(), "u1", 1, 300)
	if !errors.Is(err, progression.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}
