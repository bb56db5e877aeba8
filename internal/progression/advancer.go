// Package progression commits a passed exercise session: it reconciles the
// learner's authoritative lesson pointer, awards XP, and detects rank
// promotions. The commit is idempotent against replays and cross-device
// races via the stale-completion guard.
package progression

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/lingopath/lingopath/internal/rank"
)

// ErrServiceUnavailable wraps any progress/XP service failure. Callers fall
// back to a degraded success screen with no confirmed XP instead of
// surfacing a crash to the learner.
var ErrServiceUnavailable = errors.New("progression: service unavailable")

// ProgressService is the authoritative lesson-pointer store. The pointer
// marks the next lesson the user should attempt and only ever moves forward.
type ProgressService interface {
	CurrentLesson(ctx context.Context, userID string) (int, error)
	AdvanceLesson(ctx context.Context, userID string, newLessonID int) error
}

// XPService persists lifetime XP and the matching achievement id. SetTotalXP
// always carries both fields in one call, band change or not.
type XPService interface {
	TotalXP(ctx context.Context, userID string) (XPState, error)
	SetTotalXP(ctx context.Context, userID string, totalXP, achievementID int) error
}

type XPState struct {
	TotalXP       int `json:"total_xp"`
	AchievementID int `json:"achievement_id"`
}

// Notifier delivers the promotion celebration. Fire-and-forget: a delivery
// failure must never roll back the XP and pointer already committed.
type Notifier interface {
	Dispatch(ctx context.Context, userID, title, body, iconURL, kind string) error
}

// EventSink records progression milestones. Best-effort, like Notifier.
type EventSink interface {
	Append(ctx context.Context, typ, key, dataJSON string) error
}

// Catalog exposes the curriculum ceiling the lesson pointer clamps to.
type Catalog interface {
	MaxLessonID(ctx context.Context) (int, error)
}

// Result tells the UI what to present: continue, a level-up celebration, or
// (Advanced=false) a success screen showing zero XP for a replayed lesson.
type Result struct {
	Advanced         bool `json:"advanced"`
	XPAwarded        int  `json:"xp_awarded"`
	NewAchievementID *int `json:"new_achievement_id,omitempty"`
	LeveledUp        bool `json:"leveled_up"`
}

type Advancer struct {
	Progress ProgressService
	XP       XPService
	Notify   Notifier
	Events   EventSink // optional
	Catalog  Catalog   // optional; no clamp without it
}

func NewAdvancer(progress ProgressService, xp XPService, notify Notifier, catalog Catalog) *Advancer {
	return &Advancer{Progress: progress, XP: xp, Notify: notify, Catalog: catalog}
}

// Complete runs the commit protocol for one passed lesson.
//
// The guard in step one is the only defense against duplicate submissions
// and multi-device races: if the server pointer already moved past the
// completed lesson, nothing is written and no XP is granted. A check-then-act
// window remains between the pointer read and write; the external store is
// the source of truth and the gap is accepted rather than locked.
func (a *Advancer) Complete(ctx context.Context, userID string, completedLessonID, xpReward int) (Result, error) {
	current, err := a.Progress.CurrentLesson(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("%w: fetch lesson pointer: %v", ErrServiceUnavailable, err)
	}
	if current > completedLessonID {
		// Stale completion: replayed lesson or a faster device won. The UI
		// still shows a success screen, just with zero XP.
		return Result{Advanced: false}, nil
	}

	next := completedLessonID + 1
	if a.Catalog != nil {
		max, err := a.Catalog.MaxLessonID(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("%w: fetch max lesson: %v", ErrServiceUnavailable, err)
		}
		if max > 0 && next > max {
			next = max
		}
	}
	if err := a.Progress.AdvanceLesson(ctx, userID, next); err != nil {
		return Result{}, fmt.Errorf("%w: advance lesson pointer: %v", ErrServiceUnavailable, err)
	}

	state, err := a.XP.TotalXP(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("%w: fetch xp: %v", ErrServiceUnavailable, err)
	}
	newXP := state.TotalXP + xpReward
	oldBand := rank.Lookup(state.TotalXP)
	newBand := rank.Lookup(newXP)

	if err := a.XP.SetTotalXP(ctx, userID, newXP, newBand.AchievementID); err != nil {
		return Result{}, fmt.Errorf("%w: persist xp: %v", ErrServiceUnavailable, err)
	}

	a.record(ctx, event{typ: "LessonCompleted", userID: userID,
		data: fmt.Sprintf(`{"lesson_id":%d,"xp_awarded":%d,"total_xp":%d}`, completedLessonID, xpReward, newXP)})

	res := Result{Advanced: true, XPAwarded: xpReward}
	if newBand.AchievementID != oldBand.AchievementID {
		res.LeveledUp = true
		id := newBand.AchievementID
		res.NewAchievementID = &id
		if a.Notify != nil {
			title := fmt.Sprintf("New rank: %s", newBand.Title)
			body := fmt.Sprintf("You reached %s with %d XP. Keep going!", newBand.Title, newXP)
			if err := a.Notify.Dispatch(ctx, userID, title, body, newBand.IconURL, "level"); err != nil {
				log.Printf("progression: promotion notification for %s failed: %v", userID, err)
			}
		}
		a.record(ctx, event{typ: "RankPromoted", userID: userID,
			data: fmt.Sprintf(`{"achievement_id":%d,"total_xp":%d}`, newBand.AchievementID, newXP)})
	}
	return res, nil
}

type event struct {
	typ, userID, data string
}

func (a *Advancer) record(ctx context.Context, e event) {
	if a.Events == nil {
		return
	}
	if err := a.Events.Append(ctx, e.typ, e.userID, e.data); err != nil {
		log.Printf("progression: event append failed: %v", err)
	}
}
