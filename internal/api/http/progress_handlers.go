package http

import (
	"encoding/json"
	"net/http"

	auth "github.com/lingopath/lingopath/internal/auth/middleware"
	"github.com/lingopath/lingopath/internal/notify"
	"github.com/lingopath/lingopath/internal/progression"
	"github.com/lingopath/lingopath/internal/rank"
)

type progressView struct {
	LessonID      int       `json:"lesson_id"` // next lesson to attempt
	TotalXP       int       `json:"total_xp"`
	AchievementID int       `json:"achievement_id"`
	Rank          rank.Band `json:"rank"`
}

// GET /me/progress
func MyProgressHandler(progress progression.ProgressService, xp progression.XPService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.SubjectFromContext(r.Context())
		lessonID, err := progress.CurrentLesson(r.Context(), userID)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		state, err := xp.TotalXP(r.Context(), userID)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(progressView{
			LessonID:      lessonID,
			TotalXP:       state.TotalXP,
			AchievementID: state.AchievementID,
			Rank:          rank.Lookup(state.TotalXP),
		})
	}
}

// GET /ranks
func ListRanksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(rank.Bands())
	}
}

// GET /me/notifications
func MyNotificationsHandler(d *notify.SQLDispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.SubjectFromContext(r.Context())
		out, err := d.ListForUser(r.Context(), userID, 50)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if out == nil {
			out = []notify.Notification{}
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
