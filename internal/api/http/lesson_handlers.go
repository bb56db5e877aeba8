package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lingopath/lingopath/internal/exercise"
	"github.com/lingopath/lingopath/internal/lesson"
)

// lessonUpload is the author-facing payload; items arrive in the tagged
// envelope format the store persists.
type lessonUpload struct {
	ID       int             `json:"id"`
	Title    string          `json:"title"`
	Kind     lesson.Kind     `json:"kind"`
	XPReward int             `json:"xp_reward"`
	Items    json.RawMessage `json:"items"`
}

// POST /lessons (author)
func UploadLessonHandler(store lesson.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lessonUpload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.ID <= 0 || req.Title == "" || !req.Kind.Valid() {
			http.Error(w, "id, title and a valid kind required", 400)
			return
		}
		items, err := exercise.UnmarshalItems(req.Items)
		if err != nil {
			http.Error(w, "bad items: "+err.Error(), 400)
			return
		}
		if len(items) == 0 {
			http.Error(w, "lesson requires at least one item", 422)
			return
		}
		reward := req.XPReward
		if reward == 0 {
			reward = req.Kind.DefaultReward()
		}
		l := lesson.Lesson{ID: req.ID, Title: req.Title, Kind: req.Kind, XPReward: reward, Items: items}
		if err := store.PutLesson(r.Context(), l); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]int{"id": l.ID})
	}
}

// GET /lessons/{lessonID} (student-safe; answer keys stripped)
func GetLessonHandler(store lesson.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := atoiParam(r, "lessonID")
		if err != nil {
			http.Error(w, "bad lesson id", 400)
			return
		}
		l, err := store.GetLesson(r.Context(), id)
		if err != nil {
			if errors.Is(err, lesson.ErrNotFound) {
				http.Error(w, "lesson not found", 404)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(l)
	}
}

// GET /lessons
func ListLessonsHandler(store lesson.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListLessons(r.Context())
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if out == nil {
			out = []lesson.Summary{}
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
