package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	auth "github.com/lingopath/lingopath/internal/auth/middleware"
	"github.com/lingopath/lingopath/internal/exercise"
	"github.com/lingopath/lingopath/internal/lesson"
	"github.com/lingopath/lingopath/internal/progression"
)

type sessionView struct {
	ID        string           `json:"id"`
	LessonID  int              `json:"lesson_id"`
	Mode      exercise.Mode    `json:"mode"`
	State     exercise.State   `json:"state"`
	Cursor    int              `json:"cursor"`
	Items     int              `json:"item_count"`
	Lives     *int             `json:"lives,omitempty"` // nil in ordering mode; 0 means depleted
	Score     int              `json:"score"`
	Outcome   exercise.Outcome `json:"outcome"`
	Item      exercise.Item    `json:"item,omitempty"`
	ForceExit bool             `json:"force_exit,omitempty"`
}

func viewOf(s *exercise.Session) sessionView {
	v := sessionView{
		ID:       s.ID,
		LessonID: s.LessonID,
		Mode:     s.Mode(),
		State:    s.State(),
		Cursor:   s.Cursor(),
		Items:    s.Len(),
		Score:    s.Score(),
		Outcome:  s.Outcome(),
	}
	if lives := s.LivesRemaining(); lives >= 0 {
		v.Lives = &lives
	}
	if it, err := s.Current(); err == nil {
		v.Item = exercise.Sanitize(it)
	}
	v.ForceExit = s.Depleted()
	return v
}

// ownSession loads the session and enforces that the caller owns it.
func ownSession(reg *exercise.Registry, r *http.Request) (*exercise.Session, int, error) {
	s, err := reg.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		return nil, http.StatusNotFound, err
	}
	if s.UserID != auth.SubjectFromContext(r.Context()) {
		return nil, http.StatusForbidden, errors.New("not your session")
	}
	return s, 0, nil
}

// POST /sessions {"lesson_id": 3}
func StartSessionHandler(reg *exercise.Registry, lessons lesson.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			LessonID int `json:"lesson_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		l, err := lessons.GetLessonAdmin(r.Context(), req.LessonID)
		if err != nil {
			if errors.Is(err, lesson.ErrNotFound) {
				http.Error(w, "lesson not found", 404)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		userID := auth.SubjectFromContext(r.Context())
		s, err := exercise.NewSession(uuid.NewString(), userID, l.ID, l.Kind.Mode(), l.Items, l.XPReward)
		if err != nil {
			// Empty lessons are a data error, never a zero-question success.
			http.Error(w, err.Error(), 422)
			return
		}
		reg.Put(s)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(viewOf(s))
	}
}

// GET /sessions/{sessionID}
func GetSessionHandler(reg *exercise.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, code, err := ownSession(reg, r)
		if err != nil {
			http.Error(w, err.Error(), code)
			return
		}
		_ = json.NewEncoder(w).Encode(viewOf(s))
	}
}

// POST /sessions/{sessionID}/answers
// Body: {"response": "option text"} or {"response": ["seg-2","seg-1"]}.
func SubmitAnswerHandler(reg *exercise.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, code, err := ownSession(reg, r)
		if err != nil {
			http.Error(w, err.Error(), code)
			return
		}
		var req struct {
			Response interface{} `json:"response"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		outcome, err := s.Submit(req.Response)
		if err != nil {
			http.Error(w, err.Error(), 409)
			return
		}
		v := viewOf(s)
		v.Outcome = outcome
		_ = json.NewEncoder(w).Encode(v)
	}
}

// POST /sessions/{sessionID}/advance
func AdvanceSessionHandler(reg *exercise.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, code, err := ownSession(reg, r)
		if err != nil {
			http.Error(w, err.Error(), code)
			return
		}
		step, err := s.Advance()
		if err != nil {
			http.Error(w, err.Error(), 409)
			return
		}
		v := viewOf(s)
		_ = json.NewEncoder(w).Encode(struct {
			Step exercise.Step `json:"step"`
			sessionView
		}{Step: step, sessionView: v})
	}
}

type completionResponse struct {
	Result      string              `json:"result"` // completed|failed|force_exit
	Score       int                 `json:"score,omitempty"`
	XPConfirmed bool                `json:"xp_confirmed"`
	Progression *progression.Result `json:"progression,omitempty"`
}

// POST /sessions/{sessionID}/complete
//
// The commit gate: depleted sessions are redirected to review, failed
// ordering runs to retry, and only passed sessions reach the advancer. The
// session leaves the registry before the protocol runs, so this handler can
// never commit twice for the same session object.
func CompleteSessionHandler(reg *exercise.Registry, adv *progression.Advancer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, code, err := ownSession(reg, r)
		if err != nil {
			http.Error(w, err.Error(), code)
			return
		}
		switch s.State() {
		case exercise.StateDepleted:
			reg.Remove(s.ID)
			_ = json.NewEncoder(w).Encode(completionResponse{Result: "force_exit"})
			return
		case exercise.StateInProgress:
			http.Error(w, "session not finished", 409)
			return
		}

		xp, grade := s.Finalize()
		if grade == exercise.GradeFailed {
			reg.Remove(s.ID)
			_ = json.NewEncoder(w).Encode(completionResponse{Result: "failed", Score: s.Score()})
			return
		}

		reg.Remove(s.ID)
		res, err := adv.Complete(r.Context(), s.UserID, s.LessonID, xp)
		if err != nil {
			// Degraded success: lesson feedback must not block on a flaky
			// backend. No XP is confirmed to the learner.
			log.Printf("session %s: progression commit failed: %v", s.ID, err)
			_ = json.NewEncoder(w).Encode(completionResponse{Result: "completed", Score: s.Score()})
			return
		}
		_ = json.NewEncoder(w).Encode(completionResponse{
			Result:      "completed",
			Score:       s.Score(),
			XPConfirmed: true,
			Progression: &res,
		})
	}
}

func atoiParam(r *http.Request, name string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, name))
}
