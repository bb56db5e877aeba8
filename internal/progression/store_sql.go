package progression

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lingopath/lingopath/internal/rank"
)

// SQLStore backs ProgressService and XPService with the user_progress and
// user_xp tables. In the deployed product these live behind the REST
// progress/XP services; here the gateway is that service.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// CurrentLesson returns the pointer for userID. A user with no row yet is on
// lesson 1.
func (s *SQLStore) CurrentLesson(ctx context.Context, userID string) (int, error) {
	var lessonID int
	err := s.db.QueryRowContext(ctx,
		`SELECT lesson_id FROM user_progress WHERE user_id=$1`, userID).Scan(&lessonID)
	if errors.Is(err, sql.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return lessonID, nil
}

func (s *SQLStore) AdvanceLesson(ctx context.Context, userID string, newLessonID int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_progress (user_id, lesson_id, updated_at)
		 VALUES ($1,$2,$3)
		 ON CONFLICT (user_id) DO UPDATE SET lesson_id=EXCLUDED.lesson_id, updated_at=EXCLUDED.updated_at`,
		userID, newLessonID, time.Now().Unix())
	return err
}

// TotalXP returns the XP state for userID. A user with no row is at zero XP
// in the lowest band.
func (s *SQLStore) TotalXP(ctx context.Context, userID string) (XPState, error) {
	var st XPState
	err := s.db.QueryRowContext(ctx,
		`SELECT total_xp, achievement_id FROM user_xp WHERE user_id=$1`, userID).
		Scan(&st.TotalXP, &st.AchievementID)
	if errors.Is(err, sql.ErrNoRows) {
		return XPState{TotalXP: 0, AchievementID: rank.Lookup(0).AchievementID}, nil
	}
	if err != nil {
		return XPState{}, err
	}
	return st, nil
}

func (s *SQLStore) SetTotalXP(ctx context.Context, userID string, totalXP, achievementID int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_xp (user_id, total_xp, achievement_id, updated_at)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (user_id) DO UPDATE SET total_xp=EXCLUDED.total_xp, achievement_id=EXCLUDED.achievement_id, updated_at=EXCLUDED.updated_at`,
		userID, totalXP, achievementID, time.Now().Unix())
	return err
}
