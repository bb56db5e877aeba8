package lesson

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lingopath/lingopath/internal/exercise"
)

var ErrNotFound = errors.New("lesson: not found")

type Store interface {
	PutLesson(ctx context.Context, l Lesson) error
	// GetLesson is student-safe: answer keys are stripped.
	GetLesson(ctx context.Context, id int) (Lesson, error)
	// GetLessonAdmin returns the full lesson including answer keys, for
	// authors and for session construction.
	GetLessonAdmin(ctx context.Context, id int) (Lesson, error)
	ListLessons(ctx context.Context) ([]Summary, error)
	// MaxLessonID is the curriculum ceiling the lesson pointer clamps to.
	MaxLessonID(ctx context.Context) (int, error)
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutLesson(ctx context.Context, l Lesson) error {
	items, err := exercise.MarshalItems(l.Items)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO lessons (id, title, kind, xp_reward, items_json, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, kind=EXCLUDED.kind,
		   xp_reward=EXCLUDED.xp_reward, items_json=EXCLUDED.items_json`,
		l.ID, l.Title, string(l.Kind), l.XPReward, string(items), time.Now().Unix())
	return err
}

func (s *SQLStore) GetLesson(ctx context.Context, id int) (Lesson, error) {
	l, err := s.GetLessonAdmin(ctx, id)
	if err != nil {
		return Lesson{}, err
	}
	for i, it := range l.Items {
		l.Items[i] = exercise.Sanitize(it)
	}
	return l, nil
}

func (s *SQLStore) GetLessonAdmin(ctx context.Context, id int) (Lesson, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, kind, xp_reward, items_json, created_at FROM lessons WHERE id=$1`, id)
	var l Lesson
	var kind, itemsJSON string
	if err := row.Scan(&l.ID, &l.Title, &kind, &l.XPReward, &itemsJSON, &l.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lesson{}, ErrNotFound
		}
		return Lesson{}, err
	}
	l.Kind = Kind(kind)
	items, err := exercise.UnmarshalItems([]byte(itemsJSON))
	if err != nil {
		return Lesson{}, err
	}
	l.Items = items
	return l, nil
}

func (s *SQLStore) ListLessons(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, kind, xp_reward, items_json FROM lessons ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Summary
	for rows.Next() {
		var sum Summary
		var kind, itemsJSON string
		if err := rows.Scan(&sum.ID, &sum.Title, &kind, &sum.XPReward, &itemsJSON); err != nil {
			return nil, err
		}
		sum.Kind = Kind(kind)
		if items, err := exercise.UnmarshalItems([]byte(itemsJSON)); err == nil {
			sum.Items = len(items)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLStore) MaxLessonID(ctx context.Context) (int, error) {
	var max int
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id),0) FROM lessons`).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}
