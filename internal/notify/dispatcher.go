// Package notify stores in-app notifications. Dispatch is fire-and-forget
// from the caller's point of view: the progression layer logs and swallows
// any failure here rather than rolling back a committed XP grant.
package notify

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	IconURL   string `json:"icon_url,omitempty"`
	Kind      string `json:"kind"` // e.g. "level"
	CreatedAt int64  `json:"created_at"`
}

type SQLDispatcher struct {
	db *sql.DB
}

func NewSQLDispatcher(db *sql.DB) *SQLDispatcher { return &SQLDispatcher{db: db} }

func (d *SQLDispatcher) Dispatch(ctx context.Context, userID, title, body, iconURL, kind string) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, title, body, icon_url, kind, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		uuid.NewString(), userID, title, body, iconURL, kind, time.Now().Unix())
	return err
}

// ListForUser returns newest-first notifications for the in-app inbox.
func (d *SQLDispatcher) ListForUser(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, user_id, title, body, icon_url, kind, created_at
		 FROM notifications WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.IconURL, &n.Kind, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
