package http

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lingopath/lingopath/internal/rbac"
)

// rosterEntry is one row of a classroom onboarding roster. ID is optional on
// insert; the server mints one when it is absent.
type rosterEntry struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`     // defaults to student
	Password string `json:"password,omitempty"` // plaintext; hashed before storage
}

type rosterResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// BulkUpsertUsersHandler onboards whole classes at once. The body is either a
// JSON array of roster entries or a multipart upload of a CSV/JSON file.
func BulkUpsertUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := decodeRoster(r)
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		if len(entries) == 0 {
			_ = json.NewEncoder(w).Encode(rosterResult{})
			return
		}
		res, err := applyRoster(r.Context(), db, entries)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}

func decodeRoster(r *http.Request) ([]rosterEntry, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New("file required")
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}
		data = bytes.TrimSpace(data)
		if len(data) == 0 {
			return nil, errors.New("empty file")
		}
		if data[0] == '[' {
			var entries []rosterEntry
			if err := json.Unmarshal(data, &entries); err != nil {
				return nil, errors.New("bad json: " + err.Error())
			}
			return entries, nil
		}
		return parseRosterCSV(bytes.NewReader(data))
	}
	var entries []rosterEntry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		return nil, errors.New("expected JSON array or multipart file")
	}
	return entries, nil
}

// parseRosterCSV reads a roster with a header row. Only the username column
// is required; id, role and password are optional.
func parseRosterCSV(r io.Reader) ([]rosterEntry, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	hdr, err := cr.Read()
	if err != nil {
		return nil, errors.New("bad csv: " + err.Error())
	}
	col := map[string]int{}
	for i, h := range hdr {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["username"]; !ok {
		return nil, errors.New("missing column: username")
	}
	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	var entries []rosterEntry
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.New("bad csv: " + err.Error())
		}
		entries = append(entries, rosterEntry{
			ID:       field(rec, "id"),
			Username: field(rec, "username"),
			Role:     strings.ToLower(field(rec, "role")),
			Password: field(rec, "password"),
		})
	}
	return entries, nil
}

// applyRoster upserts every entry in one transaction. Existing users are
// matched by id or username; new users need a password and get a minted id
// when the roster carries none. Roles must exist in the RBAC policy table.
func applyRoster(ctx context.Context, db *sql.DB, entries []rosterEntry) (res rosterResult, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return res, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	now := time.Now().Unix()
	for _, e := range entries {
		if e.Username == "" {
			return res, errors.New("username required")
		}
		if e.Role == "" {
			e.Role = "student"
		}
		if _, ok := rbac.RolePermissions[e.Role]; !ok {
			return res, errors.New("unknown role: " + e.Role)
		}
		var hash string
		if e.Password != "" {
			b, herr := bcrypt.GenerateFromPassword([]byte(e.Password), 12)
			if herr != nil {
				return res, herr
			}
			hash = string(b)
		}

		var existingID string
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM users WHERE id=$1 OR username=$2`, e.ID, e.Username).Scan(&existingID)
		switch {
		case err == nil:
			if hash != "" {
				_, err = tx.ExecContext(ctx,
					`UPDATE users SET username=$1, role=$2, pass_hash=$3 WHERE id=$4`,
					e.Username, e.Role, hash, existingID)
			} else {
				_, err = tx.ExecContext(ctx,
					`UPDATE users SET username=$1, role=$2 WHERE id=$3`,
					e.Username, e.Role, existingID)
			}
			if err != nil {
				return res, err
			}
			res.Updated++
		case errors.Is(err, sql.ErrNoRows):
			if hash == "" {
				return res, errors.New("password required for new user: " + e.Username)
			}
			id := e.ID
			if id == "" {
				id = uuid.NewString()
			}
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO users (id, username, role, pass_hash, created_at) VALUES ($1,$2,$3,$4,$5)`,
				id, e.Username, e.Role, hash, now); err != nil {
				return res, err
			}
			res.Inserted++
		default:
			return res, err
		}
	}
	return res, nil
}

type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// GET /users?role=student
func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := `SELECT id, username, role FROM users`
		var args []interface{}
		if role := r.URL.Query().Get("role"); role != "" {
			q += ` WHERE role=$1`
			args = append(args, role)
		}
		q += ` ORDER BY username`

		rows, err := db.QueryContext(r.Context(), q, args...)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		defer rows.Close()
		out := []userView{}
		for rows.Next() {
			var u userView
			if err := rows.Scan(&u.ID, &u.Username, &u.Role); err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			out = append(out, u)
		}
		if err := rows.Err(); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
