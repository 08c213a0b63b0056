package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/dataready/internal/catalog"
	"github.com/abhisek/dataready/internal/interview"
)

// sqliteSessions stores each session as a JSON document alongside the
// columns needed for listing.
type sqliteSessions struct {
	db  *sql.DB
	now func() time.Time
}

func (r *sqliteSessions) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *sqliteSessions) Save(ctx context.Context, s *interview.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", s.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, state, target_role, mode, questions, running_score, created_at, updated_at, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			state = excluded.state,
			questions = excluded.questions,
			running_score = excluded.running_score,
			updated_at = excluded.updated_at,
			data = excluded.data`,
		s.ID, string(s.State), string(s.Setup.TargetRole), string(s.Setup.Mode),
		len(s.Questions), s.RunningScore,
		s.CreatedAt.UnixMilli(), r.clock().UnixMilli(), string(data),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

func (r *sqliteSessions) Get(ctx context.Context, id string) (*interview.Session, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM sessions WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query session %s: %w", id, err)
	}

	var s interview.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &s, nil
}

func (r *sqliteSessions) List(ctx context.Context, opts ListOpts) ([]SessionSummary, error) {
	var (
		where []string
		args  []any
	)
	if opts.State != "" {
		where = append(where, "state = ?")
		args = append(args, string(opts.State))
	}

	q := `SELECT id, state, target_role, mode, questions, running_score, created_at, updated_at FROM sessions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var (
			sum               SessionSummary
			state, role, mode string
			created, updated  int64
		)
		if err := rows.Scan(&sum.ID, &state, &role, &mode, &sum.QuestionsAsked, &sum.RunningScore, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sum.State = interview.State(state)
		sum.TargetRole = catalog.Role(role)
		sum.Mode = interview.Mode(mode)
		sum.CreatedAt = time.UnixMilli(created).UTC()
		sum.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (r *sqliteSessions) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}
