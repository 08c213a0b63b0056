package store

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/dataready/internal/interview"
)

func (r *eventRepo) AppendTransition(ctx context.Context, data TransitionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO transition_events (sequence, timestamp, session_id, from_state, to_state) VALUES (?, ?, ?, ?, ?)`,
		seqNum, time.Now().UnixMilli(), data.SessionID, string(data.From), string(data.To),
	)
	if err != nil {
		return fmt.Errorf("save transition event: %w", err)
	}
	return nil
}

func (r *eventRepo) Transitions(ctx context.Context, sessionID string) ([]TransitionEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT sequence, timestamp, session_id, from_state, to_state
		FROM transition_events WHERE session_id = ? ORDER BY sequence`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var out []TransitionEvent
	for rows.Next() {
		var (
			e        TransitionEvent
			ts       int64
			from, to string
		)
		if err := rows.Scan(&e.ID, &ts, &e.SessionID, &from, &to); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts).UTC()
		e.From = interview.State(from)
		e.To = interview.State(to)
		out = append(out, e)
	}
	return out, rows.Err()
}
