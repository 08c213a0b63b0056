package orchestrator

import (
	"context"

	"github.com/abhisek/dataready/internal/interview"
	"github.com/abhisek/dataready/internal/store"
)

// TransitionAppender is the part of store.EventRepo that records
// transitions.
type TransitionAppender interface {
	AppendTransition(ctx context.Context, data store.TransitionEventData) error
}

// RecordTransitions returns a state observer that appends every transition
// to the event log.
func RecordTransitions(events TransitionAppender) StateObserver {
	return func(ctx context.Context, s *interview.Session, from, to interview.State) error {
		return events.AppendTransition(ctx, store.TransitionEventData{
			SessionID: s.ID,
			From:      from,
			To:        to,
		})
	}
}
