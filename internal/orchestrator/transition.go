package orchestrator

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/dataready/internal/interview"
)

// Transition moves the session to state to. errMsg is recorded when
// entering ERROR.
func (o *Orchestrator) Transition(ctx context.Context, id string, to interview.State, errMsg string) (*interview.Session, error) {
	defer o.lock(id)()
	ctx = o.sessionContext(ctx, id)

	s, err := o.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.transition(ctx, s, to, errMsg); err != nil {
		return nil, err
	}
	return s, nil
}

// transition validates and applies a state change. Side effects run in
// order: timestamps, trace end, persist, observers, log. The session is
// untouched when the change is not allowed.
func (o *Orchestrator) transition(ctx context.Context, s *interview.Session, to interview.State, errMsg string) error {
	from := s.State
	if !interview.CanTransition(from, to) {
		return &interview.InvalidTransitionError{
			Current:   from,
			Attempted: to,
			Allowed:   from.Allowed(),
		}
	}

	s.State = to
	now := o.now()
	switch to {
	case interview.StateReady:
		s.StartedAt = &now
	case interview.StateComplete:
		s.CompletedAt = &now
		o.endTrace(ctx, s.ID, map[string]any{
			"questions_completed":  len(s.Questions),
			"total_core_questions": s.TotalCoreQuestions,
			"total_followups":      s.TotalFollowups,
			"final_state":          "complete",
		})
	case interview.StateError:
		s.ErrorMessage = errMsg
		o.endTrace(ctx, s.ID, map[string]any{
			"final_state": "error",
			"error":       errMsg,
		})
	case interview.StateCancelled:
		o.endTrace(ctx, s.ID, map[string]any{
			"final_state": "cancelled",
		})
	}

	if err := o.save(ctx, s); err != nil {
		return err
	}

	o.obsMu.RLock()
	observers := append([]StateObserver(nil), o.stateObservers...)
	o.obsMu.RUnlock()
	for _, fn := range observers {
		o.safeCall(ctx, "state_change", func() error { return fn(ctx, s, from, to) })
	}

	o.log.Info(ctx, "state transition",
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return nil
}

func (o *Orchestrator) startTrace(ctx context.Context, id string, metadata map[string]any) {
	o.safeCall(ctx, "trace_start", func() error {
		o.tracer.StartTrace(ctx, id, metadata)
		return nil
	})
}

func (o *Orchestrator) endTrace(ctx context.Context, id string, metadata map[string]any) {
	o.safeCall(ctx, "trace_end", func() error {
		o.tracer.EndTrace(ctx, id, metadata)
		return nil
	})
}
