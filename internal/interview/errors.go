package interview

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is matching. The concrete error types below carry
// the details.
var (
	ErrUnknownSession       = errors.New("unknown session")
	ErrInvalidTransition    = errors.New("invalid state transition")
	ErrNoActiveQuestion     = errors.New("no active question")
	ErrInterviewNotComplete = errors.New("interview not complete")
	ErrInvalidSetup         = errors.New("invalid interview setup")
)

// UnknownSessionError indicates the session id is not in the store.
type UnknownSessionError struct {
	SessionID string
}

func (e *UnknownSessionError) Error() string {
	return fmt.Sprintf("session not found: %s", e.SessionID)
}

func (e *UnknownSessionError) Is(target error) bool { return target == ErrUnknownSession }

// InvalidTransitionError indicates a state change the table does not allow.
type InvalidTransitionError struct {
	Current   State
	Attempted State
	Allowed   []State
}

func (e *InvalidTransitionError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = string(s)
	}
	return fmt.Sprintf("invalid transition from %s to %s (allowed: [%s])",
		e.Current, e.Attempted, strings.Join(allowed, ", "))
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// NoActiveQuestionError indicates a response arrived with nothing asked.
type NoActiveQuestionError struct {
	SessionID string
}

func (e *NoActiveQuestionError) Error() string {
	return fmt.Sprintf("no active question in session %s", e.SessionID)
}

func (e *NoActiveQuestionError) Is(target error) bool { return target == ErrNoActiveQuestion }

// InterviewNotCompleteError indicates a report was requested too early.
type InterviewNotCompleteError struct {
	SessionID string
	State     State
}

func (e *InterviewNotCompleteError) Error() string {
	return fmt.Sprintf("interview %s must be complete to generate report (state: %s)", e.SessionID, e.State)
}

func (e *InterviewNotCompleteError) Is(target error) bool { return target == ErrInterviewNotComplete }

// SetupError indicates an interview setup failed validation.
type SetupError struct {
	Field   string
	Message string
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("invalid setup: %s - %s", e.Field, e.Message)
}

func (e *SetupError) Is(target error) bool { return target == ErrInvalidSetup }
