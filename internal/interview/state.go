// Package interview holds the interview session model, its state machine
// table and the adaptation rules applied between questions.
package interview

// State is a node in the interview lifecycle.
type State string

const (
	StateSetup            State = "setup"
	StateReady            State = "ready"
	StateAsking           State = "asking"
	StateListening        State = "listening"
	StateProcessing       State = "processing"
	StateEvaluating       State = "evaluating"
	StateDeciding         State = "deciding"
	StateComplete         State = "complete"
	StateGeneratingReport State = "generating_report"
	StateFinished         State = "finished"
	StatePaused           State = "paused"
	StateError            State = "error"
	StateCancelled        State = "cancelled"
)

// COMPLETE is reachable from nearly every active state so a candidate can
// stop early.
var transitions = map[State][]State{
	StateSetup:            {StateReady, StateCancelled},
	StateReady:            {StateAsking, StateCancelled, StateComplete},
	StateAsking:           {StateListening, StatePaused, StateError, StateComplete},
	StateListening:        {StateProcessing, StatePaused, StateError, StateComplete},
	StateProcessing:       {StateEvaluating, StateError, StateComplete},
	StateEvaluating:       {StateDeciding, StateError, StateComplete},
	StateDeciding:         {StateAsking, StateComplete, StateError},
	StateComplete:         {StateGeneratingReport},
	StateGeneratingReport: {StateFinished, StateError},
	StatePaused:           {StateAsking, StateListening, StateCancelled, StateComplete},
	StateError:            {StateCancelled},
	StateFinished:         nil,
	StateCancelled:        nil,
}

// AllStates returns every state in lifecycle order.
func AllStates() []State {
	return []State{
		StateSetup, StateReady, StateAsking, StateListening, StateProcessing,
		StateEvaluating, StateDeciding, StateComplete, StateGeneratingReport,
		StateFinished, StatePaused, StateError, StateCancelled,
	}
}

// Allowed returns the states reachable from s in one step.
func (s State) Allowed() []State {
	next := transitions[s]
	out := make([]State, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from → to is a legal step.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions.
func (s State) IsTerminal() bool {
	return s == StateFinished || s == StateCancelled
}

// IsActive reports whether an interview in state s is between start and
// completion.
func (s State) IsActive() bool {
	switch s {
	case StateReady, StateAsking, StateListening, StateProcessing,
		StateEvaluating, StateDeciding, StatePaused:
		return true
	}
	return false
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	_, ok := transitions[s]
	return ok
}
