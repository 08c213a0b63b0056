package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/dataready/internal/catalog"
	"github.com/abhisek/dataready/internal/interview"
)

// ErrNotFound is returned when a session id has no stored snapshot.
var ErrNotFound = errors.New("not found")

// SessionSummary is the listing view of a stored session.
type SessionSummary struct {
	ID             string          `json:"session_id"`
	State          interview.State `json:"state"`
	TargetRole     catalog.Role    `json:"target_role"`
	Mode           interview.Mode  `json:"mode"`
	QuestionsAsked int             `json:"questions_asked"`
	RunningScore   float64         `json:"running_score"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func summarize(s *interview.Session, updated time.Time) SessionSummary {
	return SessionSummary{
		ID:             s.ID,
		State:          s.State,
		TargetRole:     s.Setup.TargetRole,
		Mode:           s.Setup.Mode,
		QuestionsAsked: len(s.Questions),
		RunningScore:   s.RunningScore,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      updated,
	}
}

// ListOpts filters session listings.
type ListOpts struct {
	Limit int             // max results (0 = unlimited)
	State interview.State // empty = any state
}

// SessionRepo persists whole-session snapshots.
type SessionRepo interface {
	// Save upserts the snapshot of s.
	Save(ctx context.Context, s *interview.Session) error

	// Get returns a copy of the stored session or ErrNotFound.
	Get(ctx context.Context, id string) (*interview.Session, error)

	// List returns summaries, newest first.
	List(ctx context.Context, opts ListOpts) ([]SessionSummary, error)

	Delete(ctx context.Context, id string) error
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int    // max results (0 = unlimited)
	After     int64  // sequence > After
	Before    int64  // sequence < Before
	Purpose   string // exact match when set
	SessionID string // exact match when set
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	SessionID    string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM calls by purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int
}

// ModelUsage aggregates LLM calls by model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// TransitionEventData records one state machine transition.
type TransitionEventData struct {
	SessionID string
	From      interview.State
	To        interview.State
}

// TransitionEvent is a stored transition.
type TransitionEvent struct {
	ID        int64
	Timestamp time.Time
	TransitionEventData
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	AppendTransition(ctx context.Context, data TransitionEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)
	// GetLLMEvent returns nil when id does not exist.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)

	// Transitions returns a session's transitions in order.
	Transitions(ctx context.Context, sessionID string) ([]TransitionEvent, error)
}
