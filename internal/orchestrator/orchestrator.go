// Package orchestrator drives interview sessions through the state machine:
// asking questions, capturing answers, evaluating them and deciding what to
// ask next.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/dataready/internal/evaluation"
	"github.com/abhisek/dataready/internal/followup"
	"github.com/abhisek/dataready/internal/interview"
	"github.com/abhisek/dataready/internal/logging"
	"github.com/abhisek/dataready/internal/questiongen"
	"github.com/abhisek/dataready/internal/report"
	"github.com/abhisek/dataready/internal/speech"
	"github.com/abhisek/dataready/internal/store"
	"github.com/abhisek/dataready/internal/tracing"
)

// Collaborator names used in logs and fallback metrics.
const (
	CollaboratorQuestions   = "question_generator"
	CollaboratorEvaluator   = "evaluator"
	CollaboratorFollowup    = "followup_decider"
	CollaboratorTranscriber = "transcriber"
	CollaboratorSynthesizer = "synthesizer"
)

// SessionStore is the orchestrator's persistence dependency. Get and Save
// exchange copies; store.ErrNotFound marks a missing id.
type SessionStore interface {
	Get(ctx context.Context, id string) (*interview.Session, error)
	Save(ctx context.Context, s *interview.Session) error
	List(ctx context.Context, opts store.ListOpts) ([]store.SessionSummary, error)
}

// ReportGenerator builds the final report from a completed session.
type ReportGenerator interface {
	Generate(ctx context.Context, s *interview.Session) (*report.Report, error)
}

// FallbackRecorder is told whenever a collaborator fails and its fallback
// is used instead.
type FallbackRecorder interface {
	RecordFallback(collaborator string)
}

// Observers receive the live session and must treat it as read-only.
// Returned errors and panics are logged and swallowed.
type (
	StateObserver      func(ctx context.Context, s *interview.Session, from, to interview.State) error
	QuestionObserver   func(ctx context.Context, s *interview.Session, q *interview.QuestionResponse) error
	EvaluationObserver func(ctx context.Context, s *interview.Session, ev *interview.ResponseEvaluation) error
)

// tracerContext is implemented by tracers that can parent spans under the
// session's trace.
type tracerContext interface {
	ContextFor(ctx context.Context, sessionID string) context.Context
}

// Options wires collaborators and policy knobs. Nil collaborators fall back
// to the deterministic built-ins; nil speech disables audio.
type Options struct {
	Questions         questiongen.Generator
	FallbackQuestions *questiongen.Fallback
	Evaluator         evaluation.Evaluator
	Decider           followup.Decider
	Transcriber       speech.Transcriber
	Synthesizer       speech.Synthesizer
	Reports           ReportGenerator
	Tracer            tracing.Tracer
	Fallbacks         FallbackRecorder
	Logger            *logging.Logger

	// MaxFollowupsPerQuestion caps follow-ups per core question. Zero
	// leaves only the global budget of twice max_questions.
	MaxFollowupsPerQuestion int
	Voice                   string
	Language                string
}

// Orchestrator is the interview flow controller. It is safe for concurrent
// use; operations on one session are serialized.
type Orchestrator struct {
	store SessionStore

	questions   questiongen.Generator
	fallbackQ   *questiongen.Fallback
	evaluator   evaluation.Evaluator
	decider     followup.Decider
	transcriber speech.Transcriber
	synthesizer speech.Synthesizer
	reports     ReportGenerator
	tracer      tracing.Tracer
	fallbacks   FallbackRecorder
	log         *logging.Logger

	maxFollowupsPerQuestion int
	voice                   string
	language                string

	now   func() time.Time
	newID func() string

	lockMu sync.Mutex
	locks  map[string]*sessionLock

	obsMu               sync.RWMutex
	stateObservers      []StateObserver
	questionObservers   []QuestionObserver
	evaluationObservers []EvaluationObserver
}

// New creates an orchestrator over st.
func New(st SessionStore, opts Options) *Orchestrator {
	o := &Orchestrator{
		store:                   st,
		questions:               opts.Questions,
		fallbackQ:               opts.FallbackQuestions,
		evaluator:               opts.Evaluator,
		decider:                 opts.Decider,
		transcriber:             opts.Transcriber,
		synthesizer:             opts.Synthesizer,
		reports:                 opts.Reports,
		tracer:                  opts.Tracer,
		fallbacks:               opts.Fallbacks,
		log:                     opts.Logger,
		maxFollowupsPerQuestion: opts.MaxFollowupsPerQuestion,
		voice:                   opts.Voice,
		language:                opts.Language,
		now:                     time.Now,
		newID:                   uuid.NewString,
		locks:                   make(map[string]*sessionLock),
	}
	if o.log == nil {
		o.log = logging.NewNop()
	}
	o.log = o.log.Named("orchestrator")
	if o.fallbackQ == nil {
		o.fallbackQ = questiongen.NewFallback(0)
	}
	if o.evaluator == nil {
		o.evaluator = evaluation.NewHeuristic()
	}
	if o.decider == nil {
		o.decider = followup.Fallback{}
	}
	if o.reports == nil {
		o.reports = report.NewGenerator(opts.Logger)
	}
	if o.tracer == nil {
		o.tracer = tracing.Noop{}
	}
	if o.language == "" {
		o.language = "en"
	}
	return o
}

// OnStateChange registers fn for every successful transition.
func (o *Orchestrator) OnStateChange(fn StateObserver) {
	o.obsMu.Lock()
	defer o.obsMu.Unlock()
	o.stateObservers = append(o.stateObservers, fn)
}

// OnQuestion registers fn for every delivered question, follow-ups included.
func (o *Orchestrator) OnQuestion(fn QuestionObserver) {
	o.obsMu.Lock()
	defer o.obsMu.Unlock()
	o.questionObservers = append(o.questionObservers, fn)
}

// OnEvaluation registers fn for every evaluated answer.
func (o *Orchestrator) OnEvaluation(fn EvaluationObserver) {
	o.obsMu.Lock()
	defer o.obsMu.Unlock()
	o.evaluationObservers = append(o.evaluationObservers, fn)
}

// sessionLock is a per-session mutex shared by every caller holding or
// waiting for it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// lock serializes operations on one session and returns the unlock func.
// The entry is removed once no caller holds or waits for it.
func (o *Orchestrator) lock(id string) func() {
	o.lockMu.Lock()
	l, ok := o.locks[id]
	if !ok {
		l = &sessionLock{}
		o.locks[id] = l
	}
	l.refs++
	o.lockMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		o.lockMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(o.locks, id)
		}
		o.lockMu.Unlock()
	}
}

// sessionContext tags ctx with the session id and, when available, the
// session's trace.
func (o *Orchestrator) sessionContext(ctx context.Context, id string) context.Context {
	ctx = logging.WithSessionID(ctx, id)
	if tc, ok := o.tracer.(tracerContext); ok {
		ctx = tc.ContextFor(ctx, id)
	}
	return ctx
}

func (o *Orchestrator) load(ctx context.Context, id string) (*interview.Session, error) {
	s, err := o.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &interview.UnknownSessionError{SessionID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return s, nil
}

func (o *Orchestrator) save(ctx context.Context, s *interview.Session) error {
	if err := o.store.Save(ctx, s); err != nil {
		return fmt.Errorf("persist session %s: %w", s.ID, err)
	}
	return nil
}

func (o *Orchestrator) recordFallback(ctx context.Context, collaborator string, err error) {
	o.log.Warn(ctx, "collaborator failed, using fallback",
		zap.String("collaborator", collaborator),
		zap.Error(err),
	)
	if o.fallbacks != nil {
		o.fallbacks.RecordFallback(collaborator)
	}
}

// safeCall runs an observer or tracer hook, logging its error or panic.
func (o *Orchestrator) safeCall(ctx context.Context, hook string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error(ctx, "observer panicked",
				zap.String("hook", hook),
				zap.Any("panic", r),
			)
		}
	}()
	if err := fn(); err != nil {
		o.log.Error(ctx, "observer failed",
			zap.String("hook", hook),
			zap.Error(err),
		)
	}
}

func (o *Orchestrator) notifyQuestion(ctx context.Context, s *interview.Session, q *interview.QuestionResponse) {
	o.obsMu.RLock()
	observers := append([]QuestionObserver(nil), o.questionObservers...)
	o.obsMu.RUnlock()
	for _, fn := range observers {
		o.safeCall(ctx, "question", func() error { return fn(ctx, s, q) })
	}
}

func (o *Orchestrator) notifyEvaluation(ctx context.Context, s *interview.Session, ev *interview.ResponseEvaluation) {
	o.obsMu.RLock()
	observers := append([]EvaluationObserver(nil), o.evaluationObservers...)
	o.obsMu.RUnlock()
	for _, fn := range observers {
		o.safeCall(ctx, "evaluation", func() error { return fn(ctx, s, ev) })
	}
}
