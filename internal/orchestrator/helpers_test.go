package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/dataready/internal/catalog"
	"github.com/abhisek/dataready/internal/interview"
	"github.com/abhisek/dataready/internal/logging"
	"github.com/abhisek/dataready/internal/questiongen"
	"github.com/abhisek/dataready/internal/speech"
	"github.com/abhisek/dataready/internal/store"
)

var errDown = errors.New("collaborator down")

func seniorSetup(mode interview.Mode) interview.Setup {
	return interview.Setup{
		YearsOfExperience: 6,
		TargetRole:        catalog.RoleSenior,
		CloudPreference:   catalog.CloudAWS,
		Mode:              mode,
		MaxQuestions:      5,
	}
}

func uniform(v float64) interview.Scores {
	return interview.Scores{
		TechnicalCorrectness: v, DepthOfUnderstanding: v, PracticalExperience: v,
		CommunicationClarity: v, Confidence: v,
	}
}

// stubEvaluator returns fn's evaluation, or err when set.
type stubEvaluator struct {
	fn    func(q *interview.QuestionResponse) *interview.ResponseEvaluation
	err   error
	mu    sync.Mutex
	calls int
}

func (e *stubEvaluator) Evaluate(_ context.Context, q *interview.QuestionResponse, transcript string, _ interview.Context) (*interview.ResponseEvaluation, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	ev := e.fn(q)
	ev.Transcript = transcript
	return ev, nil
}

func strong(q *interview.QuestionResponse) *interview.ResponseEvaluation {
	return &interview.ResponseEvaluation{
		QuestionID: q.QuestionID, SkillID: q.SkillID,
		Scores: uniform(8), DifficultyDelta: 1,
	}
}

func steady(q *interview.QuestionResponse) *interview.ResponseEvaluation {
	return &interview.ResponseEvaluation{
		QuestionID: q.QuestionID, SkillID: q.SkillID,
		Scores: uniform(6.5),
	}
}

func weak(q *interview.QuestionResponse) *interview.ResponseEvaluation {
	return &interview.ResponseEvaluation{
		QuestionID: q.QuestionID, SkillID: q.SkillID,
		Scores: uniform(4.5), NeedsFollowup: true,
		FollowupReason: "Response could use more depth", DifficultyDelta: -1,
	}
}

// stubGenerator serves numbered questions or fails.
type stubGenerator struct {
	err   error
	blank bool
	calls int
}

func (g *stubGenerator) Generate(_ context.Context, ictx interview.Context) (*interview.Question, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	if g.blank {
		return &interview.Question{ID: fmt.Sprintf("q%d", g.calls), Text: "  "}, nil
	}
	return &interview.Question{
		ID:              fmt.Sprintf("q%d", g.calls),
		Text:            fmt.Sprintf("Design ingestion variant v%02d for the platform team", g.calls),
		SkillID:         ictx.FirstRemainingSkill("data_platform_design"),
		DifficultyScore: ictx.Session.Difficulty,
	}, nil
}

type stubDecider struct {
	decision *interview.FollowUpDecision
	err      error
}

func (d *stubDecider) Decide(context.Context, interview.Context, *interview.ResponseEvaluation) (*interview.FollowUpDecision, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.decision, nil
}

type stubSpeech struct {
	text  string
	audio *speech.Audio
	err   error
}

func (s *stubSpeech) Transcribe(context.Context, []byte, string, string) (string, error) {
	return s.text, s.err
}

func (s *stubSpeech) Synthesize(context.Context, string, string) (*speech.Audio, error) {
	return s.audio, s.err
}

// recordingTracer captures trace calls.
type recordingTracer struct {
	mu     sync.Mutex
	starts []map[string]any
	ends   []map[string]any
}

func (r *recordingTracer) StartTrace(_ context.Context, _ string, md map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts = append(r.starts, md)
}

func (r *recordingTracer) EndTrace(_ context.Context, _ string, md map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ends = append(r.ends, md)
}

type fallbackCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (f *fallbackCounter) RecordFallback(c string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts == nil {
		f.counts = map[string]int{}
	}
	f.counts[c]++
}

type harness struct {
	o      *Orchestrator
	store  *store.Memory
	log    *logging.TestLogger
	tracer *recordingTracer
	fb     *fallbackCounter
}

// newHarness builds an orchestrator on an in-memory store with a fixed
// clock and seeded fallback questions. opts collaborators override the
// defaults.
func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		store:  store.NewMemory(),
		log:    logging.NewTestLogger(),
		tracer: &recordingTracer{},
		fb:     &fallbackCounter{},
	}
	opts.Logger = h.log.Logger
	opts.Tracer = h.tracer
	opts.Fallbacks = h.fb
	if opts.FallbackQuestions == nil {
		opts.FallbackQuestions = questiongen.NewFallback(7)
	}
	h.o = New(h.store, opts)

	clock := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	h.o.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	n := 0
	h.o.newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("sess-%d", n)
	}
	return h
}

func (h *harness) create(t *testing.T, setup interview.Setup) *interview.Session {
	t.Helper()
	s, err := h.o.CreateSession(context.Background(), setup)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return s
}

func (h *harness) session(t *testing.T, id string) *interview.Session {
	t.Helper()
	s, err := h.o.GetSession(context.Background(), id)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	return s
}

func (h *harness) start(t *testing.T, id string) *Action {
	t.Helper()
	a, err := h.o.StartInterview(context.Background(), id)
	if err != nil {
		t.Fatalf("StartInterview: %v", err)
	}
	return a
}

// lockCount returns how many per-session locks are currently tracked.
func (h *harness) lockCount() int {
	h.o.lockMu.Lock()
	defer h.o.lockMu.Unlock()
	return len(h.o.locks)
}

func (h *harness) answer(t *testing.T, id, text string) *Action {
	t.Helper()
	a, err := h.o.SubmitResponse(context.Background(), id, Response{Transcript: text})
	if err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}
	return a
}

// checkInvariants verifies the counters partition the question sequence.
func checkInvariants(t *testing.T, s *interview.Session) {
	t.Helper()
	core, follow := 0, 0
	for _, q := range s.Questions {
		if q.IsFollowup {
			follow++
		} else {
			core++
		}
	}
	if s.TotalCoreQuestions != core || s.TotalFollowups != follow {
		t.Errorf("counters core=%d followups=%d, sequence core=%d followups=%d",
			s.TotalCoreQuestions, s.TotalFollowups, core, follow)
	}
	if len(s.Questions) > 0 && s.CurrentQuestionIndex != len(s.Questions)-1 {
		t.Errorf("current index %d, want %d", s.CurrentQuestionIndex, len(s.Questions)-1)
	}
	if s.Difficulty < 1 || s.Difficulty > 10 {
		t.Errorf("difficulty %d out of range", s.Difficulty)
	}
}
