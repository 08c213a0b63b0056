package orchestrator

import (
	"context"
	"errors"
	"math"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zapcore"

	"github.com/abhisek/dataready/internal/followup"
	"github.com/abhisek/dataready/internal/interview"
	"github.com/abhisek/dataready/internal/metrics"
	"github.com/abhisek/dataready/internal/questiongen"
	"github.com/abhisek/dataready/internal/report"
	"github.com/abhisek/dataready/internal/speech"
	"github.com/abhisek/dataready/internal/store"
)

func TestCreateSession(t *testing.T) {
	h := newHarness(t, Options{})
	setup := seniorSetup(interview.ModeStructuredFollowup)
	setup.ExcludeSkills = []string{"spark_tuning"}

	s := h.create(t, setup)
	if s.ID != "sess-1" {
		t.Errorf("id = %q, want sess-1", s.ID)
	}
	if s.State != interview.StateSetup {
		t.Errorf("state = %s, want setup", s.State)
	}
	if s.Difficulty != 7 {
		t.Errorf("difficulty = %d, want senior base 7", s.Difficulty)
	}
	if s.HasSkill("spark_tuning") {
		t.Error("excluded skill spark_tuning is a score key")
	}
	if len(s.SkillScores) == 0 {
		t.Fatal("no skill keys seeded")
	}

	stored := h.session(t, s.ID)
	if !slices.Equal(stored.SkillIDs, s.SkillIDs) {
		t.Errorf("stored skill ids = %v, want %v", stored.SkillIDs, s.SkillIDs)
	}
}

func TestCreateSession_Defaults(t *testing.T) {
	h := newHarness(t, Options{})
	s := h.create(t, interview.Setup{YearsOfExperience: 1, TargetRole: "junior_data_engineer", CloudPreference: "gcp"})
	if s.Setup.Mode != interview.ModeStructuredFollowup {
		t.Errorf("mode = %s, want structured_followup", s.Setup.Mode)
	}
	if s.Setup.MaxQuestions != interview.DefaultMaxQuestions {
		t.Errorf("max questions = %d, want %d", s.Setup.MaxQuestions, interview.DefaultMaxQuestions)
	}
	if s.Difficulty != 3 {
		t.Errorf("difficulty = %d, want junior base 3", s.Difficulty)
	}
}

func TestCreateSession_InvalidSetup(t *testing.T) {
	h := newHarness(t, Options{})
	setup := seniorSetup(interview.ModeStructured)
	setup.MaxQuestions = 3

	_, err := h.o.CreateSession(context.Background(), setup)
	if !errors.Is(err, interview.ErrInvalidSetup) {
		t.Fatalf("err = %v, want invalid setup", err)
	}
	var serr *interview.SetupError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %T, want *SetupError", err)
	}
	if serr.Field != "max_questions" {
		t.Errorf("field = %q, want max_questions", serr.Field)
	}
}

func TestUnknownSession(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	_, err := h.o.StartInterview(ctx, "nope")
	if !errors.Is(err, interview.ErrUnknownSession) {
		t.Errorf("StartInterview: err = %v", err)
	}
	_, err = h.o.SubmitResponse(ctx, "nope", Response{Transcript: "x"})
	if !errors.Is(err, interview.ErrUnknownSession) {
		t.Errorf("SubmitResponse: err = %v", err)
	}
	_, err = h.o.Transition(ctx, "nope", interview.StateReady, "")
	if !errors.Is(err, interview.ErrUnknownSession) {
		t.Errorf("Transition: err = %v", err)
	}
	_, err = h.o.Status(ctx, "nope")
	if !errors.Is(err, interview.ErrUnknownSession) {
		t.Errorf("Status: err = %v", err)
	}
}

func TestTransition_Legality(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	s := h.create(t, seniorSetup(interview.ModeStructured))

	for _, from := range interview.AllStates() {
		for _, to := range interview.AllStates() {
			if interview.CanTransition(from, to) {
				continue
			}
			s.State = from
			if err := h.store.Save(ctx, s); err != nil {
				t.Fatalf("save: %v", err)
			}

			_, err := h.o.Transition(ctx, s.ID, to, "")
			if !errors.Is(err, interview.ErrInvalidTransition) {
				t.Fatalf("%s -> %s: err = %v, want invalid transition", from, to, err)
			}
			var terr *interview.InvalidTransitionError
			if !errors.As(err, &terr) {
				t.Fatalf("%s -> %s: err = %T", from, to, err)
			}
			if terr.Current != from || terr.Attempted != to || !slices.Equal(terr.Allowed, from.Allowed()) {
				t.Errorf("%s -> %s: error carries %s -> %s allowed %v", from, to, terr.Current, terr.Attempted, terr.Allowed)
			}

			if got := h.session(t, s.ID).State; got != from {
				t.Fatalf("%s -> %s: state changed to %s", from, to, got)
			}
		}
	}
}

func TestTransition_SideEffects(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	s := h.create(t, seniorSetup(interview.ModeStructured))

	var order []string
	h.o.OnStateChange(func(_ context.Context, _ *interview.Session, from, to interview.State) error {
		order = append(order, "first:"+string(from)+">"+string(to))
		return errors.New("observer broke")
	})
	h.o.OnStateChange(func(context.Context, *interview.Session, interview.State, interview.State) error {
		panic("observer exploded")
	})
	h.o.OnStateChange(func(_ context.Context, _ *interview.Session, _, to interview.State) error {
		order = append(order, "third:"+string(to))
		return nil
	})

	got, err := h.o.Transition(ctx, s.ID, interview.StateReady, "")
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if got.State != interview.StateReady || got.StartedAt == nil {
		t.Errorf("state = %s started = %v, want ready with start time", got.State, got.StartedAt)
	}
	if want := []string{"first:setup>ready", "third:ready"}; !slices.Equal(order, want) {
		t.Errorf("observer order = %v, want %v", order, want)
	}

	stored := h.session(t, s.ID)
	if stored.State != interview.StateReady || stored.StartedAt == nil {
		t.Errorf("stored state = %s started = %v", stored.State, stored.StartedAt)
	}

	h.log.AssertLogged(t, zapcore.ErrorLevel, "observer failed")
	h.log.AssertLogged(t, zapcore.ErrorLevel, "observer panicked")
	h.log.AssertLogged(t, zapcore.InfoLevel, "state transition")

	got, err = h.o.Transition(ctx, s.ID, interview.StateComplete, "")
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if got.CompletedAt == nil {
		t.Error("completed_at not stamped")
	}
	if len(h.tracer.ends) != 1 {
		t.Fatalf("trace ends = %d, want 1", len(h.tracer.ends))
	}
	if h.tracer.ends[0]["final_state"] != "complete" || h.tracer.ends[0]["questions_completed"] != 0 {
		t.Errorf("end trace metadata = %v", h.tracer.ends[0])
	}
}

func TestFailInterview(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	s := h.create(t, seniorSetup(interview.ModeStructured))
	h.start(t, s.ID)

	got, err := h.o.FailInterview(ctx, s.ID, "socket closed")
	if err != nil {
		t.Fatalf("FailInterview: %v", err)
	}
	if got.State != interview.StateError || got.ErrorMessage != "socket closed" {
		t.Errorf("state = %s message = %q", got.State, got.ErrorMessage)
	}
	if len(h.tracer.ends) != 1 {
		t.Fatalf("trace ends = %d, want 1", len(h.tracer.ends))
	}
	if h.tracer.ends[0]["final_state"] != "error" || h.tracer.ends[0]["error"] != "socket closed" {
		t.Errorf("end trace metadata = %v", h.tracer.ends[0])
	}

	st, err := h.o.Status(ctx, s.ID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.ErrorMessage != "socket closed" {
		t.Errorf("status error message = %q", st.ErrorMessage)
	}

	// ERROR only leads to CANCELLED.
	if _, err := h.o.EndInterview(ctx, s.ID, ""); !errors.Is(err, interview.ErrInvalidTransition) {
		t.Errorf("EndInterview from error: err = %v", err)
	}
	got, err = h.o.CancelInterview(ctx, s.ID)
	if err != nil {
		t.Fatalf("CancelInterview: %v", err)
	}
	if got.State != interview.StateCancelled || !got.State.IsTerminal() {
		t.Errorf("state = %s, want terminal cancelled", got.State)
	}
}

func TestHappyPath(t *testing.T) {
	gen := &stubGenerator{}
	eval := &stubEvaluator{fn: strong}
	h := newHarness(t, Options{Questions: gen, Evaluator: eval})
	s := h.create(t, seniorSetup(interview.ModeStructuredFollowup))

	a := h.start(t, s.ID)
	if a.Action != ActionQuestion || a.QuestionID != "q1" {
		t.Fatalf("start action = %s %s, want question q1", a.Action, a.QuestionID)
	}
	if a.QuestionNumber != 1 || a.TotalQuestions != 5 || a.Difficulty != 7 {
		t.Errorf("question %d/%d difficulty %d, want 1/5 at 7", a.QuestionNumber, a.TotalQuestions, a.Difficulty)
	}
	if a.Audio != nil {
		t.Error("audio without a synthesizer")
	}

	got := h.session(t, s.ID)
	if got.State != interview.StateListening || got.StartedAt == nil {
		t.Errorf("state = %s started = %v", got.State, got.StartedAt)
	}
	if len(h.tracer.starts) != 1 {
		t.Fatalf("trace starts = %d, want 1", len(h.tracer.starts))
	}
	if h.tracer.starts[0]["role"] != "senior_data_engineer" || h.tracer.starts[0]["max_questions"] != 5 {
		t.Errorf("start trace metadata = %v", h.tracer.starts[0])
	}

	answer := "I would use Kafka with partitioned topics and idempotent consumers."
	a = h.answer(t, s.ID, answer)
	if a.Action != ActionQuestion || a.QuestionNumber != 2 || a.Difficulty != 8 {
		t.Fatalf("next = %s #%d at %d, want question #2 at 8", a.Action, a.QuestionNumber, a.Difficulty)
	}

	got = h.session(t, s.ID)
	if got.Difficulty != 8 || !slices.Equal(got.DifficultyHistory, []int{8}) {
		t.Errorf("difficulty = %d history = %v", got.Difficulty, got.DifficultyHistory)
	}
	if math.Abs(got.RunningScore-8) > 1e-9 {
		t.Errorf("running score = %v, want 8", got.RunningScore)
	}

	first := got.Questions[0]
	if first.Evaluation == nil || !first.Answered() {
		t.Fatal("first question not evaluated")
	}
	if first.ResponseTranscript != answer {
		t.Errorf("transcript = %q", first.ResponseTranscript)
	}
	if scores := got.SkillScores[first.SkillID]; !slices.Equal(scores, []float64{8}) {
		t.Errorf("scores for %s = %v, want [8]", first.SkillID, scores)
	}
	if first.SkillID == got.Questions[1].SkillID {
		t.Errorf("second question repeats skill %s", first.SkillID)
	}
	checkInvariants(t, got)
}

func TestWeakAnswerTriggersFollowup(t *testing.T) {
	dec := &stubDecider{decision: &interview.FollowUpDecision{
		ShouldFollowup: true, Reason: "Dig into partitioning", Type: interview.FollowUpProbe,
		Question: "  How would you choose the partition key?  ",
	}}
	h := newHarness(t, Options{Questions: &stubGenerator{}, Evaluator: &stubEvaluator{fn: weak}, Decider: dec})
	s := h.create(t, seniorSetup(interview.ModeStructuredFollowup))

	first := h.start(t, s.ID)

	a := h.answer(t, s.ID, "We would shard it somehow.")
	if a.Action != ActionFollowup {
		t.Fatalf("action = %s, want followup", a.Action)
	}
	if a.QuestionText != "How would you choose the partition key?" {
		t.Errorf("text = %q", a.QuestionText)
	}
	if a.FollowupReason != "Dig into partitioning" {
		t.Errorf("reason = %q", a.FollowupReason)
	}
	if a.QuestionID != first.QuestionID+"_followup_1" {
		t.Errorf("id = %q", a.QuestionID)
	}

	got := h.session(t, s.ID)
	if got.State != interview.StateListening {
		t.Errorf("state = %s, want listening", got.State)
	}
	fq := got.CurrentQuestion()
	if !fq.IsFollowup || fq.ParentQuestionID != first.QuestionID {
		t.Errorf("follow-up = %+v, want child of %s", fq, first.QuestionID)
	}
	if fq.SkillID != got.Questions[0].SkillID {
		t.Errorf("skill = %q, want parent's %q", fq.SkillID, got.Questions[0].SkillID)
	}
	if got.CurrentQuestionFollowups != 1 {
		t.Errorf("current followups = %d, want 1", got.CurrentQuestionFollowups)
	}
	// Difficulty is not adapted on the follow-up branch.
	if got.Difficulty != 7 || len(got.DifficultyHistory) != 0 {
		t.Errorf("difficulty = %d history = %v, want unchanged", got.Difficulty, got.DifficultyHistory)
	}
	// Conversation buffer holds question, answer, follow-up.
	if len(got.ConversationContext) != 3 {
		t.Errorf("context = %d turns, want 3", len(got.ConversationContext))
	}
	checkInvariants(t, got)
}

func TestMalformedFollowupTextGuarded(t *testing.T) {
	for _, text := range []string{`{"foo": 1}`, ` [1, 2]`} {
		dec := &stubDecider{decision: &interview.FollowUpDecision{ShouldFollowup: true, Reason: "r", Question: text}}
		h := newHarness(t, Options{Questions: &stubGenerator{}, Evaluator: &stubEvaluator{fn: weak}, Decider: dec})
		s := h.create(t, seniorSetup(interview.ModeStructuredFollowup))
		h.start(t, s.ID)

		a := h.answer(t, s.ID, "not sure")
		if a.Action != ActionFollowup {
			t.Fatalf("%q: action = %s, want followup", text, a.Action)
		}
		if a.QuestionText != followup.ProbeQuestion {
			t.Errorf("%q: delivered %q, want the generic example request", text, a.QuestionText)
		}
	}
}

func TestFollowupDefaultsToElaborate(t *testing.T) {
	dec := &stubDecider{decision: &interview.FollowUpDecision{ShouldFollowup: true, Reason: "r"}}
	h := newHarness(t, Options{Questions: &stubGenerator{}, Evaluator: &stubEvaluator{fn: weak}, Decider: dec})
	s := h.create(t, seniorSetup(interview.ModeStructuredFollowup))
	h.start(t, s.ID)

	a := h.answer(t, s.ID, "not sure")
	if a.QuestionText != "Can you elaborate on that?" {
		t.Errorf("text = %q", a.QuestionText)
	}
}

func TestStructuredModeNeverFollowsUp(t *testing.T) {
	h := newHarness(t, Options{Questions: &stubGenerator{}, Evaluator: &stubEvaluator{fn: weak}})
	s := h.create(t, seniorSetup(interview.ModeStructured))
	h.start(t, s.ID)

	a := h.answer(t, s.ID, "no idea")
	if a.Action != ActionQuestion {
		t.Fatalf("action = %s, want question", a.Action)
	}
	got := h.session(t, s.ID)
	if got.Difficulty != 6 || got.TotalFollowups != 0 {
		t.Errorf("difficulty = %d followups = %d, want 6 and 0", got.Difficulty, got.TotalFollowups)
	}
}

func TestCompletionAndReport(t *testing.T) {
	h := newHarness(t, Options{Questions: &stubGenerator{}, Evaluator: &stubEvaluator{fn: steady}})
	ctx := context.Background()
	s := h.create(t, seniorSetup(interview.ModeStructuredFollowup))
	h.start(t, s.ID)

	if _, err := h.o.GenerateReport(ctx, s.ID); !errors.Is(err, interview.ErrInterviewNotComplete) {
		t.Fatalf("early report: err = %v, want not complete", err)
	}

	var a *Action
	for i := 0; i < 5; i++ {
		a = h.answer(t, s.ID, "A reasonable answer about data pipelines.")
	}
	if a.Action != ActionComplete {
		t.Fatalf("action after 5 answers = %s, want complete", a.Action)
	}

	got := h.session(t, s.ID)
	if got.State != interview.StateComplete || got.TotalCoreQuestions != 5 || got.CompletedAt == nil {
		t.Errorf("state = %s core = %d completed = %v", got.State, got.TotalCoreQuestions, got.CompletedAt)
	}
	if !got.ShouldEnd() {
		t.Error("ShouldEnd = false after completion")
	}
	checkInvariants(t, got)

	if _, err := h.o.SubmitResponse(ctx, s.ID, Response{Transcript: "late"}); !errors.Is(err, interview.ErrInvalidTransition) {
		t.Errorf("late answer: err = %v", err)
	}

	r, err := h.o.GenerateReport(ctx, s.ID)
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if r.SessionID != s.ID {
		t.Errorf("report session = %q", r.SessionID)
	}
	if math.Abs(r.OverallScore-65) > 1e-9 {
		t.Errorf("overall = %v, want 65", r.OverallScore)
	}
	if len(r.QuestionFeedback) != 5 {
		t.Errorf("question feedback = %d entries, want 5", len(r.QuestionFeedback))
	}

	got = h.session(t, s.ID)
	if got.State != interview.StateFinished || len(got.Report) == 0 || got.ReportGeneratedAt == nil {
		t.Errorf("state = %s report stored = %v", got.State, len(got.Report) > 0)
	}

	again, err := h.o.GenerateReport(ctx, s.ID)
	if err != nil {
		t.Fatalf("second GenerateReport: %v", err)
	}
	if again.OverallScore != r.OverallScore || again.Verdict != r.Verdict {
		t.Errorf("cached report differs: %v/%s vs %v/%s", again.OverallScore, again.Verdict, r.OverallScore, r.Verdict)
	}
}

type failingReports struct{}

func (failingReports) Generate(context.Context, *interview.Session) (*report.Report, error) {
	return nil, errDown
}

func TestGenerateReport_FailureMovesToError(t *testing.T) {
	h := newHarness(t, Options{Reports: failingReports{}})
	ctx := context.Background()
	s := h.create(t, seniorSetup(interview.ModeStructured))
	h.start(t, s.ID)
	if _, err := h.o.EndInterview(ctx, s.ID, "done"); err != nil {
		t.Fatalf("EndInterview: %v", err)
	}

	if _, err := h.o.GenerateReport(ctx, s.ID); !errors.Is(err, errDown) {
		t.Fatalf("err = %v, want collaborator error", err)
	}
	got := h.session(t, s.ID)
	if got.State != interview.StateError {
		t.Errorf("state = %s, want error", got.State)
	}
	if !strings.Contains(got.ErrorMessage, "collaborator down") {
		t.Errorf("error message = %q", got.ErrorMessage)
	}
}

func TestQuestionGeneratorOutage(t *testing.T) {
	gen := &stubGenerator{err: errDown}
	h := newHarness(t, Options{Questions: gen, Evaluator: &stubEvaluator{fn: steady}})
	s := h.create(t, seniorSetup(interview.ModeStructured))

	a := h.start(t, s.ID)
	if a.Action != ActionQuestion {
		t.Fatalf("action = %s, want question", a.Action)
	}

	var poolTexts []string
	for _, e := range questiongen.Pool(s.Setup.TargetRole, s.Setup.CloudPreference) {
		poolTexts = append(poolTexts, e.Text)
	}
	if !slices.Contains(poolTexts, a.QuestionText) {
		t.Errorf("question %q is not from the fallback pool", a.QuestionText)
	}

	for i := 0; i < 4; i++ {
		h.answer(t, s.ID, "answer")
	}
	got := h.session(t, s.ID)
	seen := map[string]bool{}
	for _, q := range got.Questions {
		key := interview.Normalize(q.QuestionText)
		if seen[key] {
			t.Errorf("repeated %q", q.QuestionText)
		}
		seen[key] = true
	}
	if gen.calls != 5 {
		t.Errorf("generator calls = %d, want 5", gen.calls)
	}
	if got := h.fb.counts[CollaboratorQuestions]; got != 5 {
		t.Errorf("question fallbacks = %d, want 5", got)
	}
	h.log.AssertLogged(t, zapcore.WarnLevel, "collaborator failed")
}

func TestBlankGeneratedQuestionFallsBack(t *testing.T) {
	gen := &stubGenerator{blank: true}
	h := newHarness(t, Options{Questions: gen, Evaluator: &stubEvaluator{fn: steady}})
	s := h.create(t, seniorSetup(interview.ModeStructured))

	a := h.start(t, s.ID)
	if a.Action != ActionQuestion {
		t.Fatalf("action = %s, want question", a.Action)
	}
	if strings.TrimSpace(a.QuestionText) == "" {
		t.Fatal("blank question delivered")
	}
	if got := h.fb.counts[CollaboratorQuestions]; got != 1 {
		t.Errorf("question fallbacks = %d, want 1", got)
	}
}

func TestEvaluatorAndDeciderOutage(t *testing.T) {
	eval := &stubEvaluator{err: errDown}
	dec := &stubDecider{err: errDown}
	h := newHarness(t, Options{Questions: &stubGenerator{}, Evaluator: eval, Decider: dec})
	s := h.create(t, seniorSetup(interview.ModeStructuredFollowup))
	h.start(t, s.ID)

	// The heuristic scores a terse hedged answer below 6, so a follow-up
	// comes from the banded fallback.
	a := h.answer(t, s.ID, "I think maybe we use Spark.")
	if a.Action != ActionFollowup {
		t.Fatalf("action = %s, want followup", a.Action)
	}
	if a.FollowupReason != "Response could use more depth" {
		t.Errorf("reason = %q", a.FollowupReason)
	}
	if h.fb.counts[CollaboratorEvaluator] != 1 || h.fb.counts[CollaboratorFollowup] != 1 {
		t.Errorf("fallbacks = %v", h.fb.counts)
	}

	got := h.session(t, s.ID)
	if src := got.Questions[0].Evaluation.Source; src != interview.SourceHeuristic {
		t.Errorf("evaluation source = %s, want heuristic", src)
	}
}

func TestFollowupGlobalCap(t *testing.T) {
	h := newHarness(t, Options{Questions: &stubGenerator{}, Evaluator: &stubEvaluator{fn: weak}})
	s := h.create(t, seniorSetup(interview.ModeStructuredFollowup))
	h.start(t, s.ID)

	budget := s.Setup.MaxQuestions * interview.FollowupBudgetFactor
	for i := 0; i < budget; i++ {
		if a := h.answer(t, s.ID, "unsure"); a.Action != ActionFollowup {
			t.Fatalf("answer %d: action = %s, want followup", i, a.Action)
		}
	}
	for i := 0; i < 3; i++ {
		if a := h.answer(t, s.ID, "unsure"); a.Action != ActionQuestion {
			t.Errorf("answer past budget: action = %s, want question", a.Action)
		}
	}
	got := h.session(t, s.ID)
	if got.TotalFollowups != budget {
		t.Errorf("followups = %d, want %d", got.TotalFollowups, budget)
	}
	checkInvariants(t, got)
}

func TestFollowupPerQuestionCap(t *testing.T) {
	h := newHarness(t, Options{
		Questions:               &stubGenerator{},
		Evaluator:               &stubEvaluator{fn: weak},
		MaxFollowupsPerQuestion: 1,
	})
	s := h.create(t, seniorSetup(interview.ModeStructuredFollowup))
	h.start(t, s.ID)

	var kinds []ActionKind
	for i := 0; i < 4; i++ {
		kinds = append(kinds, h.answer(t, s.ID, "unsure").Action)
	}
	want := []ActionKind{ActionFollowup, ActionQuestion, ActionFollowup, ActionQuestion}
	if !slices.Equal(kinds, want) {
		t.Errorf("actions = %v, want %v", kinds, want)
	}
}

func TestSubmitResponse_NoActiveQuestion(t *testing.T) {
	h := newHarness(t, Options{})
	s := h.create(t, seniorSetup(interview.ModeStructured))

	_, err := h.o.SubmitResponse(context.Background(), s.ID, Response{Transcript: "hello"})
	if !errors.Is(err, interview.ErrNoActiveQuestion) {
		t.Errorf("err = %v, want no active question", err)
	}
}

func TestSubmitResponse_Audio(t *testing.T) {
	tests := []struct {
		name        string
		transcriber speech.Transcriber
		want        string
		fallbacks   int
	}{
		{"no transcriber", nil, TranscriptionUnavailable, 0},
		{"transcriber down", &stubSpeech{err: errDown}, TranscriptionUnavailable, 1},
		{"transcribed", &stubSpeech{text: "spoken answer about CDC"}, "spoken answer about CDC", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Options{
				Questions:   &stubGenerator{},
				Evaluator:   &stubEvaluator{fn: steady},
				Transcriber: tt.transcriber,
			})
			s := h.create(t, seniorSetup(interview.ModeStructured))
			h.start(t, s.ID)

			_, err := h.o.SubmitResponse(context.Background(), s.ID, Response{Audio: []byte("RIFF"), AudioFormat: "wav"})
			if err != nil {
				t.Fatalf("SubmitResponse: %v", err)
			}
			got := h.session(t, s.ID)
			if got.Questions[0].ResponseTranscript != tt.want {
				t.Errorf("transcript = %q, want %q", got.Questions[0].ResponseTranscript, tt.want)
			}
			if n := h.fb.counts[CollaboratorTranscriber]; n != tt.fallbacks {
				t.Errorf("transcriber fallbacks = %d, want %d", n, tt.fallbacks)
			}
		})
	}
}

func TestSynthesisIsBestEffort(t *testing.T) {
	h := newHarness(t, Options{Questions: &stubGenerator{}, Synthesizer: &stubSpeech{err: errDown}})
	s := h.create(t, seniorSetup(interview.ModeStructured))
	a := h.start(t, s.ID)
	if a.Action != ActionQuestion || a.Audio != nil {
		t.Errorf("action = %s audio = %v, want question without audio", a.Action, a.Audio)
	}
	if n := h.fb.counts[CollaboratorSynthesizer]; n != 1 {
		t.Errorf("synthesizer fallbacks = %d, want 1", n)
	}

	audio := &speech.Audio{Data: []byte("ID3"), Format: "mp3", URL: "/audio/q1.mp3"}
	h = newHarness(t, Options{Questions: &stubGenerator{}, Synthesizer: &stubSpeech{audio: audio}})
	s = h.create(t, seniorSetup(interview.ModeStructured))
	a = h.start(t, s.ID)
	if a.Audio != audio {
		t.Errorf("audio = %v, want synthesized audio", a.Audio)
	}
	if url := h.session(t, s.ID).Questions[0].AudioURL; url != "/audio/q1.mp3" {
		t.Errorf("audio url = %q", url)
	}
}

func TestPauseResume(t *testing.T) {
	h := newHarness(t, Options{Questions: &stubGenerator{}, Evaluator: &stubEvaluator{fn: steady}})
	ctx := context.Background()
	s := h.create(t, seniorSetup(interview.ModeStructured))

	if _, err := h.o.ResumeInterview(ctx, s.ID); !errors.Is(err, interview.ErrInvalidTransition) {
		t.Errorf("resume before start: err = %v", err)
	}

	first := h.start(t, s.ID)

	paused, err := h.o.PauseInterview(ctx, s.ID)
	if err != nil {
		t.Fatalf("PauseInterview: %v", err)
	}
	if paused.State != interview.StatePaused {
		t.Errorf("state = %s, want paused", paused.State)
	}

	if _, err := h.o.PauseInterview(ctx, s.ID); !errors.Is(err, interview.ErrInvalidTransition) {
		t.Errorf("double pause: err = %v", err)
	}
	if _, err := h.o.SubmitResponse(ctx, s.ID, Response{Transcript: "while paused"}); !errors.Is(err, interview.ErrInvalidTransition) {
		t.Errorf("answer while paused: err = %v", err)
	}

	a, err := h.o.ResumeInterview(ctx, s.ID)
	if err != nil {
		t.Fatalf("ResumeInterview: %v", err)
	}
	if a.Action != ActionResumed || a.QuestionID != first.QuestionID {
		t.Errorf("resume = %s %s, want resumed %s", a.Action, a.QuestionID, first.QuestionID)
	}
	if st := h.session(t, s.ID).State; st != interview.StateListening {
		t.Errorf("state = %s, want listening", st)
	}

	if a := h.answer(t, s.ID, "answer"); a.Action != ActionQuestion {
		t.Errorf("action after resume = %s, want question", a.Action)
	}
}

func TestResumeWithoutPendingQuestion(t *testing.T) {
	h := newHarness(t, Options{Questions: &stubGenerator{}, Evaluator: &stubEvaluator{fn: steady}})
	ctx := context.Background()
	s := h.create(t, seniorSetup(interview.ModeStructured))
	h.start(t, s.ID)

	// Simulate a pause that landed after the answer was recorded.
	got := h.session(t, s.ID)
	now := got.Questions[0].AskedAt
	got.Questions[0].ResponseCompletedAt = &now
	got.State = interview.StatePaused
	if err := h.store.Save(ctx, got); err != nil {
		t.Fatalf("save: %v", err)
	}

	a, err := h.o.ResumeInterview(ctx, s.ID)
	if err != nil {
		t.Fatalf("ResumeInterview: %v", err)
	}
	if a.Action != ActionQuestion || a.QuestionNumber != 2 {
		t.Errorf("resume = %s #%d, want question #2", a.Action, a.QuestionNumber)
	}
}

func TestEndInterview(t *testing.T) {
	h := newHarness(t, Options{Questions: &stubGenerator{}, Evaluator: &stubEvaluator{fn: steady}})
	ctx := context.Background()
	s := h.create(t, seniorSetup(interview.ModeStructured))
	h.start(t, s.ID)
	h.answer(t, s.ID, "answer")

	a, err := h.o.EndInterview(ctx, s.ID, "")
	if err != nil {
		t.Fatalf("EndInterview: %v", err)
	}
	if a.Action != ActionEnded || a.Reason != "user_ended" || a.QuestionsCompleted != 2 {
		t.Errorf("ended = %s %q %d, want ended user_ended 2", a.Action, a.Reason, a.QuestionsCompleted)
	}

	got := h.session(t, s.ID)
	if got.State != interview.StateComplete || got.CompletedAt == nil {
		t.Fatalf("state = %s completed = %v", got.State, got.CompletedAt)
	}
	want := got.CompletedAt.Sub(*got.StartedAt).Seconds()
	if d := got.DurationSeconds(got.CompletedAt.Add(time.Hour)); d != want {
		t.Errorf("duration = %v, want %v frozen at completion", d, want)
	}

	if _, err := h.o.EndInterview(ctx, s.ID, ""); !errors.Is(err, interview.ErrInvalidTransition) {
		t.Errorf("second end: err = %v", err)
	}
}

func TestEndInterview_CountsFollowups(t *testing.T) {
	h := newHarness(t, Options{Questions: &stubGenerator{}, Evaluator: &stubEvaluator{fn: weak}})
	ctx := context.Background()
	s := h.create(t, seniorSetup(interview.ModeStructuredFollowup))
	h.start(t, s.ID)
	if a := h.answer(t, s.ID, "unsure"); a.Action != ActionFollowup {
		t.Fatalf("action = %s, want followup", a.Action)
	}

	a, err := h.o.EndInterview(ctx, s.ID, "timeout")
	if err != nil {
		t.Fatalf("EndInterview: %v", err)
	}
	if a.QuestionsCompleted != 2 {
		t.Errorf("questions completed = %d, want 2 (core + follow-up)", a.QuestionsCompleted)
	}
	if len(h.tracer.ends) != 1 {
		t.Fatalf("trace ends = %d, want 1", len(h.tracer.ends))
	}
	if h.tracer.ends[0]["questions_completed"] != 2 {
		t.Errorf("end trace metadata = %v", h.tracer.ends[0])
	}
	if h.tracer.ends[0]["total_core_questions"] != 1 || h.tracer.ends[0]["total_followups"] != 1 {
		t.Errorf("end trace counters = %v", h.tracer.ends[0])
	}
}

func TestStartInterview_Twice(t *testing.T) {
	h := newHarness(t, Options{Questions: &stubGenerator{}})
	s := h.create(t, seniorSetup(interview.ModeStructured))
	h.start(t, s.ID)

	if _, err := h.o.StartInterview(context.Background(), s.ID); !errors.Is(err, interview.ErrInvalidTransition) {
		t.Errorf("second start: err = %v", err)
	}
	if len(h.tracer.starts) != 1 {
		t.Errorf("trace starts = %d, want 1", len(h.tracer.starts))
	}
}

func TestStatus(t *testing.T) {
	h := newHarness(t, Options{Questions: &stubGenerator{}, Evaluator: &stubEvaluator{fn: strong}})
	ctx := context.Background()
	s := h.create(t, seniorSetup(interview.ModeStructured))
	h.start(t, s.ID)
	h.answer(t, s.ID, "answer")

	st, err := h.o.Status(ctx, s.ID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.State != interview.StateListening || st.QuestionsAsked != 2 || st.MaxQuestions != 5 {
		t.Errorf("status = %s %d/%d", st.State, st.QuestionsAsked, st.MaxQuestions)
	}
	if st.Difficulty != 8 || math.Abs(st.RunningScore-8) > 1e-9 {
		t.Errorf("difficulty = %d running score = %v, want 8 and 8", st.Difficulty, st.RunningScore)
	}
	if st.DurationSeconds <= 0 {
		t.Errorf("duration = %v, want > 0", st.DurationSeconds)
	}
	if st.CurrentQuestion == nil {
		t.Fatal("no current question")
	}
	if st.CurrentQuestion.QuestionID != "q2" || st.CurrentQuestion.Answered {
		t.Errorf("current = %s answered=%v, want unanswered q2", st.CurrentQuestion.QuestionID, st.CurrentQuestion.Answered)
	}
	if len(st.SkillsRemaining) != len(s.SkillIDs)-2 {
		t.Errorf("remaining = %d skills, want %d", len(st.SkillsRemaining), len(s.SkillIDs)-2)
	}
	if asked := h.session(t, s.ID).Questions[0].SkillID; slices.Contains(st.SkillsRemaining, asked) {
		t.Errorf("asked skill %s still remaining", asked)
	}
}

func TestListSessions(t *testing.T) {
	h := newHarness(t, Options{})
	h.create(t, seniorSetup(interview.ModeStructured))
	h.create(t, seniorSetup(interview.ModeStructured))

	list, err := h.o.ListSessions(context.Background(), store.ListOpts{})
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("sessions = %d, want 2", len(list))
	}
}

func TestObservers(t *testing.T) {
	h := newHarness(t, Options{Questions: &stubGenerator{}, Evaluator: &stubEvaluator{fn: weak}})

	var questions, followups, evaluations int
	h.o.OnQuestion(func(_ context.Context, _ *interview.Session, q *interview.QuestionResponse) error {
		if q.IsFollowup {
			followups++
		} else {
			questions++
		}
		return nil
	})
	h.o.OnEvaluation(func(_ context.Context, _ *interview.Session, ev *interview.ResponseEvaluation) error {
		evaluations++
		return errors.New("ignored")
	})

	s := h.create(t, seniorSetup(interview.ModeStructuredFollowup))
	h.start(t, s.ID)
	h.answer(t, s.ID, "unsure")

	if questions != 1 || followups != 1 || evaluations != 1 {
		t.Errorf("questions=%d followups=%d evaluations=%d, want 1 each", questions, followups, evaluations)
	}
}

func TestMetricsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	h := newHarness(t, Options{Questions: &stubGenerator{err: errDown}, Evaluator: &stubEvaluator{fn: steady}})
	h.o.fallbacks = m
	h.o.OnStateChange(m.StateChanged)
	h.o.OnQuestion(m.QuestionAsked)
	h.o.OnEvaluation(m.Evaluated)

	s := h.create(t, seniorSetup(interview.ModeStructured))
	h.start(t, s.ID)
	h.answer(t, s.ID, "answer")

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"setup>ready", testutil.ToFloat64(m.Transitions.WithLabelValues("setup", "ready")), 1},
		{"asking>listening", testutil.ToFloat64(m.Transitions.WithLabelValues("asking", "listening")), 2},
		{"core questions", testutil.ToFloat64(m.Questions.WithLabelValues(metrics.KindCore)), 2},
		{"question fallbacks", testutil.ToFloat64(m.Fallbacks.WithLabelValues(CollaboratorQuestions)), 2},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

type transitionLog struct {
	mu     sync.Mutex
	events []store.TransitionEventData
}

func (l *transitionLog) AppendTransition(_ context.Context, data store.TransitionEventData) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, data)
	return nil
}

func TestRecordTransitions(t *testing.T) {
	log := &transitionLog{}
	h := newHarness(t, Options{Questions: &stubGenerator{}})
	h.o.OnStateChange(RecordTransitions(log))

	s := h.create(t, seniorSetup(interview.ModeStructured))
	h.start(t, s.ID)

	var path []interview.State
	for _, e := range log.events {
		if e.SessionID != s.ID {
			t.Errorf("event for session %q", e.SessionID)
		}
		path = append(path, e.To)
	}
	want := []interview.State{interview.StateReady, interview.StateAsking, interview.StateListening}
	if !slices.Equal(path, want) {
		t.Errorf("path = %v, want %v", path, want)
	}
}

func TestConcurrentSubmissionsAreSerialized(t *testing.T) {
	h := newHarness(t, Options{Questions: &stubGenerator{}, Evaluator: &stubEvaluator{fn: steady}})
	ctx := context.Background()
	s := h.create(t, seniorSetup(interview.ModeStructured))
	h.start(t, s.ID)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.o.SubmitResponse(ctx, s.ID, Response{Transcript: "parallel answer"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("SubmitResponse: %v", err)
		}
	}

	got := h.session(t, s.ID)
	if got.TotalCoreQuestions != 5 {
		t.Errorf("core questions = %d, want 5", got.TotalCoreQuestions)
	}
	unanswered := slices.IndexFunc(got.Questions, func(q interview.QuestionResponse) bool { return !q.Answered() })
	if unanswered != 4 {
		t.Errorf("first unanswered question = %d, want 4", unanswered)
	}
	checkInvariants(t, got)
	if n := h.lockCount(); n != 0 {
		t.Errorf("%d session locks left after all callers returned", n)
	}
}

func TestDistinctSessionsRunInParallel(t *testing.T) {
	h := newHarness(t, Options{Evaluator: &stubEvaluator{fn: steady}})
	ctx := context.Background()

	var ids []string
	for i := 0; i < 4; i++ {
		ids = append(ids, h.create(t, seniorSetup(interview.ModeStructured)).ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := h.o.StartInterview(ctx, id); err != nil {
				t.Errorf("start %s: %v", id, err)
				return
			}
			for j := 0; j < 5; j++ {
				if _, err := h.o.SubmitResponse(ctx, id, Response{Transcript: "answer"}); err != nil {
					t.Errorf("submit %s: %v", id, err)
					return
				}
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		got := h.session(t, id)
		if got.State != interview.StateComplete {
			t.Errorf("%s: state = %s, want complete", id, got.State)
		}
		checkInvariants(t, got)
	}
	if n := h.lockCount(); n != 0 {
		t.Errorf("%d session locks retained", n)
	}
}

func TestSessionLocksReleased(t *testing.T) {
	h := newHarness(t, Options{Questions: &stubGenerator{}, Evaluator: &stubEvaluator{fn: steady}})
	ctx := context.Background()
	s := h.create(t, seniorSetup(interview.ModeStructured))

	h.start(t, s.ID)
	h.answer(t, s.ID, "answer")
	if _, err := h.o.EndInterview(ctx, s.ID, ""); err != nil {
		t.Fatalf("EndInterview: %v", err)
	}
	if _, err := h.o.GenerateReport(ctx, s.ID); err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if _, err := h.o.StartInterview(ctx, "missing"); !errors.Is(err, interview.ErrUnknownSession) {
		t.Fatalf("err = %v", err)
	}
	if n := h.lockCount(); n != 0 {
		t.Errorf("%d session locks retained after operations finished", n)
	}
}
