package interview

import (
	"encoding/json"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/abhisek/dataready/internal/catalog"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	setup := Setup{
		YearsOfExperience: 4,
		TargetRole:        catalog.RoleMid,
		CloudPreference:   catalog.CloudAWS,
		Mode:              ModeStructuredFollowup,
		MaxQuestions:      5,
	}
	return NewSession("s1", setup, []string{"sql_joins", "sql_ctes", "spark_fundamentals"}, 5, time.Unix(0, 0))
}

func core(id, text, skill string) QuestionResponse {
	return QuestionResponse{QuestionID: id, QuestionText: text, SkillID: skill, AskedAt: time.Now()}
}

func followup(parent, text string) QuestionResponse {
	return QuestionResponse{
		QuestionID:       parent + "_followup",
		QuestionText:     text,
		IsFollowup:       true,
		ParentQuestionID: parent,
		AskedAt:          time.Now(),
	}
}

func TestNewSession(t *testing.T) {
	s := newTestSession(t)
	if s.State != StateSetup {
		t.Errorf("state = %s, want setup", s.State)
	}
	if s.Difficulty != 5 {
		t.Errorf("difficulty = %d, want 5", s.Difficulty)
	}
	if s.CurrentQuestion() != nil {
		t.Error("expected no current question")
	}
	if want := []string{"sql_joins", "sql_ctes", "spark_fundamentals"}; !slices.Equal(s.SkillIDs, want) {
		t.Errorf("skill ids = %v, want %v", s.SkillIDs, want)
	}
	if len(s.SkillScores) != 3 {
		t.Fatalf("skill scores has %d keys, want 3", len(s.SkillScores))
	}
	for id, v := range s.SkillScores {
		if v == nil || len(v) != 0 {
			t.Errorf("skill %s scores = %#v, want empty non-nil", id, v)
		}
	}
}

func TestAddQuestion_CountersPartitionSequence(t *testing.T) {
	s := newTestSession(t)
	s.AddQuestion(core("q1", "Explain window functions in SQL", "sql_window_functions"))
	s.AddQuestion(followup("q1", "Can you give an example of RANK vs DENSE_RANK?"))
	s.AddQuestion(followup("q1", "What about LAG over partitions?"))
	s.AddQuestion(core("q2", "How do CTEs differ from subqueries?", "sql_ctes"))

	coreCount := 0
	for _, q := range s.Questions {
		if !q.IsFollowup {
			coreCount++
		}
	}
	if s.TotalCoreQuestions != coreCount {
		t.Errorf("core = %d, sequence has %d", s.TotalCoreQuestions, coreCount)
	}
	if s.TotalCoreQuestions+s.TotalFollowups != len(s.Questions) {
		t.Errorf("core %d + followups %d != %d questions", s.TotalCoreQuestions, s.TotalFollowups, len(s.Questions))
	}
	if s.TotalFollowups != 2 {
		t.Errorf("followups = %d, want 2", s.TotalFollowups)
	}
	if s.CurrentQuestionIndex != len(s.Questions)-1 {
		t.Errorf("current index = %d, want %d", s.CurrentQuestionIndex, len(s.Questions)-1)
	}
	if got := s.CurrentQuestion().QuestionID; got != "q2" {
		t.Errorf("current question = %s, want q2", got)
	}
}

func TestAddQuestion_ContextResetOnCore(t *testing.T) {
	s := newTestSession(t)
	s.AddQuestion(core("q1", "Explain Spark lazy evaluation", "spark_fundamentals"))
	s.AddResponseToContext("It defers work until an action.")
	s.AddQuestion(followup("q1", "Which operations trigger execution?"))
	s.AddResponseToContext("Actions like count and collect.")

	if len(s.ConversationContext) != 4 {
		t.Fatalf("context has %d turns, want 4", len(s.ConversationContext))
	}
	if s.CurrentQuestionFollowups != 1 {
		t.Errorf("current followups = %d, want 1", s.CurrentQuestionFollowups)
	}
	if s.ConversationContext[2].Role != SpeakerInterviewer || s.ConversationContext[3].Role != SpeakerCandidate {
		t.Errorf("roles = %s, %s", s.ConversationContext[2].Role, s.ConversationContext[3].Role)
	}

	s.AddQuestion(core("q2", "Describe incremental loading with watermarks", "incremental_loads"))
	if len(s.ConversationContext) != 1 {
		t.Fatalf("context has %d turns after new core question, want 1", len(s.ConversationContext))
	}
	want := Turn{Role: SpeakerInterviewer, Content: "Describe incremental loading with watermarks"}
	if s.ConversationContext[0] != want {
		t.Errorf("context[0] = %+v, want %+v", s.ConversationContext[0], want)
	}
	if s.CurrentQuestionFollowups != 0 {
		t.Errorf("current followups = %d, want 0", s.CurrentQuestionFollowups)
	}
}

func TestDedupMonotonic(t *testing.T) {
	s := newTestSession(t)
	texts := []string{
		"Explain the difference between INNER JOIN and LEFT JOIN in SQL?",
		"How would you tune a slow Spark job?",
		"Describe exactly-once delivery in Kafka.",
	}
	for i, text := range texts {
		s.AddQuestion(core("q", text, ""))
		for _, prev := range texts[:i+1] {
			if !s.IsQuestionAsked(prev) {
				t.Errorf("expected %q to be asked", prev)
			}
		}
	}
	if !s.IsQuestionAsked("explain the difference between inner join and left join in sql") {
		t.Error("case/punctuation variant not detected")
	}
	if s.IsQuestionAsked("What is a data contract?") {
		t.Error("unasked question reported as asked")
	}
	if got := s.AskedQuestionCount(); got != 3 {
		t.Errorf("asked count = %d, want 3", got)
	}
}

func TestSkillTracking(t *testing.T) {
	s := newTestSession(t)
	s.AddQuestion(core("q1", "joins?", "sql_joins"))
	s.AddQuestion(followup("q1", "outer joins?"))
	if !s.IsSkillAsked("sql_joins") {
		t.Error("sql_joins not tracked")
	}
	if s.IsSkillAsked("sql_ctes") {
		t.Error("sql_ctes tracked without being asked")
	}
	if len(s.AskedSkills) != 1 {
		t.Errorf("asked skills = %v, want 1", s.AskedSkills.Sorted())
	}
}

func TestShouldEnd(t *testing.T) {
	s := newTestSession(t)
	s.State = StateListening
	if s.ShouldEnd() {
		t.Fatal("fresh session should not end")
	}

	for i := 0; i < 4; i++ {
		s.AddQuestion(core("q", "question number "+string(rune('a'+i)), ""))
	}
	if s.ShouldEnd() {
		t.Fatal("ended after 4 of 5 questions")
	}
	s.AddQuestion(core("q", "final question", ""))
	if !s.ShouldEnd() {
		t.Fatal("did not end after 5 of 5 questions")
	}

	fresh := newTestSession(t)
	for _, st := range []State{StateComplete, StateCancelled, StateError} {
		fresh.State = st
		if !fresh.ShouldEnd() {
			t.Errorf("state %s: ShouldEnd = false", st)
		}
	}
	for _, st := range []State{StatePaused, StateDeciding, StateFinished} {
		fresh.State = st
		if fresh.ShouldEnd() {
			t.Errorf("state %s: ShouldEnd = true", st)
		}
	}
}

func TestDurationSeconds(t *testing.T) {
	s := newTestSession(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	if got := s.DurationSeconds(now); got != 0 {
		t.Errorf("duration before start = %v, want 0", got)
	}

	started := now.Add(-90 * time.Second)
	s.StartedAt = &started
	if got := s.DurationSeconds(now); math.Abs(got-90) > 0.001 {
		t.Errorf("running duration = %v, want 90", got)
	}

	done := started.Add(30 * time.Second)
	s.CompletedAt = &done
	if got := s.DurationSeconds(now); math.Abs(got-30) > 0.001 {
		t.Errorf("completed duration = %v, want 30", got)
	}
}

func TestConversationTranscript(t *testing.T) {
	s := newTestSession(t)
	if got := s.ConversationTranscript(); got != "" {
		t.Errorf("empty transcript = %q", got)
	}
	s.AddQuestion(core("q1", "What is a DAG?", "dag_design"))
	s.AddResponseToContext("A directed acyclic graph.")
	want := "Interviewer: What is a DAG?\nCandidate: A directed acyclic graph."
	if got := s.ConversationTranscript(); got != want {
		t.Errorf("transcript = %q, want %q", got, want)
	}
}

func TestClone_IsDeep(t *testing.T) {
	s := newTestSession(t)
	s.AddQuestion(core("q1", "What is a DAG?", "dag_design"))
	s.Questions[0].Evaluation = &ResponseEvaluation{QuestionID: "q1", Feedback: Feedback{WentWell: []string{"clear"}}}
	s.RecordScore("sql_joins", 6)

	c := s.Clone()
	c.AddQuestion(core("q2", "What is a CTE?", "sql_ctes"))
	c.Questions[0].Evaluation.Feedback.WentWell[0] = "changed"
	c.SkillScores["sql_joins"][0] = 1
	c.AskedSkills.Add("other")

	if len(s.Questions) != 1 {
		t.Errorf("original has %d questions, want 1", len(s.Questions))
	}
	if got := s.Questions[0].Evaluation.Feedback.WentWell[0]; got != "clear" {
		t.Errorf("original feedback = %q", got)
	}
	if got := s.SkillScores["sql_joins"][0]; got != 6 {
		t.Errorf("original score = %v", got)
	}
	if s.IsSkillAsked("other") || s.IsQuestionAsked("What is a CTE?") {
		t.Error("clone mutation leaked into the original")
	}
}

func TestSession_JSONRoundTripKeepsSets(t *testing.T) {
	s := newTestSession(t)
	s.AddQuestion(core("q1", "Explain Kafka consumer groups", "kafka_architecture"))

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Session
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.IsQuestionAsked("Explain Kafka consumer groups") || !back.IsSkillAsked("kafka_architecture") {
		t.Error("dedup sets lost in round trip")
	}
	if !slices.Equal(back.SkillIDs, s.SkillIDs) {
		t.Errorf("skill ids = %v, want %v", back.SkillIDs, s.SkillIDs)
	}
}
