package interview

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Speaker tags an utterance in the conversation buffer.
type Speaker string

const (
	SpeakerInterviewer Speaker = "interviewer"
	SpeakerCandidate   Speaker = "candidate"
)

// Turn is one utterance in the current question thread.
type Turn struct {
	Role    Speaker `json:"role"`
	Content string  `json:"content"`
}

// Session is the aggregate root for one interview.
type Session struct {
	ID    string `json:"session_id"`
	Setup Setup  `json:"setup"`
	State State  `json:"state"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Questions            []QuestionResponse `json:"questions"`
	CurrentQuestionIndex int                `json:"current_question_index"`

	TotalCoreQuestions       int `json:"total_core_questions_asked"`
	TotalFollowups           int `json:"total_followups_asked"`
	CurrentQuestionFollowups int `json:"current_question_followups"`

	// AskedQuestionHashes only grows.
	AskedQuestionHashes StringSet `json:"asked_question_hashes"`
	AskedSkills         StringSet `json:"asked_skills"`

	// ConversationContext covers the current core question and its
	// follow-ups only.
	ConversationContext []Turn `json:"current_question_context"`

	Difficulty        int   `json:"current_difficulty"`
	DifficultyHistory []int `json:"difficulty_history"`

	RunningScore float64 `json:"running_score"`
	// SkillScores has a fixed key set decided at creation. SkillIDs keeps
	// those keys in catalog order.
	SkillScores map[string][]float64 `json:"skill_scores"`
	SkillIDs    []string             `json:"skill_ids"`

	ErrorMessage string `json:"error_message,omitempty"`

	ReportGeneratedAt *time.Time     `json:"report_generated_at,omitempty"`
	Report            json.RawMessage `json:"report,omitempty"`
}

// NewSession builds a session in SETUP with the given skill keys and
// starting difficulty.
func NewSession(id string, setup Setup, skillIDs []string, difficulty int, now time.Time) *Session {
	scores := make(map[string][]float64, len(skillIDs))
	ids := make([]string, 0, len(skillIDs))
	for _, sid := range skillIDs {
		if _, dup := scores[sid]; dup {
			continue
		}
		scores[sid] = []float64{}
		ids = append(ids, sid)
	}
	return &Session{
		ID:                  id,
		Setup:               setup,
		State:               StateSetup,
		CreatedAt:           now,
		Questions:           []QuestionResponse{},
		AskedQuestionHashes: StringSet{},
		AskedSkills:         StringSet{},
		ConversationContext: []Turn{},
		Difficulty:          ClampDifficulty(difficulty),
		DifficultyHistory:   []int{},
		SkillScores:         scores,
		SkillIDs:            ids,
	}
}

// CurrentQuestion returns the last appended question, or nil.
func (s *Session) CurrentQuestion() *QuestionResponse {
	if len(s.Questions) == 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.CurrentQuestionIndex]
}

// AddQuestion appends q and updates dedup, coverage and counters.
func (s *Session) AddQuestion(q QuestionResponse) {
	s.Questions = append(s.Questions, q)
	s.CurrentQuestionIndex = len(s.Questions) - 1

	s.AskedQuestionHashes.Add(Normalize(q.QuestionText))
	if q.SkillID != "" {
		s.AskedSkills.Add(q.SkillID)
	}

	if !q.IsFollowup {
		s.TotalCoreQuestions++
		s.ConversationContext = []Turn{}
		s.CurrentQuestionFollowups = 0
	} else {
		s.TotalFollowups++
		s.CurrentQuestionFollowups++
	}

	s.ConversationContext = append(s.ConversationContext, Turn{
		Role:    SpeakerInterviewer,
		Content: q.QuestionText,
	})
}

// AddResponseToContext records a candidate utterance in the buffer.
func (s *Session) AddResponseToContext(text string) {
	s.ConversationContext = append(s.ConversationContext, Turn{
		Role:    SpeakerCandidate,
		Content: text,
	})
}

// IsQuestionAsked reports whether text normalizes to an already asked question.
func (s *Session) IsQuestionAsked(text string) bool {
	return s.AskedQuestionHashes.Has(Normalize(text))
}

// IsSkillAsked reports whether a question has targeted skillID.
func (s *Session) IsSkillAsked(skillID string) bool {
	return s.AskedSkills.Has(skillID)
}

// AskedQuestionCount returns the number of distinct normalized questions.
func (s *Session) AskedQuestionCount() int {
	return len(s.AskedQuestionHashes)
}

// ShouldEnd reports whether the interview has used its question budget or
// has already stopped.
func (s *Session) ShouldEnd() bool {
	if s.TotalCoreQuestions >= s.Setup.MaxQuestions {
		return true
	}
	switch s.State {
	case StateComplete, StateCancelled, StateError:
		return true
	}
	return false
}

// DurationSeconds returns the elapsed interview time. It is zero before the
// interview starts and uses now while it is still running.
func (s *Session) DurationSeconds(now time.Time) float64 {
	if s.StartedAt == nil {
		return 0
	}
	end := now
	if s.CompletedAt != nil {
		end = *s.CompletedAt
	}
	return end.Sub(*s.StartedAt).Seconds()
}

// ConversationTranscript renders the current thread for prompts.
func (s *Session) ConversationTranscript() string {
	if len(s.ConversationContext) == 0 {
		return ""
	}
	lines := make([]string, 0, len(s.ConversationContext))
	for _, t := range s.ConversationContext {
		who := "Candidate"
		if t.Role == SpeakerInterviewer {
			who = "Interviewer"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", who, t.Content))
	}
	return strings.Join(lines, "\n")
}

// HasSkill reports whether skillID is one of the session's scored skills.
func (s *Session) HasSkill(skillID string) bool {
	_, ok := s.SkillScores[skillID]
	return ok
}

// Evaluations returns the evaluations recorded so far in question order.
func (s *Session) Evaluations() []*ResponseEvaluation {
	var out []*ResponseEvaluation
	for i := range s.Questions {
		if s.Questions[i].Evaluation != nil {
			out = append(out, s.Questions[i].Evaluation)
		}
	}
	return out
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	c.StartedAt = cloneTime(s.StartedAt)
	c.CompletedAt = cloneTime(s.CompletedAt)
	c.ReportGeneratedAt = cloneTime(s.ReportGeneratedAt)

	c.Setup.IncludeSkills = append([]string(nil), s.Setup.IncludeSkills...)
	c.Setup.ExcludeSkills = append([]string(nil), s.Setup.ExcludeSkills...)

	c.Questions = make([]QuestionResponse, len(s.Questions))
	for i, q := range s.Questions {
		q.ExpectedPoints = append([]string(nil), q.ExpectedPoints...)
		q.RedFlags = append([]string(nil), q.RedFlags...)
		q.ResponseStartedAt = cloneTime(q.ResponseStartedAt)
		q.ResponseCompletedAt = cloneTime(q.ResponseCompletedAt)
		if q.Evaluation != nil {
			ev := *q.Evaluation
			ev.Feedback = Feedback{
				WentWell:         append([]string(nil), ev.Feedback.WentWell...),
				Missing:          append([]string(nil), ev.Feedback.Missing...),
				RedFlags:         append([]string(nil), ev.Feedback.RedFlags...),
				SenioritySignals: append([]string(nil), ev.Feedback.SenioritySignals...),
				Suggestions:      append([]string(nil), ev.Feedback.Suggestions...),
			}
			q.Evaluation = &ev
		}
		c.Questions[i] = q
	}

	c.AskedQuestionHashes = make(StringSet, len(s.AskedQuestionHashes))
	for k := range s.AskedQuestionHashes {
		c.AskedQuestionHashes.Add(k)
	}
	c.AskedSkills = make(StringSet, len(s.AskedSkills))
	for k := range s.AskedSkills {
		c.AskedSkills.Add(k)
	}

	c.ConversationContext = append([]Turn{}, s.ConversationContext...)
	c.DifficultyHistory = append([]int{}, s.DifficultyHistory...)
	c.SkillIDs = append([]string(nil), s.SkillIDs...)
	c.SkillScores = make(map[string][]float64, len(s.SkillScores))
	for k, v := range s.SkillScores {
		c.SkillScores[k] = append([]float64{}, v...)
	}
	c.Report = append(json.RawMessage(nil), s.Report...)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
