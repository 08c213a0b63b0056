package orchestrator

import (
	"time"

	"github.com/abhisek/dataready/internal/interview"
	"github.com/abhisek/dataready/internal/speech"
)

// ActionKind tells the client what happened after an operation.
type ActionKind string

const (
	ActionQuestion ActionKind = "question"
	ActionFollowup ActionKind = "followup"
	ActionComplete ActionKind = "complete"
	ActionEnded    ActionKind = "ended"
	ActionResumed  ActionKind = "resumed"
)

// Action is the result of a flow operation.
type Action struct {
	Action  ActionKind `json:"action"`
	Message string     `json:"message,omitempty"`

	QuestionID     string `json:"question_id,omitempty"`
	QuestionText   string `json:"question_text,omitempty"`
	QuestionNumber int    `json:"question_number,omitempty"`
	TotalQuestions int    `json:"total_questions,omitempty"`
	Difficulty     int    `json:"difficulty,omitempty"`
	FollowupReason string `json:"followup_reason,omitempty"`

	Reason string `json:"reason,omitempty"`
	// QuestionsCompleted counts every delivered question, follow-ups
	// included.
	QuestionsCompleted int `json:"questions_completed,omitempty"`

	Audio *speech.Audio `json:"audio,omitempty"`
}

// Response is a candidate's answer. Audio is only transcribed when
// Transcript is empty.
type Response struct {
	Transcript  string `json:"transcript,omitempty"`
	Audio       []byte `json:"audio,omitempty"`
	AudioFormat string `json:"audio_format,omitempty"`
}

// QuestionView is the client-safe view of a question; evaluations stay
// hidden until the report.
type QuestionView struct {
	QuestionID       string    `json:"question_id"`
	QuestionText     string    `json:"question_text"`
	SkillID          string    `json:"skill_id,omitempty"`
	Difficulty       int       `json:"difficulty,omitempty"`
	IsFollowup       bool      `json:"is_followup"`
	ParentQuestionID string    `json:"parent_question_id,omitempty"`
	AskedAt          time.Time `json:"asked_at"`
	Answered         bool      `json:"answered"`
}

func viewOf(q *interview.QuestionResponse) *QuestionView {
	if q == nil {
		return nil
	}
	return &QuestionView{
		QuestionID:       q.QuestionID,
		QuestionText:     q.QuestionText,
		SkillID:          q.SkillID,
		Difficulty:       q.Difficulty,
		IsFollowup:       q.IsFollowup,
		ParentQuestionID: q.ParentQuestionID,
		AskedAt:          q.AskedAt,
		Answered:         q.Answered(),
	}
}

// Status is a progress snapshot of one session.
type Status struct {
	SessionID       string          `json:"session_id"`
	State           interview.State `json:"state"`
	QuestionsAsked  int             `json:"questions_asked"`
	MaxQuestions    int             `json:"max_questions"`
	Followups       int             `json:"followups_asked"`
	Difficulty      int             `json:"current_difficulty"`
	RunningScore    float64         `json:"running_score"`
	DurationSeconds float64         `json:"duration_seconds"`
	SkillsRemaining []string        `json:"skills_remaining"`
	CurrentQuestion *QuestionView   `json:"current_question,omitempty"`
	ErrorMessage    string          `json:"error_message,omitempty"`
}
