package interview

import "time"

// Difficulty is the coarse label attached to a numeric difficulty.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// DifficultyLabel maps a 1-10 difficulty onto a label.
func DifficultyLabel(score int) Difficulty {
	switch {
	case score <= 3:
		return DifficultyEasy
	case score <= 6:
		return DifficultyMedium
	case score <= 8:
		return DifficultyHard
	default:
		return DifficultyExpert
	}
}

// QuestionType classifies how a question probes the candidate.
type QuestionType string

const (
	QuestionConceptual      QuestionType = "conceptual"
	QuestionScenario        QuestionType = "scenario"
	QuestionDesign          QuestionType = "design"
	QuestionTroubleshooting QuestionType = "troubleshooting"
	QuestionBehavioral      QuestionType = "behavioral"
	QuestionTradeoff        QuestionType = "tradeoff"
)

// Question is what a question generator produces.
type Question struct {
	ID              string       `json:"id"`
	Text            string       `json:"text"`
	Context         string       `json:"context,omitempty"`
	Category        string       `json:"category"`
	SkillID         string       `json:"skill_id"`
	Type            QuestionType `json:"question_type"`
	Difficulty      Difficulty   `json:"difficulty"`
	DifficultyScore int          `json:"difficulty_score"`
	ExpectedPoints  []string     `json:"expected_points,omitempty"`
	RedFlags        []string     `json:"red_flags,omitempty"`
	// Generated is false for questions drawn from the built-in pools.
	Generated bool   `json:"is_generated"`
	Source    string `json:"source,omitempty"`
}

// FollowUpType is the intent of a follow-up question.
type FollowUpType string

const (
	FollowUpProbe     FollowUpType = "probe"
	FollowUpClarify   FollowUpType = "clarify"
	FollowUpChallenge FollowUpType = "challenge"
	FollowUpExample   FollowUpType = "example"
)

// FollowUpDecision is what a follow-up decider produces.
type FollowUpDecision struct {
	ShouldFollowup       bool         `json:"should_followup"`
	Reason               string       `json:"reason"`
	Type                 FollowUpType `json:"followup_type,omitempty"`
	Question             string       `json:"followup_question,omitempty"`
	DifficultyAdjustment int          `json:"difficulty_adjustment"`
}

// QuestionResponse is one delivered question and, once answered, its
// transcript and evaluation. Entries are appended and never removed.
type QuestionResponse struct {
	QuestionID   string `json:"question_id"`
	QuestionText string `json:"question_text"`
	AudioURL     string `json:"question_audio_url,omitempty"`
	SkillID      string `json:"skill_id,omitempty"`
	Difficulty   int    `json:"difficulty,omitempty"`

	ExpectedPoints []string `json:"expected_points,omitempty"`
	RedFlags       []string `json:"red_flags,omitempty"`

	AskedAt             time.Time  `json:"asked_at"`
	ResponseStartedAt   *time.Time `json:"response_started_at,omitempty"`
	ResponseCompletedAt *time.Time `json:"response_completed_at,omitempty"`

	ResponseTranscript string `json:"response_transcript,omitempty"`

	// Evaluation stays internal until report time.
	Evaluation *ResponseEvaluation `json:"evaluation,omitempty"`

	IsFollowup       bool   `json:"is_followup"`
	ParentQuestionID string `json:"parent_question_id,omitempty"`
	FollowupReason   string `json:"followup_reason,omitempty"`
}

// Answered reports whether a response has been recorded.
func (q *QuestionResponse) Answered() bool {
	return q.ResponseCompletedAt != nil
}
