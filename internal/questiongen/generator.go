// Package questiongen produces the next interview question, either from a
// model or from the built-in role and cloud pools.
package questiongen

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/dataready/internal/interview"
)

// Generator produces the next core question for an interview.
type Generator interface {
	// Generate returns a question that has not been asked in ictx's
	// session, or an error when it cannot.
	Generate(ctx context.Context, ictx interview.Context) (*interview.Question, error)
}

// ErrDuplicate is returned when every attempt produced an already asked question.
var ErrDuplicate = errors.New("questiongen: generated question was already asked")

// ErrBlankQuestion is returned when the model's question text is empty
// after trimming.
var ErrBlankQuestion = errors.New("questiongen: generated question is blank")

// DefaultSkill is used when a question cannot be tied to a remaining skill.
const DefaultSkill = "data_platform_design"

// Question sources.
const (
	SourceLLM      = "llm"
	SourceLLMText  = "llm_text"
	SourceFallback = "fallback"
)

// NewID returns a question id of the form q_ followed by 8 hex characters.
func NewID() string {
	return "q_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// FromText wraps free model text as a question. It reports false when the
// text is empty, looks like structured output, or was already asked.
func FromText(ictx interview.Context, text string) (*interview.Question, bool) {
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		return nil, false
	}
	s := ictx.Session
	if s.IsQuestionAsked(text) {
		return nil, false
	}
	return &interview.Question{
		ID:              NewID(),
		Text:            text,
		Category:        "system_design",
		SkillID:         ictx.FirstRemainingSkill(DefaultSkill),
		Type:            interview.QuestionScenario,
		Difficulty:      interview.DifficultyLabel(s.Difficulty),
		DifficultyScore: s.Difficulty,
		ExpectedPoints:  []string{"Clear architecture", "Scalability considerations", "Trade-off analysis"},
		Generated:       true,
		Source:          SourceLLMText,
	}, true
}
