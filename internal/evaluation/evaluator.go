// Package evaluation scores a candidate's answer on the five interview
// dimensions.
package evaluation

import (
	"context"

	"github.com/abhisek/dataready/internal/interview"
)

// Evaluator scores one answer to one question.
type Evaluator interface {
	Evaluate(ctx context.Context, q *interview.QuestionResponse, transcript string, ictx interview.Context) (*interview.ResponseEvaluation, error)
}

// fallbackSkill is attributed when neither the question nor the context
// names a skill.
const fallbackSkill = "general"

func skillFor(q *interview.QuestionResponse, ictx interview.Context) string {
	if q != nil && q.SkillID != "" {
		return q.SkillID
	}
	return ictx.FirstRemainingSkill(fallbackSkill)
}
