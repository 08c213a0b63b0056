// Package followup decides whether an answer deserves a follow-up question
// and what to ask.
package followup

import (
	"context"

	"github.com/abhisek/dataready/internal/interview"
)

// Decider chooses the follow-up for an evaluated answer.
type Decider interface {
	Decide(ctx context.Context, ictx interview.Context, ev *interview.ResponseEvaluation) (*interview.FollowUpDecision, error)
}

// Fixed texts used when no decider supplies a question.
const (
	ClarifyQuestion   = "Could you explain that concept in simpler terms?"
	ProbeQuestion     = "Can you provide a specific example from your experience?"
	ChallengeQuestion = "What would you do differently if the scale was 10x larger?"
)

// Fallback bands the decision on the evaluation's overall score.
type Fallback struct{}

// Decide implements Decider. It never fails.
func (Fallback) Decide(_ context.Context, _ interview.Context, ev *interview.ResponseEvaluation) (*interview.FollowUpDecision, error) {
	return Banded(ev.OverallScore(), ""), nil
}

// Banded returns the score-banded decision. A non-empty text replaces the
// band's fixed question.
func Banded(score float64, text string) *interview.FollowUpDecision {
	pick := func(fixed string) string {
		if text != "" {
			return text
		}
		return fixed
	}
	switch {
	case score < 4:
		return &interview.FollowUpDecision{
			ShouldFollowup:       true,
			Reason:               "Response needs clarification",
			Type:                 interview.FollowUpClarify,
			Question:             pick(ClarifyQuestion),
			DifficultyAdjustment: -1,
		}
	case score < 6:
		return &interview.FollowUpDecision{
			ShouldFollowup: true,
			Reason:         "Response could use more depth",
			Type:           interview.FollowUpProbe,
			Question:       pick(ProbeQuestion),
		}
	case score < 8:
		return &interview.FollowUpDecision{
			ShouldFollowup:       true,
			Reason:               "Good answer, testing deeper knowledge",
			Type:                 interview.FollowUpChallenge,
			Question:             pick(ChallengeQuestion),
			DifficultyAdjustment: 1,
		}
	default:
		return &interview.FollowUpDecision{
			Reason:               "Excellent answer, moving on",
			DifficultyAdjustment: 1,
		}
	}
}
