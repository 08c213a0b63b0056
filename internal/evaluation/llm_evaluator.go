package evaluation

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/dataready/internal/interview"
	"github.com/abhisek/dataready/internal/llm"
)

// DefaultScore stands in for a dimension the model did not score.
const DefaultScore = 5.0

// LLMEvaluator implements Evaluator using an LLM provider.
type LLMEvaluator struct {
	provider    llm.Provider
	maxTokens   int
	temperature float64
}

// NewLLM creates an LLMEvaluator.
func NewLLM(provider llm.Provider) *LLMEvaluator {
	return &LLMEvaluator{provider: provider, maxTokens: 1024, temperature: 0.3}
}

type scoresOutput struct {
	Technical     *float64 `json:"technical_correctness"`
	Depth         *float64 `json:"depth_of_understanding"`
	Practical     *float64 `json:"practical_experience"`
	Communication *float64 `json:"communication_clarity"`
	Confidence    *float64 `json:"confidence"`
}

type evaluationOutput struct {
	Scores           scoresOutput       `json:"scores"`
	Feedback         interview.Feedback `json:"feedback"`
	NeedsFollowup    bool               `json:"needs_followup"`
	FollowupReason   string             `json:"followup_reason"`
	FollowupType     string             `json:"followup_type"`
	DifficultyDelta  int                `json:"difficulty_delta"`
	ResponseDuration float64            `json:"response_duration"`
	Notes            string             `json:"notes"`
}

// Evaluate implements Evaluator.
func (e *LLMEvaluator) Evaluate(ctx context.Context, q *interview.QuestionResponse, transcript string, ictx interview.Context) (*interview.ResponseEvaluation, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeEvaluation)

	resp, err := e.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(q, transcript, ictx)},
		},
		Schema:      EvaluationSchema,
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate answer: %w", err)
	}

	var out evaluationOutput
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("evaluate answer: %w", err)
	}

	duration := out.ResponseDuration
	if duration <= 0 {
		duration = float64(len(strings.Fields(transcript))) / wordsPerSecond
	}

	return &interview.ResponseEvaluation{
		QuestionID:              q.QuestionID,
		SkillID:                 skillFor(q, ictx),
		Transcript:              transcript,
		ResponseDurationSeconds: duration,
		Scores: interview.Scores{
			TechnicalCorrectness: orDefault(out.Scores.Technical),
			DepthOfUnderstanding: orDefault(out.Scores.Depth),
			PracticalExperience:  orDefault(out.Scores.Practical),
			CommunicationClarity: orDefault(out.Scores.Communication),
			Confidence:           orDefault(out.Scores.Confidence),
		}.Clamp(),
		Feedback:        normalizeFeedback(out.Feedback),
		NeedsFollowup:   out.NeedsFollowup,
		FollowupReason:  out.FollowupReason,
		FollowupType:    interview.FollowUpType(strings.ToLower(out.FollowupType)),
		DifficultyDelta: interview.ClampDelta(out.DifficultyDelta),
		EvaluatorNotes:  out.Notes,
		Source:          interview.SourceLLM,
	}, nil
}

func orDefault(v *float64) float64 {
	if v == nil {
		return DefaultScore
	}
	return *v
}

func normalizeFeedback(f interview.Feedback) interview.Feedback {
	return interview.Feedback{
		WentWell:         orEmpty(f.WentWell),
		Missing:          orEmpty(f.Missing),
		RedFlags:         orEmpty(f.RedFlags),
		SenioritySignals: orEmpty(f.SenioritySignals),
		Suggestions:      orEmpty(f.Suggestions),
	}
}
