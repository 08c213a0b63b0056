package llm

import "context"

// Purpose names the interview step an LLM call serves. It is stored with
// every recorded request so usage can be broken down per step.
type Purpose string

const (
	PurposeQuestion   Purpose = "question-gen"
	PurposeEvaluation Purpose = "answer-eval"
	PurposeFollowup   Purpose = "followup-decision"
	PurposeUnknown    Purpose = "unknown"
)

type purposeKey struct{}

// WithPurpose tags ctx so the logging decorator can attribute the call.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom returns the purpose on ctx, or PurposeUnknown.
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey{}).(Purpose); ok && p != "" {
		return p
	}
	return PurposeUnknown
}
