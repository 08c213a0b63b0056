package followup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/dataready/internal/interview"
	"github.com/abhisek/dataready/internal/llm"
	"github.com/abhisek/dataready/internal/questiongen"
)

// DecisionSchema defines the JSON schema for follow-up decisions.
var DecisionSchema = &llm.Schema{
	Name:        "followup-decision",
	Description: "Whether to ask a follow-up question and what to ask",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"should_followup": map[string]any{"type": "boolean"},
			"reason":          map[string]any{"type": "string"},
			"type": map[string]any{
				"type":        "string",
				"description": "probe|clarify|challenge|example",
			},
			"question": map[string]any{
				"type":        "string",
				"description": "The follow-up question or clarification when should_followup is true",
			},
			"difficulty_adjustment": map[string]any{"type": "integer", "minimum": -2, "maximum": 2},
		},
		"required": []any{"should_followup"},
	},
}

// LLMDecider implements Decider using an LLM provider.
type LLMDecider struct {
	provider llm.Provider
}

// NewLLM creates an LLMDecider.
func NewLLM(provider llm.Provider) *LLMDecider {
	return &LLMDecider{provider: provider}
}

type decisionOutput struct {
	ShouldFollowup       *bool  `json:"should_followup"`
	Reason               string `json:"reason"`
	Type                 string `json:"type"`
	Question             string `json:"question"`
	DifficultyAdjustment int    `json:"difficulty_adjustment"`
}

// Decide implements Decider. Model text that is not the requested JSON is
// used as the question of the score band's decision.
func (d *LLMDecider) Decide(ctx context.Context, ictx interview.Context, ev *interview.ResponseEvaluation) (*interview.FollowUpDecision, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeFollowup)

	resp, err := d.provider.Generate(ctx, llm.Request{
		System: questiongen.SystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(ictx, ev)},
		},
		Schema:      DecisionSchema,
		MaxTokens:   512,
		Temperature: 0.8,
	})
	if err != nil {
		var invalid *llm.ErrInvalidResponse
		if errors.As(err, &invalid) {
			text := strings.TrimSpace(string(invalid.Content))
			if text != "" && !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "[") {
				return Banded(ev.OverallScore(), text), nil
			}
		}
		return nil, fmt.Errorf("decide follow-up: %w", err)
	}

	var out decisionOutput
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("decide follow-up: %w", err)
	}

	should := true
	if out.ShouldFollowup != nil {
		should = *out.ShouldFollowup
	}
	reason := out.Reason
	if reason == "" {
		reason = "Need more depth"
	}
	ftype := interview.FollowUpType(strings.ToLower(out.Type))
	if ftype == "" {
		ftype = interview.FollowUpProbe
	}
	return &interview.FollowUpDecision{
		ShouldFollowup:       should,
		Reason:               reason,
		Type:                 ftype,
		Question:             strings.TrimSpace(out.Question),
		DifficultyAdjustment: interview.ClampDelta(out.DifficultyAdjustment),
	}, nil
}

var clarificationPhrases = []string{
	"could you clarify", "can you explain", "what do you mean", "i don't understand",
	"could you repeat", "can you rephrase", "not sure what you", "please clarify", "what exactly",
}

// IsClarificationRequest reports whether the candidate asked for the
// question to be clarified instead of answering it.
func IsClarificationRequest(transcript string) bool {
	lower := strings.ToLower(transcript)
	for _, p := range clarificationPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func guidance(ev *interview.ResponseEvaluation) string {
	if IsClarificationRequest(ev.Transcript) {
		return "The candidate is asking for clarification. Rephrase or clarify the question without giving away the answer."
	}
	switch score := ev.OverallScore(); {
	case score < 4:
		return "The response was weak. Ask a clarifying question to understand their baseline knowledge."
	case score < 6:
		return "The response was shallow. Probe for more depth or ask for a specific example."
	case score < 8:
		return "The response was good. Consider challenging them with a harder scenario or edge case."
	default:
		return "The response was excellent. Move on unless you want to explore an advanced topic."
	}
}

const maxTranscriptChars = 500

func buildUserMessage(ictx interview.Context, ev *interview.ResponseEvaluation) string {
	var b strings.Builder

	conv := ictx.Session.ConversationTranscript()
	if conv == "" {
		conv = "No previous exchanges on this question."
	}
	fmt.Fprintf(&b, "Conversation on this question:\n%s\n", conv)

	transcript := interview.TruncateBytes(ev.Transcript, maxTranscriptChars)
	fmt.Fprintf(&b, "\nLatest response:\n%q\n", transcript)

	s := ev.Scores
	fmt.Fprintf(&b, "\nOverall score: %.1f/10\n", ev.OverallScore())
	fmt.Fprintf(&b, "Technical correctness: %.1f/10\n", s.TechnicalCorrectness)
	fmt.Fprintf(&b, "Depth: %.1f/10\n", s.DepthOfUnderstanding)
	fmt.Fprintf(&b, "Practical experience: %.1f/10\n", s.PracticalExperience)

	missing := "None noted"
	if m := ev.Feedback.Missing; len(m) > 0 {
		missing = strings.Join(m[:min(3, len(m))], ", ")
	}
	fmt.Fprintf(&b, "What was missing: %s\n", missing)

	fmt.Fprintf(&b, "\nGuidance: %s\n", guidance(ev))
	b.WriteString("\nDecide whether to ask a follow-up. If the candidate asked for clarification you must provide it without giving away the answer. Types: probe digs deeper, clarify rephrases the question, challenge pushes on edge cases, example asks for a concrete example.")
	return b.String()
}
