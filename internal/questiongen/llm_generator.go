package questiongen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/dataready/internal/interview"
	"github.com/abhisek/dataready/internal/llm"
	"github.com/abhisek/dataready/internal/logging"
)

// LLMGenerator implements Generator using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	log      *logging.Logger
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config, log *logging.Logger) *LLMGenerator {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &LLMGenerator{provider: provider, config: cfg, log: log.Named("questiongen")}
}

// questionOutput is the raw LLM response before normalization.
type questionOutput struct {
	Question        string   `json:"question"`
	Context         string   `json:"context"`
	Category        string   `json:"category"`
	SkillID         string   `json:"skill_id"`
	Type            string   `json:"type"`
	Difficulty      string   `json:"difficulty"`
	DifficultyScore int      `json:"difficulty_score"`
	ExpectedPoints  []string `json:"expected_points"`
	RedFlags        []string `json:"red_flags"`
}

var knownCategories = map[string]bool{
	"sql": true, "python": true, "etl": true, "spark": true, "streaming": true,
	"cloud": true, "orchestration": true, "data_modeling": true, "system_design": true,
	"distributed": true, "performance": true, "governance": true, "observability": true,
}

var knownTypes = map[string]interview.QuestionType{
	"conceptual":      interview.QuestionConceptual,
	"scenario":        interview.QuestionScenario,
	"design":          interview.QuestionDesign,
	"troubleshooting": interview.QuestionTroubleshooting,
	"behavioral":      interview.QuestionBehavioral,
	"tradeoff":        interview.QuestionTradeoff,
}

var knownDifficulties = map[string]interview.Difficulty{
	"easy":   interview.DifficultyEasy,
	"medium": interview.DifficultyMedium,
	"hard":   interview.DifficultyHard,
	"expert": interview.DifficultyExpert,
}

// Generate asks the model for a question, retrying while it repeats an
// asked one. Unstructured model text is kept as the question when it is new.
func (g *LLMGenerator) Generate(ctx context.Context, ictx interview.Context) (*interview.Question, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestion)
	s := ictx.Session

	req := llm.Request{
		System: SystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(ictx, g.config)},
		},
		Schema:      QuestionSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	var lastErr error
	for attempt := 1; attempt <= g.config.MaxAttempts; attempt++ {
		resp, err := g.provider.Generate(ctx, req)
		if err != nil {
			if q, ok := fromInvalidResponse(ictx, err); ok {
				return q, nil
			}
			g.log.Warn(ctx, "question generation failed",
				zap.Int("attempt", attempt), zap.Error(err))
			lastErr = fmt.Errorf("LLM generation failed: %w", err)
			continue
		}

		var raw questionOutput
		if err := resp.Decode(&raw); err != nil {
			lastErr = fmt.Errorf("failed to parse LLM response: %w", err)
			continue
		}
		q := toQuestion(raw, s.Difficulty)
		if q.Text == "" {
			g.log.Warn(ctx, "blank question generated", zap.Int("attempt", attempt))
			lastErr = ErrBlankQuestion
			continue
		}

		if s.IsQuestionAsked(q.Text) {
			g.log.Warn(ctx, "duplicate question generated",
				zap.Int("attempt", attempt), zap.String("question", truncate(q.Text, 50)))
			lastErr = ErrDuplicate
			continue
		}
		return q, nil
	}
	return nil, lastErr
}

// fromInvalidResponse recovers a question from model text that was not
// the requested JSON.
func fromInvalidResponse(ictx interview.Context, err error) (*interview.Question, bool) {
	var invalid *llm.ErrInvalidResponse
	if !errors.As(err, &invalid) || len(invalid.Content) == 0 {
		return nil, false
	}
	return FromText(ictx, string(invalid.Content))
}

func toQuestion(raw questionOutput, currentDifficulty int) *interview.Question {
	category := strings.ToLower(raw.Category)
	if !knownCategories[category] {
		category = "system_design"
	}
	qtype, ok := knownTypes[strings.ToLower(raw.Type)]
	if !ok {
		qtype = interview.QuestionScenario
	}
	difficulty, ok := knownDifficulties[strings.ToLower(raw.Difficulty)]
	if !ok {
		difficulty = interview.DifficultyMedium
	}
	score := raw.DifficultyScore
	if score == 0 {
		score = currentDifficulty
	}
	skill := raw.SkillID
	if skill == "" {
		skill = DefaultSkill
	}

	return &interview.Question{
		ID:              NewID(),
		Text:            strings.TrimSpace(raw.Question),
		Context:         raw.Context,
		Category:        category,
		SkillID:         skill,
		Type:            qtype,
		Difficulty:      difficulty,
		DifficultyScore: interview.ClampDifficulty(score),
		ExpectedPoints:  raw.ExpectedPoints,
		RedFlags:        raw.RedFlags,
		Generated:       true,
		Source:          SourceLLM,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return interview.TruncateBytes(s, n) + "..."
}
