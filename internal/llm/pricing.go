package llm

import "strings"

// ModelCost is USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1_000_000
}

// EstimateCost prices one call; false means the model is not in the table.
func EstimateCost(modelID string, inputTokens, outputTokens int) (float64, bool) {
	c, ok := lookupCost(modelID)
	if !ok {
		return 0, false
	}
	return c.Cost(inputTokens, outputTokens), true
}

// LookupCost returns pricing for a model id, or nil. OpenRouter ids such as
// "openai/gpt-4o-mini" are priced as the underlying model.
func LookupCost(modelID string) *ModelCost {
	if c, ok := lookupCost(modelID); ok {
		return &c
	}
	return nil
}

func lookupCost(modelID string) (ModelCost, bool) {
	if c, ok := modelCosts[modelID]; ok {
		return c, true
	}
	if _, model, ok := strings.Cut(modelID, "/"); ok {
		c, ok := modelCosts[model]
		return c, ok
	}
	return ModelCost{}, false
}

// modelCosts covers the aliases the providers resolve to plus common
// pinned ids. Prices as of 2026-02.
var modelCosts = map[string]ModelCost{
	"claude-haiku-4-5":           {1, 5},
	"claude-haiku-4-5-20251001":  {1, 5},
	"claude-sonnet-4-5":          {3, 15},
	"claude-sonnet-4-5-20250929": {3, 15},
	"claude-sonnet-4-20250514":   {3, 15},
	"claude-opus-4-1":            {15, 75},
	"claude-opus-4-1-20250805":   {15, 75},
	"claude-opus-4-5":            {5, 25},
	"claude-3-5-haiku-20241022":  {0.8, 4},

	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-5":        {1.25, 10},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5-nano":   {0.05, 0.4},
	"o4-mini":      {1.1, 4.4},

	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},
}
