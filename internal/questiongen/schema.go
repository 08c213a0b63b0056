package questiongen

import "github.com/abhisek/dataready/internal/llm"

// QuestionSchema defines the JSON schema for question generation responses.
var QuestionSchema = &llm.Schema{
	Name:        "interview-question",
	Description: "The next data engineering interview question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "The question as the interviewer would say it, 1-3 sentences",
			},
			"context": map[string]any{
				"type":        "string",
				"description": "Optional scenario setup read before the question",
			},
			"category": map[string]any{
				"type":        "string",
				"description": "sql|python|etl|spark|streaming|cloud|orchestration|data_modeling|system_design|distributed|performance|governance|observability",
			},
			"skill_id": map[string]any{
				"type":        "string",
				"description": "Skill identifier from the remaining skills list",
			},
			"type": map[string]any{
				"type":        "string",
				"description": "conceptual|scenario|design|troubleshooting|behavioral|tradeoff",
			},
			"difficulty": map[string]any{
				"type":        "string",
				"description": "easy|medium|hard|expert",
			},
			"difficulty_score": map[string]any{
				"type":    "integer",
				"minimum": 1,
				"maximum": 10,
			},
			"expected_points": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Points a strong answer covers",
			},
			"red_flags": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Answer patterns that signal a misconception",
			},
		},
		"required": []any{"question"},
	},
}
