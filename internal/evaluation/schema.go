package evaluation

import "github.com/abhisek/dataready/internal/llm"

func scoreProp(desc string) map[string]any {
	return map[string]any{"type": "number", "minimum": 0, "maximum": 10, "description": desc}
}

func stringList(desc string) map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": desc}
}

// EvaluationSchema defines the JSON schema for answer evaluation responses.
var EvaluationSchema = &llm.Schema{
	Name:        "answer-evaluation",
	Description: "Rubric-based evaluation of one interview answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"scores": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"technical_correctness":  scoreProp("Accuracy of the answer"),
					"depth_of_understanding": scoreProp("Explains why, discusses trade-offs"),
					"practical_experience":   scoreProp("Evidence of hands-on production work"),
					"communication_clarity":  scoreProp("Structure and ease of following"),
					"confidence":             scoreProp("Appropriate confidence"),
				},
			},
			"feedback": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"what_went_well":          stringList("Specific strengths"),
					"what_was_missing":        stringList("Missing or incorrect concepts"),
					"red_flags":               stringList("Misconceptions or concerns"),
					"seniority_signals":       stringList("Signals of the candidate's level"),
					"improvement_suggestions": stringList("Actionable improvements"),
				},
			},
			"needs_followup":    map[string]any{"type": "boolean"},
			"followup_reason":   map[string]any{"type": "string"},
			"followup_type":     map[string]any{"type": "string", "description": "probe|clarify|challenge|example"},
			"difficulty_delta":  map[string]any{"type": "integer", "minimum": -2, "maximum": 2},
			"response_duration": map[string]any{"type": "number", "minimum": 0},
			"notes":             map[string]any{"type": "string"},
		},
		"required": []any{"scores"},
	},
}
