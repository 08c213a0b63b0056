package interview

// Score dimension weights for the overall score.
const (
	WeightTechnical     = 0.30
	WeightDepth         = 0.25
	WeightPractical     = 0.20
	WeightCommunication = 0.15
	WeightConfidence    = 0.10
)

// ScoreLevel is the qualitative band of a score.
type ScoreLevel string

const (
	LevelExceptional ScoreLevel = "exceptional"
	LevelStrong      ScoreLevel = "strong"
	LevelAdequate    ScoreLevel = "adequate"
	LevelWeak        ScoreLevel = "weak"
	LevelPoor        ScoreLevel = "poor"
)

// LevelFor bands a 0-10 score.
func LevelFor(score float64) ScoreLevel {
	switch {
	case score >= 9:
		return LevelExceptional
	case score >= 7:
		return LevelStrong
	case score >= 5:
		return LevelAdequate
	case score >= 3:
		return LevelWeak
	default:
		return LevelPoor
	}
}

// Scores is the five-dimension breakdown of one answer, each 0-10.
type Scores struct {
	TechnicalCorrectness float64 `json:"technical_correctness"`
	DepthOfUnderstanding float64 `json:"depth_of_understanding"`
	PracticalExperience  float64 `json:"practical_experience"`
	CommunicationClarity float64 `json:"communication_clarity"`
	Confidence           float64 `json:"confidence"`
}

// Overall returns the weighted overall score.
func (s Scores) Overall() float64 {
	return s.TechnicalCorrectness*WeightTechnical +
		s.DepthOfUnderstanding*WeightDepth +
		s.PracticalExperience*WeightPractical +
		s.CommunicationClarity*WeightCommunication +
		s.Confidence*WeightConfidence
}

// Level returns the qualitative band of the overall score.
func (s Scores) Level() ScoreLevel {
	return LevelFor(s.Overall())
}

// Clamp bounds every dimension to [0,10].
func (s Scores) Clamp() Scores {
	return Scores{
		TechnicalCorrectness: clampScore(s.TechnicalCorrectness),
		DepthOfUnderstanding: clampScore(s.DepthOfUnderstanding),
		PracticalExperience:  clampScore(s.PracticalExperience),
		CommunicationClarity: clampScore(s.CommunicationClarity),
		Confidence:           clampScore(s.Confidence),
	}
}

func clampScore(v float64) float64 {
	return max(0, min(10, v))
}

// Feedback is the qualitative side of an evaluation.
type Feedback struct {
	WentWell         []string `json:"what_went_well"`
	Missing          []string `json:"what_was_missing"`
	RedFlags         []string `json:"red_flags"`
	SenioritySignals []string `json:"seniority_signals"`
	Suggestions      []string `json:"improvement_suggestions"`
}

// EvaluationSource records which evaluator produced a result.
type EvaluationSource string

const (
	SourceLLM       EvaluationSource = "llm"
	SourceHeuristic EvaluationSource = "heuristic"
)

// ResponseEvaluation is the full evaluation of one answer.
type ResponseEvaluation struct {
	QuestionID              string       `json:"question_id"`
	SkillID                 string       `json:"skill_id"`
	Transcript              string       `json:"transcript"`
	ResponseDurationSeconds float64      `json:"response_duration_seconds"`
	Scores                  Scores       `json:"scores"`
	Feedback                Feedback     `json:"feedback"`
	NeedsFollowup           bool         `json:"needs_followup"`
	FollowupReason          string       `json:"followup_reason,omitempty"`
	FollowupType            FollowUpType `json:"followup_type,omitempty"`
	// DifficultyDelta is within [-2,2].
	DifficultyDelta int              `json:"difficulty_delta"`
	EvaluatorNotes  string           `json:"evaluator_notes,omitempty"`
	Source          EvaluationSource `json:"source,omitempty"`
}

// OverallScore is shorthand for Scores.Overall.
func (e *ResponseEvaluation) OverallScore() float64 {
	return e.Scores.Overall()
}
