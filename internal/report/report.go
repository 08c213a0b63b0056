// Package report turns a finished interview session into the candidate's
// feedback report.
package report

import "time"

// Verdict is the hiring recommendation.
type Verdict string

const (
	VerdictStrongHire       Verdict = "strong_hire"
	VerdictHire             Verdict = "hire"
	VerdictBorderline       Verdict = "borderline"
	VerdictNeedsImprovement Verdict = "needs_improvement"
)

var verdictNames = map[Verdict]string{
	VerdictStrongHire:       "Strong Hire",
	VerdictHire:             "Hire",
	VerdictBorderline:       "Borderline",
	VerdictNeedsImprovement: "Needs Improvement",
}

var verdictDescriptions = map[Verdict]string{
	VerdictStrongHire:       "Demonstrates exceptional skill and would be a strong addition to any team.",
	VerdictHire:             "Shows solid competence and would perform well in the role.",
	VerdictBorderline:       "Has potential but may need additional support or training.",
	VerdictNeedsImprovement: "Requires significant development before being ready for this role.",
}

// DisplayName returns the human-readable verdict.
func (v Verdict) DisplayName() string {
	if n, ok := verdictNames[v]; ok {
		return n
	}
	return string(v)
}

// Description explains the verdict in one sentence.
func (v Verdict) Description() string { return verdictDescriptions[v] }

// Readiness is the candidate's readiness for the target role.
type Readiness string

const (
	ReadinessReady       Readiness = "ready"
	ReadinessAlmostReady Readiness = "almost_ready"
	ReadinessNeedsWork   Readiness = "needs_work"
	ReadinessNotReady    Readiness = "not_ready"
)

// Dimension is one averaged scoring dimension, 0-10.
type Dimension struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// SkillScore aggregates every evaluated answer for one skill.
type SkillScore struct {
	SkillID               string   `json:"skill_id"`
	SkillName             string   `json:"skill_name"`
	Category              string   `json:"category"`
	Score                 float64  `json:"score"`
	MaxScore              float64  `json:"max_score"`
	QuestionsAsked        int      `json:"questions_asked"`
	QuestionsAnsweredWell int      `json:"questions_answered_well"`
	Trend                 string   `json:"trend"`
	Summary               string   `json:"summary"`
	Strengths             []string `json:"strengths"`
	Gaps                  []string `json:"gaps"`
}

// Suggestion is an actionable improvement item.
type Suggestion struct {
	Area          string   `json:"area"`
	Priority      string   `json:"priority"`
	Suggestion    string   `json:"suggestion"`
	Resources     []string `json:"resources"`
	EstimatedTime string   `json:"estimated_time"`
}

// PrioritySkill is a weak skill the roadmap targets first.
type PrioritySkill struct {
	SkillID   string  `json:"skill_id"`
	SkillName string  `json:"skill_name"`
	Score     float64 `json:"score"`
	Focus     string  `json:"recommended_focus"`
}

// RoadmapWeek is one week of the study plan.
type RoadmapWeek struct {
	Week       int      `json:"week"`
	Focus      string   `json:"focus"`
	Activities []string `json:"activities"`
}

// Resource is a recommended book or practice site.
type Resource struct {
	Title string `json:"title"`
	Type  string `json:"type"`
}

// Roadmap is the personalized study plan.
type Roadmap struct {
	Timeframe      string          `json:"timeframe"`
	PrioritySkills []PrioritySkill `json:"priority_skills"`
	Weeks          []RoadmapWeek   `json:"weeks"`
	Resources      []Resource      `json:"recommended_resources"`
	Practice       []string        `json:"practice_suggestions"`
}

// TimelinePoint is the score of one evaluated question.
type TimelinePoint struct {
	QuestionNumber int     `json:"question_number"`
	IsFollowup     bool    `json:"is_followup"`
	Score          float64 `json:"score"`
	Difficulty     int     `json:"difficulty"`
}

// QuestionScores is the per-dimension breakdown shown for one question.
type QuestionScores struct {
	Technical     float64 `json:"technical"`
	Depth         float64 `json:"depth"`
	Practical     float64 `json:"practical"`
	Communication float64 `json:"communication"`
	Confidence    float64 `json:"confidence"`
}

// QuestionFeedback is the detailed feedback for one question.
type QuestionFeedback struct {
	QuestionNumber int            `json:"question_number"`
	Question       string         `json:"question"`
	SkillID        string         `json:"skill_id"`
	SkillName      string         `json:"skill_name"`
	Category       string         `json:"category"`
	IsFollowup     bool           `json:"is_followup"`
	Skipped        bool           `json:"skipped"`
	Score          float64        `json:"score"`
	Scores         QuestionScores `json:"scores"`
	Transcript     string         `json:"transcript"`
	WentWell       []string       `json:"what_went_well"`
	Improvements   []string       `json:"improvements"`
	ExpectedAnswer string         `json:"expected_answer"`
	Difficulty     int            `json:"difficulty"`
}

// Report is the complete interview report.
type Report struct {
	SessionID         string    `json:"session_id"`
	GeneratedAt       time.Time `json:"generated_at"`
	TargetRole        string    `json:"target_role"`
	YearsOfExperience int       `json:"years_of_experience"`
	DurationMinutes   float64   `json:"interview_duration_minutes"`

	// OverallScore is on a 0-100 scale.
	OverallScore          float64 `json:"overall_score"`
	OverallLevel          string  `json:"overall_level"`
	OverallInterpretation string  `json:"overall_score_interpretation"`

	Dimensions  []Dimension  `json:"dimension_scores"`
	SkillScores []SkillScore `json:"skill_scores"`

	Verdict              Verdict   `json:"hiring_verdict"`
	Readiness            Readiness `json:"role_readiness"`
	ReadinessExplanation string    `json:"role_readiness_explanation"`

	Strengths             []string     `json:"top_strengths"`
	AreasForImprovement   []string     `json:"areas_for_improvement"`
	MissedConcepts        []string     `json:"missed_concepts"`
	CommunicationFeedback string       `json:"communication_feedback"`
	Suggestions           []Suggestion `json:"improvement_suggestions"`
	Roadmap               Roadmap      `json:"study_roadmap"`

	Timeline         []TimelinePoint    `json:"performance_timeline"`
	QuestionFeedback []QuestionFeedback `json:"question_feedback"`

	TotalQuestions             int     `json:"total_questions"`
	TotalFollowups             int     `json:"total_followups"`
	AverageResponseTimeSeconds float64 `json:"average_response_time_seconds"`
}

// Summary is the condensed form of a report.
type Summary struct {
	SessionID          string    `json:"session_id"`
	OverallScore       float64   `json:"overall_score"`
	Verdict            Verdict   `json:"hiring_verdict"`
	Readiness          Readiness `json:"role_readiness"`
	TopStrength        string    `json:"top_strength"`
	TopImprovementArea string    `json:"top_improvement_area"`
	DurationMinutes    float64   `json:"interview_duration_minutes"`
}

// Summarize condenses r.
func (r *Report) Summarize() Summary {
	s := Summary{
		SessionID:          r.SessionID,
		OverallScore:       r.OverallScore,
		Verdict:            r.Verdict,
		Readiness:          r.Readiness,
		TopStrength:        "N/A",
		TopImprovementArea: "N/A",
		DurationMinutes:    r.DurationMinutes,
	}
	if len(r.Strengths) > 0 {
		s.TopStrength = r.Strengths[0]
	}
	if len(r.AreasForImprovement) > 0 {
		s.TopImprovementArea = r.AreasForImprovement[0]
	}
	return s
}
