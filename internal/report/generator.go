package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/dataready/internal/catalog"
	"github.com/abhisek/dataready/internal/interview"
	"github.com/abhisek/dataready/internal/logging"
)

const (
	maxStrengths      = 5
	maxImprovements   = 5
	maxMissed         = 5
	maxSuggestions    = 6
	maxPrioritySkills = 5
	maxRoadmapSkills  = 3

	// priorityThreshold marks a skill as roadmap material.
	priorityThreshold = 6.5
	// answeredWell is the per-question score counted as a good answer.
	answeredWell = 7.0
	// skippedMarker prefixes transcripts of skipped questions.
	skippedMarker = "[Question skipped"
)

// Generator builds reports from sessions.
type Generator struct {
	now func() time.Time
	log *logging.Logger
}

// NewGenerator returns a report generator. A nil logger discards output.
func NewGenerator(log *logging.Logger) *Generator {
	if log == nil {
		log = logging.NewNop()
	}
	return &Generator{now: time.Now, log: log.Named("report")}
}

// Generate builds the report for s. The session is read, never mutated.
func (g *Generator) Generate(ctx context.Context, s *interview.Session) (*Report, error) {
	if s == nil {
		return nil, errors.New("generate report: nil session")
	}
	now := g.now().UTC()
	agg := aggregateSession(s)

	r := &Report{
		SessionID:             s.ID,
		GeneratedAt:           now,
		TargetRole:            string(s.Setup.TargetRole),
		YearsOfExperience:     s.Setup.YearsOfExperience,
		DurationMinutes:       s.DurationSeconds(now) / 60,
		OverallScore:          agg.overall,
		OverallLevel:          string(interview.LevelFor(agg.overall / 10)),
		OverallInterpretation: interpretScore(agg.overall),
		Dimensions: []Dimension{
			{Name: "Technical Correctness", Score: agg.avg.TechnicalCorrectness},
			{Name: "Depth of Understanding", Score: agg.avg.DepthOfUnderstanding},
			{Name: "Practical Experience", Score: agg.avg.PracticalExperience},
			{Name: "Communication Clarity", Score: agg.avg.CommunicationClarity},
			{Name: "Confidence", Score: agg.avg.Confidence},
		},
		SkillScores:                skillScores(agg.skills),
		Verdict:                    verdictFor(agg.overall),
		TotalQuestions:             s.TotalCoreQuestions,
		TotalFollowups:             s.TotalFollowups,
		AverageResponseTimeSeconds: agg.avgResponseTime,
	}
	r.Readiness = readinessFor(agg.overall, s.Setup.TargetRole, s.Setup.YearsOfExperience)
	r.ReadinessExplanation = explainReadiness(r.Readiness, s.Setup.TargetRole)
	r.Strengths = strengths(agg)
	r.AreasForImprovement = improvementAreas(agg)
	r.MissedConcepts = missedConcepts(s.Setup.TargetRole, agg)
	r.CommunicationFeedback = communicationFeedback(agg.avg)
	r.Suggestions = suggestions(agg)
	r.Roadmap = roadmap(agg)
	r.Timeline = timeline(s)
	r.QuestionFeedback = questionFeedback(s)

	g.log.Info(ctx, "report generated",
		zap.String("session.id", s.ID),
		zap.Float64("overall_score", r.OverallScore),
		zap.String("verdict", string(r.Verdict)),
	)
	return r, nil
}

// skillAggregate collects the evaluations attributed to one skill.
type skillAggregate struct {
	id         string
	name       string
	scores     []float64
	avg        float64
	trend      string
	strengths  []string
	weaknesses []string
}

type aggregate struct {
	evals           []*interview.ResponseEvaluation
	avg             interview.Scores
	overall         float64
	skills          []*skillAggregate
	avgResponseTime float64
}

func aggregateSession(s *interview.Session) aggregate {
	evals := s.Evaluations()
	agg := aggregate{evals: evals}
	if len(evals) == 0 {
		return agg
	}

	var sum interview.Scores
	var respTime float64
	bySkill := map[string]*skillAggregate{}
	for _, ev := range evals {
		sum.TechnicalCorrectness += ev.Scores.TechnicalCorrectness
		sum.DepthOfUnderstanding += ev.Scores.DepthOfUnderstanding
		sum.PracticalExperience += ev.Scores.PracticalExperience
		sum.CommunicationClarity += ev.Scores.CommunicationClarity
		sum.Confidence += ev.Scores.Confidence
		respTime += ev.ResponseDurationSeconds

		sk, ok := bySkill[ev.SkillID]
		if !ok {
			sk = &skillAggregate{id: ev.SkillID, name: catalog.SkillName(ev.SkillID)}
			bySkill[ev.SkillID] = sk
			agg.skills = append(agg.skills, sk)
		}
		sk.scores = append(sk.scores, ev.OverallScore())
		sk.strengths = append(sk.strengths, ev.Feedback.WentWell...)
		sk.weaknesses = append(sk.weaknesses, ev.Feedback.Missing...)
	}

	n := float64(len(evals))
	agg.avg = interview.Scores{
		TechnicalCorrectness: sum.TechnicalCorrectness / n,
		DepthOfUnderstanding: sum.DepthOfUnderstanding / n,
		PracticalExperience:  sum.PracticalExperience / n,
		CommunicationClarity: sum.CommunicationClarity / n,
		Confidence:           sum.Confidence / n,
	}
	dimAvg := (agg.avg.TechnicalCorrectness + agg.avg.DepthOfUnderstanding +
		agg.avg.PracticalExperience + agg.avg.CommunicationClarity + agg.avg.Confidence) / 5
	agg.overall = dimAvg * 10
	agg.avgResponseTime = respTime / n

	for _, sk := range agg.skills {
		sk.avg = mean(sk.scores)
		sk.trend = skillTrend(sk.scores)
		sk.strengths = limit(unique(sk.strengths), 3)
		sk.weaknesses = limit(unique(sk.weaknesses), 3)
	}
	return agg
}

// skillTrend compares the last score with the first, with a half point of
// tolerance.
func skillTrend(scores []float64) string {
	if len(scores) < 2 {
		return string(interview.TrendStable)
	}
	first, last := scores[0], scores[len(scores)-1]
	switch {
	case last > first+0.5:
		return string(interview.TrendImproving)
	case last < first-0.5:
		return string(interview.TrendDeclining)
	default:
		return string(interview.TrendStable)
	}
}

func verdictFor(overall float64) Verdict {
	switch {
	case overall >= 85:
		return VerdictStrongHire
	case overall >= 70:
		return VerdictHire
	case overall >= 55:
		return VerdictBorderline
	default:
		return VerdictNeedsImprovement
	}
}

// experienceAligned allows two years of slack above the role's range.
func experienceAligned(role catalog.Role, years int) bool {
	info := role.Info()
	lo, hi := info.MinYears, info.MaxYears
	if hi == 0 {
		lo, hi = 0, 30
	}
	return years >= lo && years <= hi+2
}

func readinessFor(overall float64, role catalog.Role, years int) Readiness {
	aligned := experienceAligned(role, years)
	switch {
	case overall >= 80 && aligned:
		return ReadinessReady
	case overall >= 65 || (overall >= 55 && aligned):
		return ReadinessAlmostReady
	case overall >= 45:
		return ReadinessNeedsWork
	default:
		return ReadinessNotReady
	}
}

func explainReadiness(r Readiness, role catalog.Role) string {
	name := role.DisplayName()
	switch r {
	case ReadinessReady:
		return fmt.Sprintf("Demonstrates the skills and knowledge expected for a %s. Ready to interview with confidence.", name)
	case ReadinessAlmostReady:
		return fmt.Sprintf("Shows solid foundation for a %s role. A bit more preparation in weak areas will increase success chances.", name)
	case ReadinessNeedsWork:
		return fmt.Sprintf("Has potential for a %s position but requires focused improvement in key areas before interviewing.", name)
	case ReadinessNotReady:
		return fmt.Sprintf("Significant gaps exist for a %s role. Recommend structured learning path before attempting interviews.", name)
	}
	return "Assessment not available."
}

func interpretScore(overall float64) string {
	switch {
	case overall >= 90:
		return "Exceptional performance - ready for senior roles"
	case overall >= 80:
		return "Strong performance - well prepared for the target role"
	case overall >= 70:
		return "Good performance - ready with minor improvements"
	case overall >= 60:
		return "Adequate performance - some areas need strengthening"
	case overall >= 50:
		return "Below expectations - focused study recommended"
	default:
		return "Needs significant improvement before interview readiness"
	}
}

func skillScores(skills []*skillAggregate) []SkillScore {
	out := make([]SkillScore, 0, len(skills))
	for _, sk := range skills {
		category := "general"
		if info, err := catalog.GetSkill(sk.id); err == nil {
			category = string(info.Category)
		}
		well := 0
		for _, sc := range sk.scores {
			if sc >= answeredWell {
				well++
			}
		}
		out = append(out, SkillScore{
			SkillID:               sk.id,
			SkillName:             sk.name,
			Category:              category,
			Score:                 sk.avg,
			MaxScore:              10,
			QuestionsAsked:        len(sk.scores),
			QuestionsAnsweredWell: well,
			Trend:                 sk.trend,
			Summary:               summarizeSkill(sk.avg, sk.trend),
			Strengths:             limit(sk.strengths, 2),
			Gaps:                  limit(sk.weaknesses, 2),
		})
	}
	slices.SortStableFunc(out, func(a, b SkillScore) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return out
}

func summarizeSkill(score float64, trend string) string {
	var base string
	switch {
	case score >= 8:
		base = "Excellent understanding demonstrated"
	case score >= 6.5:
		base = "Good competency shown"
	case score >= 5:
		base = "Adequate knowledge with room for growth"
	case score >= 3.5:
		base = "Foundational understanding needs strengthening"
	default:
		base = "Significant gaps identified"
	}
	switch trend {
	case string(interview.TrendImproving):
		base += ", showing improvement throughout"
	case string(interview.TrendDeclining):
		base += ", consider reviewing fundamentals"
	}
	return base
}

func strengths(agg aggregate) []string {
	var out []string
	if agg.avg.TechnicalCorrectness >= 7.5 {
		out = append(out, "Strong technical accuracy in responses")
	}
	if agg.avg.DepthOfUnderstanding >= 7.5 {
		out = append(out, "Deep understanding of concepts")
	}
	if agg.avg.PracticalExperience >= 7.5 {
		out = append(out, "Solid hands-on experience evident")
	}
	if agg.avg.CommunicationClarity >= 7.5 {
		out = append(out, "Excellent communication skills")
	}
	if agg.avg.Confidence >= 7.5 {
		out = append(out, "Confident and composed delivery")
	}
	for _, sk := range agg.skills {
		if sk.avg >= 7.5 {
			out = append(out, "Strong performance in "+sk.name)
		}
	}
	for _, ev := range agg.evals {
		out = append(out, limit(ev.Feedback.WentWell, 1)...)
	}
	return limit(unique(out), maxStrengths)
}

func improvementAreas(agg aggregate) []string {
	var out []string
	if agg.avg.TechnicalCorrectness < 6 {
		out = append(out, "Technical accuracy needs improvement")
	}
	if agg.avg.DepthOfUnderstanding < 6 {
		out = append(out, "Deepen understanding of core concepts")
	}
	if agg.avg.PracticalExperience < 6 {
		out = append(out, "Gain more hands-on experience")
	}
	if agg.avg.CommunicationClarity < 6 {
		out = append(out, "Work on articulating ideas more clearly")
	}
	if agg.avg.Confidence < 6 {
		out = append(out, "Build more confidence in responses")
	}
	for _, sk := range agg.skills {
		if sk.avg < 5.5 {
			out = append(out, "Focus on improving "+sk.name)
		}
	}
	for _, ev := range agg.evals {
		out = append(out, limit(ev.Feedback.Missing, 1)...)
	}
	return limit(unique(out), maxImprovements)
}

// missedConcepts lists role focus areas that no evaluated skill matches by
// name or id, then weak skills and the gaps of weak answers.
func missedConcepts(role catalog.Role, agg aggregate) []string {
	var out []string
	for _, focus := range catalog.FocusAreas(role) {
		f := strings.ToLower(focus)
		covered := false
		for _, sk := range agg.skills {
			id := strings.ReplaceAll(strings.ToLower(sk.id), "_", " ")
			if strings.Contains(id, f) || strings.Contains(strings.ToLower(sk.name), f) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, "Not assessed: "+focus)
		}
	}
	for _, sk := range agg.skills {
		if sk.avg < 5 {
			out = append(out, "Weak understanding: "+sk.name)
		}
	}
	for _, ev := range agg.evals {
		if ev.OverallScore() < 5 {
			out = append(out, limit(ev.Feedback.Missing, 1)...)
		}
	}
	return limit(unique(out), maxMissed)
}

func communicationFeedback(avg interview.Scores) string {
	clarity, confidence := avg.CommunicationClarity, avg.Confidence
	switch {
	case clarity >= 8 && confidence >= 8:
		return "Excellent communicator with clear, confident delivery. " +
			"Responses were well-structured and easy to follow."
	case clarity >= 7 && confidence >= 7:
		return "Good communication skills overall. Responses were clear " +
			"with appropriate confidence levels."
	case clarity >= 6 || confidence >= 6:
		return "Communication is adequate but could be improved. " +
			"Consider structuring answers more clearly and projecting more confidence."
	default:
		return "Communication needs significant improvement. " +
			"Focus on organizing thoughts before speaking and building confidence."
	}
}

func suggestions(agg aggregate) []Suggestion {
	out := []Suggestion{}
	if agg.avg.TechnicalCorrectness < 7 {
		out = append(out, Suggestion{
			Area:       "Technical Knowledge",
			Priority:   "high",
			Suggestion: "Review core data engineering concepts and best practices",
			Resources: []string{
				"Designing Data-Intensive Applications (book)",
				"Data Engineering courses on Coursera/Udemy",
			},
			EstimatedTime: "4-6 weeks",
		})
	}
	if agg.avg.PracticalExperience < 7 {
		out = append(out, Suggestion{
			Area:       "Hands-on Experience",
			Priority:   "high",
			Suggestion: "Build personal projects to gain practical experience",
			Resources: []string{
				"Kaggle datasets for pipeline projects",
				"Cloud free tiers for practice",
			},
			EstimatedTime: "Ongoing",
		})
	}
	for _, sk := range agg.skills {
		if sk.avg < 6 {
			out = append(out, Suggestion{
				Area:          sk.name,
				Priority:      "medium",
				Suggestion:    fmt.Sprintf("Deep dive into %s concepts and practice", sk.name),
				Resources:     []string{},
				EstimatedTime: "2-3 weeks",
			})
		}
	}
	return limit(out, maxSuggestions)
}

func roadmap(agg aggregate) Roadmap {
	var weak []*skillAggregate
	for _, sk := range agg.skills {
		if sk.avg < priorityThreshold {
			weak = append(weak, sk)
		}
	}
	slices.SortStableFunc(weak, func(a, b *skillAggregate) int {
		switch {
		case a.avg < b.avg:
			return -1
		case a.avg > b.avg:
			return 1
		}
		return 0
	})

	priority := []PrioritySkill{}
	for _, sk := range limit(weak, maxPrioritySkills) {
		priority = append(priority, PrioritySkill{
			SkillID:   sk.id,
			SkillName: sk.name,
			Score:     sk.avg,
			Focus:     recommendedFocus(sk),
		})
	}

	var weeks []RoadmapWeek
	if agg.avg.TechnicalCorrectness < 7 {
		weeks = append(weeks, RoadmapWeek{
			Week:  len(weeks) + 1,
			Focus: "Core Concepts Review",
			Activities: []string{
				"Review data engineering fundamentals",
				"Study system design patterns",
				"Practice SQL problems",
			},
		})
	}
	for _, sk := range limit(weak, maxRoadmapSkills) {
		weeks = append(weeks, RoadmapWeek{
			Week:  len(weeks) + 1,
			Focus: sk.name,
			Activities: []string{
				fmt.Sprintf("Study %s in depth", sk.name),
				"Complete hands-on exercises",
				"Review real-world examples",
			},
		})
	}
	weeks = append(weeks, RoadmapWeek{
		Week:  len(weeks) + 1,
		Focus: "Interview Practice",
		Activities: []string{
			"Take another mock interview",
			"Practice explaining concepts aloud",
			"Review and refine weak areas",
		},
	})

	return Roadmap{
		Timeframe:      timeframe(agg.overall),
		PrioritySkills: priority,
		Weeks:          weeks,
		Resources: []Resource{
			{Title: "Designing Data-Intensive Applications", Type: "Book"},
			{Title: "System Design Interview", Type: "Book"},
			{Title: "LeetCode SQL Problems", Type: "Practice"},
		},
		Practice: []string{
			"Explain concepts out loud daily",
			"Build a sample data pipeline",
			"Review one system design case study per week",
		},
	}
}

func recommendedFocus(sk *skillAggregate) string {
	switch {
	case sk.avg < 4:
		return fmt.Sprintf("Build fundamentals of %s from first principles", sk.name)
	case sk.avg < 5.5:
		return fmt.Sprintf("Practice applied %s scenarios with hands-on exercises", sk.name)
	default:
		return fmt.Sprintf("Deepen %s trade-off analysis with real-world case studies", sk.name)
	}
}

func timeframe(overall float64) string {
	switch {
	case overall >= 70:
		return "2-4 weeks"
	case overall >= 50:
		return "1-2 months"
	default:
		return "2-3 months"
	}
}

// difficultyAt returns the difficulty recorded after the i-th question, or
// the current difficulty when history is shorter.
func difficultyAt(s *interview.Session, i int) int {
	if i < len(s.DifficultyHistory) {
		return s.DifficultyHistory[i]
	}
	return s.Difficulty
}

func timeline(s *interview.Session) []TimelinePoint {
	out := []TimelinePoint{}
	for i := range s.Questions {
		q := &s.Questions[i]
		if q.Evaluation == nil {
			continue
		}
		out = append(out, TimelinePoint{
			QuestionNumber: i + 1,
			IsFollowup:     q.IsFollowup,
			Score:          round1(q.Evaluation.OverallScore()),
			Difficulty:     difficultyAt(s, i),
		})
	}
	return out
}

func questionFeedback(s *interview.Session) []QuestionFeedback {
	out := make([]QuestionFeedback, 0, len(s.Questions))
	for i := range s.Questions {
		q := &s.Questions[i]
		var sc interview.Scores
		var fb interview.Feedback
		if q.Evaluation != nil {
			sc = q.Evaluation.Scores
			fb = q.Evaluation.Feedback
		}

		skipped := q.ResponseTranscript == "" || strings.Contains(q.ResponseTranscript, skippedMarker)
		overall := 0.0
		wentWell := []string{}
		improvements := []string{}
		if skipped {
			improvements = append(improvements, "Question was skipped - no assessment possible")
		} else {
			overall = sc.Overall()
			if sc.TechnicalCorrectness >= 7 {
				wentWell = append(wentWell, "Strong technical accuracy")
			}
			if sc.CommunicationClarity >= 7 {
				wentWell = append(wentWell, "Clear communication")
			}
			if sc.DepthOfUnderstanding >= 7 {
				wentWell = append(wentWell, "Good depth of understanding")
			}

			for _, p := range limit(fb.Missing, 3) {
				improvements = append(improvements, "Missing: "+p)
			}
			for _, f := range limit(fb.RedFlags, 2) {
				improvements = append(improvements, "Concern: "+f)
			}
			if sc.TechnicalCorrectness < 5 {
				improvements = append(improvements, "Review core concepts for accuracy")
			}
			if sc.PracticalExperience < 5 {
				improvements = append(improvements, "Include more real-world examples")
			}
			if sc.DepthOfUnderstanding < 5 {
				improvements = append(improvements, "Go deeper into underlying principles")
			}
			if sc.CommunicationClarity < 5 {
				improvements = append(improvements, "Structure your answer more clearly")
			}
		}

		var expected string
		if overall < 7 && len(q.ExpectedPoints) > 0 {
			expected = "Key points to cover:\n• " + strings.Join(limit(q.ExpectedPoints, 5), "\n• ")
		}

		var skillName, category string
		if q.SkillID != "" {
			if info, err := catalog.GetSkill(q.SkillID); err == nil {
				skillName = info.Name
				category = string(info.Category)
			}
		}

		out = append(out, QuestionFeedback{
			QuestionNumber: i + 1,
			Question:       q.QuestionText,
			SkillID:        q.SkillID,
			SkillName:      skillName,
			Category:       category,
			IsFollowup:     q.IsFollowup,
			Skipped:        skipped,
			Score:          round1(overall),
			Scores: QuestionScores{
				Technical:     sc.TechnicalCorrectness,
				Depth:         sc.DepthOfUnderstanding,
				Practical:     sc.PracticalExperience,
				Communication: sc.CommunicationClarity,
				Confidence:    sc.Confidence,
			},
			Transcript:     q.ResponseTranscript,
			WentWell:       limit(wentWell, 4),
			Improvements:   limit(improvements, 5),
			ExpectedAnswer: expected,
			Difficulty:     difficultyAt(s, i),
		})
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// unique drops repeats, keeping first occurrences in order.
func unique(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

func limit[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	if items == nil {
		return []T{}
	}
	return items
}
