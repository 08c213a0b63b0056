package interview

import (
	"fmt"
	"sort"
	"strings"
)

// Trend summarises recent difficulty movement.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

const (
	trendWindow  = 3
	recentWindow = 3
)

// TrendFrom compares the first and last of the final three history entries.
func TrendFrom(history []int) Trend {
	if len(history) < trendWindow {
		return TrendStable
	}
	recent := history[len(history)-trendWindow:]
	switch {
	case recent[len(recent)-1] > recent[0]:
		return TrendImproving
	case recent[len(recent)-1] < recent[0]:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// Context is the read-only bundle handed to question, evaluation and
// follow-up collaborators.
type Context struct {
	Session          *Session
	RecentResponses  []QuestionResponse
	SkillsCovered    []string
	SkillsRemaining  []string
	PerformanceTrend Trend
}

// BuildContext derives coverage and trend from s. Covered skills are those
// asked or scored; remaining skills keep the session's key order.
func BuildContext(s *Session) Context {
	covered := make(StringSet, len(s.AskedSkills))
	for id := range s.AskedSkills {
		covered.Add(id)
	}
	for id, scores := range s.SkillScores {
		if len(scores) > 0 {
			covered.Add(id)
		}
	}

	var coveredList, remaining []string
	for _, id := range s.SkillIDs {
		if covered.Has(id) {
			coveredList = append(coveredList, id)
		} else {
			remaining = append(remaining, id)
		}
	}
	var extra []string
	for id := range covered {
		if !s.HasSkill(id) {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	coveredList = append(coveredList, extra...)

	start := max(0, len(s.Questions)-recentWindow)
	recent := append([]QuestionResponse(nil), s.Questions[start:]...)

	return Context{
		Session:          s,
		RecentResponses:  recent,
		SkillsCovered:    coveredList,
		SkillsRemaining:  remaining,
		PerformanceTrend: TrendFrom(s.DifficultyHistory),
	}
}

// FirstRemainingSkill returns the first uncovered skill or fallback.
func (c Context) FirstRemainingSkill(fallback string) string {
	if len(c.SkillsRemaining) > 0 {
		return c.SkillsRemaining[0]
	}
	return fallback
}

// PromptSummary renders the context for LLM prompts.
func (c Context) PromptSummary() string {
	s := c.Session
	covered := strings.Join(c.SkillsCovered, ", ")
	if covered == "" {
		covered = "None yet"
	}
	remaining := c.SkillsRemaining
	if len(remaining) > 5 {
		remaining = remaining[:5]
	}

	var b strings.Builder
	b.WriteString("Interview Context:\n")
	fmt.Fprintf(&b, "- Role: %s\n", s.Setup.TargetRole.DisplayName())
	fmt.Fprintf(&b, "- Experience: %d years\n", s.Setup.YearsOfExperience)
	fmt.Fprintf(&b, "- Cloud: %s\n", s.Setup.CloudPreference)
	fmt.Fprintf(&b, "- Mode: %s\n", s.Setup.Mode)
	fmt.Fprintf(&b, "- Questions Asked: %d/%d\n", s.TotalCoreQuestions, s.Setup.MaxQuestions)
	fmt.Fprintf(&b, "- Follow-ups Asked: %d\n", s.TotalFollowups)
	fmt.Fprintf(&b, "- Current Difficulty: %d/10\n", s.Difficulty)
	fmt.Fprintf(&b, "- Performance Trend: %s\n", c.PerformanceTrend)
	fmt.Fprintf(&b, "- Skills Covered: %s\n", covered)
	fmt.Fprintf(&b, "- Skills Remaining: %s...\n", strings.Join(remaining, ", "))
	return b.String()
}
