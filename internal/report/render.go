package report

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/dataready/internal/catalog"
	"github.com/abhisek/dataready/internal/ui/components"
	"github.com/abhisek/dataready/internal/ui/theme"
)

const (
	renderWidth = 72
	barLabel    = 26
)

// Render formats r for a terminal.
func Render(r *Report) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render("DataReady Interview Report"))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("%s · %d years · %.0f min · %d questions, %d follow-ups",
		catalog.Role(r.TargetRole).DisplayName(), r.YearsOfExperience, r.DurationMinutes,
		r.TotalQuestions, r.TotalFollowups)))
	b.WriteString("\n\n")

	score := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ScoreColor(r.OverallScore / 10)).
		Render(fmt.Sprintf("%.0f/100", r.OverallScore))
	card := fmt.Sprintf("Overall  %s  %s\nVerdict  %s\n\n%s",
		score, theme.Hint.Render(r.OverallInterpretation),
		verdictStyle(r.Verdict).Render(r.Verdict.DisplayName()),
		r.ReadinessExplanation)
	b.WriteString(theme.Card.Width(renderWidth).Render(card))
	b.WriteString("\n")

	b.WriteString(theme.Heading.Render("Dimensions"))
	b.WriteString("\n")
	for _, d := range r.Dimensions {
		b.WriteString(components.NewScoreBar(d.Name, d.Score, barLabel, renderWidth).View())
		b.WriteString("\n")
	}

	if len(r.SkillScores) > 0 {
		b.WriteString(theme.Heading.Render("Skills"))
		b.WriteString("\n")
		for _, s := range r.SkillScores {
			b.WriteString(components.NewScoreBar(s.SkillName, s.Score, barLabel, renderWidth).View())
			b.WriteString("\n")
		}
	}

	writeList(&b, "Strengths", r.Strengths, theme.Good)
	writeList(&b, "Areas for improvement", r.AreasForImprovement, theme.Warn)
	writeList(&b, "Missed concepts", r.MissedConcepts, theme.Bad)

	b.WriteString(theme.Heading.Render("Communication"))
	b.WriteString("\n")
	b.WriteString(theme.Body.Width(renderWidth).Render(r.CommunicationFeedback))
	b.WriteString("\n")

	b.WriteString(theme.Heading.Render("Study roadmap (" + r.Roadmap.Timeframe + ")"))
	b.WriteString("\n")
	for _, p := range r.Roadmap.PrioritySkills {
		fmt.Fprintf(&b, "  %s %s\n", theme.Warn.Render(fmt.Sprintf("%4.1f", p.Score)), p.Focus)
	}
	for _, w := range r.Roadmap.Weeks {
		fmt.Fprintf(&b, "  Week %d: %s\n", w.Week, w.Focus)
	}

	return b.String()
}

func verdictStyle(v Verdict) lipgloss.Style {
	switch v {
	case VerdictStrongHire, VerdictHire:
		return theme.Good
	case VerdictBorderline:
		return theme.Warn
	default:
		return theme.Bad
	}
}

func writeList(b *strings.Builder, title string, items []string, bullet lipgloss.Style) {
	if len(items) == 0 {
		return
	}
	b.WriteString(theme.Heading.Render(title))
	b.WriteString("\n")
	for _, it := range items {
		b.WriteString("  " + bullet.Render("•") + " " + it + "\n")
	}
}
