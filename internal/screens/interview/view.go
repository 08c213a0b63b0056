package interview

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/dataready/internal/orchestrator"
	"github.com/abhisek/dataready/internal/ui/components"
	"github.com/abhisek/dataready/internal/ui/theme"
)

func (s *InterviewScreen) View(width, height int) string {
	cardWidth := min(width-4, maxCardWidth)

	var body string
	switch s.phase {
	case phaseStarting:
		body = s.spinner.View() + " Preparing your first question..."
	case phaseProcessing:
		body = s.renderQuestion(cardWidth) + "\n\n" + s.spinner.View() + " Evaluating..."
	case phaseReporting:
		body = s.spinner.View() + " Writing your report..."
	case phasePaused:
		body = theme.Heading.Render("Paused") + "\n\n" +
			theme.Hint.Render("Press Enter to pick up where you left off.")
	case phaseConfirmEnd:
		body = theme.Warn.Render("End the interview now?") + "\n\n" +
			theme.Hint.Render(fmt.Sprintf("%d answered so far. Your report covers those answers.", s.answeredN))
	case phaseFailed:
		body = theme.Bad.Render("Something went wrong") + "\n\n" + theme.Body.Render(s.errMsg)
	default:
		body = s.renderAnswering(cardWidth)
	}

	card := theme.Card.Width(cardWidth).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (s *InterviewScreen) renderQuestion(width int) string {
	if s.current == nil {
		return ""
	}
	var b strings.Builder
	label := fmt.Sprintf("Question %d of %d", s.current.QuestionNumber, s.current.TotalQuestions)
	if s.current.Action == orchestrator.ActionFollowup {
		label = "Follow-up"
	}
	b.WriteString(theme.Heading.Render(label))
	if s.current.Difficulty > 0 {
		b.WriteString("\n")
		b.WriteString(components.NewScoreBar("Difficulty", float64(s.current.Difficulty), 10, 20).View())
	}
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Width(width - 6).Render(s.current.QuestionText))
	if s.hint != "" && s.current.Action == orchestrator.ActionFollowup {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(s.hint))
	}
	return b.String()
}

func (s *InterviewScreen) renderAnswering(width int) string {
	var b strings.Builder
	b.WriteString(s.renderQuestion(width))
	b.WriteString("\n\n")
	b.WriteString(s.answer.View())
	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.Bad.Render(s.errMsg))
	}
	return b.String()
}
