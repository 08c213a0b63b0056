package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/dataready/internal/ui/theme"
)

// ScoreBar displays a 0-10 score as a horizontal bar.
type ScoreBar struct {
	Label      string
	LabelWidth int
	Score      float64
	Width      int
}

// NewScoreBar creates a new score bar.
func NewScoreBar(label string, score float64, labelWidth, width int) ScoreBar {
	return ScoreBar{
		Label:      label,
		LabelWidth: labelWidth,
		Score:      score,
		Width:      width,
	}
}

// View renders the score bar.
func (p ScoreBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().
			Foreground(theme.Text).
			Width(p.LabelWidth).
			Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	scoreWidth := 7 // "  10.0"

	barWidth := p.Width - labelWidth - scoreWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Score / 10)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	result += lipgloss.NewStyle().
		Foreground(theme.ScoreColor(p.Score)).
		Render(strings.Repeat("█", filled))
	result += lipgloss.NewStyle().
		Foreground(theme.Border).
		Render(strings.Repeat("░", empty))

	result += lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("  %4.1f", p.Score))

	return result
}
