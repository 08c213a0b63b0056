package components

import (
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/dataready/internal/ui/theme"
)

// AnswerBox is a multi-line answer editor. Enter inserts a newline; the
// owning screen decides which key submits.
type AnswerBox struct {
	Model textarea.Model
}

// NewAnswerBox creates a focused editor of the given size.
func NewAnswerBox(width, height int) AnswerBox {
	ta := textarea.New()
	ta.Placeholder = "Type your answer..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(width)
	ta.SetHeight(height)
	ta.Focus()
	return AnswerBox{Model: ta}
}

// Init returns the focus command.
func (a AnswerBox) Init() tea.Cmd {
	return a.Model.Focus()
}

// Update forwards input to the editor.
func (a AnswerBox) Update(msg tea.Msg) (AnswerBox, tea.Cmd) {
	var cmd tea.Cmd
	a.Model, cmd = a.Model.Update(msg)
	return a, cmd
}

// View renders the editor inside a card border.
func (a AnswerBox) View() string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(a.Model.View())
}

// Value returns the trimmed answer text.
func (a AnswerBox) Value() string {
	return strings.TrimSpace(a.Model.Value())
}

// Resize adapts the editor to the terminal.
func (a *AnswerBox) Resize(width, height int) {
	a.Model.SetWidth(width)
	a.Model.SetHeight(height)
}

// Reset clears the editor for the next question.
func (a *AnswerBox) Reset() {
	a.Model.Reset()
}
