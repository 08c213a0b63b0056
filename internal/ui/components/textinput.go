package components

import (
	"errors"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/dataready/internal/ui/theme"
)

// ErrEmptyNumber is returned by NumberInput.Int when nothing was typed.
var ErrEmptyNumber = errors.New("no number entered")

// NumberInput is a single-line input that only accepts digits, used for
// years of experience.
type NumberInput struct {
	input textinput.Model
	err   string
}

// NewNumberInput accepts at most digits characters.
func NewNumberInput(placeholder string, digits int) NumberInput {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = digits
	in.Focus()
	return NumberInput{input: in}
}

func (n NumberInput) Init() tea.Cmd {
	return n.input.Focus()
}

// Update drops typed text containing non-digits and clears any error.
func (n NumberInput) Update(msg tea.Msg) (NumberInput, tea.Cmd) {
	if key, ok := msg.(tea.KeyPressMsg); ok && key.Text != "" &&
		strings.TrimLeft(key.Text, "0123456789") != "" {
		return n, nil
	}
	n.err = ""
	var cmd tea.Cmd
	n.input, cmd = n.input.Update(msg)
	return n, cmd
}

func (n NumberInput) View() string {
	if n.err == "" {
		return n.input.View()
	}
	return n.input.View() + "\n" + lipgloss.NewStyle().Foreground(theme.Error).Render(n.err)
}

func (n NumberInput) Value() string { return n.input.Value() }

func (n *NumberInput) SetValue(v int) { n.input.SetValue(strconv.Itoa(v)) }

// Int parses the input. Empty input is ErrEmptyNumber.
func (n NumberInput) Int() (int, error) {
	v := strings.TrimSpace(n.input.Value())
	if v == "" {
		return 0, ErrEmptyNumber
	}
	return strconv.Atoi(v)
}

// SetError shows msg under the input until the next edit.
func (n *NumberInput) SetError(msg string) { n.err = msg }

// Error is the message currently shown, if any.
func (n NumberInput) Error() string { return n.err }
