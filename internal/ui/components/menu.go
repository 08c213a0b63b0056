package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/dataready/internal/ui/theme"
)

// MenuItem is one choice. Action runs when the item is picked.
type MenuItem struct {
	Label  string
	Hint   string
	Action func() tea.Cmd
}

// Menu is a vertical single-choice list. Up/down wrap around; digits 1-9
// pick an item directly.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	return Menu{Items: items}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}

	switch s := key.String(); s {
	case "up", "k":
		m.Selected = (m.Selected - 1 + len(m.Items)) % len(m.Items)
	case "down", "j", "tab":
		m.Selected = (m.Selected + 1) % len(m.Items)
	case "enter", "space":
		return m, m.pick()
	default:
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if i := int(s[0] - '1'); i < len(m.Items) {
				m.Selected = i
				return m, m.pick()
			}
		}
	}
	return m, nil
}

func (m Menu) pick() tea.Cmd {
	if m.Selected < 0 || m.Selected >= len(m.Items) || m.Items[m.Selected].Action == nil {
		return nil
	}
	return m.Items[m.Selected].Action()
}

func (m Menu) View() string {
	normal := lipgloss.NewStyle().Foreground(theme.Text)
	active := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)

	var b strings.Builder
	for i, item := range m.Items {
		line := fmt.Sprintf("  %d. %s", i+1, item.Label)
		if i == m.Selected {
			b.WriteString(active.Render("▸ " + line[2:]))
		} else {
			b.WriteString(normal.Render(line))
		}
		if item.Hint != "" {
			b.WriteString(theme.Hint.Render("  " + item.Hint))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
