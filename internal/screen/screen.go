// Package screen defines the contract between the practice TUI frame and
// the setup, interview and report pages it routes between.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/dataready/internal/ui/layout"
)

// Screen is one page of the practice TUI. The frame owns the header and
// footer; a screen only renders the content area it is given.
type Screen interface {
	Init() tea.Cmd
	// Update may return a different Screen to hand control over.
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	// Title is shown on the left of the header.
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider fills the right side of the header, e.g. "Q 3/8".
type StatusProvider interface {
	Status() string
}
