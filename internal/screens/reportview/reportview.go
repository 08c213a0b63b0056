// Package reportview shows the finished interview report in a scrollable
// pane.
package reportview

import (
	"fmt"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/dataready/internal/report"
	"github.com/abhisek/dataready/internal/screen"
	"github.com/abhisek/dataready/internal/ui/layout"
)

// ReportScreen renders a report. Enter or q leaves the app.
type ReportScreen struct {
	report   *report.Report
	viewport viewport.Model
}

var (
	_ screen.Screen          = (*ReportScreen)(nil)
	_ screen.KeyHintProvider = (*ReportScreen)(nil)
	_ screen.StatusProvider  = (*ReportScreen)(nil)
)

// New creates the report screen.
func New(r *report.Report) *ReportScreen {
	vp := viewport.New(viewport.WithWidth(layout.MinWidth), viewport.WithHeight(layout.MinHeight))
	vp.SetContent(report.Render(r))
	return &ReportScreen{report: r, viewport: vp}
}

func (s *ReportScreen) Init() tea.Cmd {
	return nil
}

func (s *ReportScreen) Title() string {
	return "Report"
}

// Status shows the overall score in the header.
func (s *ReportScreen) Status() string {
	return lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%.0f/100", s.report.OverallScore))
}

func (s *ReportScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Q", Description: "Quit"},
	}
}

func (s *ReportScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "q", "enter", "esc":
			return s, tea.Quit
		}
	}
	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return s, cmd
}

func (s *ReportScreen) View(width, height int) string {
	s.viewport.SetWidth(width)
	s.viewport.SetHeight(height)
	return s.viewport.View()
}
