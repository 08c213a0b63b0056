// Package app is the practice TUI frame: header, footer and screen routing.
package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/dataready/internal/interview"
	"github.com/abhisek/dataready/internal/report"
	"github.com/abhisek/dataready/internal/router"
	"github.com/abhisek/dataready/internal/screen"
	interviewscreen "github.com/abhisek/dataready/internal/screens/interview"
	"github.com/abhisek/dataready/internal/screens/reportview"
	"github.com/abhisek/dataready/internal/screens/setup"
	"github.com/abhisek/dataready/internal/ui/layout"
)

// Options configures a practice run.
type Options struct {
	Interviews interviewscreen.Service
	// Setup preselects setup choices. Leave fields empty to ask for them.
	Setup interview.Setup
}

// Result is what a practice run produced.
type Result struct {
	SessionID string
	Report    *report.Report
	Err       error
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	opts   Options
	result Result
	width  int
	height int
}

func newAppModel(opts Options) AppModel {
	m := AppModel{opts: opts}
	m.router = router.New(setup.New(opts.Setup, m.startInterview))
	return m
}

func (m AppModel) startInterview(s interview.Setup) tea.Cmd {
	svc := m.opts.Interviews
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: interviewscreen.New(svc, s)}
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case interviewscreen.FinishedMsg:
		m.result = Result{SessionID: msg.SessionID, Report: msg.Report, Err: msg.Err}
		if msg.Err != nil || msg.Report == nil {
			return m, tea.Quit
		}
		return m, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: reportview.New(msg.Report)}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}
	header := layout.RenderHeader(title, status, m.width)

	footerHints := []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = kp.KeyHints()
	}
	footer := layout.RenderFooter(footerHints, m.width)

	content := m.router.View(m.width, layout.ContentHeight(header, footer, m.height))
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the practice TUI and blocks until it exits.
func Run(opts Options) (Result, error) {
	p := tea.NewProgram(newAppModel(opts))
	final, err := p.Run()
	if err != nil {
		return Result{}, err
	}
	if m, ok := final.(AppModel); ok {
		return m.result, nil
	}
	return Result{}, nil
}
