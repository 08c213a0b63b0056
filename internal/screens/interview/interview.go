// Package interview is the practice screen that asks questions and takes
// typed answers.
package interview

import (
	"context"
	"errors"
	"fmt"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/dataready/internal/interview"
	"github.com/abhisek/dataready/internal/orchestrator"
	"github.com/abhisek/dataready/internal/report"
	"github.com/abhisek/dataready/internal/screen"
	"github.com/abhisek/dataready/internal/ui/components"
	"github.com/abhisek/dataready/internal/ui/layout"
	"github.com/abhisek/dataready/internal/ui/theme"
)

// Service is the part of the orchestrator the screen drives.
type Service interface {
	CreateSession(ctx context.Context, setup interview.Setup) (*interview.Session, error)
	StartInterview(ctx context.Context, id string) (*orchestrator.Action, error)
	SubmitResponse(ctx context.Context, id string, resp orchestrator.Response) (*orchestrator.Action, error)
	PauseInterview(ctx context.Context, id string) (*interview.Session, error)
	ResumeInterview(ctx context.Context, id string) (*orchestrator.Action, error)
	EndInterview(ctx context.Context, id, reason string) (*orchestrator.Action, error)
	GenerateReport(ctx context.Context, id string) (*report.Report, error)
}

type phase int

const (
	phaseStarting phase = iota
	phaseAnswering
	phaseProcessing
	phasePaused
	phaseConfirmEnd
	phaseReporting
	phaseFailed
)

const (
	answerHeight = 8
	maxCardWidth = 90
)

// InterviewScreen runs one interview from first question to report.
type InterviewScreen struct {
	svc       Service
	setup     interview.Setup
	sessionID string

	phase      phase
	prevPhase  phase
	current    *orchestrator.Action
	answer     components.AnswerBox
	spinner    spinner.Model
	errMsg     string
	hint       string
	answeredN  int
	followupsN int
}

var (
	_ screen.Screen          = (*InterviewScreen)(nil)
	_ screen.KeyHintProvider = (*InterviewScreen)(nil)
	_ screen.StatusProvider  = (*InterviewScreen)(nil)
)

// New creates the screen. The session is created on Init.
func New(svc Service, setup interview.Setup) *InterviewScreen {
	return &InterviewScreen{
		svc:     svc,
		setup:   setup,
		answer:  components.NewAnswerBox(maxCardWidth-8, answerHeight),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Accent))),
	}
}

func (s *InterviewScreen) Init() tea.Cmd {
	return tea.Batch(s.start(), s.spinner.Tick)
}

func (s *InterviewScreen) Title() string {
	return "Interview"
}

// SessionID returns the session id once created.
func (s *InterviewScreen) SessionID() string {
	return s.sessionID
}

// Status shows question progress in the header.
func (s *InterviewScreen) Status() string {
	if s.current == nil || s.current.TotalQuestions == 0 {
		return ""
	}
	return fmt.Sprintf("Q %d/%d", s.current.QuestionNumber, s.current.TotalQuestions)
}

func (s *InterviewScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseAnswering:
		return []layout.KeyHint{
			{Key: "Ctrl+S", Description: "Submit"},
			{Key: "Ctrl+P", Description: "Pause"},
			{Key: "Esc", Description: "End"},
		}
	case phasePaused:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Resume"},
			{Key: "Esc", Description: "End"},
		}
	case phaseConfirmEnd:
		return []layout.KeyHint{
			{Key: "Y", Description: "End interview"},
			{Key: "N", Description: "Keep going"},
		}
	case phaseFailed:
		return []layout.KeyHint{
			{Key: "Esc", Description: "Quit"},
		}
	}
	return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
}

func (s *InterviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		if msg.Err != nil {
			return s.fail(msg.Err)
		}
		s.sessionID = msg.SessionID
		return s.handleAction(msg.Action)

	case actionMsg:
		if msg.Err != nil {
			return s.recover(msg.Err)
		}
		return s.handleAction(msg.Action)

	case pausedMsg:
		if msg.Err != nil {
			return s.recover(msg.Err)
		}
		s.phase = phasePaused
		return s, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.WindowSizeMsg:
		s.answer.Resize(min(msg.Width, maxCardWidth)-8, answerHeight)
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.phase == phaseAnswering {
		var cmd tea.Cmd
		s.answer, cmd = s.answer.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *InterviewScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	switch s.phase {
	case phaseAnswering:
		switch key {
		case "ctrl+s":
			text := s.answer.Value()
			if text == "" {
				s.errMsg = "Write an answer before submitting"
				return s, nil
			}
			s.errMsg = ""
			s.phase = phaseProcessing
			return s, tea.Batch(s.submit(text), s.spinner.Tick)
		case "ctrl+p":
			return s, s.pause()
		case "esc":
			s.confirmEnd()
			return s, nil
		}
		s.errMsg = ""
		var cmd tea.Cmd
		s.answer, cmd = s.answer.Update(msg)
		return s, cmd

	case phasePaused:
		switch key {
		case "enter", "ctrl+p":
			s.phase = phaseProcessing
			return s, tea.Batch(s.resume(), s.spinner.Tick)
		case "esc":
			s.confirmEnd()
		}
		return s, nil

	case phaseConfirmEnd:
		switch key {
		case "y", "Y":
			s.phase = phaseProcessing
			return s, tea.Batch(s.end(), s.spinner.Tick)
		case "n", "N", "esc":
			s.phase = s.prevPhase
		}
		return s, nil

	case phaseFailed:
		if key == "esc" || key == "enter" || key == "q" {
			return s, tea.Quit
		}
	}
	return s, nil
}

func (s *InterviewScreen) confirmEnd() {
	s.prevPhase = s.phase
	s.phase = phaseConfirmEnd
}

func (s *InterviewScreen) handleAction(a *orchestrator.Action) (screen.Screen, tea.Cmd) {
	if a == nil {
		return s.fail(errors.New("empty response from interviewer"))
	}
	switch a.Action {
	case orchestrator.ActionQuestion, orchestrator.ActionFollowup, orchestrator.ActionResumed:
		if a.Action != orchestrator.ActionResumed && s.current != nil {
			s.answeredN++
		}
		if a.Action == orchestrator.ActionFollowup {
			s.followupsN++
			s.hint = a.FollowupReason
		} else if a.Action == orchestrator.ActionQuestion {
			s.hint = ""
		}
		if a.Action != orchestrator.ActionResumed || s.current == nil {
			s.answer.Reset()
		}
		s.current = a
		s.phase = phaseAnswering
		return s, s.answer.Init()

	case orchestrator.ActionComplete, orchestrator.ActionEnded:
		s.phase = phaseReporting
		return s, tea.Batch(s.generateReport(), s.spinner.Tick)
	}
	return s.fail(fmt.Errorf("unexpected action %q", a.Action))
}

// recover returns to the previous question after a failed call when one is
// showing; otherwise the screen fails.
func (s *InterviewScreen) recover(err error) (screen.Screen, tea.Cmd) {
	if s.current == nil {
		return s.fail(err)
	}
	var te *interview.InvalidTransitionError
	if errors.As(err, &te) {
		return s.fail(err)
	}
	s.errMsg = err.Error()
	s.phase = phaseAnswering
	return s, nil
}

func (s *InterviewScreen) fail(err error) (screen.Screen, tea.Cmd) {
	s.phase = phaseFailed
	s.errMsg = err.Error()
	return s, nil
}

func (s *InterviewScreen) start() tea.Cmd {
	svc, setup := s.svc, s.setup
	return func() tea.Msg {
		ctx := context.Background()
		sess, err := svc.CreateSession(ctx, setup)
		if err != nil {
			return startedMsg{Err: err}
		}
		a, err := svc.StartInterview(ctx, sess.ID)
		return startedMsg{SessionID: sess.ID, Action: a, Err: err}
	}
}

func (s *InterviewScreen) submit(text string) tea.Cmd {
	svc, id := s.svc, s.sessionID
	return func() tea.Msg {
		a, err := svc.SubmitResponse(context.Background(), id, orchestrator.Response{Transcript: text})
		return actionMsg{Action: a, Err: err}
	}
}

func (s *InterviewScreen) pause() tea.Cmd {
	svc, id := s.svc, s.sessionID
	return func() tea.Msg {
		_, err := svc.PauseInterview(context.Background(), id)
		return pausedMsg{Err: err}
	}
}

func (s *InterviewScreen) resume() tea.Cmd {
	svc, id := s.svc, s.sessionID
	return func() tea.Msg {
		a, err := svc.ResumeInterview(context.Background(), id)
		return actionMsg{Action: a, Err: err}
	}
}

func (s *InterviewScreen) end() tea.Cmd {
	svc, id := s.svc, s.sessionID
	return func() tea.Msg {
		a, err := svc.EndInterview(context.Background(), id, "user_ended")
		return actionMsg{Action: a, Err: err}
	}
}

func (s *InterviewScreen) generateReport() tea.Cmd {
	svc, id := s.svc, s.sessionID
	return func() tea.Msg {
		rep, err := svc.GenerateReport(context.Background(), id)
		return FinishedMsg{SessionID: id, Report: rep, Err: err}
	}
}
