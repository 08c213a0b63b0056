// Package setup is the first practice screen: it collects the interview
// setup one step at a time.
package setup

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/dataready/internal/catalog"
	"github.com/abhisek/dataready/internal/interview"
	"github.com/abhisek/dataready/internal/screen"
	"github.com/abhisek/dataready/internal/ui/components"
	"github.com/abhisek/dataready/internal/ui/layout"
	"github.com/abhisek/dataready/internal/ui/theme"
)

type step int

const (
	stepRole step = iota
	stepCloud
	stepMode
	stepYears
)

// chosenMsg carries a menu pick back into Update.
type chosenMsg struct {
	step  step
	value string
}

// SetupScreen walks through role, cloud, mode and years of experience.
type SetupScreen struct {
	setup  interview.Setup
	step   step
	menus  map[step]components.Menu
	years  components.NumberInput
	onDone func(interview.Setup) tea.Cmd
}

var (
	_ screen.Screen          = (*SetupScreen)(nil)
	_ screen.KeyHintProvider = (*SetupScreen)(nil)
)

// New creates the setup screen. Fields already set in defaults preselect
// their menu entries; onDone receives the completed setup.
func New(defaults interview.Setup, onDone func(interview.Setup) tea.Cmd) *SetupScreen {
	s := &SetupScreen{
		setup:  defaults.WithDefaults(),
		onDone: onDone,
		years:  components.NewNumberInput("e.g. 3", 2),
	}
	if defaults.YearsOfExperience > 0 {
		s.years.SetValue(defaults.YearsOfExperience)
	}
	s.menus = map[step]components.Menu{
		stepRole:  s.roleMenu(),
		stepCloud: s.cloudMenu(),
		stepMode:  s.modeMenu(),
	}
	return s
}

func choose(st step, value string) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg { return chosenMsg{step: st, value: value} }
	}
}

func (s *SetupScreen) roleMenu() components.Menu {
	var items []components.MenuItem
	selected := 0
	for i, r := range catalog.AllRoles() {
		info := r.Info()
		items = append(items, components.MenuItem{
			Label:  info.DisplayName,
			Hint:   info.ExperienceRange,
			Action: choose(stepRole, string(r)),
		})
		if r == s.setup.TargetRole {
			selected = i
		}
	}
	m := components.NewMenu(items)
	m.Selected = selected
	return m
}

func (s *SetupScreen) cloudMenu() components.Menu {
	var items []components.MenuItem
	selected := 0
	for i, c := range catalog.AllClouds() {
		items = append(items, components.MenuItem{
			Label:  c.DisplayName(),
			Action: choose(stepCloud, string(c)),
		})
		if c == s.setup.CloudPreference {
			selected = i
		}
	}
	m := components.NewMenu(items)
	m.Selected = selected
	return m
}

var modeHints = map[interview.Mode]string{
	interview.ModeStructured:         "core questions only",
	interview.ModeStructuredFollowup: "probes weak answers",
	interview.ModeStress:             "pressure style",
}

func (s *SetupScreen) modeMenu() components.Menu {
	var items []components.MenuItem
	selected := 0
	for i, md := range interview.AllModes() {
		items = append(items, components.MenuItem{
			Label:  strings.ReplaceAll(string(md), "_", " + "),
			Hint:   modeHints[md],
			Action: choose(stepMode, string(md)),
		})
		if md == s.setup.Mode {
			selected = i
		}
	}
	m := components.NewMenu(items)
	m.Selected = selected
	return m
}

func (s *SetupScreen) Init() tea.Cmd {
	return nil
}

func (s *SetupScreen) Title() string {
	return "Interview Setup"
}

// Setup returns the setup collected so far.
func (s *SetupScreen) Setup() interview.Setup {
	return s.setup
}

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	if s.step == stepYears {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start interview"},
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case chosenMsg:
		return s.apply(msg)
	case tea.KeyMsg:
		if msg.String() == "esc" {
			if s.step > stepRole {
				s.step--
			}
			return s, nil
		}
		if s.step == stepYears {
			if msg.String() == "enter" {
				return s.submit()
			}
			var cmd tea.Cmd
			s.years, cmd = s.years.Update(msg)
			return s, cmd
		}
		m, cmd := s.menus[s.step].Update(msg)
		s.menus[s.step] = m
		return s, cmd
	}

	if s.step == stepYears {
		var cmd tea.Cmd
		s.years, cmd = s.years.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SetupScreen) apply(msg chosenMsg) (screen.Screen, tea.Cmd) {
	switch msg.step {
	case stepRole:
		s.setup.TargetRole = catalog.Role(msg.value)
	case stepCloud:
		s.setup.CloudPreference = catalog.CloudPreference(msg.value)
	case stepMode:
		s.setup.Mode = interview.Mode(msg.value)
	}
	s.step = msg.step + 1
	if s.step == stepYears {
		return s, s.years.Init()
	}
	return s, nil
}

func (s *SetupScreen) submit() (screen.Screen, tea.Cmd) {
	years, err := s.years.Int()
	if err != nil {
		s.years.SetError("Enter your years of experience")
		return s, nil
	}
	s.setup.YearsOfExperience = years
	if err := s.setup.Validate(); err != nil {
		s.years.SetError(err.Error())
		return s, nil
	}
	if s.onDone == nil {
		return s, nil
	}
	return s, s.onDone(s.setup)
}

var stepPrompts = map[step]string{
	stepRole:  "Which role are you preparing for?",
	stepCloud: "Which cloud should questions lean on?",
	stepMode:  "How should the interviewer run?",
	stepYears: "How many years of data engineering experience do you have?",
}

func (s *SetupScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Heading.Render(stepPrompts[s.step]))
	b.WriteString("\n\n")

	if s.step == stepYears {
		b.WriteString("  ")
		b.WriteString(s.years.View())
		b.WriteString("\n")
	} else {
		b.WriteString(s.menus[s.step].View())
	}

	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(s.progress()))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Card.Width(min(width-4, 72)).Render(b.String()))
}

func (s *SetupScreen) progress() string {
	var parts []string
	if s.step > stepRole {
		parts = append(parts, s.setup.TargetRole.DisplayName())
	}
	if s.step > stepCloud {
		parts = append(parts, s.setup.CloudPreference.DisplayName())
	}
	if s.step > stepMode {
		parts = append(parts, string(s.setup.Mode))
	}
	return fmt.Sprintf("Step %d of 4  %s", s.step+1, strings.Join(parts, " · "))
}
