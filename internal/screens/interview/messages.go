package interview

import (
	"github.com/abhisek/dataready/internal/orchestrator"
	"github.com/abhisek/dataready/internal/report"
)

// startedMsg is sent once the session is created and the first question
// is ready.
type startedMsg struct {
	SessionID string
	Action    *orchestrator.Action
	Err       error
}

// actionMsg carries the result of a submit, resume or end call.
type actionMsg struct {
	Action *orchestrator.Action
	Err    error
}

// pausedMsg confirms a pause.
type pausedMsg struct {
	Err error
}

// FinishedMsg is emitted when the report is ready. The app frame takes it
// from here.
type FinishedMsg struct {
	SessionID string
	Report    *report.Report
	Err       error
}
