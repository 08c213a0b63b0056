package orchestrator

import (
	"context"

	"github.com/abhisek/dataready/internal/interview"
)

// PauseInterview suspends an interview that is asking or listening.
func (o *Orchestrator) PauseInterview(ctx context.Context, id string) (*interview.Session, error) {
	return o.Transition(ctx, id, interview.StatePaused, "")
}

// ResumeInterview continues a paused interview. An unanswered question is
// re-offered; otherwise the next question is asked.
func (o *Orchestrator) ResumeInterview(ctx context.Context, id string) (*Action, error) {
	defer o.lock(id)()
	ctx = o.sessionContext(ctx, id)

	s, err := o.load(ctx, id)
	if err != nil {
		return nil, err
	}

	cur := s.CurrentQuestion()
	pending := cur != nil && !cur.Answered()
	if s.State != interview.StatePaused {
		target := interview.StateAsking
		if pending {
			target = interview.StateListening
		}
		return nil, &interview.InvalidTransitionError{
			Current:   s.State,
			Attempted: target,
			Allowed:   s.State.Allowed(),
		}
	}

	if !pending {
		return o.askNext(ctx, s)
	}
	if err := o.transition(ctx, s, interview.StateListening, ""); err != nil {
		return nil, err
	}
	return &Action{
		Action:         ActionResumed,
		Message:        "Interview resumed",
		QuestionID:     cur.QuestionID,
		QuestionText:   cur.QuestionText,
		QuestionNumber: s.TotalCoreQuestions,
		TotalQuestions: s.Setup.MaxQuestions,
		Difficulty:     cur.Difficulty,
	}, nil
}

// CancelInterview abandons the interview.
func (o *Orchestrator) CancelInterview(ctx context.Context, id string) (*interview.Session, error) {
	return o.Transition(ctx, id, interview.StateCancelled, "")
}

// FailInterview moves the interview to ERROR, for unrecoverable transport
// failures.
func (o *Orchestrator) FailInterview(ctx context.Context, id, msg string) (*interview.Session, error) {
	return o.Transition(ctx, id, interview.StateError, msg)
}

// Status reports progress without exposing evaluations.
func (o *Orchestrator) Status(ctx context.Context, id string) (*Status, error) {
	s, err := o.load(ctx, id)
	if err != nil {
		return nil, err
	}
	remaining := interview.BuildContext(s).SkillsRemaining
	if remaining == nil {
		remaining = []string{}
	}
	return &Status{
		SessionID:       s.ID,
		State:           s.State,
		QuestionsAsked:  s.TotalCoreQuestions,
		MaxQuestions:    s.Setup.MaxQuestions,
		Followups:       s.TotalFollowups,
		Difficulty:      s.Difficulty,
		RunningScore:    s.RunningScore,
		DurationSeconds: s.DurationSeconds(o.now()),
		SkillsRemaining: remaining,
		CurrentQuestion: viewOf(s.CurrentQuestion()),
		ErrorMessage:    s.ErrorMessage,
	}, nil
}
