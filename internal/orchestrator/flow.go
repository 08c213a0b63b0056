package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/dataready/internal/catalog"
	"github.com/abhisek/dataready/internal/evaluation"
	"github.com/abhisek/dataready/internal/followup"
	"github.com/abhisek/dataready/internal/interview"
	"github.com/abhisek/dataready/internal/report"
	"github.com/abhisek/dataready/internal/speech"
	"github.com/abhisek/dataready/internal/store"
)

const (
	// TranscriptionUnavailable replaces the transcript when audio could not
	// be transcribed.
	TranscriptionUnavailable = "[Transcription unavailable]"

	defaultFollowupText = "Can you elaborate on that?"
)

var errBlankQuestion = errors.New("question generator returned blank text")

// CreateSession validates setup and stores a new session in SETUP.
func (o *Orchestrator) CreateSession(ctx context.Context, setup interview.Setup) (*interview.Session, error) {
	setup = setup.WithDefaults()
	if err := setup.Validate(); err != nil {
		return nil, err
	}

	skills := catalog.FilterSkills(setup.TargetRole, setup.IncludeSkills, setup.ExcludeSkills)
	s := interview.NewSession(o.newID(), setup, skills, catalog.BaseDifficulty(setup.TargetRole), o.now())

	ctx = o.sessionContext(ctx, s.ID)
	if err := o.save(ctx, s); err != nil {
		return nil, err
	}
	o.log.Info(ctx, "session created",
		zap.String("role", string(setup.TargetRole)),
		zap.String("mode", string(setup.Mode)),
		zap.Int("skills", len(skills)),
		zap.Int("difficulty", s.Difficulty),
	)
	return s, nil
}

// GetSession returns a copy of the session.
func (o *Orchestrator) GetSession(ctx context.Context, id string) (*interview.Session, error) {
	return o.load(ctx, id)
}

// ListSessions returns stored session summaries, newest first.
func (o *Orchestrator) ListSessions(ctx context.Context, opts store.ListOpts) ([]store.SessionSummary, error) {
	return o.store.List(ctx, opts)
}

// StartInterview opens the trace, moves to READY and asks the first
// question.
func (o *Orchestrator) StartInterview(ctx context.Context, id string) (*Action, error) {
	defer o.lock(id)()
	ctx = o.sessionContext(ctx, id)

	s, err := o.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !interview.CanTransition(s.State, interview.StateReady) {
		return nil, &interview.InvalidTransitionError{
			Current:   s.State,
			Attempted: interview.StateReady,
			Allowed:   s.State.Allowed(),
		}
	}

	o.startTrace(ctx, id, map[string]any{
		"role":          string(s.Setup.TargetRole),
		"cloud":         string(s.Setup.CloudPreference),
		"experience":    s.Setup.YearsOfExperience,
		"mode":          string(s.Setup.Mode),
		"max_questions": s.Setup.MaxQuestions,
	})
	ctx = o.sessionContext(ctx, id)

	if err := o.transition(ctx, s, interview.StateReady, ""); err != nil {
		return nil, err
	}
	return o.askNext(ctx, s)
}

// askNext completes the interview when the budget is spent, otherwise
// delivers the next core question and waits for the answer.
func (o *Orchestrator) askNext(ctx context.Context, s *interview.Session) (*Action, error) {
	if s.ShouldEnd() {
		if err := o.transition(ctx, s, interview.StateComplete, ""); err != nil {
			return nil, err
		}
		return &Action{Action: ActionComplete, Message: "Interview complete"}, nil
	}

	if err := o.transition(ctx, s, interview.StateAsking, ""); err != nil {
		return nil, err
	}

	q := o.generateQuestion(ctx, interview.BuildContext(s))
	qr := interview.QuestionResponse{
		QuestionID:     q.ID,
		QuestionText:   q.Text,
		SkillID:        q.SkillID,
		Difficulty:     q.DifficultyScore,
		ExpectedPoints: q.ExpectedPoints,
		RedFlags:       q.RedFlags,
		AskedAt:        o.now(),
	}
	audio := o.synthesize(ctx, q.Text)
	if audio != nil {
		qr.AudioURL = audio.URL
	}

	s.AddQuestion(qr)
	if err := o.save(ctx, s); err != nil {
		return nil, err
	}
	o.notifyQuestion(ctx, s, s.CurrentQuestion())

	if err := o.transition(ctx, s, interview.StateListening, ""); err != nil {
		return nil, err
	}
	return &Action{
		Action:         ActionQuestion,
		QuestionID:     qr.QuestionID,
		QuestionText:   qr.QuestionText,
		QuestionNumber: s.TotalCoreQuestions,
		TotalQuestions: s.Setup.MaxQuestions,
		Difficulty:     q.DifficultyScore,
		Audio:          audio,
	}, nil
}

// SubmitResponse records the answer to the outstanding question, evaluates
// it and decides what comes next.
func (o *Orchestrator) SubmitResponse(ctx context.Context, id string, resp Response) (*Action, error) {
	defer o.lock(id)()
	ctx = o.sessionContext(ctx, id)

	s, err := o.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.CurrentQuestion() == nil {
		return nil, &interview.NoActiveQuestionError{SessionID: id}
	}

	if err := o.transition(ctx, s, interview.StateProcessing, ""); err != nil {
		return nil, err
	}

	transcript := resp.Transcript
	if transcript == "" && len(resp.Audio) > 0 {
		transcript = o.transcribe(ctx, resp.Audio, resp.AudioFormat)
	}

	cur := s.CurrentQuestion()
	completed := o.now()
	cur.ResponseTranscript = transcript
	cur.ResponseCompletedAt = &completed
	s.AddResponseToContext(transcript)

	if err := o.transition(ctx, s, interview.StateEvaluating, ""); err != nil {
		return nil, err
	}

	ev := o.evaluate(ctx, cur, transcript, interview.BuildContext(s))
	cur.Evaluation = ev
	if !s.RecordScore(ev.SkillID, ev.OverallScore()) {
		o.log.Debug(ctx, "score not recorded for unknown skill", zap.String("skill_id", ev.SkillID))
	}
	if err := o.save(ctx, s); err != nil {
		return nil, err
	}
	o.notifyEvaluation(ctx, s, ev)

	if err := o.transition(ctx, s, interview.StateDeciding, ""); err != nil {
		return nil, err
	}
	return o.decide(ctx, s, ev)
}

// decide branches after an evaluation: a follow-up when the answer needs
// one and the budget allows, otherwise adapt difficulty and move on.
func (o *Orchestrator) decide(ctx context.Context, s *interview.Session, ev *interview.ResponseEvaluation) (*Action, error) {
	if ev.NeedsFollowup &&
		s.Setup.Mode == interview.ModeStructuredFollowup &&
		s.FollowupAllowed(o.maxFollowupsPerQuestion) {
		return o.askFollowup(ctx, s, ev)
	}

	before := s.Difficulty
	after := s.AdjustDifficulty(ev.DifficultyDelta)
	if err := o.save(ctx, s); err != nil {
		return nil, err
	}
	if before != after {
		o.log.Debug(ctx, "difficulty adjusted", zap.Int("from", before), zap.Int("to", after))
	}

	if s.ShouldEnd() {
		if err := o.transition(ctx, s, interview.StateComplete, ""); err != nil {
			return nil, err
		}
		return &Action{Action: ActionComplete, Message: "Interview complete"}, nil
	}
	return o.askNext(ctx, s)
}

func (o *Orchestrator) askFollowup(ctx context.Context, s *interview.Session, ev *interview.ResponseEvaluation) (*Action, error) {
	decision := o.decideFollowup(ctx, interview.BuildContext(s), ev)

	text := strings.TrimSpace(decision.Question)
	if text == "" {
		text = defaultFollowupText
	}
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		o.log.Warn(ctx, "discarding structured follow-up text", zap.String("text", text))
		text = followup.ProbeQuestion
	}

	parent := s.CurrentQuestion()
	qr := interview.QuestionResponse{
		QuestionID:       fmt.Sprintf("%s_followup_%d", parent.QuestionID, s.TotalFollowups+1),
		QuestionText:     text,
		SkillID:          parent.SkillID,
		Difficulty:       s.Difficulty,
		AskedAt:          o.now(),
		IsFollowup:       true,
		ParentQuestionID: parent.QuestionID,
		FollowupReason:   decision.Reason,
	}
	audio := o.synthesize(ctx, text)
	if audio != nil {
		qr.AudioURL = audio.URL
	}

	s.AddQuestion(qr)
	if err := o.save(ctx, s); err != nil {
		return nil, err
	}
	o.notifyQuestion(ctx, s, s.CurrentQuestion())

	if err := o.transition(ctx, s, interview.StateAsking, ""); err != nil {
		return nil, err
	}
	if err := o.transition(ctx, s, interview.StateListening, ""); err != nil {
		return nil, err
	}
	return &Action{
		Action:         ActionFollowup,
		QuestionID:     qr.QuestionID,
		QuestionText:   qr.QuestionText,
		Difficulty:     qr.Difficulty,
		FollowupReason: qr.FollowupReason,
		Audio:          audio,
	}, nil
}

// EndInterview stops the interview early.
func (o *Orchestrator) EndInterview(ctx context.Context, id, reason string) (*Action, error) {
	defer o.lock(id)()
	ctx = o.sessionContext(ctx, id)

	s, err := o.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.transition(ctx, s, interview.StateComplete, ""); err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "user_ended"
	}
	o.log.Info(ctx, "interview ended", zap.String("reason", reason))
	return &Action{
		Action:             ActionEnded,
		Reason:             reason,
		QuestionsCompleted: len(s.Questions),
	}, nil
}

// GenerateReport builds the report of a completed interview and finishes
// the session. A finished session returns its stored report.
func (o *Orchestrator) GenerateReport(ctx context.Context, id string) (*report.Report, error) {
	defer o.lock(id)()
	ctx = o.sessionContext(ctx, id)

	s, err := o.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.State == interview.StateFinished && len(s.Report) > 0 {
		var cached report.Report
		if err := json.Unmarshal(s.Report, &cached); err != nil {
			return nil, fmt.Errorf("decode stored report: %w", err)
		}
		return &cached, nil
	}
	if s.State != interview.StateComplete && s.State != interview.StateGeneratingReport {
		return nil, &interview.InterviewNotCompleteError{SessionID: id, State: s.State}
	}

	if s.State == interview.StateComplete {
		if err := o.transition(ctx, s, interview.StateGeneratingReport, ""); err != nil {
			return nil, err
		}
	}

	r, err := o.reports.Generate(ctx, s)
	if err == nil {
		var data []byte
		data, err = json.Marshal(r)
		s.Report = data
	}
	if err != nil {
		err = fmt.Errorf("generate report: %w", err)
		if terr := o.transition(ctx, s, interview.StateError, err.Error()); terr != nil {
			o.log.Error(ctx, "failed to record report error", zap.Error(terr))
		}
		return nil, err
	}

	generated := o.now()
	s.ReportGeneratedAt = &generated
	if err := o.transition(ctx, s, interview.StateFinished, ""); err != nil {
		return nil, err
	}
	return r, nil
}

func (o *Orchestrator) generateQuestion(ctx context.Context, ictx interview.Context) *interview.Question {
	if o.questions != nil {
		q, err := o.questions.Generate(ctx, ictx)
		if err == nil && strings.TrimSpace(q.Text) == "" {
			err = errBlankQuestion
		}
		if err == nil {
			return q
		}
		o.recordFallback(ctx, CollaboratorQuestions, err)
	}
	q, _ := o.fallbackQ.Generate(ctx, ictx)
	return q
}

func (o *Orchestrator) evaluate(ctx context.Context, q *interview.QuestionResponse, transcript string, ictx interview.Context) *interview.ResponseEvaluation {
	ev, err := o.evaluator.Evaluate(ctx, q, transcript, ictx)
	if err == nil {
		return ev
	}
	o.recordFallback(ctx, CollaboratorEvaluator, err)
	return evaluation.HeuristicEvaluation(q, transcript, ictx)
}

func (o *Orchestrator) decideFollowup(ctx context.Context, ictx interview.Context, ev *interview.ResponseEvaluation) *interview.FollowUpDecision {
	d, err := o.decider.Decide(ctx, ictx, ev)
	if err == nil {
		return d
	}
	o.recordFallback(ctx, CollaboratorFollowup, err)
	d, _ = followup.Fallback{}.Decide(ctx, ictx, ev)
	return d
}

func (o *Orchestrator) transcribe(ctx context.Context, audio []byte, format string) string {
	if o.transcriber == nil {
		return TranscriptionUnavailable
	}
	if format == "" {
		format = "webm"
	}
	text, err := o.transcriber.Transcribe(ctx, audio, format, o.language)
	if err != nil {
		o.recordFallback(ctx, CollaboratorTranscriber, err)
		return TranscriptionUnavailable
	}
	return text
}

// synthesize is best-effort; a nil result means no audio.
func (o *Orchestrator) synthesize(ctx context.Context, text string) *speech.Audio {
	if o.synthesizer == nil {
		return nil
	}
	audio, err := o.synthesizer.Synthesize(ctx, text, o.voice)
	if err != nil {
		o.recordFallback(ctx, CollaboratorSynthesizer, err)
		return nil
	}
	return audio
}
