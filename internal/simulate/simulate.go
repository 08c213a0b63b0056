// Package simulate drives an interview end to end without a human, from a
// YAML answer script or canned answers.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/dataready/internal/catalog"
	"github.com/abhisek/dataready/internal/interview"
	"github.com/abhisek/dataready/internal/logging"
	"github.com/abhisek/dataready/internal/orchestrator"
	"github.com/abhisek/dataready/internal/report"
)

// EndReasonAnswersExhausted ends a scripted run that ran out of answers.
const EndReasonAnswersExhausted = "answers_exhausted"

// Script is a scripted interview.
//
//	setup:
//	  role: mid_data_engineer
//	  years: 4
//	answers:
//	  - "I would partition by event date..."
type Script struct {
	Setup   ScriptSetup `yaml:"setup"`
	Answers []string    `yaml:"answers"`
}

// ScriptSetup mirrors interview.Setup with YAML names.
type ScriptSetup struct {
	Role          string   `yaml:"role"`
	Years         int      `yaml:"years"`
	Cloud         string   `yaml:"cloud"`
	Mode          string   `yaml:"mode"`
	MaxQuestions  int      `yaml:"max_questions"`
	IncludeSkills []string `yaml:"include_skills"`
	ExcludeSkills []string `yaml:"exclude_skills"`
}

// Setup converts to an interview setup. Validation happens on create.
func (s ScriptSetup) Setup() interview.Setup {
	return interview.Setup{
		TargetRole:        catalog.Role(s.Role),
		YearsOfExperience: s.Years,
		CloudPreference:   catalog.CloudPreference(s.Cloud),
		Mode:              interview.Mode(s.Mode),
		MaxQuestions:      s.MaxQuestions,
		IncludeSkills:     s.IncludeSkills,
		ExcludeSkills:     s.ExcludeSkills,
	}
}

// ParseScript decodes a script, rejecting unknown keys.
func ParseScript(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	return &s, nil
}

// LoadScript reads a script file.
func LoadScript(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	return ParseScript(f)
}

// Answerer supplies the candidate's side. ok=false ends the interview.
type Answerer interface {
	Answer(a *orchestrator.Action) (text string, ok bool)
}

// Scripted replays answers in order.
type Scripted struct {
	answers []string
	next    int
}

// NewScripted returns an answerer over answers.
func NewScripted(answers []string) *Scripted {
	return &Scripted{answers: answers}
}

func (s *Scripted) Answer(*orchestrator.Action) (string, bool) {
	if s.next >= len(s.answers) {
		return "", false
	}
	a := s.answers[s.next]
	s.next++
	return a, true
}

// Auto gives a competent, moderately detailed answer to everything.
type Auto struct{}

const autoAnswer = "I would start by clarifying the data volume, latency and consistency requirements. " +
	"For the pipeline I would land raw events in object storage partitioned by event date, " +
	"then run an idempotent batch transformation with Spark so that reruns are safe. " +
	"Schema changes are handled through a schema registry and backward compatible evolution. " +
	"The main tradeoff is cost against freshness, so I would monitor lag and data quality checks " +
	"and alert when thresholds are breached."

func (Auto) Answer(*orchestrator.Action) (string, bool) {
	return autoAnswer, true
}

// Service is the orchestrator surface a simulation needs.
type Service interface {
	CreateSession(ctx context.Context, setup interview.Setup) (*interview.Session, error)
	StartInterview(ctx context.Context, id string) (*orchestrator.Action, error)
	SubmitResponse(ctx context.Context, id string, resp orchestrator.Response) (*orchestrator.Action, error)
	EndInterview(ctx context.Context, id, reason string) (*orchestrator.Action, error)
	GenerateReport(ctx context.Context, id string) (*report.Report, error)
}

// Turn is one question and the answer given.
type Turn struct {
	Number     int    `json:"question_number"`
	Question   string `json:"question"`
	IsFollowup bool   `json:"is_followup"`
	Answer     string `json:"answer"`
}

// Result is a finished simulation.
type Result struct {
	SessionID string         `json:"session_id"`
	Turns     []Turn         `json:"turns"`
	EndReason string         `json:"end_reason,omitempty"`
	Report    *report.Report `json:"report"`
}

// Run plays one interview to its report.
func Run(ctx context.Context, svc Service, setup interview.Setup, answerer Answerer, log *logging.Logger) (*Result, error) {
	if log == nil {
		log = logging.NewNop()
	}
	log = log.Named("simulate")

	sess, err := svc.CreateSession(ctx, setup)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithSessionID(ctx, sess.ID)
	res := &Result{SessionID: sess.ID}

	action, err := svc.StartInterview(ctx, sess.ID)
	if err != nil {
		return res, err
	}

	for {
		if action == nil {
			return res, errNoAction
		}
		if finished(action) {
			break
		}
		text, ok := answerer.Answer(action)
		if !ok {
			res.EndReason = EndReasonAnswersExhausted
			action, err = svc.EndInterview(ctx, sess.ID, EndReasonAnswersExhausted)
			if err != nil {
				return res, err
			}
			break
		}
		res.Turns = append(res.Turns, Turn{
			Number:     action.QuestionNumber,
			Question:   action.QuestionText,
			IsFollowup: action.Action == orchestrator.ActionFollowup,
			Answer:     text,
		})
		log.Debug(ctx, "answering", zap.Int("question_number", action.QuestionNumber),
			zap.Bool("followup", action.Action == orchestrator.ActionFollowup))

		action, err = svc.SubmitResponse(ctx, sess.ID, orchestrator.Response{Transcript: text})
		if err != nil {
			return res, err
		}
	}
	if action.Action == orchestrator.ActionEnded && res.EndReason == "" {
		res.EndReason = action.Reason
	}

	rep, err := svc.GenerateReport(ctx, sess.ID)
	if err != nil {
		return res, err
	}
	res.Report = rep
	log.Info(ctx, "simulation finished", zap.Int("turns", len(res.Turns)),
		zap.Float64("overall_score", rep.OverallScore))
	return res, nil
}

var errNoAction = errors.New("simulate: orchestrator returned no action")

func finished(a *orchestrator.Action) bool {
	return a.Action == orchestrator.ActionComplete || a.Action == orchestrator.ActionEnded
}
