// Package metrics exposes Prometheus metrics for the interview lifecycle.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/abhisek/dataready/internal/interview"
)

// Question kinds.
const (
	KindCore     = "core"
	KindFollowup = "followup"
)

// Metrics holds the interview collectors.
//
// Metrics:
//   - dataready_state_transitions_total{from,to}
//   - dataready_questions_total{kind}
//   - dataready_collaborator_fallbacks_total{collaborator}
//   - dataready_response_score
type Metrics struct {
	Transitions *prometheus.CounterVec
	Questions   *prometheus.CounterVec
	Fallbacks   *prometheus.CounterVec
	Scores      prometheus.Histogram
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dataready_state_transitions_total",
				Help: "Interview state transitions",
			},
			[]string{"from", "to"},
		),
		Questions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dataready_questions_total",
				Help: "Questions delivered to candidates",
			},
			[]string{"kind"},
		),
		Fallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dataready_collaborator_fallbacks_total",
				Help: "Times a collaborator failed and its fallback was used",
			},
			[]string{"collaborator"},
		),
		Scores: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "dataready_response_score",
			Help:    "Overall score of evaluated answers",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
	}
}

// StateChanged is a state-change observer.
func (m *Metrics) StateChanged(_ context.Context, _ *interview.Session, from, to interview.State) error {
	m.Transitions.WithLabelValues(string(from), string(to)).Inc()
	return nil
}

// QuestionAsked is a question observer.
func (m *Metrics) QuestionAsked(_ context.Context, _ *interview.Session, q *interview.QuestionResponse) error {
	kind := KindCore
	if q.IsFollowup {
		kind = KindFollowup
	}
	m.Questions.WithLabelValues(kind).Inc()
	return nil
}

// Evaluated is an evaluation observer.
func (m *Metrics) Evaluated(_ context.Context, _ *interview.Session, ev *interview.ResponseEvaluation) error {
	m.Scores.Observe(ev.OverallScore())
	return nil
}

// RecordFallback counts a collaborator fallback.
func (m *Metrics) RecordFallback(collaborator string) {
	m.Fallbacks.WithLabelValues(collaborator).Inc()
}
