// Package server exposes the interview orchestrator over HTTP.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/dataready/internal/interview"
	"github.com/abhisek/dataready/internal/logging"
	"github.com/abhisek/dataready/internal/orchestrator"
	"github.com/abhisek/dataready/internal/report"
	"github.com/abhisek/dataready/internal/speech"
	"github.com/abhisek/dataready/internal/store"
)

// maxBodyBytes bounds request bodies; base64 audio dominates.
const maxBodyBytes = 16 << 20

// Interviews is the orchestrator surface the API drives.
type Interviews interface {
	CreateSession(ctx context.Context, setup interview.Setup) (*interview.Session, error)
	GetSession(ctx context.Context, id string) (*interview.Session, error)
	StartInterview(ctx context.Context, id string) (*orchestrator.Action, error)
	SubmitResponse(ctx context.Context, id string, resp orchestrator.Response) (*orchestrator.Action, error)
	PauseInterview(ctx context.Context, id string) (*interview.Session, error)
	ResumeInterview(ctx context.Context, id string) (*orchestrator.Action, error)
	CancelInterview(ctx context.Context, id string) (*interview.Session, error)
	EndInterview(ctx context.Context, id, reason string) (*orchestrator.Action, error)
	Status(ctx context.Context, id string) (*orchestrator.Status, error)
	ListSessions(ctx context.Context, opts store.ListOpts) ([]store.SessionSummary, error)
	GenerateReport(ctx context.Context, id string) (*report.Report, error)
}

// Options configures optional server features.
type Options struct {
	Logger *logging.Logger
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// TracerProvider instruments requests. Nil uses the global provider.
	TracerProvider trace.TracerProvider
	// Transcriber and Synthesizer back /api/audio. Nil answers 503.
	Transcriber speech.Transcriber
	Synthesizer speech.Synthesizer
	Voice       string
	Language    string
}

// Server routes API requests to the orchestrator.
type Server struct {
	router     *chi.Mux
	interviews Interviews
	log        *logging.Logger

	transcriber speech.Transcriber
	synthesizer speech.Synthesizer
	voice       string
	language    string
}

// New builds the router and middleware stack.
func New(interviews Interviews, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}
	s := &Server{
		router:      chi.NewRouter(),
		interviews:  interviews,
		log:         log.Named("server"),
		transcriber: opts.Transcriber,
		synthesizer: opts.Synthesizer,
		voice:       opts.Voice,
		language:    opts.Language,
	}
	if s.language == "" {
		s.language = "en"
	}

	var otelOpts []otelhttp.Option
	if opts.TracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(opts.TracerProvider))
	}
	s.router.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "dataready.http", otelOpts...)
	})
	s.router.Use(requestID)
	s.router.Use(accessLog(s.log))
	s.router.Use(middleware.Recoverer)

	s.routes(opts.Gatherer)
	return s
}

func (s *Server) routes(gatherer prometheus.Gatherer) {
	r := s.router
	r.Get("/healthz", s.handleHealth)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/interviews", func(r chi.Router) {
			r.Post("/", s.handleCreate)
			r.Get("/", s.handleList)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleStatus)
				r.Post("/start", s.handleStart)
				r.Post("/respond", s.handleRespond)
				r.Post("/pause", s.handlePause)
				r.Post("/resume", s.handleResume)
				r.Post("/cancel", s.handleCancel)
				r.Post("/end", s.handleEnd)
				r.Get("/report", s.handleReport)
				r.Get("/report/summary", s.handleReportSummary)
				r.Get("/report/questions", s.handleQuestionDetails)
			})
		})
		r.Route("/metadata", func(r chi.Router) {
			r.Get("/roles", s.handleRoles)
			r.Get("/skills", s.handleSkills)
			r.Get("/skills/by-role/{role}", s.handleSkillsByRole)
			r.Get("/skills/by-category", s.handleSkillsByCategory)
			r.Get("/clouds", s.handleClouds)
			r.Get("/modes", s.handleModes)
		})
		r.Route("/audio", func(r chi.Router) {
			r.Post("/tts", s.handleTTS)
			r.Post("/stt", s.handleSTT)
		})
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
