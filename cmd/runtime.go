package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/abhisek/dataready/internal/config"
	"github.com/abhisek/dataready/internal/evaluation"
	"github.com/abhisek/dataready/internal/followup"
	"github.com/abhisek/dataready/internal/llm"
	"github.com/abhisek/dataready/internal/logging"
	"github.com/abhisek/dataready/internal/metrics"
	"github.com/abhisek/dataready/internal/orchestrator"
	"github.com/abhisek/dataready/internal/questiongen"
	"github.com/abhisek/dataready/internal/report"
	"github.com/abhisek/dataready/internal/speech"
	"github.com/abhisek/dataready/internal/store"
	"github.com/abhisek/dataready/internal/tracing"
)

// loadConfig reads the config named by the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(config.Options{File: file, DotEnv: envFile})
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Store.Driver = config.DriverSQLite
		cfg.Store.Path = p
	}
	return cfg, nil
}

// openStore opens the SQLite store named by cfg.
func openStore(cfg config.StoreConfig) (*store.Store, error) {
	path := cfg.Path
	if path == "" {
		var err error
		if path, err = store.DefaultDBPath(); err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
	} else if err := store.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// runtime holds everything a command needs to run interviews.
type runtime struct {
	cfg          *config.Config
	log          *logging.Logger
	orchestrator *orchestrator.Orchestrator
	registry     *prometheus.Registry
	// speech is nil unless speech.enabled is set.
	speech  *speech.OpenAI
	closers []func(context.Context) error
}

type runtimeOptions struct {
	// quiet discards logs so they do not draw over the TUI.
	quiet bool
	// noLLM forces the deterministic collaborators.
	noLLM bool
}

// newRuntime wires store, collaborators, tracing and metrics per cfg.
func newRuntime(ctx context.Context, cfg *config.Config, opts runtimeOptions) (*runtime, error) {
	rt := &runtime{cfg: cfg, registry: prometheus.NewRegistry()}

	if opts.quiet {
		rt.log = logging.NewNop()
	} else {
		log, err := logging.NewLogger(&cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
		rt.log = log
		rt.closers = append(rt.closers, func(context.Context) error {
			_ = log.Sync()
			return nil
		})
	}

	var sessions orchestrator.SessionStore
	var events store.EventRepo
	switch cfg.Store.Driver {
	case config.DriverMemory:
		sessions = store.NewMemory()
	default:
		st, err := openStore(cfg.Store)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, func(context.Context) error { return st.Close() })
		sessions = st.Sessions()
		events = st.EventRepo()
	}

	shutdownTracing, err := tracing.InitProvider(cfg.Tracing, os.Stderr)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	rt.closers = append(rt.closers, shutdownTracing)

	m := metrics.New(rt.registry)
	o := orchestrator.Options{
		FallbackQuestions:       questiongen.NewFallback(cfg.Interview.RandomSeed),
		Reports:                 report.NewGenerator(rt.log),
		Fallbacks:               m,
		Logger:                  rt.log,
		MaxFollowupsPerQuestion: cfg.Interview.MaxFollowupsPerQuestion,
	}
	if cfg.Tracing.Enabled {
		o.Tracer = tracing.NewOTel(otel.GetTracerProvider())
	}

	if !opts.noLLM {
		provider, err := llm.NewProvider(ctx, cfg.LLM, events, rt.log)
		switch {
		case errors.Is(err, llm.ErrNoProvider):
			rt.log.Info(ctx, "no LLM configured, using built-in question bank and heuristic scoring")
		case err != nil:
			rt.Close(ctx)
			return nil, fmt.Errorf("create LLM provider: %w", err)
		default:
			o.Questions = questiongen.New(provider, questiongen.DefaultConfig(), rt.log)
			o.Evaluator = evaluation.NewLLM(provider)
			o.Decider = followup.NewLLM(provider)
			rt.log.Info(ctx, "LLM provider ready", zap.String("model", provider.ModelID()))
		}
	}

	if cfg.Speech.Enabled {
		sp, err := speech.NewOpenAI(cfg.Speech.OpenAI)
		if err != nil {
			rt.Close(ctx)
			return nil, fmt.Errorf("create speech backend: %w", err)
		}
		rt.speech = sp
		o.Transcriber = sp
		o.Synthesizer = sp
		o.Voice = cfg.Speech.OpenAI.Voice
		o.Language = cfg.Speech.OpenAI.Language
	}

	rt.orchestrator = orchestrator.New(sessions, o)
	rt.orchestrator.OnStateChange(m.StateChanged)
	rt.orchestrator.OnQuestion(m.QuestionAsked)
	rt.orchestrator.OnEvaluation(m.Evaluated)
	if events != nil {
		rt.orchestrator.OnStateChange(orchestrator.RecordTransitions(events))
	}
	return rt, nil
}

// Close releases resources in reverse order of acquisition.
func (rt *runtime) Close(ctx context.Context) {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](ctx); err != nil && rt.log != nil {
			rt.log.Warn(ctx, "shutdown step failed", zap.Error(err))
		}
	}
	rt.closers = nil
}
