package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/dataready/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		rt, err := newRuntime(ctx, cfg, runtimeOptions{})
		if err != nil {
			return err
		}
		defer rt.Close(context.Background())

		opts := server.Options{
			Logger:         rt.log,
			Gatherer:       rt.registry,
			TracerProvider: otel.GetTracerProvider(),
		}
		if rt.speech != nil {
			opts.Transcriber = rt.speech
			opts.Synthesizer = rt.speech
			opts.Voice = cfg.Speech.OpenAI.Voice
			opts.Language = cfg.Speech.OpenAI.Language
		}
		api := server.New(rt.orchestrator, opts)
		srv := &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      api,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			rt.log.Info(gCtx, "http server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			rt.log.Info(shutdownCtx, "shutting down http server")
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
