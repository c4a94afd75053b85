// Package main provides the build-tracer CLI application.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/cicd-ai-toolkit/build-tracer/pkg/config"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/dispatch"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/observability"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/webhook"
)

const shutdownTimeout = 15 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Receive build notifications and export traces",
	Long: `Start the HTTP webhook receiver (and the websocket event subscriber when
stream.url is configured). Every eligible finished build is exported as a
trace. SIGINT or SIGTERM drains queued notifications and flushes all
tracers before exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	log := a.logger

	d, err := dispatch.New(a.listener(), dispatch.Options{
		Workers:   cfg.Dispatch.Workers,
		QueueSize: cfg.Dispatch.QueueSize,
		DedupeTTL: cfg.Dispatch.DedupeTTL,
	})
	if err != nil {
		return err
	}
	// queued notifications are still traced after a shutdown signal
	d.Start(context.WithoutCancel(ctx))

	ingressOpts := []webhook.Option{
		webhook.WithLogger(log.With(observability.String("component", "webhook"))),
		webhook.WithMetrics(a.metrics),
	}

	mux := http.NewServeMux()
	handlerOpts := append([]webhook.Option{webhook.WithSecret(cfg.Server.WebhookSecret)}, ingressOpts...)
	mux.Handle(cfg.Server.WebhookPath, webhook.NewHandler(d, handlerOpts...))
	if cfg.Server.MetricsPath != "" {
		mux.Handle(cfg.Server.MetricsPath, a.metrics.Handler())
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           mux,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ErrorLog:          observability.HCLog(log).StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true}),
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("listening",
			observability.String("addr", cfg.Server.Listen),
			observability.String("webhook_path", cfg.Server.WebhookPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if cfg.Stream.URL != "" {
		stream := webhook.NewStream(cfg.Stream.URL, d, cfg.Stream.ReconnectDelay, ingressOpts...)
		go func() {
			if err := stream.Run(ctx); err != nil && ctx.Err() == nil {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case runErr = <-errCh:
		log.Error("ingress failed", observability.Err(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", observability.Err(err))
	}
	d.Stop()
	log.Info("dispatcher drained", observability.Int64("handled", d.Handled()))

	return errors.Join(runErr, a.close(shutdownCtx))
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
