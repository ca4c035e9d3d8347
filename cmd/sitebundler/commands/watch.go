package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/sitebundler/internal/config"
	"git.home.luguber.info/inful/sitebundler/internal/metrics"
	"git.home.luguber.info/inful/sitebundler/internal/orchestrator"
	"git.home.luguber.info/inful/sitebundler/internal/watch"
)

// WatchCmd implements the 'watch' command: build once, then rebuild on change.
type WatchCmd struct {
	Output      string        `short:"o" help:"Output directory for the generated bundle" default:"./dist"`
	Title       string        `help:"Bundle title shown in generated documents"`
	Debounce    time.Duration `help:"Quiet period after the last change before rebuilding" default:"2s"`
	Interval    time.Duration `help:"Also rebuild periodically at this interval (0 disables)"`
	NoTelemetry bool          `name:"no-telemetry" help:"Suppress telemetry events"`

	MetricsListen string `name:"metrics-listen" help:"Serve Prometheus metrics on this address while watching (e.g. :9090)"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var recorder *metrics.PrometheusRecorder
	var rec metrics.Recorder
	if w.MetricsListen != "" {
		recorder = metrics.NewPrometheusRecorder(nil)
		rec = recorder
	}

	orch, cleanup, err := newOrchestrator(cfg, rec, "")
	if err != nil {
		return err
	}
	defer cleanup()

	rebuild := func(ctx context.Context) error {
		_, runErr := orch.Run(ctx, orchestrator.BuildRequest{
			Config:    cfg,
			OutputDir: w.Output,
			Options: orchestrator.BuildOptions{
				Title:            w.Title,
				DisableTelemetry: w.NoTelemetry,
			},
		})
		return runErr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if recorder != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.HTTPHandler(recorder.Registry()))
		srv := &http.Server{Addr: w.MetricsListen, Handler: mux, ReadTimeout: 30 * time.Second, WriteTimeout: 30 * time.Second, IdleTimeout: 120 * time.Second}
		go func() {
			slog.Info("Metrics endpoint listening", slog.String("addr", w.MetricsListen))
			if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				slog.Warn("Metrics server stopped", slog.String("error", serveErr.Error()))
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// Initial build before watching; a broken starting state should be
	// visible immediately.
	if err := rebuild(ctx); err != nil {
		return err
	}

	watcher, err := watch.New(rebuild, watch.Options{
		Roots:    []string{cfg.Dir},
		Debounce: w.Debounce,
		Interval: w.Interval,
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if stopErr := watcher.Stop(); stopErr != nil {
			slog.Warn("Error stopping watcher", slog.String("error", stopErr.Error()))
		}
	}()

	fmt.Println("Watching for changes, press Ctrl+C to stop")
	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping watcher")
	return nil
}
