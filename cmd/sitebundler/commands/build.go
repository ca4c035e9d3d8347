package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/sitebundler/internal/config"
	sberrors "git.home.luguber.info/inful/sitebundler/internal/errors"
	"git.home.luguber.info/inful/sitebundler/internal/metrics"
	"git.home.luguber.info/inful/sitebundler/internal/orchestrator"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string   `short:"o" help:"Output directory for the generated bundle" default:"./dist"`
	Title       string   `help:"Bundle title shown in generated documents"`
	NoPreview   bool     `name:"no-preview" help:"Skip the preview build and content index"`
	NoTelemetry bool     `name:"no-telemetry" help:"Suppress the telemetry event"`
	StaticDir   []string `name:"static-dir" help:"Additional static directory mapping (from or from:to), repeatable"`
	Stats       bool     `help:"Export preview builder statistics into the output directory"`
	HistoryDB   string   `name:"history-db" help:"Record the run in this SQLite history database"`
	Metrics     bool     `help:"Collect Prometheus build metrics and print a summary after the run"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	for _, s := range b.StaticDir {
		d := config.ParseStaticDir(s)
		if d.From == "" {
			return sberrors.ValidationError(fmt.Sprintf("invalid static directory mapping %q: source is required", s))
		}
		cfg.StaticDirs = append(cfg.StaticDirs, d)
	}
	if b.Stats && cfg.Build.Stats == nil {
		cfg.Build.Stats = &config.StatsSection{}
	}

	var recorder *metrics.PrometheusRecorder
	var rec metrics.Recorder
	if b.Metrics {
		recorder = metrics.NewPrometheusRecorder(nil)
		rec = recorder
	}

	orch, cleanup, err := newOrchestrator(cfg, rec, b.HistoryDB)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Println("Starting SiteBundler build")

	result, runErr := orch.Run(context.Background(), orchestrator.BuildRequest{
		Config:    cfg,
		OutputDir: b.Output,
		Options: orchestrator.BuildOptions{
			Title:            b.Title,
			PreviewDisabled:  b.NoPreview,
			DisableTelemetry: b.NoTelemetry,
		},
	})
	if recorder != nil {
		// The summary is also useful for failed runs, so write it before
		// checking the build error.
		if sumErr := recorder.WriteSummary(os.Stderr); sumErr != nil {
			slog.Warn("Failed to write metrics summary", slog.String("error", sumErr.Error()))
		}
	}
	if runErr != nil {
		return runErr
	}

	fmt.Printf("Bundle written to %s (%d indexed entries, %s)\n",
		result.OutputDir, result.IndexEntries, result.Duration.Round(time.Millisecond))
	return nil
}
