package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebundler/internal/config"
	"git.home.luguber.info/inful/sitebundler/internal/history"
	"git.home.luguber.info/inful/sitebundler/internal/metrics"
	"git.home.luguber.info/inful/sitebundler/internal/orchestrator"
	"git.home.luguber.info/inful/sitebundler/internal/presets"
	"git.home.luguber.info/inful/sitebundler/internal/telemetry"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitebundler.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the static bundle from the project configuration"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild automatically when project sources change"`
	Init    InitCmd    `cmd:"" help:"Initialize a new project configuration file"`
	History HistoryCmd `cmd:"" help:"Show recent build runs from the history database"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// newOrchestrator assembles the orchestrator from the loaded configuration and
// common flags. A nil recorder leaves the orchestrator on its noop default.
// The returned cleanup closes the telemetry transport and the history store.
func newOrchestrator(cfg *config.Config, recorder metrics.Recorder, historyPath string) (*orchestrator.Orchestrator, func(), error) {
	resolver, err := presets.NewResolver(cfg)
	if err != nil {
		return nil, nil, err
	}

	orch := orchestrator.New(resolver)
	cleanup := func() {}

	if recorder != nil {
		orch.WithRecorder(recorder)
	}

	var notifier telemetry.Notifier = telemetry.LogNotifier{}
	if cfg.Telemetry.NATSURL != "" {
		n, natsErr := telemetry.NewNATSNotifier(cfg.Telemetry.NATSURL, cfg.Telemetry.Subject)
		if natsErr != nil {
			slog.Warn("Telemetry transport unavailable, events will be logged locally",
				slog.String("error", natsErr.Error()))
		} else {
			notifier = n
		}
	}
	orch.WithNotifier(notifier)

	var store *history.Store
	if historyPath != "" {
		s, histErr := history.Open(historyPath)
		if histErr != nil {
			slog.Warn("Build history unavailable", slog.String("error", histErr.Error()))
		} else {
			store = s
			orch.WithHistoryStore(store)
		}
	}

	cleanup = func() {
		_ = notifier.Close()
		if store != nil {
			_ = store.Close()
		}
	}
	return orch, cleanup, nil
}
