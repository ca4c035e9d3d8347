package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebundler/internal/builder"
	"git.home.luguber.info/inful/sitebundler/internal/config"
	sberrors "git.home.luguber.info/inful/sitebundler/internal/errors"
	"git.home.luguber.info/inful/sitebundler/internal/history"
	"git.home.luguber.info/inful/sitebundler/internal/presets"
	"git.home.luguber.info/inful/sitebundler/internal/telemetry"
)

type fakeBuilder struct {
	name string
	err  error
	ran  atomic.Bool
}

func (f *fakeBuilder) Name() string              { return f.name }
func (f *fakeBuilder) CorePresets() []string     { return nil }
func (f *fakeBuilder) OverridePresets() []string { return nil }

func (f *fakeBuilder) Build(_ context.Context, _ builder.BuildContext) (*builder.Stats, error) {
	f.ran.Store(true)
	if f.err != nil {
		return nil, f.err
	}
	return &builder.Stats{Builder: f.name, Files: 1, Duration: time.Millisecond}, nil
}

type captureNotifier struct {
	mu     sync.Mutex
	events []*telemetry.Event
}

func (c *captureNotifier) Notify(_ context.Context, event *telemetry.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *captureNotifier) Close() error { return nil }

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func testConfig(t *testing.T, mutate func(*config.Config)) (*config.Config, string) {
	t.Helper()
	projectDir := t.TempDir()
	contentDir := filepath.Join(projectDir, "content")
	require.NoError(t, os.MkdirAll(contentDir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "intro.md"),
		[]byte("---\ntitle: Intro\n---\n# Getting Started\n\nHello.\n"), 0644))

	cfg := &config.Config{
		Framework: "html",
		Stories:   []string{filepath.Join(contentDir, "*.md")},
		Dir:       projectDir,
	}
	if mutate != nil {
		mutate(cfg)
	}
	return cfg, projectDir
}

func newTestOrchestrator(t *testing.T, cfg *config.Config) *Orchestrator {
	t.Helper()
	resolver, err := presets.NewResolver(cfg)
	require.NoError(t, err)
	return New(resolver)
}

func TestOrchestrator_Run_SuccessProducesFullBundle(t *testing.T) {
	cfg, _ := testConfig(t, nil)
	outputDir := filepath.Join(t.TempDir(), "dist")

	notifier := &captureNotifier{}
	orch := newTestOrchestrator(t, cfg).WithNotifier(notifier)

	result, err := orch.Run(context.Background(), BuildRequest{Config: cfg, OutputDir: outputDir})
	require.NoError(t, err)
	require.Equal(t, BuildStatusSuccess, result.Status)
	require.NotEmpty(t, result.BuildID)
	require.Equal(t, 1, result.IndexEntries)

	for _, name := range []string{"index.html", "iframe.html", "index.json", "project.json"} {
		_, statErr := os.Stat(filepath.Join(outputDir, name))
		require.NoError(t, statErr, "expected %s in output bundle", name)
	}
	require.Equal(t, 1, notifier.count())
	require.Equal(t, result.BuildID, notifier.events[0].BuildID)
}

func TestOrchestrator_Run_RejectsEmptyOutputDir(t *testing.T) {
	cfg, _ := testConfig(t, nil)
	orch := newTestOrchestrator(t, cfg)

	result, err := orch.Run(context.Background(), BuildRequest{Config: cfg, OutputDir: ""})
	require.Error(t, err)
	require.Equal(t, BuildStatusFailed, result.Status)
}

func TestOrchestrator_Run_ShellFailureSkipsPreviewAndEffects(t *testing.T) {
	cfg, _ := testConfig(t, nil)
	outputDir := filepath.Join(t.TempDir(), "dist")

	shellB := &fakeBuilder{name: "shell", err: errors.New("chrome render failed")}
	previewB := &fakeBuilder{name: "preview"}
	notifier := &captureNotifier{}

	orch := newTestOrchestrator(t, cfg).
		WithNotifier(notifier).
		WithBuilderFactory(func(*presets.InitialConfig) (builder.Builder, builder.Builder) {
			return shellB, previewB
		})

	result, err := orch.Run(context.Background(), BuildRequest{Config: cfg, OutputDir: outputDir})
	require.Error(t, err)
	require.Equal(t, BuildStatusFailed, result.Status)
	require.True(t, shellB.ran.Load())
	require.False(t, previewB.ran.Load())
	require.Zero(t, notifier.count())

	var be *sberrors.BundlerError
	require.ErrorAs(t, err, &be)
	require.Equal(t, sberrors.CategoryShell, be.Category)

	_, statErr := os.Stat(filepath.Join(outputDir, "project.json"))
	require.True(t, os.IsNotExist(statErr), "no effects should run after a shell failure")
}

func TestOrchestrator_Run_PreviewFailureFailsBuild(t *testing.T) {
	cfg, _ := testConfig(t, nil)
	outputDir := filepath.Join(t.TempDir(), "dist")

	shellB := &fakeBuilder{name: "shell"}
	previewB := &fakeBuilder{name: "preview", err: errors.New("runtime emit failed")}
	notifier := &captureNotifier{}

	orch := newTestOrchestrator(t, cfg).
		WithNotifier(notifier).
		WithBuilderFactory(func(*presets.InitialConfig) (builder.Builder, builder.Builder) {
			return shellB, previewB
		})

	result, err := orch.Run(context.Background(), BuildRequest{Config: cfg, OutputDir: outputDir})
	require.Error(t, err)
	require.Equal(t, BuildStatusFailed, result.Status)
	require.True(t, previewB.ran.Load())
	require.Zero(t, notifier.count(), "telemetry must not fire on a failed build")

	var be *sberrors.BundlerError
	require.ErrorAs(t, err, &be)
	require.Equal(t, sberrors.CategoryPreview, be.Category)
}

func TestOrchestrator_Run_PreviewDisabledSkipsIndexKeepsStatics(t *testing.T) {
	cfg, projectDir := testConfig(t, func(c *config.Config) {
		c.Build.PreviewDisabled = true
		c.StaticDirs = []config.StaticDir{{From: "public", To: "assets"}}
	})
	require.NoError(t, os.MkdirAll(filepath.Join(projectDir, "public"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "public", "logo.txt"), []byte("logo"), 0644))
	outputDir := filepath.Join(t.TempDir(), "dist")

	orch := newTestOrchestrator(t, cfg)
	result, err := orch.Run(context.Background(), BuildRequest{Config: cfg, OutputDir: outputDir})
	require.NoError(t, err)
	require.Equal(t, BuildStatusSuccess, result.Status)
	require.Zero(t, result.IndexEntries)
	require.Nil(t, result.PreviewStats)

	_, statErr := os.Stat(filepath.Join(outputDir, "index.json"))
	require.True(t, os.IsNotExist(statErr), "no content index without a preview build")
	_, statErr = os.Stat(filepath.Join(outputDir, "iframe.html"))
	require.True(t, os.IsNotExist(statErr), "no runtime without a preview build")

	data, readErr := os.ReadFile(filepath.Join(outputDir, "assets", "logo.txt"))
	require.NoError(t, readErr)
	require.Equal(t, "logo", string(data))
}

func TestOrchestrator_Run_TelemetryDisabledSuppressesEvent(t *testing.T) {
	cfg, _ := testConfig(t, nil)
	outputDir := filepath.Join(t.TempDir(), "dist")

	notifier := &captureNotifier{}
	orch := newTestOrchestrator(t, cfg).WithNotifier(notifier)

	_, err := orch.Run(context.Background(), BuildRequest{
		Config:    cfg,
		OutputDir: outputDir,
		Options:   BuildOptions{DisableTelemetry: true},
	})
	require.NoError(t, err)
	require.Zero(t, notifier.count())
}

func TestOrchestrator_Run_ManifestSuppressedByConfig(t *testing.T) {
	cfg, _ := testConfig(t, func(c *config.Config) {
		c.Core.DisableProjectJSON = true
	})
	outputDir := filepath.Join(t.TempDir(), "dist")

	orch := newTestOrchestrator(t, cfg)
	_, err := orch.Run(context.Background(), BuildRequest{Config: cfg, OutputDir: outputDir})
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(outputDir, "project.json"))
	require.True(t, os.IsNotExist(statErr))
}

func TestOrchestrator_Run_CustomRendererWithoutPresetSucceeds(t *testing.T) {
	cfg, _ := testConfig(t, func(c *config.Config) {
		c.Core.Renderer = "custom"
	})
	outputDir := filepath.Join(t.TempDir(), "dist")

	orch := newTestOrchestrator(t, cfg)
	result, err := orch.Run(context.Background(), BuildRequest{Config: cfg, OutputDir: outputDir})
	require.NoError(t, err)
	require.Equal(t, BuildStatusSuccess, result.Status)
	require.Equal(t, "custom", result.Renderer)
}

func TestOrchestrator_Run_RecordsHistoryOnSuccess(t *testing.T) {
	cfg, _ := testConfig(t, nil)
	outputDir := filepath.Join(t.TempDir(), "dist")

	store, err := history.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	orch := newTestOrchestrator(t, cfg).WithHistoryStore(store)
	result, err := orch.Run(context.Background(), BuildRequest{Config: cfg, OutputDir: outputDir})
	require.NoError(t, err)

	records, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, result.BuildID, records[0].BuildID)
	require.Equal(t, string(BuildStatusSuccess), records[0].Status)
}

func TestOrchestrator_Run_ClearsStaleOutput(t *testing.T) {
	cfg, _ := testConfig(t, nil)
	outputDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outputDir, "stale.html"), []byte("old"), 0644))

	orch := newTestOrchestrator(t, cfg)
	_, err := orch.Run(context.Background(), BuildRequest{Config: cfg, OutputDir: outputDir})
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(outputDir, "stale.html"))
	require.True(t, os.IsNotExist(statErr), "stale output must be cleared before building")
	_, statErr = os.Stat(filepath.Join(outputDir, "index.html"))
	require.NoError(t, statErr)
}
