// Package orchestrator sequences a full bundle build: output guard, two-pass
// configuration resolution, the shell build, the joined preview-and-effects
// batch, and best-effort finalization (telemetry, history).
//
// Ordering guarantees: the shell build strictly precedes the preview build;
// configuration pass 1 strictly precedes pass 2; telemetry runs only after
// the joined batch succeeds. Everything inside a batch is unordered.
package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebundler/internal/builder"
	"git.home.luguber.info/inful/sitebundler/internal/builder/preview"
	"git.home.luguber.info/inful/sitebundler/internal/builder/shell"
	"git.home.luguber.info/inful/sitebundler/internal/config"
	"git.home.luguber.info/inful/sitebundler/internal/contentindex"
	sberrors "git.home.luguber.info/inful/sitebundler/internal/errors"
	"git.home.luguber.info/inful/sitebundler/internal/history"
	"git.home.luguber.info/inful/sitebundler/internal/logfields"
	"git.home.luguber.info/inful/sitebundler/internal/manifest"
	"git.home.luguber.info/inful/sitebundler/internal/metrics"
	"git.home.luguber.info/inful/sitebundler/internal/observability"
	"git.home.luguber.info/inful/sitebundler/internal/outguard"
	"git.home.luguber.info/inful/sitebundler/internal/presets"
	"git.home.luguber.info/inful/sitebundler/internal/statics"
	"git.home.luguber.info/inful/sitebundler/internal/telemetry"
)

// BuildRequest contains all inputs required to execute one orchestrated
// build. It is immutable after resolution.
type BuildRequest struct {
	// Config is the loaded project configuration.
	Config *config.Config

	// OutputDir is the requested output directory. Must resolve to an
	// absolute path that is not the filesystem root.
	OutputDir string

	// Options provides optional build behavior modifiers.
	Options BuildOptions
}

// BuildOptions provides optional configuration for build behavior.
type BuildOptions struct {
	// Title overrides the bundle title rendered into generated documents.
	Title string

	// PreviewDisabled skips the preview builder and content indexing,
	// overriding configuration.
	PreviewDisabled bool

	// DisableTelemetry suppresses the telemetry event, overriding
	// configuration.
	DisableTelemetry bool
}

// BuildStatus is the terminal success/failure state of a run. It starts as
// success and is set to failed at most once, by the first fatal error in the
// joined batch; it is never reset.
type BuildStatus string

const (
	BuildStatusSuccess BuildStatus = "success"
	BuildStatusFailed  BuildStatus = "failed"
)

// BuildResult contains the outcome of a build execution. The caller (CLI
// layer) maps Status to a process exit code; the orchestrator holds no
// process-wide mutable state.
type BuildResult struct {
	Status    BuildStatus
	BuildID   string
	OutputDir string

	Framework string
	Renderer  string
	Presets   []string

	ShellStats   *builder.Stats
	PreviewStats *builder.Stats
	IndexEntries int

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// BuilderFactory constructs the builder pair from the first-pass
// configuration. Injectable for tests.
type BuilderFactory func(initial *presets.InitialConfig) (shellBuilder, previewBuilder builder.Builder)

// Orchestrator drives the build pipeline.
type Orchestrator struct {
	resolver       presets.Resolver
	recorder       metrics.Recorder
	notifier       telemetry.Notifier
	historyStore   *history.Store
	builderFactory BuilderFactory
}

// New creates an orchestrator with default collaborators: noop metrics, the
// log-only telemetry notifier, no history store, and the standard
// shell/preview builder pair.
func New(resolver presets.Resolver) *Orchestrator {
	return &Orchestrator{
		resolver: resolver,
		recorder: metrics.NoopRecorder{},
		notifier: telemetry.LogNotifier{},
		builderFactory: func(initial *presets.InitialConfig) (builder.Builder, builder.Builder) {
			return shell.New(initial.Renderer), preview.New(initial.Renderer)
		},
	}
}

// WithRecorder injects a metrics recorder.
func (o *Orchestrator) WithRecorder(r metrics.Recorder) *Orchestrator {
	if r != nil {
		o.recorder = r
	}
	return o
}

// WithNotifier injects a telemetry notifier.
func (o *Orchestrator) WithNotifier(n telemetry.Notifier) *Orchestrator {
	if n != nil {
		o.notifier = n
	}
	return o
}

// WithHistoryStore injects a build-history store (optional).
func (o *Orchestrator) WithHistoryStore(s *history.Store) *Orchestrator {
	o.historyStore = s
	return o
}

// WithBuilderFactory injects a custom builder pair factory (for testing).
func (o *Orchestrator) WithBuilderFactory(f BuilderFactory) *Orchestrator {
	if f != nil {
		o.builderFactory = f
	}
	return o
}

// Run executes the complete build pipeline. It returns normally on success
// and returns the first fatal error otherwise; in both cases the returned
// BuildResult carries the terminal status.
func (o *Orchestrator) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	startTime := time.Now()
	result := &BuildResult{
		Status:    BuildStatusSuccess,
		BuildID:   uuid.NewString(),
		StartTime: startTime,
	}
	ctx = observability.WithBuildID(ctx, result.BuildID)

	fail := func(err error) (*BuildResult, error) {
		// Uniform failure policy: every fatal path marks the terminal
		// status, not only the preview builder's.
		result.Status = BuildStatusFailed
		o.finish(result)
		return result, err
	}

	if req.Config == nil {
		return fail(sberrors.ConfigError("project configuration required"))
	}

	// Phase 1: output guard. Rejections happen before any mutation.
	stageStart := time.Now()
	ctx = observability.WithStage(ctx, "guard")
	outputDir, err := outguard.Prepare(req.OutputDir)
	if err != nil {
		o.recorder.IncStageResult("guard", metrics.ResultFatal)
		return fail(err)
	}
	result.OutputDir = outputDir
	o.stageOK(ctx, "guard", stageStart)

	// Phase 2: configuration pass 1 discovers the renderer and builder pair.
	stageStart = time.Now()
	ctx = observability.WithStage(ctx, "config_pass1")
	initial, err := o.resolver.LoadInitial(ctx, presets.LoadOptions{
		CorePresets: []string{"core/base"},
	})
	if err != nil {
		o.recorder.IncStageResult("config_pass1", metrics.ResultFatal)
		return fail(err)
	}
	result.Framework = initial.Framework
	result.Renderer = initial.Renderer

	previewDisabled := req.Options.PreviewDisabled || initial.Build.PreviewDisabled
	if initial.Framework == "" && !previewDisabled {
		observability.WarnContext(ctx, "No framework declared; continuing with an unset framework")
	}
	o.stageOK(ctx, "config_pass1", stageStart)

	// The core and build sections are applied early: builder selection can
	// depend on declared build tooling.
	shellBuilder, previewBuilder := o.builderFactory(initial)

	// Phase 3: shell build. Fatal on error; nothing downstream is attempted.
	stageStart = time.Now()
	ctx = observability.WithStage(ctx, "shell")
	observability.InfoContext(ctx, "Building application shell", logfields.Builder(shellBuilder.Name()))
	shellCtx := builder.BuildContext{
		StartTime: startTime,
		ConfigDir: req.Config.Dir,
		OutputDir: outputDir,
		Title:     req.Options.Title,
	}
	shellStats, err := shellBuilder.Build(ctx, shellCtx)
	if err != nil {
		o.recorder.IncStageResult("shell", metrics.ResultFatal)
		return fail(sberrors.Wrap(err, sberrors.CategoryShell, sberrors.SeverityFatal, "shell build failed"))
	}
	result.ShellStats = shellStats
	o.stageOK(ctx, "shell", stageStart)

	// Phase 4: configuration pass 2 over the union of pass-1 presets and
	// everything the discovered components contribute.
	stageStart = time.Now()
	ctx = observability.WithStage(ctx, "config_pass2")
	extra := append([]string{}, shellBuilder.CorePresets()...)
	extra = append(extra, previewBuilder.CorePresets()...)
	extra = append(extra, shellBuilder.OverridePresets()...)
	extra = append(extra, previewBuilder.OverridePresets()...)
	resolved, err := o.resolver.LoadFinal(ctx, initial, extra)
	if err != nil {
		o.recorder.IncStageResult("config_pass2", metrics.ResultFatal)
		return fail(err)
	}
	result.Presets = resolved.PresetNames()

	sections, err := applySections(ctx, resolved)
	if err != nil {
		o.recorder.IncStageResult("config_pass2", metrics.ResultFatal)
		return fail(err)
	}
	o.stageOK(ctx, "config_pass2", stageStart)

	disableTelemetry := req.Options.DisableTelemetry || sections.core.DisableTelemetry

	// Phase 5: assemble the side-effect set and run it joined with the
	// preview build.
	stageStart = time.Now()
	ctx = observability.WithStage(ctx, "effects")
	effects := NewEffectSet(o.recorder)

	if len(sections.staticDirs) > 0 {
		dirs := sections.staticDirs
		effects.Add(Task{Kind: "static_copy", Criticality: CriticalityFatal, Run: func(taskCtx context.Context) error {
			return statics.CopyStaticDirs(dirs, req.Config.Dir, outputDir)
		}})
	}

	effects.Add(Task{Kind: "asset_copy", Criticality: CriticalityFatal, Run: func(taskCtx context.Context) error {
		return statics.CopyBundledAssets(outputDir)
	}})

	indexHandle := contentindex.Absent()
	if previewDisabled {
		observability.InfoContext(ctx, "Preview build disabled; skipping content index and runtime")
	} else {
		indexer := contentindex.NewIndexer(sections.stories, sections.docs.Enabled, sections.indexers)
		indexHandle = contentindex.Start(ctx, indexer)
		effects.Add(Task{Kind: "index_export", Criticality: CriticalityFatal, Run: func(taskCtx context.Context) error {
			idx, present, resolveErr := indexHandle.Resolve(taskCtx)
			if resolveErr != nil {
				return resolveErr
			}
			if !present {
				return nil
			}
			return contentindex.Export(idx, outputDir)
		}})
	}

	if !sections.core.DisableProjectJSON {
		effects.Add(Task{Kind: "metadata_export", Criticality: CriticalityFatal, Run: func(taskCtx context.Context) error {
			m := manifest.New(result.BuildID, initial.Framework, initial.Renderer,
				[]string{shellBuilder.Name(), previewBuilder.Name()}, resolved.PresetNames(), req.Config.Dir)
			return manifest.Export(m, outputDir)
		}})
	}

	if !previewDisabled {
		effects.Add(Task{Kind: "preview_build", Criticality: CriticalityFatal, Run: func(taskCtx context.Context) error {
			observability.InfoContext(taskCtx, "Building content preview", logfields.Builder(previewBuilder.Name()))
			previewCtx := builder.BuildContext{
				StartTime: startTime,
				ConfigDir: req.Config.Dir,
				OutputDir: outputDir,
				Features:  sections.features,
				Stories:   sections.stories,
				Title:     req.Options.Title,
			}
			stats, buildErr := previewBuilder.Build(taskCtx, previewCtx)
			if buildErr != nil {
				return sberrors.Wrap(buildErr, sberrors.CategoryPreview, sberrors.SeverityFatal, "preview build failed")
			}
			result.PreviewStats = stats
			if sections.build.Stats != nil {
				dest, exportErr := builder.ExportStats(stats, outputDir, sections.build.Stats.Output)
				if exportErr != nil {
					return exportErr
				}
				observability.InfoContext(taskCtx, "Builder stats exported", logfields.Path(dest))
			}
			return nil
		}})
	}

	if err := effects.Drain(ctx); err != nil {
		o.recorder.IncStageResult("effects", metrics.ResultFatal)
		return fail(err)
	}
	o.stageOK(ctx, "effects", stageStart)

	// Phase 6: finalization batch, only after the joined batch succeeded.
	stageStart = time.Now()
	ctx = observability.WithStage(ctx, "finalize")

	var indexSummary *contentindex.Summary
	if idx, present, resolveErr := indexHandle.Resolve(ctx); resolveErr == nil && present {
		s := idx.Summarize()
		indexSummary = &s
		result.IndexEntries = s.Entries
	}

	if !disableTelemetry {
		effects.Add(Task{Kind: "telemetry", Criticality: CriticalityBestEffort, Run: func(taskCtx context.Context) error {
			event := telemetry.NewEvent(result.BuildID, initial.Framework, indexSummary, time.Since(startTime))
			return o.notifier.Notify(taskCtx, event)
		}})
	}

	if o.historyStore != nil {
		effects.Add(Task{Kind: "history_record", Criticality: CriticalityBestEffort, Run: func(taskCtx context.Context) error {
			entries := 0
			if indexSummary != nil {
				entries = indexSummary.Entries
			}
			return o.historyStore.Append(taskCtx, history.Record{
				BuildID:   result.BuildID,
				Status:    string(BuildStatusSuccess),
				Framework: initial.Framework,
				Entries:   entries,
				Duration:  time.Since(startTime),
				StartedAt: startTime,
			})
		}})
	}

	// Best-effort batch: Drain only returns fatal errors, and none are
	// queued here.
	_ = effects.Drain(ctx)
	o.stageOK(ctx, "finalize", stageStart)

	o.finish(result)
	observability.InfoContext(ctx, "Build complete", logfields.Output(outputDir),
		slog.Int("index_entries", result.IndexEntries))
	return result, nil
}

// stageOK records success timing for a stage.
func (o *Orchestrator) stageOK(ctx context.Context, stage string, start time.Time) {
	d := time.Since(start)
	o.recorder.ObserveStageDuration(stage, d)
	o.recorder.IncStageResult(stage, metrics.ResultSuccess)
	observability.DebugContext(ctx, "Stage complete", logfields.DurationMS(float64(d.Milliseconds())))
}

// finish stamps terminal timing and outcome metrics.
func (o *Orchestrator) finish(result *BuildResult) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	switch result.Status {
	case BuildStatusSuccess:
		o.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
	default:
		o.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
	}
	o.recorder.ObserveBuildDuration(result.Duration)
}
