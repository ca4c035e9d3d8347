package presets

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/sitebundler/internal/config"
	"git.home.luguber.info/inful/sitebundler/internal/errors"
	"git.home.luguber.info/inful/sitebundler/internal/logfields"
)

// Resolver loads and merges layered configuration. The orchestrator calls it
// twice per build: LoadInitial discovers the renderer and builder identities,
// LoadFinal produces the finalized configuration from the union of preset
// names contributed by the discovered components.
type Resolver interface {
	LoadInitial(ctx context.Context, opts LoadOptions) (*InitialConfig, error)
	LoadFinal(ctx context.Context, initial *InitialConfig, extra []string) (*ResolvedConfig, error)
}

// LoadOptions are the request-scoped inputs to the first resolution pass.
type LoadOptions struct {
	// CorePresets is the minimal preset set applied first.
	CorePresets []string

	// Overrides are highest-precedence preset names applied after everything
	// except the project configuration itself.
	Overrides []string
}

// InitialConfig is the first-pass result: enough to construct the builder
// pair. LoadFinal requires this value, which makes it impossible to run the
// second pass before (or without) the first.
type InitialConfig struct {
	Framework   string
	Renderer    string
	Builder     string
	Core        config.CoreSection
	Build       config.BuildSection
	PresetNames []string
}

// ResolvedConfig is the finalized merged configuration. Section accessors
// take a context because applying a section may suspend (presets can be
// backed by files); the six independent sections may be applied in parallel.
type ResolvedConfig struct {
	acc         *accumulated
	presetNames []string
}

// PresetNames returns the ordered preset names that produced this configuration.
func (r *ResolvedConfig) PresetNames() []string { return r.presetNames }

// ApplyCore returns the merged core section.
func (r *ResolvedConfig) ApplyCore(ctx context.Context) (config.CoreSection, error) {
	if err := ctx.Err(); err != nil {
		return config.CoreSection{}, err
	}
	return r.acc.core, nil
}

// ApplyBuild returns the merged build section.
func (r *ResolvedConfig) ApplyBuild(ctx context.Context) (config.BuildSection, error) {
	if err := ctx.Err(); err != nil {
		return config.BuildSection{}, err
	}
	return r.acc.build, nil
}

// ApplyFeatures returns the merged feature flags.
func (r *ResolvedConfig) ApplyFeatures(ctx context.Context) (config.FeaturesSection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.acc.features, nil
}

// ApplyStaticDirs returns the merged static directory mappings.
func (r *ResolvedConfig) ApplyStaticDirs(ctx context.Context) ([]config.StaticDir, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.acc.staticDirs, nil
}

// ApplyIndexers returns the merged experimental indexer sections.
func (r *ResolvedConfig) ApplyIndexers(ctx context.Context) ([]config.IndexerSection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.acc.indexers, nil
}

// ApplyStories returns the merged story globs.
func (r *ResolvedConfig) ApplyStories(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.acc.stories, nil
}

// ApplyDocs returns the merged docs section.
func (r *ResolvedConfig) ApplyDocs(ctx context.Context) (config.DocsSection, error) {
	if err := ctx.Err(); err != nil {
		return config.DocsSection{}, err
	}
	return r.acc.docs, nil
}

// DefaultResolver merges built-in presets, file presets named by the project
// configuration, and the project configuration itself (highest precedence).
type DefaultResolver struct {
	cfg      *config.Config
	registry *Registry
}

// NewResolver creates a resolver for a loaded project configuration. Preset
// files referenced by the configuration are registered eagerly so both
// passes see the same definitions.
func NewResolver(cfg *config.Config) (*DefaultResolver, error) {
	r := &DefaultResolver{cfg: cfg, registry: NewRegistry()}
	for _, path := range cfg.Presets {
		if !filepath.IsAbs(path) && cfg.Dir != "" {
			path = filepath.Join(cfg.Dir, path)
		}
		p, err := LoadPresetFile(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryPreset, errors.SeverityFatal, "load preset file")
		}
		r.registry.Register(p)
	}
	return r, nil
}

// Registry exposes the resolver's preset registry (used by builders that
// contribute presets programmatically).
func (r *DefaultResolver) Registry() *Registry { return r.registry }

// LoadInitial runs the first resolution pass: the minimal core preset set
// plus the framework preset (when a framework is declared), then the project
// configuration overlay. Its purpose is discovering the renderer and builder
// identities for the second pass.
func (r *DefaultResolver) LoadInitial(ctx context.Context, opts LoadOptions) (*InitialConfig, error) {
	names := append([]string{}, opts.CorePresets...)
	if fw := FrameworkPresetName(r.cfg.Framework); fw != "" {
		names = append(names, fw)
	}
	names = append(names, r.cfg.Presets...)
	names = append(names, opts.Overrides...)

	acc, merged, err := r.mergeAll(ctx, names)
	if err != nil {
		return nil, err
	}

	return &InitialConfig{
		Framework:   r.cfg.Framework,
		Renderer:    acc.core.Renderer,
		Builder:     acc.core.Builder,
		Core:        acc.core,
		Build:       acc.build,
		PresetNames: merged,
	}, nil
}

// LoadFinal runs the second resolution pass over the union of the first
// pass's presets and every preset contributed by the discovered builders and
// renderer. Component-contributed names are optional hooks: ones without a
// registered preset are skipped, so a renderer or builder with no preset of
// its own still resolves. Duplicate names are merged once, keeping
// first-occurrence order.
func (r *DefaultResolver) LoadFinal(ctx context.Context, initial *InitialConfig, extra []string) (*ResolvedConfig, error) {
	if initial == nil {
		return nil, errors.PresetError("second resolution pass requires the first pass result")
	}

	names := append([]string{}, initial.PresetNames...)
	for _, name := range extra {
		if _, err := r.registry.Get(name); err != nil {
			slog.Debug("Skipping unregistered component preset", logfields.Preset(name))
			continue
		}
		names = append(names, name)
	}
	if rp := "renderer/" + initial.Renderer; initial.Renderer != "" {
		if _, err := r.registry.Get(rp); err == nil {
			names = append(names, rp)
		}
	}

	acc, merged, err := r.mergeAll(ctx, names)
	if err != nil {
		return nil, err
	}

	slog.Debug("Presets resolved", slog.Int("count", len(merged)), slog.Any("presets", merged))
	return &ResolvedConfig{acc: acc, presetNames: merged}, nil
}

// mergeAll merges the named presets in order (expanding imports depth-first),
// deduplicating by name, then overlays the project configuration.
func (r *DefaultResolver) mergeAll(ctx context.Context, names []string) (*accumulated, []string, error) {
	acc := newAccumulated()
	seen := make(map[string]struct{})
	var merged []string

	var apply func(name string) error
	apply = func(name string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, done := seen[name]; done {
			return nil
		}
		seen[name] = struct{}{}

		p, err := r.registry.Get(name)
		if err != nil {
			// File preset paths from the config were registered by their
			// basename; fall back before failing.
			base := filepath.Base(name)
			if p, err = r.registry.Get(base[:len(base)-len(filepath.Ext(base))]); err != nil {
				return errors.Wrap(err, errors.CategoryPreset, errors.SeverityFatal,
					fmt.Sprintf("resolve preset %q", name))
			}
		}
		for _, imp := range p.Imports {
			if err := apply(imp); err != nil {
				return err
			}
		}
		slog.Debug("Applying preset", logfields.Preset(p.Name))
		p.merge(acc)
		merged = append(merged, p.Name)
		return nil
	}

	for _, name := range names {
		if err := apply(name); err != nil {
			return nil, nil, err
		}
	}

	r.overlayProjectConfig(acc)
	return acc, merged, nil
}

// overlayProjectConfig applies the project configuration with highest
// precedence over all presets.
func (r *DefaultResolver) overlayProjectConfig(acc *accumulated) {
	cfg := r.cfg
	if cfg.Core.Builder != "" {
		acc.core.Builder = cfg.Core.Builder
	}
	if cfg.Core.Renderer != "" {
		acc.core.Renderer = cfg.Core.Renderer
	}
	if cfg.Core.DisableTelemetry {
		acc.core.DisableTelemetry = true
	}
	if cfg.Core.DisableProjectJSON {
		acc.core.DisableProjectJSON = true
	}
	if cfg.Build.PreviewDisabled {
		acc.build.PreviewDisabled = true
	}
	if cfg.Build.Stats != nil {
		acc.build.Stats = cfg.Build.Stats
	}
	for k, v := range cfg.Features {
		acc.features[k] = v
	}
	acc.staticDirs = append(acc.staticDirs, cfg.StaticDirs...)
	acc.stories = append(acc.stories, cfg.NormalizeStories()...)
	if cfg.Docs.Enabled {
		acc.docs = cfg.Docs
	}
	acc.indexers = append(acc.indexers, cfg.ExperimentalIndexers...)
}
