package presets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebundler/internal/config"
)

func TestResolver_LoadInitial_DiscoversRendererAndBuilder(t *testing.T) {
	cfg := &config.Config{Framework: "markdown"}
	r, err := NewResolver(cfg)
	require.NoError(t, err)

	initial, err := r.LoadInitial(context.Background(), LoadOptions{CorePresets: []string{"core/base"}})
	require.NoError(t, err)
	require.Equal(t, "markdown", initial.Framework)
	require.Equal(t, "markdown", initial.Renderer)
	require.Equal(t, "static", initial.Builder)
	require.Contains(t, initial.PresetNames, "core/base")
	require.Contains(t, initial.PresetNames, "framework/markdown")
}

func TestResolver_LoadInitial_NoFrameworkFallsBackToCore(t *testing.T) {
	cfg := &config.Config{}
	r, err := NewResolver(cfg)
	require.NoError(t, err)

	initial, err := r.LoadInitial(context.Background(), LoadOptions{CorePresets: []string{"core/base"}})
	require.NoError(t, err)
	require.Empty(t, initial.Framework)
	require.Equal(t, "html", initial.Renderer)
}

func TestResolver_LoadFinal_RequiresInitialConfig(t *testing.T) {
	r, err := NewResolver(&config.Config{})
	require.NoError(t, err)

	_, err = r.LoadFinal(context.Background(), nil, nil)
	require.Error(t, err)
}

func TestResolver_LoadFinal_MergesExtraPresetsOnce(t *testing.T) {
	cfg := &config.Config{Framework: "markdown"}
	r, err := NewResolver(cfg)
	require.NoError(t, err)

	initial, err := r.LoadInitial(context.Background(), LoadOptions{CorePresets: []string{"core/base"}})
	require.NoError(t, err)

	// core/base repeats in the extra set; it must merge only once.
	resolved, err := r.LoadFinal(context.Background(), initial, []string{"core/base", "renderer/markdown"})
	require.NoError(t, err)

	names := resolved.PresetNames()
	seen := make(map[string]int)
	for _, n := range names {
		seen[n]++
	}
	require.Equal(t, 1, seen["core/base"])
	require.Equal(t, 1, seen["renderer/markdown"])

	docs, err := resolved.ApplyDocs(context.Background())
	require.NoError(t, err)
	require.True(t, docs.Enabled, "renderer/markdown enables docs mode")
}

func TestResolver_LoadFinal_ProjectConfigWinsOverPresets(t *testing.T) {
	cfg := &config.Config{
		Framework: "html",
		Core:      config.CoreSection{Renderer: "markdown"},
		Features:  config.FeaturesSection{"content_index": false},
	}
	r, err := NewResolver(cfg)
	require.NoError(t, err)

	initial, err := r.LoadInitial(context.Background(), LoadOptions{CorePresets: []string{"core/base"}})
	require.NoError(t, err)
	require.Equal(t, "markdown", initial.Renderer, "project config overrides the framework preset")

	resolved, err := r.LoadFinal(context.Background(), initial, nil)
	require.NoError(t, err)

	features, err := resolved.ApplyFeatures(context.Background())
	require.NoError(t, err)
	require.False(t, features["content_index"], "project config overrides preset feature flags")
}

func TestResolver_FilePresetContributesSections(t *testing.T) {
	dir := t.TempDir()
	presetPath := filepath.Join(dir, "branding.yaml")
	require.NoError(t, os.WriteFile(presetPath, []byte(
		"name: branding\nstatic_dirs:\n  - from: brand\n    to: assets/brand\nfeatures:\n  dark_mode: true\n"), 0644))

	cfg := &config.Config{Presets: []string{presetPath}, Dir: dir}
	r, err := NewResolver(cfg)
	require.NoError(t, err)

	initial, err := r.LoadInitial(context.Background(), LoadOptions{CorePresets: []string{"core/base"}})
	require.NoError(t, err)

	resolved, err := r.LoadFinal(context.Background(), initial, nil)
	require.NoError(t, err)

	dirs, err := resolved.ApplyStaticDirs(context.Background())
	require.NoError(t, err)
	require.Len(t, dirs, 1)
	require.Equal(t, "brand", dirs[0].From)

	features, err := resolved.ApplyFeatures(context.Background())
	require.NoError(t, err)
	require.True(t, features["dark_mode"])
}

func TestResolver_UnknownPresetFails(t *testing.T) {
	cfg := &config.Config{Presets: []string{}}
	r, err := NewResolver(cfg)
	require.NoError(t, err)

	_, err = r.LoadInitial(context.Background(), LoadOptions{
		CorePresets: []string{"core/base"},
		Overrides:   []string{"nonexistent"},
	})
	require.Error(t, err, "presets named explicitly must exist")
}

func TestResolver_LoadFinal_SkipsUnregisteredComponentPresets(t *testing.T) {
	cfg := &config.Config{Core: config.CoreSection{Renderer: "custom"}}
	r, err := NewResolver(cfg)
	require.NoError(t, err)

	initial, err := r.LoadInitial(context.Background(), LoadOptions{CorePresets: []string{"core/base"}})
	require.NoError(t, err)
	require.Equal(t, "custom", initial.Renderer)

	// A renderer without a preset of its own contributes a name nothing
	// registered; resolution must proceed without it.
	resolved, err := r.LoadFinal(context.Background(), initial, []string{"renderer/custom", "builder/custom"})
	require.NoError(t, err)
	require.NotContains(t, resolved.PresetNames(), "renderer/custom")
	require.Contains(t, resolved.PresetNames(), "core/base")
}

func TestLoadPresetFile_NameDefaultsToFileName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stories:\n  - themes/**/*.md\n"), 0644))

	p, err := LoadPresetFile(path)
	require.NoError(t, err)
	require.Equal(t, "theme", p.Name)
	require.Equal(t, []string{"themes/**/*.md"}, p.Stories)
}
