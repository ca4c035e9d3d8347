package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_ParsesConfigAndSetsDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sitebundler.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
framework: markdown
core:
  disable_telemetry: true
build:
  stats:
    output: reports/stats.json
stories:
  - docs/**/*.md
static_dirs:
  - from: public
    to: assets
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "markdown", cfg.Framework)
	require.True(t, cfg.Core.DisableTelemetry)
	require.NotNil(t, cfg.Build.Stats)
	require.Equal(t, "reports/stats.json", cfg.Build.Stats.Output)
	require.Equal(t, dir, cfg.Dir)
	require.Len(t, cfg.StaticDirs, 1)
	require.Equal(t, "assets", cfg.StaticDirs[0].To)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sitebundler.yaml")
	require.NoError(t, os.WriteFile(path, []byte("framework: html\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"content/**/*.md"}, cfg.Stories)
	require.Equal(t, "docs", cfg.Docs.DefaultName)
	require.Equal(t, "sitebundler.telemetry.build", cfg.Telemetry.Subject)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestNormalizeStories_ResolvesAndDeduplicates(t *testing.T) {
	cfg := &Config{
		Dir:     "/project",
		Stories: []string{"content/*.md", "content/*.md", "/abs/*.md", ""},
	}
	got := cfg.NormalizeStories()
	require.Equal(t, []string{
		filepath.Join("/project", "content", "*.md"),
		filepath.Join("/abs", "*.md"),
	}, got)
}

func TestParseStaticDir(t *testing.T) {
	require.Equal(t, StaticDir{From: "public", To: "assets"}, ParseStaticDir("public:assets"))
	require.Equal(t, StaticDir{From: "public"}, ParseStaticDir("public"))
}

func TestInit_RefusesOverwriteWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitebundler.yaml")
	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "html", cfg.Framework)
}
