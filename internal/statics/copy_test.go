package statics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebundler/internal/config"
	sberrors "git.home.luguber.info/inful/sitebundler/internal/errors"
)

func TestCopyStaticDirs_CopiesTreeToMappedDestination(t *testing.T) {
	project := t.TempDir()
	out := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(project, "public", "img"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(project, "public", "robots.txt"), []byte("ok"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(project, "public", "img", "logo.svg"), []byte("<svg/>"), 0644))

	dirs := []config.StaticDir{{From: "public", To: "assets"}}
	require.NoError(t, CopyStaticDirs(dirs, project, out))

	data, err := os.ReadFile(filepath.Join(out, "assets", "robots.txt"))
	require.NoError(t, err)
	require.Equal(t, "ok", string(data))
	_, err = os.Stat(filepath.Join(out, "assets", "img", "logo.svg"))
	require.NoError(t, err)
}

func TestCopyStaticDirs_MissingSourceIsSkipped(t *testing.T) {
	out := t.TempDir()
	dirs := []config.StaticDir{{From: "does-not-exist", To: "x"}}
	require.NoError(t, CopyStaticDirs(dirs, t.TempDir(), out))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestCopyStaticDirs_LeadingSlashDestinationStaysInOutput(t *testing.T) {
	project := t.TempDir()
	out := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(project, "public"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(project, "public", "a.txt"), []byte("a"), 0644))

	dirs := []config.StaticDir{{From: "public", To: "/rooted"}}
	require.NoError(t, CopyStaticDirs(dirs, project, out))

	_, err := os.Stat(filepath.Join(out, "rooted", "a.txt"))
	require.NoError(t, err)
}

func TestCopyStaticDirs_RejectsEscapingDestination(t *testing.T) {
	project := t.TempDir()
	outParent := t.TempDir()
	out := filepath.Join(outParent, "dist")
	require.NoError(t, os.MkdirAll(out, 0750))
	require.NoError(t, os.MkdirAll(filepath.Join(project, "public"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(project, "public", "a.txt"), []byte("a"), 0644))

	dirs := []config.StaticDir{{From: "public", To: "../outside"}}
	err := CopyStaticDirs(dirs, project, out)
	require.Error(t, err)

	var be *sberrors.BundlerError
	require.ErrorAs(t, err, &be)
	require.Equal(t, sberrors.CategoryFileSystem, be.Category)

	_, statErr := os.Stat(filepath.Join(outParent, "outside"))
	require.True(t, os.IsNotExist(statErr), "nothing may be written outside the output directory")
}

func TestCopyBundledAssets_WritesRuntimeAssets(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, CopyBundledAssets(out))

	_, err := os.Stat(filepath.Join(out, "sb", "shell.css"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "favicon.svg"))
	require.NoError(t, err)
}
