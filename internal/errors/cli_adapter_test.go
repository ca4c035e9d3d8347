package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)

	require.Zero(t, a.ExitCodeFor(nil))
	require.Equal(t, 1, a.ExitCodeFor(stderrors.New("plain")))
	require.Equal(t, 2, a.ExitCodeFor(New(CategoryValidation, SeverityFatal, "bad flag")))
	require.Equal(t, 7, a.ExitCodeFor(ConfigError("bad config")))
	require.Equal(t, 7, a.ExitCodeFor(PresetError("bad preset")))
	require.Equal(t, 11, a.ExitCodeFor(New(CategoryShell, SeverityFatal, "shell failed")))
	require.Equal(t, 11, a.ExitCodeFor(New(CategoryPreview, SeverityFatal, "preview failed")))
	require.Equal(t, 12, a.ExitCodeFor(New(CategoryRuntime, SeverityError, "runtime")))
	require.Equal(t, 10, a.ExitCodeFor(New(CategoryInternal, SeverityFatal, "bug")))
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)
	require.Equal(t, "missing framework", a.FormatError(ConfigError("missing framework")))
	require.Equal(t, "shell: broke", a.FormatError(New(CategoryShell, SeverityFatal, "broke")))

	verbose := NewCLIErrorAdapter(true, nil)
	require.Contains(t, verbose.FormatError(New(CategoryShell, SeverityFatal, "broke")), "fatal")
}

func TestBundlerError_UnwrapAndContext(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(cause, CategoryFileSystem, SeverityFatal, "write output").
		WithContext("path", "/tmp/out")

	require.ErrorIs(t, err, cause)
	require.Equal(t, CategoryFileSystem, GetCategory(err))
	require.True(t, IsCategory(err, CategoryFileSystem))
	require.Equal(t, "/tmp/out", err.Context["path"])
}
