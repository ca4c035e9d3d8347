package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_PopulatesIdentityFields(t *testing.T) {
	m := New("build-123", "html", "html", []string{"shell", "preview"}, []string{"core/base"}, t.TempDir())
	require.Equal(t, "sitebundler", m.Generator)
	require.Equal(t, "build-123", m.BuildID)
	require.NotEmpty(t, m.Version)
	require.Equal(t, []string{"shell", "preview"}, m.Builders)
	require.Empty(t, m.Commit, "a plain directory has no git metadata")
}

func TestExport_WritesProjectJSON(t *testing.T) {
	out := t.TempDir()
	m := New("build-456", "markdown", "markdown", []string{"shell", "preview"}, nil, "")
	require.NoError(t, Export(m, out))

	data, err := os.ReadFile(filepath.Join(out, FileName))
	require.NoError(t, err)

	var decoded ProjectManifest
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "build-456", decoded.BuildID)
	require.Equal(t, "markdown", decoded.Framework)
}
