package builder

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExportStats_DefaultDestination(t *testing.T) {
	out := t.TempDir()
	dest, err := ExportStats(&Stats{Builder: "preview", Files: 3}, out, "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(out, StatsFileName), dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var decoded Stats
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, 3, decoded.Files)
}

func TestExportStats_ExplicitTarget(t *testing.T) {
	target := filepath.Join(t.TempDir(), "reports", "stats.json")
	dest, err := ExportStats(&Stats{Builder: "preview"}, t.TempDir(), target)
	require.NoError(t, err)
	require.Equal(t, target, dest)
	_, err = os.Stat(target)
	require.NoError(t, err)
}

func TestExportStats_NilStatsFails(t *testing.T) {
	_, err := ExportStats(nil, t.TempDir(), "")
	require.Error(t, err)
}
