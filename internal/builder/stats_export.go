package builder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// StatsFileName is the default file name for exported builder statistics.
const StatsFileName = "preview-stats.json"

// ExportStats writes builder statistics as JSON. When target is empty the
// file lands in the output directory under StatsFileName; otherwise target
// names the exact destination file.
func ExportStats(stats *Stats, outputDir, target string) (string, error) {
	if stats == nil {
		return "", fmt.Errorf("no stats to export")
	}

	dest := target
	if dest == "" {
		dest = filepath.Join(outputDir, StatsFileName)
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal stats: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return "", fmt.Errorf("create stats directory: %w", err)
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return "", fmt.Errorf("write stats %s: %w", dest, err)
	}
	return dest, nil
}
