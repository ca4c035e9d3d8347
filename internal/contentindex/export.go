package contentindex

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebundler/internal/errors"
)

// IndexFileName is the fixed name of the exported content index.
const IndexFileName = "index.json"

// Export writes the index as JSON into the output directory.
func Export(idx *Index, outputDir string) error {
	if idx == nil {
		return errors.IndexError("cannot export a nil content index")
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal content index: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	dest := filepath.Join(outputDir, IndexFileName)
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}
