package statics

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed assets
var bundledAssets embed.FS

// CopyBundledAssets writes the bundled asset tree into the output directory
// root. These are the fixed runtime assets every bundle ships with,
// independent of configured static directories.
func CopyBundledAssets(outputDir string) error {
	return fs.WalkDir(bundledAssets, "assets", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel("assets", path)
		if relErr != nil {
			return relErr
		}
		dest := filepath.Join(outputDir, rel)
		if d.IsDir() {
			return os.MkdirAll(dest, 0750)
		}
		data, readErr := bundledAssets.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("read bundled asset %s: %w", path, readErr)
		}
		if writeErr := os.WriteFile(dest, data, 0644); writeErr != nil {
			return fmt.Errorf("write bundled asset %s: %w", dest, writeErr)
		}
		return nil
	})
}
