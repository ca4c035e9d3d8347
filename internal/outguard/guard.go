// Package outguard validates and prepares the build output directory before
// any build work starts. The guard is the only component allowed to perform a
// destructive operation on a directory it did not create.
package outguard

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebundler/internal/errors"
	"git.home.luguber.info/inful/sitebundler/internal/logfields"
)

// Prepare validates the requested output directory and clears it when it
// already holds content. It returns the resolved absolute path.
//
// The check order is deliberate and must not be reordered: the empty-string
// and root-path rejections happen before any directory listing or removal, so
// a misconfigured request can never destroy the working directory or the
// filesystem root. The two guard conditions are redundant on purpose:
// resolution can turn a relative, empty-looking path into a dangerous
// absolute one.
func Prepare(outputDir string) (string, error) {
	if outputDir == "" {
		return "", errors.ConfigError("output directory must not be empty")
	}

	resolved, err := filepath.Abs(outputDir)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "resolve output directory")
	}

	if resolved == filepath.Dir(resolved) {
		return "", errors.ConfigError("output directory must not be the filesystem root").
			WithContext("path", resolved)
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			// Missing directory: leave creation to downstream writers.
			return resolved, nil
		}
		return "", errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal,
			fmt.Sprintf("inspect output directory %s", resolved))
	}

	if len(entries) == 0 {
		return resolved, nil
	}

	slog.Info("Cleaning existing output directory", logfields.Output(resolved))
	if err := os.RemoveAll(resolved); err != nil {
		return "", errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal,
			fmt.Sprintf("remove output directory %s", resolved))
	}
	if err := os.MkdirAll(resolved, 0750); err != nil {
		return "", errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal,
			fmt.Sprintf("recreate output directory %s", resolved))
	}

	return resolved, nil
}
