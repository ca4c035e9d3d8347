// Package statics copies configured static directories and the bundled
// runtime asset tree into the output directory.
package statics

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebundler/internal/config"
	"git.home.luguber.info/inful/sitebundler/internal/errors"
	"git.home.luguber.info/inful/sitebundler/internal/logfields"
)

// CopyStaticDirs copies each configured static directory to its mapped
// destination under the output directory. Missing sources are warnings, not
// errors, so a preset can declare optional static content. Destinations must
// stay inside the output directory.
func CopyStaticDirs(dirs []config.StaticDir, configDir, outputDir string) error {
	for _, d := range dirs {
		src := d.From
		if !filepath.IsAbs(src) && configDir != "" {
			src = filepath.Join(configDir, src)
		}
		if _, err := os.Stat(src); os.IsNotExist(err) {
			slog.Warn("Static directory not found, skipping", logfields.Path(src))
			continue
		}

		to := strings.TrimPrefix(d.To, "/")
		dst := filepath.Join(outputDir, to)
		if rel, err := filepath.Rel(outputDir, dst); err != nil ||
			rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return errors.FileSystemError(
				fmt.Sprintf("static dir destination %q escapes the output directory", d.To))
		}
		if err := CopyDir(src, dst); err != nil {
			return fmt.Errorf("copy static dir %s -> %s: %w", src, dst, err)
		}
		slog.Debug("Static directory copied", logfields.Path(src), logfields.Output(dst))
	}
	return nil
}

// CopyDir recursively copies a directory tree, handling cross-device scenarios.
func CopyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, srcInfo.Mode()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := CopyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}

// copyFile copies a single file from src to dst.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = dstFile.Close()
	}()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.Chmod(dst, srcInfo.Mode())
}
