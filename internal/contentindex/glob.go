package contentindex

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// expandGlob resolves a content glob to matching files. Patterns without a
// "**" segment go through filepath.Glob; patterns with one walk the base
// directory and match the remainder against each file's relative path.
func expandGlob(pattern string) ([]string, error) {
	star := strings.Index(pattern, "**")
	if star < 0 {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		var files []string
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && !info.IsDir() {
				files = append(files, m)
			}
		}
		return files, nil
	}

	base := filepath.Dir(pattern[:star])
	suffix := strings.TrimPrefix(pattern[star+2:], string(filepath.Separator))
	suffix = strings.TrimPrefix(suffix, "/")

	var files []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if suffix == "" {
			files = append(files, path)
			return nil
		}
		// Match the suffix pattern against the tail of the relative path,
		// then against the basename, so both "**/*.md" and "**/deep/*.md"
		// behave as expected.
		rel, relErr := filepath.Rel(base, path)
		if relErr != nil {
			return nil
		}
		if ok, _ := filepath.Match(suffix, filepath.ToSlash(rel)); ok {
			files = append(files, path)
			return nil
		}
		if ok, _ := filepath.Match(suffix, filepath.Base(path)); ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// globBase returns the static directory prefix of a glob, used to derive
// entry paths relative to the content root.
func globBase(pattern string) string {
	star := strings.IndexAny(pattern, "*?[")
	if star < 0 {
		return filepath.Dir(pattern)
	}
	return filepath.Dir(pattern[:star] + "x")
}
