// Package contentindex builds the structured index of discoverable content
// entries from normalized source globs and exports it to the output bundle.
package contentindex

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/sitebundler/internal/config"
	"git.home.luguber.info/inful/sitebundler/internal/logfields"
)

// EntryKind classifies index entries.
type EntryKind string

const (
	KindStory EntryKind = "story"
	KindDocs  EntryKind = "docs"
)

// Entry is one discoverable content item.
type Entry struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Kind        EntryKind `json:"kind"`
	Path        string    `json:"path"`
	Fingerprint string    `json:"fingerprint"`
}

// Index is the structured content index exported as index.json.
type Index struct {
	Version   int              `json:"v"`
	Generated time.Time        `json:"generated"`
	Entries   map[string]Entry `json:"entries"`
}

// IndexVersion is the current index schema version.
const IndexVersion = 1

// Indexer scans normalized content globs and produces an Index.
type Indexer struct {
	globs    []string
	docsMode bool
	extra    []config.IndexerSection
}

// NewIndexer creates an indexer over normalized story globs. When docsMode is
// set, markdown entries are classified as docs instead of stories. Extra
// indexer sections widen the scan with their own include globs.
func NewIndexer(globs []string, docsMode bool, extra []config.IndexerSection) *Indexer {
	return &Indexer{globs: globs, docsMode: docsMode, extra: extra}
}

// Run scans all globs and assembles the index. Unreadable files are logged
// and skipped; an entry ID collision keeps the first occurrence.
func (ix *Indexer) Run(ctx context.Context) (*Index, error) {
	idx := &Index{
		Version:   IndexVersion,
		Generated: time.Now().UTC(),
		Entries:   make(map[string]Entry),
	}

	globs := append([]string{}, ix.globs...)
	excludes := make([]string, 0)
	for _, section := range ix.extra {
		globs = append(globs, section.Include...)
		excludes = append(excludes, section.Exclude...)
	}

	for _, glob := range globs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		matches, err := expandGlob(glob)
		if err != nil {
			return nil, fmt.Errorf("expand glob %s: %w", glob, err)
		}
		base := globBase(glob)
		for _, path := range matches {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if excluded(path, excludes) {
				continue
			}
			entry, err := ix.indexFile(base, path)
			if err != nil {
				slog.Warn("Skipping unreadable content file", logfields.Path(path), logfields.Error(err))
				continue
			}
			if _, dup := idx.Entries[entry.ID]; dup {
				slog.Warn("Duplicate content entry id, keeping first occurrence",
					slog.String("id", entry.ID), logfields.Path(path))
				continue
			}
			idx.Entries[entry.ID] = entry
		}
	}

	slog.Debug("Content index assembled", slog.Int("entries", len(idx.Entries)))
	return idx, nil
}

// indexFile builds one entry from a content file.
func (ix *Indexer) indexFile(base, path string) (Entry, error) {
	// #nosec G304 - paths come from configured content globs
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, err
	}

	rel := path
	if base != "" {
		if r, relErr := filepath.Rel(base, path); relErr == nil {
			rel = r
		}
	}

	fm, body := splitFrontmatter(data)
	title := extractTitle(body)
	if title == "" {
		name := filepath.Base(path)
		title = strings.TrimSuffix(name, filepath.Ext(name))
	}

	kind := KindStory
	if ix.docsMode && isMarkdown(path) {
		kind = KindDocs
	}

	return Entry{
		ID:          Slugify(strings.TrimSuffix(rel, filepath.Ext(rel))),
		Title:       title,
		Kind:        kind,
		Path:        filepath.ToSlash(rel),
		Fingerprint: mdfp.CalculateFingerprintFromParts(string(fm), string(body)),
	}, nil
}

// Summary condenses an index for telemetry.
type Summary struct {
	Entries int `json:"entries"`
	Stories int `json:"stories"`
	Docs    int `json:"docs"`
}

// Summarize reduces the index to counts.
func (idx *Index) Summarize() Summary {
	s := Summary{Entries: len(idx.Entries)}
	for _, e := range idx.Entries {
		switch e.Kind {
		case KindDocs:
			s.Docs++
		default:
			s.Stories++
		}
	}
	return s
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdx":
		return true
	}
	return false
}

func excluded(path string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, filepath.Base(path)); ok {
			return true
		}
	}
	return false
}

// splitFrontmatter separates a leading YAML frontmatter block from the body.
// Files without frontmatter return an empty frontmatter and the full content.
func splitFrontmatter(data []byte) (fm, body []byte) {
	const delim = "---\n"
	s := string(data)
	if !strings.HasPrefix(s, delim) {
		return nil, data
	}
	rest := s[len(delim):]
	end := strings.Index(rest, "\n"+delim[:3])
	if end < 0 {
		return nil, data
	}
	fm = []byte(rest[:end+1])
	after := rest[end+1:]
	after = strings.TrimPrefix(after, "---")
	after = strings.TrimPrefix(after, "\n")
	return fm, []byte(after)
}
