// Package manifest exports the project metadata file (project.json) that
// describes how a bundle was produced.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/sitebundler/internal/version"
)

// FileName is the fixed name of the exported metadata file.
const FileName = "project.json"

// ProjectManifest records the inputs and identities behind a build.
type ProjectManifest struct {
	Generator string    `json:"generator"`
	Version   string    `json:"version"`
	BuildID   string    `json:"build_id"`
	Timestamp time.Time `json:"timestamp"`

	Framework string   `json:"framework,omitempty"`
	Renderer  string   `json:"renderer,omitempty"`
	Builders  []string `json:"builders"`
	Presets   []string `json:"presets,omitempty"`

	// Commit is the project HEAD commit when the config dir is a git work
	// tree; empty otherwise.
	Commit string `json:"commit,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// New assembles a manifest, best-effort reading git metadata from the
// project directory.
func New(buildID, framework, renderer string, builders, presets []string, projectDir string) *ProjectManifest {
	m := &ProjectManifest{
		Generator: "sitebundler",
		Version:   version.Version,
		BuildID:   buildID,
		Timestamp: time.Now().UTC(),
		Framework: framework,
		Renderer:  renderer,
		Builders:  builders,
		Presets:   presets,
	}
	m.Commit, m.Branch = headCommit(projectDir)
	return m
}

// headCommit reads the HEAD commit hash and branch name of the repository
// containing dir. Not being in a repository is not an error.
func headCommit(dir string) (commit, branch string) {
	if dir == "" {
		return "", ""
	}
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", ""
	}
	head, err := repo.Head()
	if err != nil {
		return "", ""
	}
	commit = head.Hash().String()
	if head.Name().IsBranch() {
		branch = head.Name().Short()
	}
	return commit, branch
}

// Export writes the manifest into the output directory.
func Export(m *ProjectManifest, outputDir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project manifest: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	dest := filepath.Join(outputDir, FileName)
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}
