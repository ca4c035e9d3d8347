// Package presets implements layered configuration resolution. A preset is a
// named contribution unit; the resolver merges presets in a defined order and
// overlays the project configuration last. Resolution runs in two passes: the
// first pass discovers which renderer and builder pair apply, the second pass
// merges every preset those components contribute. The pass ordering is
// enforced at the type level: LoadFinal requires the InitialConfig value that
// only LoadInitial produces.
package presets

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebundler/internal/config"
)

// Preset is a named configuration-contribution unit.
type Preset struct {
	Name       string                  `yaml:"name"`
	Core       *config.CoreSection     `yaml:"core,omitempty"`
	Build      *config.BuildSection    `yaml:"build,omitempty"`
	Features   config.FeaturesSection  `yaml:"features,omitempty"`
	StaticDirs []config.StaticDir      `yaml:"static_dirs,omitempty"`
	Stories    []string                `yaml:"stories,omitempty"`
	Docs       *config.DocsSection     `yaml:"docs,omitempty"`
	Indexers   []config.IndexerSection `yaml:"experimental_indexers,omitempty"`

	// Imports are additional preset names this preset pulls in, merged before
	// the preset's own contributions.
	Imports []string `yaml:"imports,omitempty"`
}

// LoadPresetFile reads a preset definition from a YAML file. The preset name
// defaults to the file name without extension.
func LoadPresetFile(path string) (*Preset, error) {
	// #nosec G304 - preset paths come from the project configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset %s: %w", path, err)
	}
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse preset %s: %w", path, err)
	}
	if p.Name == "" {
		base := filepath.Base(path)
		p.Name = base[:len(base)-len(filepath.Ext(base))]
	}
	return &p, nil
}

// merge overlays the preset's contributions onto the accumulated sections.
// Scalars from later presets win; list sections append; feature maps overlay
// key by key.
func (p *Preset) merge(acc *accumulated) {
	if p.Core != nil {
		if p.Core.Builder != "" {
			acc.core.Builder = p.Core.Builder
		}
		if p.Core.Renderer != "" {
			acc.core.Renderer = p.Core.Renderer
		}
		if p.Core.DisableTelemetry {
			acc.core.DisableTelemetry = true
		}
		if p.Core.DisableProjectJSON {
			acc.core.DisableProjectJSON = true
		}
	}
	if p.Build != nil {
		if p.Build.PreviewDisabled {
			acc.build.PreviewDisabled = true
		}
		if p.Build.Stats != nil {
			acc.build.Stats = p.Build.Stats
		}
	}
	for k, v := range p.Features {
		acc.features[k] = v
	}
	acc.staticDirs = append(acc.staticDirs, p.StaticDirs...)
	acc.stories = append(acc.stories, p.Stories...)
	if p.Docs != nil {
		acc.docs = *p.Docs
	}
	acc.indexers = append(acc.indexers, p.Indexers...)
}

// accumulated collects section values while presets merge in order.
type accumulated struct {
	core       config.CoreSection
	build      config.BuildSection
	features   config.FeaturesSection
	staticDirs []config.StaticDir
	stories    []string
	docs       config.DocsSection
	indexers   []config.IndexerSection
}

func newAccumulated() *accumulated {
	return &accumulated{features: make(config.FeaturesSection)}
}
