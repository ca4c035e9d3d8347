package presets

import (
	"fmt"
	"sync"

	"git.home.luguber.info/inful/sitebundler/internal/config"
)

// Registry resolves preset names to definitions. Built-in framework presets
// are registered up front; file-backed presets are added by the resolver.
type Registry struct {
	mu      sync.RWMutex
	presets map[string]*Preset
}

// NewRegistry creates a registry seeded with the built-in presets.
func NewRegistry() *Registry {
	r := &Registry{presets: make(map[string]*Preset)}
	for _, p := range builtinPresets() {
		r.presets[p.Name] = p
	}
	return r
}

// Register adds or replaces a preset definition.
func (r *Registry) Register(p *Preset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presets[p.Name] = p
}

// Get returns a preset by name.
func (r *Registry) Get(name string) (*Preset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q", name)
	}
	return p, nil
}

// FrameworkPresetName returns the preset name derived from a framework
// declaration, or "" when no framework is set.
func FrameworkPresetName(framework string) string {
	if framework == "" {
		return ""
	}
	return "framework/" + framework
}

// builtinPresets defines the core preset and the framework presets shipped
// with SiteBundler. A framework preset's job is to select the renderer and
// builder pair; everything else layers on top.
func builtinPresets() []*Preset {
	return []*Preset{
		{
			Name: "core/base",
			Core: &config.CoreSection{Builder: "static", Renderer: "html"},
			Features: config.FeaturesSection{
				"content_index": true,
			},
		},
		{
			Name: "framework/html",
			Core: &config.CoreSection{Builder: "static", Renderer: "html"},
		},
		{
			Name:    "framework/markdown",
			Core:    &config.CoreSection{Builder: "static", Renderer: "markdown"},
			Imports: []string{"renderer/markdown"},
		},
		{
			Name: "renderer/markdown",
			Docs: &config.DocsSection{Enabled: true},
		},
		{
			Name: "renderer/html",
		},
	}
}
