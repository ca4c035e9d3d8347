package config

import (
	"strings"
)

// Config is the parsed project configuration (sitebundler.yaml). It is the raw
// input to preset resolution; the finalized view of a build is produced by the
// presets package after both resolution passes.
type Config struct {
	// Framework names the framework preset to apply (e.g. "react", "vue").
	// Empty is allowed: the build proceeds with an unset framework and a warning.
	Framework string `yaml:"framework,omitempty"`

	Core     CoreSection     `yaml:"core,omitempty"`
	Build    BuildSection    `yaml:"build,omitempty"`
	Features FeaturesSection `yaml:"features,omitempty"`

	// StaticDirs maps source directories to destinations under the output dir.
	StaticDirs []StaticDir `yaml:"static_dirs,omitempty"`

	// Stories are glob patterns for discoverable content entries.
	Stories []string `yaml:"stories,omitempty"`

	Docs DocsSection `yaml:"docs,omitempty"`

	// ExperimentalIndexers configures additional content indexers.
	ExperimentalIndexers []IndexerSection `yaml:"experimental_indexers,omitempty"`

	// Presets are additional preset files merged during resolution, in order.
	Presets []string `yaml:"presets,omitempty"`

	Telemetry TelemetrySection `yaml:"telemetry,omitempty"`

	// Dir is the directory containing the config file (set by Load, not serialized).
	Dir string `yaml:"-"`
}

// CoreSection selects the renderer and builder pair and toggles core outputs.
type CoreSection struct {
	Builder            string `yaml:"builder,omitempty"`
	Renderer           string `yaml:"renderer,omitempty"`
	DisableTelemetry   bool   `yaml:"disable_telemetry,omitempty"`
	DisableProjectJSON bool   `yaml:"disable_project_json,omitempty"`
}

// BuildSection holds build behavior knobs.
type BuildSection struct {
	// PreviewDisabled skips the preview builder and content indexing entirely.
	PreviewDisabled bool `yaml:"preview_disabled,omitempty"`

	// Stats enables export of the preview builder's statistics.
	Stats *StatsSection `yaml:"stats,omitempty"`
}

// StatsSection configures builder stats export.
type StatsSection struct {
	// Output is the target path for the stats file. Empty means the build
	// output directory.
	Output string `yaml:"output,omitempty"`
}

// FeaturesSection is a named feature-flag map.
type FeaturesSection map[string]bool

// StaticDir maps a source directory to a destination under the output directory.
type StaticDir struct {
	From string `yaml:"from"`
	To   string `yaml:"to,omitempty"`
}

// DocsSection configures docs-mode content handling.
type DocsSection struct {
	Enabled     bool   `yaml:"enabled,omitempty"`
	DefaultName string `yaml:"default_name,omitempty"`
}

// IndexerSection configures one experimental content indexer.
type IndexerSection struct {
	Name    string   `yaml:"name"`
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// TelemetrySection configures outbound telemetry.
type TelemetrySection struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// ParseStaticDir parses the "from:to" shorthand used on the command line.
// A bare "from" maps to the output directory root.
func ParseStaticDir(s string) StaticDir {
	if i := strings.LastIndex(s, ":"); i > 0 {
		return StaticDir{From: s[:i], To: s[i+1:]}
	}
	return StaticDir{From: s}
}
