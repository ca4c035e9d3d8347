package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the conventional project configuration file name.
const DefaultConfigFile = "sitebundler.yaml"

// Load reads and parses a project configuration file, applying defaults.
func Load(configPath string) (*Config, error) {
	// #nosec G304 - configPath comes from the CLI flag
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", configPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", configPath, err)
	}

	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfg.Dir = filepath.Dir(abs)

	applyDefaults(&cfg)
	return &cfg, nil
}

// applyDefaults fills zero values with conventional defaults.
func applyDefaults(cfg *Config) {
	if len(cfg.Stories) == 0 {
		cfg.Stories = []string{"content/**/*.md"}
	}
	if cfg.Docs.DefaultName == "" {
		cfg.Docs.DefaultName = "docs"
	}
	if cfg.Telemetry.Subject == "" {
		cfg.Telemetry.Subject = "sitebundler.telemetry.build"
	}
}

// NormalizeStories resolves story globs relative to the config directory and
// removes duplicates while preserving order. Absolute patterns pass through.
func (c *Config) NormalizeStories() []string {
	seen := make(map[string]struct{}, len(c.Stories))
	out := make([]string, 0, len(c.Stories))
	for _, g := range c.Stories {
		if g == "" {
			continue
		}
		if !filepath.IsAbs(g) && c.Dir != "" {
			g = filepath.Join(c.Dir, g)
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

// Init writes a starter configuration file. It refuses to overwrite an
// existing file unless force is set.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", configPath)
	}

	starter := Config{
		Framework: "html",
		Stories:   []string{"content/**/*.md"},
		StaticDirs: []StaticDir{
			{From: "public", To: "."},
		},
	}
	data, err := yaml.Marshal(&starter)
	if err != nil {
		return fmt.Errorf("marshal starter config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("write config %s: %w", configPath, err)
	}
	return nil
}
