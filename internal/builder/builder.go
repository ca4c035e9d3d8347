// Package builder defines the contract shared by the shell and preview
// builders. The orchestrator treats both through this interface: it builds
// the shell first (fatal on error), then runs the preview build concurrently
// with the side-effect tasks.
package builder

import (
	"context"
	"time"
)

// Builder is an independently invocable build unit. A builder is constructed
// once per build run and discarded after.
type Builder interface {
	// Name identifies the builder in logs and metrics.
	Name() string

	// CorePresets are additional preset names this builder contributes to the
	// second configuration pass.
	CorePresets() []string

	// OverridePresets are highest-precedence preset names this builder
	// contributes to the second configuration pass.
	OverridePresets() []string

	// Build produces this builder's portion of the output bundle.
	Build(ctx context.Context, bc BuildContext) (*Stats, error)
}

// BuildContext carries the per-run inputs a builder needs.
type BuildContext struct {
	// StartTime is when the orchestrated build run began.
	StartTime time.Time

	// ConfigDir is the project configuration directory.
	ConfigDir string

	// OutputDir is the guarded, absolute output directory.
	OutputDir string

	// Features are the finalized feature flags.
	Features map[string]bool

	// Stories are the normalized content globs (preview builder input).
	Stories []string

	// Title is the bundle title rendered into generated documents.
	Title string
}

// Stats are the diagnostics a builder reports after a successful build.
type Stats struct {
	Builder  string        `json:"builder"`
	Files    int           `json:"files"`
	Bytes    int64         `json:"bytes"`
	Duration time.Duration `json:"duration_ns"`
	Warnings []string      `json:"warnings,omitempty"`
}
