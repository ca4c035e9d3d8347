// Package telemetry emits one outbound event per successful build run.
// Emission is best-effort: a failed or slow transport never fails a build.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebundler/internal/contentindex"
)

// UpgradePrecedence marks how this build's generator version relates to the
// latest known release. The build orchestrator only ever reports "current";
// the upgrade checker (separate process) fills in the other values.
type UpgradePrecedence string

const (
	PrecedenceCurrent UpgradePrecedence = "current"
	PrecedenceBehind  UpgradePrecedence = "behind"
	PrecedenceUnknown UpgradePrecedence = "unknown"
)

// Event is the payload submitted once per successful run.
type Event struct {
	EventID    string                `json:"event_id"`
	BuildID    string                `json:"build_id"`
	Timestamp  time.Time             `json:"timestamp"`
	Precedence UpgradePrecedence     `json:"precedence"`
	Framework  string                `json:"framework,omitempty"`
	Index      *contentindex.Summary `json:"index,omitempty"`
	DurationMS int64                 `json:"duration_ms"`
}

// NewEvent assembles a telemetry event for a completed build.
func NewEvent(buildID, framework string, idxSummary *contentindex.Summary, duration time.Duration) *Event {
	return &Event{
		EventID:    uuid.NewString(),
		BuildID:    buildID,
		Timestamp:  time.Now().UTC(),
		Precedence: PrecedenceCurrent,
		Framework:  framework,
		Index:      idxSummary,
		DurationMS: duration.Milliseconds(),
	}
}

// Notifier submits telemetry events.
type Notifier interface {
	Notify(ctx context.Context, event *Event) error
	Close() error
}

// NoopNotifier is used when telemetry is disabled. It records nothing.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, *Event) error { return nil }
func (NoopNotifier) Close() error                         { return nil }

// LogNotifier logs events locally instead of submitting them; the default
// when no transport is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal telemetry event: %w", err)
	}
	slog.Debug("Telemetry event (no transport configured)", slog.String("event", string(data)))
	return nil
}

func (LogNotifier) Close() error { return nil }
