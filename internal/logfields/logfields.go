package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyTask       = "task"
	KeyPreset     = "preset"
	KeyBuilder    = "builder"
	KeyPath       = "path"
	KeyOutput     = "output"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Task(name string) slog.Attr      { return slog.String(KeyTask, name) }
func Preset(name string) slog.Attr    { return slog.String(KeyPreset, name) }
func Builder(name string) slog.Attr   { return slog.String(KeyBuilder, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Output(dir string) slog.Attr     { return slog.String(KeyOutput, dir) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
