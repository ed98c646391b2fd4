package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyItem       = "item"
	KeyRep        = "rep"
	KeyFilter     = "filter"
	KeyLayout     = "layout"
	KeyOutcome    = "outcome"
	KeyOutputPath = "output_path"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Item(id string) slog.Attr        { return slog.String(KeyItem, id) }
func Rep(name string) slog.Attr       { return slog.String(KeyRep, name) }
func Filter(name string) slog.Attr    { return slog.String(KeyFilter, name) }
func Layout(id string) slog.Attr      { return slog.String(KeyLayout, id) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func OutputPath(p string) slog.Attr   { return slog.String(KeyOutputPath, p) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
