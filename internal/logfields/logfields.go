package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID       = "run_id"
	KeyDestination = "destination"
	KeySource      = "source"
	KeyPath        = "path"
	KeyRoot        = "root"
	KeyOutput      = "output"
	KeyPages       = "pages"
	KeyOutcome     = "outcome"
	KeyDurationMS  = "duration_ms"
	KeyError       = "error"
	KeyURL         = "url"
	KeySubject     = "subject"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Destination(d string) slog.Attr  { return slog.String(KeyDestination, d) }
func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Root(r string) slog.Attr         { return slog.String(KeyRoot, r) }
func Output(o string) slog.Attr       { return slog.String(KeyOutput, o) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
