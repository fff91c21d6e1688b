package metrics

import "time"

// ResultLabel enumerates per-page result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for staging run and page metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be safe on the zero value so NoopRecorder can be injected by default.
type Recorder interface {
	ObserveRunDuration(d time.Duration)
	ObservePageDuration(destination string, d time.Duration)
	IncPageResult(destination string, result ResultLabel)
	IncRunOutcome(outcome string) // outcome: success|failed
	SetWatchedSources(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRunDuration(time.Duration)          {}
func (NoopRecorder) ObservePageDuration(string, time.Duration) {}
func (NoopRecorder) IncPageResult(string, ResultLabel)         {}
func (NoopRecorder) IncRunOutcome(string)                      {}
func (NoopRecorder) SetWatchedSources(int)                     {}
