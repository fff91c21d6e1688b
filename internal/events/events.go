// Package events publishes staging run events for downstream consumers,
// such as notification bots or build dashboards.
package events

import (
	"context"
	"time"

	"github.com/artificial-intelligence-first/docstage/internal/stager"
)

// RunEvent is the JSON payload published after each staging run.
type RunEvent struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	Outcome    string    `json:"outcome"`
	Pages      int       `json:"pages"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// FromReport converts a run report into its published event.
func FromReport(report *stager.Report) RunEvent {
	event := RunEvent{
		RunID:      report.RunID,
		StartedAt:  report.StartedAt,
		Outcome:    string(report.Outcome),
		Pages:      len(report.Pages),
		DurationMS: report.Duration.Milliseconds(),
	}
	if report.Err != nil {
		event.Error = report.Err.Error()
	}
	return event
}

// Publisher publishes run events. Implementations must tolerate being called
// after a failed run; publishing is advisory and never blocks staging.
type Publisher interface {
	PublishRun(ctx context.Context, event RunEvent) error
	Close()
}

// NoopPublisher is a Publisher that does nothing (default when events are
// not configured).
type NoopPublisher struct{}

func (NoopPublisher) PublishRun(context.Context, RunEvent) error { return nil }
func (NoopPublisher) Close()                                     {}
