// Package stager copies a fixed set of repository documents into a
// documentation sink, applying per-destination rewrite rules on the way.
package stager

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/inful/mdfp"

	"github.com/artificial-intelligence-first/docstage/internal/logfields"
	"github.com/artificial-intelligence-first/docstage/internal/metrics"
	"github.com/artificial-intelligence-first/docstage/internal/observability"
)

// Stager executes a staging plan against a sink.
type Stager struct {
	plan     Plan
	sink     Sink
	recorder metrics.Recorder
}

// Option configures a Stager.
type Option func(*Stager)

// WithRecorder attaches a metrics recorder to the stager.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Stager) {
		if r != nil {
			s.recorder = r
		}
	}
}

// New creates a Stager for the given plan and sink.
func New(plan Plan, sink Sink, opts ...Option) *Stager {
	s := &Stager{
		plan:     plan,
		sink:     sink,
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run stages every page in plan order. The first failing page stops the run;
// when the sink is transactional no destination from a failed run becomes
// visible. The returned report is non-nil even on failure.
func (s *Stager) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	ctx = observability.WithRunID(ctx, runID)
	start := time.Now()
	report := &Report{RunID: runID, StartedAt: start}

	observability.InfoContext(ctx, "Staging run started",
		logfields.Root(s.plan.Root),
		logfields.Pages(len(s.plan.Pages)))

	tx, transactional := s.sink.(TransactionalSink)
	if transactional {
		if err := tx.Begin(); err != nil {
			return s.finish(ctx, report, start, fmt.Errorf("begin staging: %w", err))
		}
	}

	for _, page := range s.plan.Pages {
		if err := ctx.Err(); err != nil {
			if transactional {
				tx.Abort()
			}
			return s.finish(ctx, report, start, fmt.Errorf("staging canceled: %w", err))
		}
		result, err := s.stagePage(ctx, page)
		if err != nil {
			s.recorder.IncPageResult(page.Destination, metrics.ResultFailed)
			if transactional {
				tx.Abort()
			}
			return s.finish(ctx, report, start, err)
		}
		s.recorder.ObservePageDuration(page.Destination, result.Duration)
		s.recorder.IncPageResult(page.Destination, metrics.ResultSuccess)
		report.Pages = append(report.Pages, result)
	}

	if transactional {
		if err := tx.Promote(); err != nil {
			tx.Abort()
			return s.finish(ctx, report, start, fmt.Errorf("promote staged output: %w", err))
		}
	}
	return s.finish(ctx, report, start, nil)
}

func (s *Stager) finish(ctx context.Context, report *Report, start time.Time, err error) (*Report, error) {
	report.Duration = time.Since(start)
	s.recorder.ObserveRunDuration(report.Duration)
	if err != nil {
		report.Outcome = OutcomeFailed
		report.Err = err
		s.recorder.IncRunOutcome(string(OutcomeFailed))
		observability.ErrorContext(ctx, "Staging run failed",
			logfields.Pages(len(report.Pages)),
			logfields.DurationMS(float64(report.Duration.Milliseconds())),
			logfields.Error(err))
		return report, err
	}
	report.Outcome = OutcomeSuccess
	s.recorder.IncRunOutcome(string(OutcomeSuccess))
	observability.InfoContext(ctx, "Staging run completed",
		logfields.Pages(len(report.Pages)),
		logfields.DurationMS(float64(report.Duration.Milliseconds())))
	return report, nil
}

func (s *Stager) stagePage(ctx context.Context, page PageMapping) (PageResult, error) {
	ctx = observability.WithDestination(ctx, page.Destination)
	pageStart := time.Now()

	srcPath := s.plan.SourcePath(page)
	raw, err := os.ReadFile(srcPath)
	if err != nil {
		return PageResult{}, fmt.Errorf("read source %s: %w", page.Source, err)
	}
	if !utf8.Valid(raw) {
		return PageResult{}, fmt.Errorf("source %s is not valid UTF-8 text", page.Source)
	}

	content, rewrites := Rewrite(string(raw), page.Rewrites)

	w, err := s.sink.Create(page.Destination)
	if err != nil {
		return PageResult{}, fmt.Errorf("create destination %s: %w", page.Destination, err)
	}
	if _, err := io.WriteString(w, content); err != nil {
		w.Close()
		return PageResult{}, fmt.Errorf("write destination %s: %w", page.Destination, err)
	}
	if err := w.Close(); err != nil {
		return PageResult{}, fmt.Errorf("close destination %s: %w", page.Destination, err)
	}

	result := PageResult{
		Destination: page.Destination,
		Source:      page.Source,
		Bytes:       len(content),
		Rewrites:    rewrites,
		Fingerprint: mdfp.CalculateFingerprintFromParts("", content),
		Duration:    time.Since(pageStart),
	}
	observability.DebugContext(ctx, "Staged page",
		logfields.Source(page.Source),
		slog.Int("bytes", result.Bytes),
		slog.Int("rewrites", result.Rewrites))
	return result, nil
}
