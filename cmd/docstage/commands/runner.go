package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/artificial-intelligence-first/docstage/internal/config"
	"github.com/artificial-intelligence-first/docstage/internal/events"
	"github.com/artificial-intelligence-first/docstage/internal/history"
	"github.com/artificial-intelligence-first/docstage/internal/logfields"
	"github.com/artificial-intelligence-first/docstage/internal/metrics"
	"github.com/artificial-intelligence-first/docstage/internal/stager"
)

// runner executes staging passes with the optional run history store and
// event publisher wired in.
type runner struct {
	plan      stager.Plan
	sink      stager.Sink
	recorder  metrics.Recorder
	store     history.Store
	publisher events.Publisher
}

// newRunner assembles a runner from the configuration. A dry run stages into
// memory and skips history and events entirely. The returned cleanup closes
// whatever was opened and is safe to call exactly once.
func newRunner(cfg *config.Config, plan stager.Plan, dryRun bool) (*runner, func(), error) {
	r := &runner{
		plan:      plan,
		recorder:  metrics.NoopRecorder{},
		publisher: events.NoopPublisher{},
	}

	if dryRun {
		r.sink = stager.NewMemorySink()
		return r, func() {}, nil
	}
	r.sink = stager.NewDirSink(cfg.Output.Directory, cfg.Output.Clean)

	if cfg.History.Path != "" {
		store, err := history.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open run history: %w", err)
		}
		r.store = store
	}

	if cfg.Events.NATSURL != "" {
		publisher, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.Subject)
		if err != nil {
			if r.store != nil {
				_ = r.store.Close()
			}
			return nil, nil, fmt.Errorf("connect event publisher: %w", err)
		}
		r.publisher = publisher
	}

	cleanup := func() {
		r.publisher.Close()
		if r.store != nil {
			if err := r.store.Close(); err != nil {
				slog.Warn("Failed to close run history store", logfields.Error(err))
			}
		}
	}
	return r, cleanup, nil
}

// runOnce performs one staging pass and records its outcome. Recording and
// publishing are advisory: their failures are logged and never turn a staged
// run into a failed one.
func (r *runner) runOnce(ctx context.Context) (*stager.Report, error) {
	report, err := stager.New(r.plan, r.sink, stager.WithRecorder(r.recorder)).Run(ctx)
	if report != nil {
		r.record(context.WithoutCancel(ctx), report)
	}
	return report, err
}

func (r *runner) record(ctx context.Context, report *stager.Report) {
	if r.store != nil {
		if err := r.store.RecordRun(ctx, report); err != nil {
			slog.Warn("Failed to record staging run",
				logfields.RunID(report.RunID),
				logfields.Error(err))
		}
	}
	if err := r.publisher.PublishRun(ctx, events.FromReport(report)); err != nil {
		slog.Warn("Failed to publish run event",
			logfields.RunID(report.RunID),
			logfields.Error(err))
	}
}

// latestFingerprints returns the staged fingerprints of the last successful
// run, or nil when history is disabled or empty.
func (r *runner) latestFingerprints(ctx context.Context) map[string]string {
	if r.store == nil {
		return nil
	}
	fingerprints, err := r.store.LatestFingerprints(ctx)
	if err != nil {
		slog.Debug("Failed to load previous fingerprints", logfields.Error(err))
		return nil
	}
	return fingerprints
}
