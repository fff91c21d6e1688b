// Package history persists staging run records so past runs can be listed
// and compared after the fact.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/artificial-intelligence-first/docstage/internal/stager"
)

// ErrNoRuns reports that the store holds no matching run. Callers branch on
// it to distinguish an empty history from a broken one.
var ErrNoRuns = errors.New("no staging runs recorded")

// DefaultRunLimit is used when a caller asks for recent runs without a limit.
const DefaultRunLimit = 10

// Run is one recorded staging run.
type Run struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Pages     int
	Outcome   string
	Error     string
}

// Page is one staged page of a recorded run.
type Page struct {
	Destination string
	Source      string
	Bytes       int
	Rewrites    int
	Fingerprint string
}

// Store defines the interface for persisting and retrieving staging runs.
type Store interface {
	// RecordRun persists a run report and its per-page results.
	RecordRun(ctx context.Context, report *stager.Report) error

	// GetRecent retrieves the most recent runs, newest first.
	GetRecent(ctx context.Context, limit int) ([]Run, error)

	// GetRun retrieves one run and its pages by run ID.
	GetRun(ctx context.Context, runID string) (*Run, []Page, error)

	// LatestFingerprints returns destination fingerprints of the latest
	// successful run. The map is empty when no run has succeeded yet.
	LatestFingerprints(ctx context.Context) (map[string]string, error)

	// Close closes the store and releases resources.
	Close() error
}
