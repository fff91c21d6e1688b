package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/artificial-intelligence-first/docstage/internal/stager"
)

func memStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleReport(runID string, outcome stager.Outcome) *stager.Report {
	report := &stager.Report{
		RunID:     runID,
		StartedAt: time.Now(),
		Duration:  42 * time.Millisecond,
		Outcome:   outcome,
		Pages: []stager.PageResult{
			{Destination: "index.md", Source: "README.md", Bytes: 120, Rewrites: 3, Fingerprint: "fp-index"},
			{Destination: "AGENTS.md", Source: "AGENTS.md", Bytes: 80, Rewrites: 1, Fingerprint: "fp-agents"},
		},
	}
	if outcome == stager.OutcomeFailed {
		report.Err = errors.New("read source MISSING.md: file does not exist")
	}
	return report
}

func TestRecordRun_RoundTrip(t *testing.T) {
	store := memStore(t)
	ctx := context.Background()

	report := sampleReport("run-1", stager.OutcomeSuccess)
	require.NoError(t, store.RecordRun(ctx, report))

	runs, err := store.GetRecent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "run-1", runs[0].RunID)
	require.Equal(t, "success", runs[0].Outcome)
	require.Equal(t, 2, runs[0].Pages)
	require.Equal(t, 42*time.Millisecond, runs[0].Duration)
	require.Empty(t, runs[0].Error)
	require.WithinDuration(t, report.StartedAt, runs[0].StartedAt, time.Second)
}

func TestRecordRun_FailedRunKeepsError(t *testing.T) {
	store := memStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordRun(ctx, sampleReport("run-1", stager.OutcomeFailed)))

	run, pages, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	require.Equal(t, "failed", run.Outcome)
	require.Contains(t, run.Error, "MISSING.md")
	require.Len(t, pages, 2)
}

func TestRecordRun_RejectsEmptyRunID(t *testing.T) {
	store := memStore(t)
	require.Error(t, store.RecordRun(context.Background(), &stager.Report{}))
}

func TestGetRecent_NewestFirstAndLimited(t *testing.T) {
	store := memStore(t)
	ctx := context.Background()

	for _, id := range []string{"run-1", "run-2", "run-3"} {
		require.NoError(t, store.RecordRun(ctx, sampleReport(id, stager.OutcomeSuccess)))
	}

	runs, err := store.GetRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "run-3", runs[0].RunID)
	require.Equal(t, "run-2", runs[1].RunID)
}

func TestGetRecent_EmptyStoreReturnsErrNoRuns(t *testing.T) {
	store := memStore(t)
	_, err := store.GetRecent(context.Background(), 10)
	require.ErrorIs(t, err, ErrNoRuns)
}

func TestGetRun_UnknownIDReturnsErrNoRuns(t *testing.T) {
	store := memStore(t)
	_, _, err := store.GetRun(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNoRuns)
}

func TestGetRun_PagesInDeclaredOrder(t *testing.T) {
	store := memStore(t)
	ctx := context.Background()
	require.NoError(t, store.RecordRun(ctx, sampleReport("run-1", stager.OutcomeSuccess)))

	_, pages, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	require.Equal(t, "index.md", pages[0].Destination)
	require.Equal(t, "README.md", pages[0].Source)
	require.Equal(t, 120, pages[0].Bytes)
	require.Equal(t, 3, pages[0].Rewrites)
	require.Equal(t, "fp-index", pages[0].Fingerprint)
	require.Equal(t, "AGENTS.md", pages[1].Destination)
}

func TestLatestFingerprints_SkipsFailedRuns(t *testing.T) {
	store := memStore(t)
	ctx := context.Background()

	success := sampleReport("run-1", stager.OutcomeSuccess)
	require.NoError(t, store.RecordRun(ctx, success))

	failed := sampleReport("run-2", stager.OutcomeFailed)
	failed.Pages = failed.Pages[:1]
	failed.Pages[0].Fingerprint = "fp-new"
	require.NoError(t, store.RecordRun(ctx, failed))

	fingerprints, err := store.LatestFingerprints(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"index.md":  "fp-index",
		"AGENTS.md": "fp-agents",
	}, fingerprints)
}

func TestLatestFingerprints_EmptyWithoutSuccessfulRun(t *testing.T) {
	store := memStore(t)
	ctx := context.Background()

	fingerprints, err := store.LatestFingerprints(ctx)
	require.NoError(t, err)
	require.Empty(t, fingerprints)

	require.NoError(t, store.RecordRun(ctx, sampleReport("run-1", stager.OutcomeFailed)))
	fingerprints, err = store.LatestFingerprints(ctx)
	require.NoError(t, err)
	require.Empty(t, fingerprints)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.RecordRun(ctx, sampleReport("run-1", stager.OutcomeSuccess)))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	runs, err := reopened.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "run-1", runs[0].RunID)
}
