package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/artificial-intelligence-first/docstage/internal/stager"
)

func TestFromReport_Success(t *testing.T) {
	started := time.Date(2025, 11, 3, 10, 30, 0, 0, time.UTC)
	report := &stager.Report{
		RunID:     "run-1",
		StartedAt: started,
		Duration:  1500 * time.Millisecond,
		Outcome:   stager.OutcomeSuccess,
		Pages:     []stager.PageResult{{Destination: "index.md"}, {Destination: "AGENTS.md"}},
	}

	event := FromReport(report)
	require.Equal(t, "run-1", event.RunID)
	require.Equal(t, started, event.StartedAt)
	require.Equal(t, "success", event.Outcome)
	require.Equal(t, 2, event.Pages)
	require.Equal(t, int64(1500), event.DurationMS)
	require.Empty(t, event.Error)
}

func TestFromReport_FailureCarriesError(t *testing.T) {
	report := &stager.Report{
		RunID:   "run-2",
		Outcome: stager.OutcomeFailed,
		Err:     errors.New("read source README.md: no such file"),
	}

	event := FromReport(report)
	require.Equal(t, "failed", event.Outcome)
	require.Contains(t, event.Error, "README.md")
	require.Zero(t, event.Pages)
}

func TestRunEvent_JSONShape(t *testing.T) {
	event := RunEvent{
		RunID:      "run-3",
		Outcome:    "success",
		Pages:      5,
		DurationMS: 12,
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "run-3", decoded["run_id"])
	require.Equal(t, "success", decoded["outcome"])
	require.EqualValues(t, 5, decoded["pages"])
	require.EqualValues(t, 12, decoded["duration_ms"])
	require.NotContains(t, decoded, "error")
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	require.NoError(t, p.PublishRun(context.Background(), RunEvent{RunID: "run-4"}))
	p.Close()
}

func TestNewNATSPublisher_RequiresURLAndSubject(t *testing.T) {
	_, err := NewNATSPublisher("", "docstage.runs")
	require.Error(t, err)

	_, err = NewNATSPublisher("nats://127.0.0.1:4222", "")
	require.Error(t, err)
}
