package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artificial-intelligence-first/docstage/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int    `short:"n" default:"10" help:"Number of recent runs to list"`
	RunID string `name:"run" help:"Show one run in detail by its ID"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return fmt.Errorf("run history is disabled: set history.path in %s", root.Config)
	}
	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer func() { _ = store.Close() }()

	if h.RunID != "" {
		return RunDetail(context.Background(), store, h.RunID)
	}
	return RunHistory(context.Background(), store, h.Limit)
}

// RunHistory lists the most recent staging runs, newest first.
func RunHistory(ctx context.Context, store history.Store, limit int) error {
	if limit <= 0 {
		limit = history.DefaultRunLimit
	}
	runs, err := store.GetRecent(ctx, limit)
	if errors.Is(err, history.ErrNoRuns) {
		fmt.Println("No staging runs recorded yet")
		return nil
	}
	if err != nil {
		return fmt.Errorf("list staging runs: %w", err)
	}

	fmt.Printf("%-36s  %-19s  %-7s  %5s  %9s\n", "RUN", "STARTED", "OUTCOME", "PAGES", "DURATION")
	for _, run := range runs {
		fmt.Printf("%-36s  %-19s  %-7s  %5d  %9s\n",
			run.RunID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Outcome,
			run.Pages,
			run.Duration.Round(time.Millisecond))
	}
	return nil
}

// RunDetail prints one recorded run and its staged pages.
func RunDetail(ctx context.Context, store history.Store, runID string) error {
	run, pages, err := store.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("load staging run: %w", err)
	}

	fmt.Printf("Run %s\n", run.RunID)
	fmt.Printf("  Started:  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("  Duration: %s\n", run.Duration.Round(time.Millisecond))
	fmt.Printf("  Outcome:  %s\n", run.Outcome)
	if run.Error != "" {
		fmt.Printf("  Error:    %s\n", run.Error)
	}
	fmt.Printf("  Pages:    %d\n", len(pages))
	for _, page := range pages {
		fmt.Printf("    %s <- %s (%d bytes, %d rewrites, fingerprint %s)\n",
			page.Destination, page.Source, page.Bytes, page.Rewrites, page.Fingerprint)
	}
	return nil
}
