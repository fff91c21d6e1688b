package commands

import (
	"context"
	"fmt"

	"github.com/artificial-intelligence-first/docstage/internal/config"
	"github.com/artificial-intelligence-first/docstage/internal/stager"
)

// StageCmd implements the 'stage' command.
type StageCmd struct {
	Output string `short:"o" help:"Output directory for staged pages (defaults to the configured directory)"`
	Root   string `help:"Repository root (overrides auto-detection)"`
	DryRun bool   `name:"dry-run" help:"Stage in memory and report without writing"`
}

func (s *StageCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return err
	}
	if s.Output != "" {
		cfg.Output.Directory = s.Output
	}
	plan, err := BuildPlan(cfg, s.Root)
	if err != nil {
		return err
	}
	return RunStage(context.Background(), cfg, plan, s.DryRun)
}

func RunStage(ctx context.Context, cfg *config.Config, plan stager.Plan, dryRun bool) error {
	// Friendly user-facing messages on stdout; diagnostics go to slog.
	fmt.Println("Staging documentation pages")

	r, cleanup, err := newRunner(cfg, plan, dryRun)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := r.runOnce(ctx)
	if err != nil {
		return fmt.Errorf("staging failed: %w", err)
	}

	for _, page := range report.Pages {
		fmt.Printf("  %s <- %s (%d bytes, %d rewrites)\n",
			page.Destination, page.Source, page.Bytes, page.Rewrites)
	}
	if dryRun {
		fmt.Printf("Dry run complete: %d pages would be staged\n", len(report.Pages))
		return nil
	}
	fmt.Printf("Staged %d pages to %s\n", len(report.Pages), cfg.Output.Directory)
	return nil
}
