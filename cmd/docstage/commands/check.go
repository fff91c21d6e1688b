package commands

import (
	"context"
	"fmt"

	"github.com/artificial-intelligence-first/docstage/internal/config"
	"github.com/artificial-intelligence-first/docstage/internal/linkcheck"
	"github.com/artificial-intelligence-first/docstage/internal/stager"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Root     string `help:"Repository root (overrides auto-detection)"`
	External bool   `help:"Also probe external http(s) links over the network"`
}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return err
	}
	if c.External {
		cfg.Check.External = true
	}
	plan, err := BuildPlan(cfg, c.Root)
	if err != nil {
		return err
	}
	return RunCheck(context.Background(), cfg, plan)
}

// RunCheck stages the plan into memory and verifies every link in the staged
// pages. Nothing is written; a broken link makes the command fail.
func RunCheck(ctx context.Context, cfg *config.Config, plan stager.Plan) error {
	fmt.Println("Checking links in staged pages")

	sink := stager.NewMemorySink()
	if _, err := stager.New(plan, sink).Run(ctx); err != nil {
		return fmt.Errorf("staging failed: %w", err)
	}

	pages := make(map[string][]byte, sink.Len())
	for _, destination := range sink.Paths() {
		content, _ := sink.Page(destination)
		pages[destination] = content
	}

	checker := linkcheck.New(pages, linkcheck.Options{
		Root:     plan.Root,
		Roots:    cfg.Check.Roots,
		External: cfg.Check.External,
		Timeout:  cfg.CheckTimeout(),
	})
	result, err := checker.Check(ctx)
	if err != nil {
		return fmt.Errorf("link check failed: %w", err)
	}

	if result.OK() {
		fmt.Printf("All links resolve: %d pages, %d links checked\n", result.Pages, result.Links)
		return nil
	}
	for _, issue := range result.Issues {
		fmt.Printf("  %s: %s (%s)\n", issue.Page, issue.Link, issue.Reason)
	}
	return fmt.Errorf("%d broken links found", len(result.Issues))
}
