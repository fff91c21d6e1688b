// Package commands wires the docstage CLI: flag parsing, configuration
// loading, and the per-command staging workflows.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/artificial-intelligence-first/docstage/internal/config"
	"github.com/artificial-intelligence-first/docstage/internal/git"
	"github.com/artificial-intelligence-first/docstage/internal/stager"
)

// Global carries state shared by subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docstage.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Stage   StageCmd   `cmd:"" help:"Stage the configured pages into the output directory"`
	Check   CheckCmd   `cmd:"" help:"Stage in memory and verify links in the staged pages"`
	Watch   WatchCmd   `cmd:"" help:"Restage continuously when source files change"`
	History HistoryCmd `cmd:"" help:"Show recent staging runs from the run history"`
	Init    InitCmd    `cmd:"" help:"Write a starter configuration file"`
}

// AfterApply runs after flag parsing; set up logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// LoadConfig loads the configuration staging commands run with. The built-in
// default plan is used when the default config file is absent; an explicitly
// requested file that does not exist is still an error.
func LoadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(root.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// BuildPlan resolves the repository root and converts the configured pages
// into an executable staging plan. An explicit root flag wins over the
// configured root.
func BuildPlan(cfg *config.Config, rootFlag string) (stager.Plan, error) {
	rootDir := rootFlag
	if rootDir == "" {
		rootDir = cfg.Root
	}
	resolved, err := git.ResolveRoot(rootDir)
	if err != nil {
		return stager.Plan{}, fmt.Errorf("resolve repository root: %w", err)
	}

	pages := make([]stager.PageMapping, 0, len(cfg.Pages))
	for _, page := range cfg.Pages {
		var rules []stager.Rule
		for _, r := range page.Rewrites {
			rules = append(rules, stager.Rule{From: r.From, To: r.To})
		}
		pages = append(pages, stager.PageMapping{
			Destination: page.Destination,
			Source:      page.Source,
			Rewrites:    rules,
		})
	}
	return stager.Plan{Root: resolved, Pages: pages}, nil
}
