package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/artificial-intelligence-first/docstage/cmd/docstage/commands"
	"github.com/artificial-intelligence-first/docstage/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("docstage"),
		kong.Description("Stage selected repository documents into a documentation tree, rewriting links on the way"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("docstage %s (commit %s, built %s)",
				version.Version, version.GitCommit, version.BuildTime),
		},
	)

	if err := ctx.Run(&commands.Global{Logger: slog.Default()}, &cli); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
