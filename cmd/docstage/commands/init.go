package commands

import (
	"fmt"
	"log/slog"

	"github.com/artificial-intelligence-first/docstage/internal/config"
	"github.com/artificial-intelligence-first/docstage/internal/git"
	"github.com/artificial-intelligence-first/docstage/internal/logfields"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool   `help:"Overwrite existing configuration file"`
	Root  string `help:"Repository root (overrides auto-detection)"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	return RunInit(root.Config, i.Root, i.Force)
}

// RunInit writes a starter configuration carrying the built-in staging table.
// When the repository has an origin remote, the LICENSE rewrite target is
// derived from it instead of the fixed default.
func RunInit(configPath, rootFlag string, force bool) error {
	fmt.Println("Initializing docstage configuration")

	licenseURL := ""
	if root, err := git.ResolveRoot(rootFlag); err == nil {
		licenseURL, err = git.OriginLicenseURL(root)
		if err != nil {
			slog.Debug("Could not derive license URL from origin remote, using default",
				logfields.Error(err))
			licenseURL = ""
		}
	}

	fmt.Printf("Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, licenseURL, force); err != nil {
		fmt.Println("Initialization failed")
		return err
	}
	if licenseURL != "" {
		fmt.Printf("LICENSE links will point to %s\n", licenseURL)
	}
	fmt.Println("initialized successfully")
	return nil
}
