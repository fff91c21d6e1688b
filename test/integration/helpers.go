package integration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/artificial-intelligence-first/docstage/internal/config"
)

// repoFiles is the synthetic repository the end-to-end tests stage from. It
// carries every source of the built-in staging table plus the files their
// links point at.
var repoFiles = map[string]string{
	"README.md": `# Widgets

Start with the [quickstart](./docs/quickstart.md), then read the
[architecture](./docs/architecture.md) notes.

New pages use the [topic template](./_templates/TOPIC_TEMPLATE.md).

Released under the [MIT license](./LICENSE).
`,
	"AGENTS.md": `# Agent Guide

Conventions live in [the conventions page](./docs/conventions.md).
`,
	"LICENSE":                        "MIT License\n\nCopyright (c) 2026\n",
	"docs/quickstart.md":             "# Quickstart\n",
	"docs/architecture.md":           "# Architecture\n",
	"docs/conventions.md":            "# Conventions\n",
	"_templates/TOPIC_TEMPLATE.md":   "# {Topic}\n\nDescribe the topic.\n",
	"_templates/SECTION_TEMPLATE.md": "# {Section}\n\nList the topics.\n",
	"_templates/FRONT_MATTER.md":     "---\ntitle: \"\"\nweight: 0\n---\n",
}

// setupSourceRepo creates a git repository on the main branch holding the
// synthetic source files, with an origin remote pointing at originURL when
// non-empty.
func setupSourceRepo(t *testing.T, originURL string) string {
	t.Helper()
	root := t.TempDir()

	for name, content := range repoFiles {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	}

	repo, err := git.PlainInit(root, false)
	require.NoError(t, err, "failed to initialize git repo")

	w, err := repo.Worktree()
	require.NoError(t, err, "failed to get worktree")
	require.NoError(t, w.AddGlob("."), "failed to add files to git")

	_, err = w.Commit("Initial test commit", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err, "failed to create initial commit")

	// Ensure the branch is named 'main' regardless of Git's default.
	headRef, err := repo.Head()
	require.NoError(t, err, "failed to get HEAD")
	if headRef.Name().Short() != "main" {
		require.NoError(t, w.Checkout(&git.CheckoutOptions{
			Branch: "refs/heads/main",
			Create: true,
		}), "failed to create main branch")
		_ = repo.Storer.RemoveReference(headRef.Name())
	}

	if originURL != "" {
		_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
			Name: "origin",
			URLs: []string{originURL},
		})
		require.NoError(t, err, "failed to create origin remote")
	}
	return root
}

// writeConfig marshals cfg into a docstage.yaml inside dir and returns its
// path.
func writeConfig(t *testing.T, dir string, cfg *config.Config) string {
	t.Helper()
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err, "failed to marshal config")
	path := filepath.Join(dir, "docstage.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// readStaged reads one staged destination from the output directory.
func readStaged(t *testing.T, output, destination string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(output, filepath.FromSlash(destination)))
	require.NoError(t, err, "failed to read staged page %s", destination)
	return string(data)
}
