// Package git resolves the repository root staging sources are read from and
// derives repository metadata from the origin remote.
package git

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"

	"github.com/artificial-intelligence-first/docstage/internal/logfields"
)

// ResolveRoot returns the repository root. An explicit root wins; otherwise
// the enclosing git worktree of the working directory is used, and as a last
// resort the directory two levels above the installed binary (the tool lives
// in <root>/tools/).
func ResolveRoot(explicit string) (string, error) {
	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return "", fmt.Errorf("resolve root %s: %w", explicit, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("root not usable: %w", err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("root is not a directory: %s", abs)
		}
		return abs, nil
	}

	if wd, err := os.Getwd(); err == nil {
		if root, derr := DiscoverRoot(wd); derr == nil {
			slog.Debug("Resolved repository root from enclosing worktree", logfields.Root(root))
			return root, nil
		}
	}

	root, err := executableRoot()
	if err != nil {
		return "", err
	}
	slog.Debug("Resolved repository root from executable location", logfields.Root(root))
	return root, nil
}

// DiscoverRoot walks up from dir to the root of the enclosing git worktree.
func DiscoverRoot(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("no git repository at or above %s: %w", dir, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	return worktree.Filesystem.Root(), nil
}

// executableRoot assumes the binary is installed under <root>/tools/ and
// returns the directory two levels above it.
func executableRoot() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(filepath.Dir(exe)), nil
}
