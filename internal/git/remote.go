package git

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5"
)

// OriginLicenseURL derives the web URL of the repository's LICENSE file from
// the origin remote and the checked-out branch. Remotes it cannot parse are
// an error; callers fall back to their fixed default.
func OriginLicenseURL(root string) (string, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return "", fmt.Errorf("failed to open repository: %w", err)
	}
	remote, err := repo.Remote("origin")
	if err != nil {
		return "", fmt.Errorf("no origin remote: %w", err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 || urls[0] == "" {
		return "", fmt.Errorf("origin remote has no URL")
	}

	branch := "main"
	if ref, err := repo.Head(); err == nil && ref.Name().IsBranch() {
		branch = ref.Name().Short()
	}

	blobURL, ok := licenseBlobURL(urls[0], branch)
	if !ok {
		return "", fmt.Errorf("unsupported origin remote URL: %s", urls[0])
	}
	return blobURL, nil
}

// licenseBlobURL maps a remote URL to the https blob URL of its LICENSE file.
// Handles http(s), ssh:// and scp-like git@host:owner/repo forms.
func licenseBlobURL(remote, branch string) (string, bool) {
	remote = strings.TrimSuffix(strings.TrimSpace(remote), ".git")
	if remote == "" {
		return "", false
	}
	if branch == "" {
		branch = "main"
	}

	var host, repoPath string
	switch {
	case strings.HasPrefix(remote, "https://"), strings.HasPrefix(remote, "http://"), strings.HasPrefix(remote, "ssh://"):
		u, err := url.Parse(remote)
		if err != nil || u.Hostname() == "" {
			return "", false
		}
		host = u.Hostname()
		repoPath = strings.Trim(u.Path, "/")
	case strings.Contains(remote, "@") && strings.Contains(remote, ":"):
		// scp-like syntax: git@host:owner/repo
		rest := remote[strings.Index(remote, "@")+1:]
		var ok bool
		host, repoPath, ok = strings.Cut(rest, ":")
		if !ok || host == "" {
			return "", false
		}
		repoPath = strings.Trim(repoPath, "/")
	default:
		return "", false
	}

	if host == "" || strings.Count(repoPath, "/") < 1 {
		return "", false
	}
	return fmt.Sprintf("https://%s/%s/blob/%s/LICENSE", host, repoPath, branch), true
}
