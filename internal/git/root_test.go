package git

import (
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) (string, *gogit.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	return dir, repo
}

func commitFile(t *testing.T, repo *gogit.Repository, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add(name)
	require.NoError(t, err)
	_, err = w.Commit("add "+name, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com"},
	})
	require.NoError(t, err)
}

func TestResolveRoot_ExplicitWins(t *testing.T) {
	dir := t.TempDir()
	root, err := ResolveRoot(dir)
	require.NoError(t, err)
	require.Equal(t, dir, root)
}

func TestResolveRoot_ExplicitMustBeDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err := ResolveRoot(file)
	require.Error(t, err)

	_, err = ResolveRoot(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestDiscoverRoot_FindsWorktreeFromSubdirectory(t *testing.T) {
	dir, _ := initRepo(t)
	sub := filepath.Join(dir, "docs", "nested")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	root, err := DiscoverRoot(sub)
	require.NoError(t, err)

	// Worktree roots may come back through a different symlink path on
	// some systems, so compare resolved paths.
	wantResolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotResolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	require.Equal(t, wantResolved, gotResolved)
}

func TestDiscoverRoot_FailsOutsideRepository(t *testing.T) {
	_, err := DiscoverRoot(t.TempDir())
	require.Error(t, err)
}

func TestOriginLicenseURL_FromRemote(t *testing.T) {
	dir, repo := initRepo(t)
	commitFile(t, repo, dir, "README.md", "# Test\n")
	_, err := repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{"https://github.com/example/project.git"},
	})
	require.NoError(t, err)

	got, err := OriginLicenseURL(dir)
	require.NoError(t, err)

	head, err := repo.Head()
	require.NoError(t, err)
	branch := head.Name().Short()
	require.Equal(t, "https://github.com/example/project/blob/"+branch+"/LICENSE", got)
}

func TestOriginLicenseURL_NoRemote(t *testing.T) {
	dir, _ := initRepo(t)
	_, err := OriginLicenseURL(dir)
	require.Error(t, err)
}

func TestLicenseBlobURL_RemoteForms(t *testing.T) {
	cases := []struct {
		remote string
		branch string
		want   string
		ok     bool
	}{
		{"https://github.com/owner/repo.git", "main", "https://github.com/owner/repo/blob/main/LICENSE", true},
		{"https://github.com/owner/repo", "develop", "https://github.com/owner/repo/blob/develop/LICENSE", true},
		{"http://git.example.com/group/sub/repo.git", "main", "https://git.example.com/group/sub/repo/blob/main/LICENSE", true},
		{"git@github.com:owner/repo.git", "main", "https://github.com/owner/repo/blob/main/LICENSE", true},
		{"ssh://git@github.com/owner/repo.git", "main", "https://github.com/owner/repo/blob/main/LICENSE", true},
		{"ssh://git@git.example.com:2222/owner/repo.git", "main", "https://git.example.com/owner/repo/blob/main/LICENSE", true},
		{"https://github.com/owner/repo.git", "", "https://github.com/owner/repo/blob/main/LICENSE", true},
		{"file:///local/repo", "main", "", false},
		{"/local/path/repo", "main", "", false},
		{"https://github.com/just-owner", "main", "", false},
		{"", "main", "", false},
	}

	for _, tc := range cases {
		got, ok := licenseBlobURL(tc.remote, tc.branch)
		require.Equal(t, tc.ok, ok, "remote %q", tc.remote)
		require.Equal(t, tc.want, got, "remote %q", tc.remote)
	}
}
