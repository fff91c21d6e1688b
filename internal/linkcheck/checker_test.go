package linkcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func repoWithDocs(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("# page\n"), 0o644))
	}
	return root
}

func TestCheck_ResolvesStagedDestinations(t *testing.T) {
	pages := map[string][]byte{
		"index.md":                     []byte("See [topic template](_templates/TOPIC_TEMPLATE.md).\n"),
		"_templates/TOPIC_TEMPLATE.md": []byte("# Template\n"),
	}

	checker := New(pages, Options{Root: t.TempDir(), Roots: []string{"docs"}})
	result, err := checker.Check(context.Background())
	require.NoError(t, err)
	require.True(t, result.OK())
	require.Equal(t, 2, result.Pages)
	require.Equal(t, 1, result.Links)
}

func TestCheck_ResolvesAgainstCheckRoots(t *testing.T) {
	root := repoWithDocs(t, "docs/guide.md")
	pages := map[string][]byte{
		"index.md": []byte("Read the [guide](guide.md) or the [missing page](missing.md).\n"),
	}

	checker := New(pages, Options{Root: root, Roots: []string{"docs"}})
	result, err := checker.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Issues, 1)
	require.Equal(t, "index.md", result.Issues[0].Page)
	require.Equal(t, "missing.md", result.Issues[0].Link)
}

func TestCheck_RelativeFromSubdirectory(t *testing.T) {
	pages := map[string][]byte{
		"_templates/TOPIC_TEMPLATE.md":   []byte("Uses [sections](SECTION_TEMPLATE.md).\n"),
		"_templates/SECTION_TEMPLATE.md": []byte("# Sections\n"),
	}

	checker := New(pages, Options{Root: t.TempDir(), Roots: []string{"docs"}})
	result, err := checker.Check(context.Background())
	require.NoError(t, err)
	require.True(t, result.OK())
}

func TestCheck_AnchorStripping(t *testing.T) {
	root := repoWithDocs(t, "docs/guide.md")
	pages := map[string][]byte{
		"index.md": []byte("See [setup](guide.md#setup) and [top](#top).\n"),
	}

	checker := New(pages, Options{Root: root, Roots: []string{"docs"}})
	result, err := checker.Check(context.Background())
	require.NoError(t, err)
	require.True(t, result.OK())
	require.Equal(t, 1, result.Links, "anchor-only links are not verified")
}

func TestCheck_SkipsNonNavigationalSchemes(t *testing.T) {
	pages := map[string][]byte{
		"index.md": []byte("Mail [us](mailto:team@example.com) or call [here](tel:123).\n"),
	}

	checker := New(pages, Options{Root: t.TempDir()})
	result, err := checker.Check(context.Background())
	require.NoError(t, err)
	require.True(t, result.OK())
	require.Zero(t, result.Links)
}

func TestCheck_EscapingTargetIsBroken(t *testing.T) {
	pages := map[string][]byte{
		"index.md": []byte("Bad [link](../outside.md).\n"),
	}

	checker := New(pages, Options{Root: t.TempDir(), Roots: []string{"docs"}})
	result, err := checker.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Issues, 1)
	require.Contains(t, result.Issues[0].Reason, "escapes")
}

func TestCheck_ExternalLinksSkippedByDefault(t *testing.T) {
	pages := map[string][]byte{
		"index.md": []byte("See [license](https://unreachable.invalid/LICENSE).\n"),
	}

	checker := New(pages, Options{Root: t.TempDir()})
	result, err := checker.Check(context.Background())
	require.NoError(t, err)
	require.True(t, result.OK())
	require.Equal(t, 1, result.Links)
}

func TestCheck_ExternalProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/auth":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	pages := map[string][]byte{
		"index.md": []byte("[a](" + server.URL + "/ok) [b](" + server.URL + "/auth) [c](" + server.URL + "/gone)\n"),
	}

	checker := New(pages, Options{Root: t.TempDir(), External: true})
	result, err := checker.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Issues, 1)
	require.Equal(t, server.URL+"/gone", result.Issues[0].Link)
	require.Contains(t, result.Issues[0].Reason, "404")
}

func TestCheck_ExternalHeadRejectedFallsBackToGet(t *testing.T) {
	var gets atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		gets.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	pages := map[string][]byte{
		"index.md": []byte("[a](" + server.URL + "/page)\n"),
	}

	checker := New(pages, Options{Root: t.TempDir(), External: true})
	result, err := checker.Check(context.Background())
	require.NoError(t, err)
	require.True(t, result.OK())
	require.Equal(t, int32(1), gets.Load())
}

func TestCheck_ExternalProbesAreDeduplicated(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	pages := map[string][]byte{
		"index.md":  []byte("[a](" + server.URL + "/x)\n"),
		"AGENTS.md": []byte("[b](" + server.URL + "/x)\n"),
	}

	checker := New(pages, Options{Root: t.TempDir(), External: true})
	result, err := checker.Check(context.Background())
	require.NoError(t, err)
	require.True(t, result.OK())
	require.Equal(t, int32(1), hits.Load())
}

func TestAcceptableStatus(t *testing.T) {
	require.True(t, acceptableStatus(http.StatusOK))
	require.True(t, acceptableStatus(http.StatusMovedPermanently))
	require.True(t, acceptableStatus(http.StatusUnauthorized))
	require.True(t, acceptableStatus(http.StatusForbidden))
	require.False(t, acceptableStatus(http.StatusNotFound))
	require.False(t, acceptableStatus(http.StatusInternalServerError))
	require.False(t, acceptableStatus(http.StatusMethodNotAllowed))
}
