package stager

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func stagePageInto(t *testing.T, sink Sink, destination, content string) {
	t.Helper()
	w, err := sink.Create(destination)
	require.NoError(t, err)
	_, err = io.WriteString(w, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestDirSink_ReplacePromotesAtomically(t *testing.T) {
	base := t.TempDir()
	output := filepath.Join(base, "docs_sources")
	require.NoError(t, os.MkdirAll(output, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(output, "stale.md"), []byte("old"), 0o644))

	sink := NewDirSink(output, true)
	require.NoError(t, sink.Begin())

	// Nothing visible in the output until promotion.
	stagePageInto(t, sink, "index.md", "# New\n")
	_, err := os.Stat(filepath.Join(output, "index.md"))
	require.True(t, os.IsNotExist(err))

	require.NoError(t, sink.Promote())

	got, err := os.ReadFile(filepath.Join(output, "index.md"))
	require.NoError(t, err)
	require.Equal(t, "# New\n", string(got))

	_, err = os.Stat(filepath.Join(output, "stale.md"))
	require.True(t, os.IsNotExist(err), "replaced output must not keep stale pages")

	_, err = os.Stat(output + "_stage")
	require.True(t, os.IsNotExist(err), "staging directory must be gone after promote")
	_, err = os.Stat(output + ".prev")
	require.True(t, os.IsNotExist(err), "backup directory must be cleaned up")
}

func TestDirSink_AbortKeepsPreviousOutput(t *testing.T) {
	base := t.TempDir()
	output := filepath.Join(base, "docs_sources")
	require.NoError(t, os.MkdirAll(output, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(output, "index.md"), []byte("previous"), 0o644))

	sink := NewDirSink(output, true)
	require.NoError(t, sink.Begin())
	stagePageInto(t, sink, "index.md", "half-finished")
	sink.Abort()

	got, err := os.ReadFile(filepath.Join(output, "index.md"))
	require.NoError(t, err)
	require.Equal(t, "previous", string(got))

	_, err = os.Stat(output + "_stage")
	require.True(t, os.IsNotExist(err))
}

func TestDirSink_WithoutReplaceWritesInPlace(t *testing.T) {
	base := t.TempDir()
	output := filepath.Join(base, "docs_sources")
	require.NoError(t, os.MkdirAll(output, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(output, "kept.md"), []byte("kept"), 0o644))

	sink := NewDirSink(output, false)
	require.NoError(t, sink.Begin())
	stagePageInto(t, sink, "_templates/TOPIC_TEMPLATE.md", "template")
	require.NoError(t, sink.Promote())

	got, err := os.ReadFile(filepath.Join(output, "_templates", "TOPIC_TEMPLATE.md"))
	require.NoError(t, err)
	require.Equal(t, "template", string(got))

	kept, err := os.ReadFile(filepath.Join(output, "kept.md"))
	require.NoError(t, err)
	require.Equal(t, "kept", string(kept))
}

func TestDirSink_RejectsEscapingDestination(t *testing.T) {
	sink := NewDirSink(t.TempDir(), false)
	require.NoError(t, sink.Begin())

	for _, dest := range []string{"../evil.md", "/etc/evil.md", "a/../../evil.md", ""} {
		_, err := sink.Create(dest)
		require.Error(t, err, "destination %q must be rejected", dest)
	}
}

func TestMemorySink_CommitsOnClose(t *testing.T) {
	sink := NewMemorySink()
	w, err := sink.Create("index.md")
	require.NoError(t, err)
	_, err = io.WriteString(w, "partial")
	require.NoError(t, err)

	_, visible := sink.Page("index.md")
	require.False(t, visible, "page must not be visible before Close")

	require.NoError(t, w.Close())
	got, visible := sink.Page("index.md")
	require.True(t, visible)
	require.Equal(t, "partial", string(got))

	_, err = w.Write([]byte("late"))
	require.Error(t, err)
}

func TestMemorySink_PathsSorted(t *testing.T) {
	sink := NewMemorySink()
	stagePageInto(t, sink, "b.md", "b")
	stagePageInto(t, sink, "a.md", "a")
	require.Equal(t, []string{"a.md", "b.md"}, sink.Paths())
	require.Equal(t, 2, sink.Len())
}
