package stager

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/artificial-intelligence-first/docstage/internal/logfields"
)

// Sink receives staged pages keyed by their destination path. Create returns
// a writable handle for one destination; the page content becomes visible in
// the sink only after Close.
type Sink interface {
	Create(destination string) (io.WriteCloser, error)
}

// TransactionalSink is a Sink whose output becomes visible only after a fully
// successful run: Begin before the first page, then either Promote or Abort.
type TransactionalSink interface {
	Sink
	Begin() error
	Promote() error
	Abort()
}

// cleanDestination validates and normalizes a destination path. Destinations
// must stay inside the staged tree.
func cleanDestination(destination string) (string, error) {
	if destination == "" {
		return "", fmt.Errorf("empty destination path")
	}
	clean := path.Clean(destination)
	if path.IsAbs(clean) || clean == ".." || len(clean) >= 3 && clean[:3] == "../" {
		return "", fmt.Errorf("destination escapes staged tree: %s", destination)
	}
	return clean, nil
}

// DirSink writes staged pages into a real output directory. With replace
// enabled it stages into a sibling directory and promotes it by rename, so a
// failed run never touches the previous output.
type DirSink struct {
	outputDir string
	replace   bool
	stageDir  string
}

// NewDirSink creates a sink rooted at outputDir. When replace is true the
// whole output directory is swapped atomically on Promote; otherwise pages
// are written directly into the existing directory.
func NewDirSink(outputDir string, replace bool) *DirSink {
	return &DirSink{outputDir: outputDir, replace: replace}
}

// Begin prepares the directory writes go into.
func (d *DirSink) Begin() error {
	if !d.replace {
		return os.MkdirAll(d.outputDir, 0o755)
	}
	stage := d.outputDir + "_stage"
	if err := os.RemoveAll(stage); err != nil {
		return fmt.Errorf("clear staging directory: %w", err)
	}
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	d.stageDir = stage
	slog.Debug("Initialized staging directory", "staging", stage, "final", d.outputDir)
	return nil
}

func (d *DirSink) root() string {
	if d.stageDir != "" {
		return d.stageDir
	}
	return d.outputDir
}

// Create opens a destination file under the sink's current root.
func (d *DirSink) Create(destination string) (io.WriteCloser, error) {
	clean, err := cleanDestination(destination)
	if err != nil {
		return nil, err
	}
	full := filepath.Join(d.root(), filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("create destination directory: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return nil, fmt.Errorf("create destination file: %w", err)
	}
	return f, nil
}

// Promote swaps the staged directory into place. The previous output is moved
// aside first so the swap itself is a single rename.
func (d *DirSink) Promote() error {
	if !d.replace {
		return nil
	}
	if d.stageDir == "" {
		return fmt.Errorf("no staging directory initialized")
	}
	prev := d.outputDir + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		return fmt.Errorf("remove previous backup: %w", err)
	}
	if _, err := os.Stat(d.outputDir); err == nil {
		if err := os.Rename(d.outputDir, prev); err != nil {
			return fmt.Errorf("backup existing output: %w", err)
		}
	}
	if err := os.Rename(d.stageDir, d.outputDir); err != nil {
		return fmt.Errorf("promote staging: %w", err)
	}
	d.stageDir = ""
	if err := os.RemoveAll(prev); err != nil {
		slog.Warn("Failed to remove previous backup", logfields.Path(prev), logfields.Error(err))
	}
	return nil
}

// Abort removes the staging directory after a failed run.
func (d *DirSink) Abort() {
	if d.stageDir == "" {
		return
	}
	dir := d.stageDir
	d.stageDir = ""
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("Failed to remove staging directory after abort", logfields.Path(dir), logfields.Error(err))
	}
}

// OutputDir returns the directory promoted pages end up in.
func (d *DirSink) OutputDir() string { return d.outputDir }

// MemorySink collects staged pages in memory, for tests and for link checks
// that never touch the filesystem. Pages are committed on Close.
type MemorySink struct {
	mu    sync.Mutex
	pages map[string][]byte
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{pages: make(map[string][]byte)}
}

// Create opens an in-memory handle for one destination.
func (m *MemorySink) Create(destination string) (io.WriteCloser, error) {
	clean, err := cleanDestination(destination)
	if err != nil {
		return nil, err
	}
	return &memoryPage{sink: m, destination: clean}, nil
}

// Page returns the committed content for a destination.
func (m *MemorySink) Page(destination string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.pages[destination]
	return b, ok
}

// Paths returns all committed destination paths, sorted.
func (m *MemorySink) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.pages))
	for p := range m.pages {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of committed pages.
func (m *MemorySink) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pages)
}

type memoryPage struct {
	sink        *MemorySink
	destination string
	buf         bytes.Buffer
	closed      bool
}

func (p *memoryPage) Write(b []byte) (int, error) {
	if p.closed {
		return 0, fmt.Errorf("write to closed page %s", p.destination)
	}
	return p.buf.Write(b)
}

func (p *memoryPage) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.sink.mu.Lock()
	defer p.sink.mu.Unlock()
	p.sink.pages[p.destination] = append([]byte(nil), p.buf.Bytes()...)
	return nil
}
