// Package watch restages the plan whenever a watched source file changes,
// and optionally on a fixed interval.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"github.com/artificial-intelligence-first/docstage/internal/logfields"
	"github.com/artificial-intelligence-first/docstage/internal/metrics"
)

// RunFunc performs one staging pass. A failed pass is logged and the watcher
// keeps running; each pass itself stays fail-fast.
type RunFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	Sources  []string      // Absolute source file paths to watch
	Debounce time.Duration // Quiet window before a change burst triggers a restage
	Interval time.Duration // Periodic full restage; 0 disables
	Recorder metrics.Recorder
}

// Watcher restages continuously: once up front, then on every source change.
type Watcher struct {
	run     RunFunc
	sources []string
	opts    Options
}

// New creates a Watcher over the given sources.
func New(run RunFunc, opts Options) (*Watcher, error) {
	if run == nil {
		return nil, fmt.Errorf("run function is required")
	}
	if len(opts.Sources) == 0 {
		return nil, fmt.Errorf("at least one source to watch is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}

	sources := make([]string, 0, len(opts.Sources))
	for _, src := range opts.Sources {
		sources = append(sources, filepath.Clean(src))
	}
	return &Watcher{run: run, sources: sources, opts: opts}, nil
}

// Run performs the initial staging pass and then watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	// Initial pass. A failure is logged, not fatal: the broken source may be
	// fixed while the watcher is running and trigger a clean restage.
	w.restage(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dirs := watchDirs(w.sources)
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.opts.Recorder.SetWatchedSources(len(w.sources))
	slog.Info("Watching sources for changes",
		slog.Int("sources", len(w.sources)),
		slog.Int("directories", len(dirs)))

	requests := make(chan struct{}, 1)
	var workers sync.WaitGroup
	workers.Add(1)
	go func() {
		defer workers.Done()
		w.restageWorker(ctx, requests)
	}()

	deb := newDebouncer(w.opts.Debounce, func() { enqueue(requests) })
	defer deb.stop()

	if w.opts.Interval > 0 {
		scheduler, err := w.startScheduler(requests)
		if err != nil {
			return err
		}
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				slog.Warn("Failed to shut down restage scheduler", logfields.Error(err))
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping watch mode")
			workers.Wait()
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				workers.Wait()
				return nil
			}
			w.handleEvent(ev, deb)
		case err, ok := <-watcher.Errors:
			if !ok {
				workers.Wait()
				return nil
			}
			slog.Warn("File watcher error", logfields.Error(err))
		}
	}
}

// handleEvent triggers a debounced restage for events on watched sources.
// Events for anything else in the watched directories, including editor temp
// and swap files, never match a source path and are dropped here.
func (w *Watcher) handleEvent(ev fsnotify.Event, deb *debouncer) {
	if !w.watchesFile(ev.Name) {
		return
	}
	slog.Debug("Source change detected",
		logfields.Path(ev.Name),
		slog.String("op", ev.Op.String()))
	deb.trigger()
}

func (w *Watcher) watchesFile(path string) bool {
	clean := filepath.Clean(path)
	for _, src := range w.sources {
		if clean == src {
			return true
		}
	}
	return false
}

// restageWorker executes queued restage requests one at a time. The request
// channel holds at most one pending request, so triggers arriving during a
// run coalesce into a single follow-up run.
func (w *Watcher) restageWorker(ctx context.Context, requests <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-requests:
			w.restage(ctx)
		}
	}
}

func (w *Watcher) restage(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := w.run(ctx); err != nil {
		slog.Error("Restage failed; watching for further changes", logfields.Error(err))
	}
}

func (w *Watcher) startScheduler(requests chan<- struct{}) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create restage scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(w.opts.Interval),
		gocron.NewTask(func() {
			slog.Debug("Periodic restage triggered")
			enqueue(requests)
		}),
		gocron.WithName("periodic-restage"),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("schedule periodic restage: %w", err)
	}
	scheduler.Start()
	slog.Info("Periodic restage scheduled", slog.Duration("interval", w.opts.Interval))
	return scheduler, nil
}

// watchDirs returns the deduplicated parent directories of the sources, in
// first-seen order. Directories are watched rather than the files themselves
// so sources recreated by rename-style saves stay covered.
func watchDirs(sources []string) []string {
	seen := make(map[string]bool, len(sources))
	dirs := make([]string, 0, len(sources))
	for _, src := range sources {
		dir := filepath.Dir(src)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}
