package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/artificial-intelligence-first/docstage/internal/config"
	"github.com/artificial-intelligence-first/docstage/internal/logfields"
	"github.com/artificial-intelligence-first/docstage/internal/metrics"
	"github.com/artificial-intelligence-first/docstage/internal/stager"
	"github.com/artificial-intelligence-first/docstage/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output   string        `short:"o" help:"Output directory (overrides config)"`
	Root     string        `help:"Repository root (overrides auto-detection)"`
	Interval time.Duration `help:"Periodic full restage interval (overrides config)"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return err
	}
	if w.Output != "" {
		cfg.Output.Directory = w.Output
	}
	plan, err := BuildPlan(cfg, w.Root)
	if err != nil {
		return err
	}
	interval := cfg.WatchInterval()
	if w.Interval > 0 {
		interval = w.Interval
	}
	return RunWatch(cfg, plan, interval)
}

// RunWatch stages once, then restages on every source change until the
// process is interrupted.
func RunWatch(cfg *config.Config, plan stager.Plan, interval time.Duration) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	r, cleanup, err := newRunner(cfg, plan, false)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.Watch.MetricsAddr != "" {
		reg := prom.NewRegistry()
		r.recorder = metrics.NewPrometheusRecorder(reg)
		shutdown := serveMetrics(cfg.Watch.MetricsAddr, reg)
		defer shutdown()
	}

	sources := make([]string, 0, len(plan.Pages))
	for _, page := range plan.Pages {
		sources = append(sources, plan.SourcePath(page))
	}

	fmt.Printf("Watching %d source files, staging to %s\n", len(sources), cfg.Output.Directory)
	fmt.Println("Press Ctrl+C to stop")

	watcher, err := watch.New(func(ctx context.Context) error {
		previous := r.latestFingerprints(ctx)
		report, err := r.runOnce(ctx)
		if err != nil {
			return err
		}
		logUnchangedPages(report, previous)
		return nil
	}, watch.Options{
		Sources:  sources,
		Debounce: cfg.WatchDebounce(),
		Interval: interval,
		Recorder: r.recorder,
	})
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}

// logUnchangedPages notes pages whose fingerprint matches the previous
// successful run. The pages are written regardless; the log just shows the
// restage carried no content change for them.
func logUnchangedPages(report *stager.Report, previous map[string]string) {
	if len(previous) == 0 {
		return
	}
	for _, page := range report.Pages {
		if previous[page.Destination] == page.Fingerprint {
			slog.Debug("Page content unchanged since last run",
				logfields.Destination(page.Destination))
		}
	}
}

// serveMetrics exposes the Prometheus registry on addr until the returned
// shutdown function is called.
func serveMetrics(addr string, reg *prom.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadTimeout: 30 * time.Second, WriteTimeout: 30 * time.Second, IdleTimeout: 120 * time.Second}
	go func() {
		slog.Info("Serving metrics", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", logfields.Error(err))
		}
	}()
	return func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Failed to shut down metrics server", logfields.Error(err))
		}
	}
}
