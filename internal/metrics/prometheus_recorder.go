package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	runDuration    prom.Histogram
	pageDuration   *prom.HistogramVec
	pageResults    *prom.CounterVec
	runOutcomes    *prom.CounterVec
	watchedSources prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docstage",
			Name:      "run_duration_seconds",
			Help:      "Total duration of staging runs",
			Buckets:   prom.DefBuckets,
		}),
		pageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docstage",
			Name:      "page_duration_seconds",
			Help:      "Duration of individual page staging operations",
			Buckets:   prom.DefBuckets,
		}, []string{"destination"}),
		pageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docstage",
			Name:      "page_results_total",
			Help:      "Page staging results by destination and outcome",
		}, []string{"destination", "result"}),
		runOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docstage",
			Name:      "run_outcomes_total",
			Help:      "Staging run outcomes by final status",
		}, []string{"outcome"}),
		watchedSources: prom.NewGauge(prom.GaugeOpts{
			Namespace: "docstage",
			Name:      "watched_sources",
			Help:      "Number of source files currently watched for changes",
		}),
	}
	reg.MustRegister(pr.runDuration, pr.pageDuration, pr.pageResults, pr.runOutcomes, pr.watchedSources)
	return pr
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObservePageDuration(destination string, d time.Duration) {
	if p == nil || p.pageDuration == nil {
		return
	}
	p.pageDuration.WithLabelValues(destination).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageResult(destination string, result ResultLabel) {
	if p == nil || p.pageResults == nil {
		return
	}
	p.pageResults.WithLabelValues(destination, string(result)).Inc()
}

func (p *PrometheusRecorder) IncRunOutcome(outcome string) {
	if p == nil || p.runOutcomes == nil {
		return
	}
	p.runOutcomes.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetWatchedSources(n int) {
	if p == nil || p.watchedSources == nil {
		return
	}
	p.watchedSources.Set(float64(n))
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
