// Package metrics provides observability hooks for staging runs.
//
// It follows the Null Object pattern: components receive a Recorder through
// dependency injection and default to NoopRecorder, so metrics collection
// never requires nil checks at call sites. The Prometheus implementation is
// activated by the watch command when a metrics listen address is configured.
package metrics
