// Package metrics defines observability hooks for parse and render passes.
package metrics

import "time"

// OutcomeLabel enumerates render outcome categories for counters.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success"
	OutcomeFailed  OutcomeLabel = "failed"
)

// Recorder defines observability hooks for the renderer. Implementations
// may forward to Prometheus, OpenTelemetry, etc. All methods must be safe
// on a NoopRecorder value (allowing optional injection).
type Recorder interface {
	ObserveParseDuration(d time.Duration)
	ObserveRenderDuration(d time.Duration)
	IncRenderOutcome(outcome OutcomeLabel)
	IncCacheResult(hit bool)
	ObserveEvalDuration(lang string, d time.Duration)
	IncEvalResult(lang string, success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are
// not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveParseDuration(time.Duration)          {}
func (NoopRecorder) ObserveRenderDuration(time.Duration)         {}
func (NoopRecorder) IncRenderOutcome(OutcomeLabel)               {}
func (NoopRecorder) IncCacheResult(bool)                         {}
func (NoopRecorder) ObserveEvalDuration(string, time.Duration)   {}
func (NoopRecorder) IncEvalResult(string, bool)                  {}
