package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once           sync.Once
	registry       *prom.Registry
	parseDuration  prom.Histogram
	renderDuration prom.Histogram
	renderOutcome  *prom.CounterVec
	cacheResults   *prom.CounterVec
	evalDuration   *prom.HistogramVec
	evalResults    *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.once.Do(func() {
		pr.parseDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "litweave",
			Name:      "parse_duration_seconds",
			Help:      "Duration of document parse passes",
			Buckets:   prom.DefBuckets,
		})
		pr.renderDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "litweave",
			Name:      "render_duration_seconds",
			Help:      "Total render pass duration",
			Buckets:   prom.DefBuckets,
		})
		pr.renderOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "litweave",
			Name:      "render_outcomes_total",
			Help:      "Render outcomes by final status",
		}, []string{"outcome"})
		pr.cacheResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "litweave",
			Name:      "cache_results_total",
			Help:      "Fragment cache lookups by hit/miss",
		}, []string{"result"})
		pr.evalDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "litweave",
			Name:      "chunk_eval_duration_seconds",
			Help:      "Duration of individual chunk evaluations",
			Buckets:   prom.DefBuckets,
		}, []string{"lang"})
		pr.evalResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "litweave",
			Name:      "chunk_eval_results_total",
			Help:      "Chunk evaluation results by success/failure",
		}, []string{"lang", "result"})
		reg.MustRegister(pr.parseDuration, pr.renderDuration, pr.renderOutcome,
			pr.cacheResults, pr.evalDuration, pr.evalResults)
	})
	return pr
}

// Handler returns an HTTP handler exposing the recorder's registry.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *PrometheusRecorder) ObserveParseDuration(d time.Duration) {
	if p == nil || p.parseDuration == nil {
		return
	}
	p.parseDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRenderDuration(d time.Duration) {
	if p == nil || p.renderDuration == nil {
		return
	}
	p.renderDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRenderOutcome(outcome OutcomeLabel) {
	if p == nil || p.renderOutcome == nil {
		return
	}
	p.renderOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncCacheResult(hit bool) {
	if p == nil || p.cacheResults == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	p.cacheResults.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) ObserveEvalDuration(lang string, d time.Duration) {
	if p == nil || p.evalDuration == nil {
		return
	}
	p.evalDuration.WithLabelValues(lang).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncEvalResult(lang string, success bool) {
	if p == nil || p.evalResults == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.evalResults.WithLabelValues(lang, res).Inc()
}
