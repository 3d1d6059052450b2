package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "spacecol"

// PrometheusHooks implements GrowthHooks, CacheHooks and HTTPHooks with
// Prometheus collectors.
type PrometheusHooks struct {
	runsStarted  *prometheus.CounterVec
	runs         *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	runNodes     *prometheus.HistogramVec
	ticks        *prometheus.CounterVec
	inFlight     prometheus.Gauge
	renders      *prometheus.HistogramVec
	renderErrors *prometheus.CounterVec

	cacheEvents *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewPrometheusHooks creates the collectors and registers them on reg.
// Registering twice on the same registry panics.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		runsStarted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_started_total",
			Help:      "Growth runs started, by attractor source.",
		}, []string{"source"}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Growth runs finished, by source and termination reason (or \"error\").",
		}, []string{"source", "reason", "cached"}),
		runDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of growth runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		}, []string{"source"}),
		runNodes: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_nodes",
			Help:      "Number of tree nodes at termination.",
			Buckets:   prometheus.ExponentialBuckets(16, 2, 12),
		}, []string{"source"}),
		ticks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Growth ticks executed.",
		}, []string{"source"}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_in_flight",
			Help:      "Growth runs currently executing.",
		}),
		renders: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent rendering one artifact.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		renderErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_errors_total",
			Help:      "Artifact renders that failed.",
		}, []string{"format"}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Cache lookups and writes, by key type and event (hit, miss, set).",
		}, []string{"key_type", "event"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}, []string{"key_type"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests served.",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (h *PrometheusHooks) OnRunStart(_ context.Context, source string) {
	h.runsStarted.WithLabelValues(source).Inc()
	h.inFlight.Inc()
}

func (h *PrometheusHooks) OnTick(_ context.Context, source string, progress float64) {
	if progress < 1 {
		h.ticks.WithLabelValues(source).Inc()
	}
}

func (h *PrometheusHooks) OnRunComplete(_ context.Context, run RunSummary) {
	h.inFlight.Dec()
	reason := run.Reason
	if run.Err != nil {
		reason = "error"
	}
	h.runs.WithLabelValues(run.Source, reason, strconv.FormatBool(run.Cached)).Inc()
	h.runDuration.WithLabelValues(run.Source).Observe(run.Duration.Seconds())
	if run.Err == nil {
		h.runNodes.WithLabelValues(run.Source).Observe(float64(run.Nodes))
	}
}

func (h *PrometheusHooks) OnRender(_ context.Context, format string, d time.Duration, err error) {
	h.renders.WithLabelValues(format).Observe(d.Seconds())
	if err != nil {
		h.renderErrors.WithLabelValues(format).Inc()
	}
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ GrowthHooks = (*PrometheusHooks)(nil)
	_ CacheHooks  = (*PrometheusHooks)(nil)
	_ HTTPHooks   = (*PrometheusHooks)(nil)
)
