package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"finadvisor/pkg/advisor"
)

const namespace = "finadvisor"

// Collector exposes Prometheus metrics for inbound HTTP requests and for the
// advisory engine. It satisfies advisor.Observer.
type Collector struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	llmDuration     *prometheus.HistogramVec
	llmCalls        *prometheus.CounterVec
	llmFallbacks    prometheus.Counter
	adviceTotal     *prometheus.CounterVec
}

var _ advisor.Observer = (*Collector)(nil)

// New constructs a collector on its own registry.
func New() (*Collector, error) {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution for inbound HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests.",
		}, []string{"method", "route", "status"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "Latency of completion calls per backend.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"backend"}),
		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "Completion calls per backend and outcome.",
		}, []string{"backend", "outcome"}),
		llmFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "fallbacks_total",
			Help:      "Completions answered by the mock after a remote failure.",
		}),
		adviceTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "advice",
			Name:      "responses_total",
			Help:      "Advice responses per topic, advisory mode and responder.",
		}, []string{"topic", "mode", "responder"}),
	}

	for _, col := range []prometheus.Collector{
		c.requestDuration,
		c.requestTotal,
		c.llmDuration,
		c.llmCalls,
		c.llmFallbacks,
		c.adviceTotal,
	} {
		if err := registry.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps next to record HTTP metrics. Requests routed by chi
// are labelled with the route pattern rather than the raw path so ids in the
// URL do not explode cardinality.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := strconv.Itoa(rw.status)
		c.requestTotal.WithLabelValues(r.Method, route, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
	})
}

func (c *Collector) ObserveLLMCall(backend, outcome string, elapsed time.Duration) {
	c.llmCalls.WithLabelValues(backend, outcome).Inc()
	c.llmDuration.WithLabelValues(backend).Observe(elapsed.Seconds())
	if outcome == advisor.OutcomeFallback {
		c.llmFallbacks.Inc()
	}
}

func (c *Collector) ObserveAdvice(topic advisor.Topic, mode advisor.AdvisoryMode, responder string) {
	c.adviceTotal.WithLabelValues(string(topic), string(mode), responder).Inc()
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
