package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/benjaminschreck/go-clause/pkg/clause"
)

// Metrics exposes Prometheus collectors for the HTTP API and the render engine.
type Metrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	renders   prometheus.Counter
	keptField prometheus.Histogram
	imports   *prometheus.CounterVec
}

// MustNewMetrics registers the collectors with reg. Pass a fresh registry in
// tests; registration errors panic like the promauto helpers do. cache may be
// nil; otherwise its size is exported as a gauge.
func MustNewMetrics(reg prometheus.Registerer, cache *clause.TokenCache) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "clause",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route, method and status code.",
			},
			[]string{"route", "method", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "clause",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by route and method.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		renders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clause",
			Subsystem: "engine",
			Name:      "renders_total",
			Help:      "Completed render cycles.",
		}),
		keptField: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clause",
			Subsystem: "engine",
			Name:      "render_kept_fields",
			Help:      "Typed field values carried through a render cycle.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		imports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "clause",
				Subsystem: "engine",
				Name:      "imports_total",
				Help:      "Document imports by outcome.",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(m.requests, m.duration, m.renders, m.keptField, m.imports)
	if cache != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "clause",
				Subsystem: "engine",
				Name:      "token_cache_entries",
				Help:      "Tokenized templates held in the render cache.",
			},
			func() float64 { return float64(cache.Len()) },
		))
	}
	return m
}

// ObserveRender records one render cycle.
func (m *Metrics) ObserveRender(fields int) {
	if m == nil {
		return
	}
	m.renders.Inc()
	m.keptField.Observe(float64(fields))
}

// ObserveImport records one import attempt.
func (m *Metrics) ObserveImport(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case err == nil:
	case clause.IsUnsupportedFormat(err):
		outcome = "unsupported"
	default:
		outcome = "error"
	}
	m.imports.WithLabelValues(outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency, labelled by route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		m.duration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
