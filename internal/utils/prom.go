package utils

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// Instruments holds the service's Prometheus collectors. Each instance owns
// its registry so tests can build as many as they like.
type Instruments struct {
	Registry     *prometheus.Registry
	PipelineRuns *prometheus.CounterVec
	PipelineTime prometheus.Histogram
	RowsDropped  *prometheus.CounterVec
	HTTPRequests *prometheus.CounterVec
}

func NewInstruments() *Instruments {
	in := &Instruments{
		Registry: prometheus.NewRegistry(),
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funnel_pipeline_runs_total",
			Help: "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		PipelineTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "funnel_pipeline_duration_seconds",
			Help:    "Time to reconcile one set of uploads.",
			Buckets: prometheus.DefBuckets,
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funnel_rows_dropped_total",
			Help: "Input rows dropped for an unparseable date.",
		}, []string{"source"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funnel_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "code"}),
	}
	in.Registry.MustRegister(in.PipelineRuns, in.PipelineTime, in.RowsDropped, in.HTTPRequests)
	return in
}

// ObserveRun records one pipeline run.
func (in *Instruments) ObserveRun(outcome string, took time.Duration) {
	if in == nil {
		return
	}
	in.PipelineRuns.WithLabelValues(outcome).Inc()
	in.PipelineTime.Observe(took.Seconds())
}

func (in *Instruments) AddDropped(source string, n int) {
	if in == nil || n <= 0 {
		return
	}
	in.RowsDropped.WithLabelValues(source).Add(float64(n))
}

// CountRequests labels by the chi route pattern so ids do not blow up
// cardinality.
func (in *Instruments) CountRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		in.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.code)).Inc()
	})
}
