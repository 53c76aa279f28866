package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RMahshie/farfield/pkg/ffe"
)

// ParserCollector bundles Prometheus metrics for FFE parsing, the dataset
// cache and the HTTP API. It implements ffe.Recorder.
type ParserCollector struct {
	gatherer prometheus.Gatherer

	Parses          *prometheus.CounterVec
	ParseDurations  prometheus.Histogram
	FilesParsed     prometheus.Counter
	SectionsSkipped *prometheus.CounterVec
	SkippedRows     prometheus.Counter
	Duplicates      prometheus.Counter
	CacheLookups    *prometheus.CounterVec
	CacheSize       prometheus.Gauge

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
}

var _ ffe.Recorder = (*ParserCollector)(nil)

// NewParserCollector registers the metrics against reg, defaulting to the
// global Prometheus registry when nil. Registering twice against the same
// registry reuses the existing collectors.
func NewParserCollector(reg prometheus.Registerer) (*ParserCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	parses, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ffe_parses_total",
		Help: "Total number of FFE parse calls, labeled by result.",
	}, []string{"result"}), "ffe_parses_total")
	if err != nil {
		return nil, err
	}
	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ffe_parse_duration_seconds",
		Help:    "Wall time of an FFE parse call in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	}), "ffe_parse_duration_seconds")
	if err != nil {
		return nil, err
	}
	files, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ffe_files_parsed_total",
		Help: "Total number of files handed to the parser.",
	}), "ffe_files_parsed_total")
	if err != nil {
		return nil, err
	}
	sections, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ffe_sections_skipped_total",
		Help: "Sections dropped because they could not be decoded, labeled by stage.",
	}, []string{"stage"}), "ffe_sections_skipped_total")
	if err != nil {
		return nil, err
	}
	rows, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ffe_rows_skipped_total",
		Help: "Data rows dropped because they did not convert.",
	}), "ffe_rows_skipped_total")
	if err != nil {
		return nil, err
	}
	dups, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ffe_duplicate_frequencies_total",
		Help: "Sections discarded because another section had the same frequency.",
	}), "ffe_duplicate_frequencies_total")
	if err != nil {
		return nil, err
	}
	lookups, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ffe_cache_lookups_total",
		Help: "Dataset cache lookups, labeled by hit or miss.",
	}, []string{"result"}), "ffe_cache_lookups_total")
	if err != nil {
		return nil, err
	}
	size, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ffe_cache_entries",
		Help: "Current number of parsed datasets held in the cache.",
	}), "ffe_cache_entries")
	if err != nil {
		return nil, err
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by method, route and status code.",
	}, []string{"method", "route", "code"}), "http_requests_total")
	if err != nil {
		return nil, err
	}
	latency, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"method", "route"}), "http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &ParserCollector{
		gatherer:        gatherer,
		Parses:          parses,
		ParseDurations:  durations,
		FilesParsed:     files,
		SectionsSkipped: sections,
		SkippedRows:     rows,
		Duplicates:      dups,
		CacheLookups:    lookups,
		CacheSize:       size,
		HTTPRequests:    requests,
		HTTPDurations:   latency,
	}, nil
}

// ObserveParse records one Parser.Parse call.
func (c *ParserCollector) ObserveParse(files int, d time.Duration, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.Parses.WithLabelValues(result).Inc()
	c.ParseDurations.Observe(d.Seconds())
	c.FilesParsed.Add(float64(files))
}

func (c *ParserCollector) SectionSkipped(stage ffe.Stage) {
	if c == nil {
		return
	}
	c.SectionsSkipped.WithLabelValues(string(stage)).Inc()
}

func (c *ParserCollector) RowsSkipped(n int) {
	if c == nil {
		return
	}
	c.SkippedRows.Add(float64(n))
}

func (c *ParserCollector) DuplicateDiscarded() {
	if c == nil {
		return
	}
	c.Duplicates.Inc()
}

func (c *ParserCollector) CacheHit() {
	if c == nil {
		return
	}
	c.CacheLookups.WithLabelValues("hit").Inc()
}

func (c *ParserCollector) CacheMiss() {
	if c == nil {
		return
	}
	c.CacheLookups.WithLabelValues("miss").Inc()
}

func (c *ParserCollector) CacheEntries(n int) {
	if c == nil {
		return
	}
	c.CacheSize.Set(float64(n))
}

// Middleware records request counts and durations, labeled by the matched
// chi route pattern so path parameters do not explode cardinality.
func (c *ParserCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if c == nil {
			return
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.HTTPDurations.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes a ready-to-use /metrics handler.
func (c *ParserCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return c, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	return register(reg, vec, name)
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	return register(reg, vec, name)
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	return register(reg, h, name)
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	return register(reg, counter, name)
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	return register(reg, gauge, name)
}
