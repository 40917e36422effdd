package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// Page request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// Page latency per request. Watch for: p95/p99 increases driven by upstream slowness.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation during upstream stalls.
	HTTPRequestsInFlight prometheus.Gauge

	// WeatherAPI.com call rate by status. Watch for: error vs success ratio.
	WeatherAPICallsTotal *prometheus.CounterVec

	// WeatherAPI.com latency per call. Watch for: p95 > 2s (upstream degradation).
	WeatherAPIDuration *prometheus.HistogramVec

	// Weather form submissions that reached the upstream client.
	WeatherQueriesTotal prometheus.Counter

	// Location search (autocomplete) calls.
	LocationSearchesTotal prometheus.Counter

	// Time-series writes by outcome: success, error, skipped (flag off or store unconfigured).
	PersistWritesTotal *prometheus.CounterVec

	// Time-series write latency. Watch for: slow Influx endpoint backing up page renders.
	PersistWriteDuration prometheus.Histogram

	// Data-collection toggle flips by resulting state (on/off).
	CollectionTogglesTotal *prometheus.CounterVec
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	WeatherAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiCallsTotal",
			Help: "Total number of WeatherAPI.com calls",
		},
		[]string{"status"},
	)
	WeatherAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherApiDurationSeconds",
			Help:    "WeatherAPI.com latency in seconds (per call)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
	WeatherQueriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherQueriesTotal",
			Help: "Total number of weather form submissions dispatched upstream",
		},
	)
	LocationSearchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "locationSearchesTotal",
			Help: "Total number of location search calls",
		},
	)
	PersistWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persistWritesTotal",
			Help: "Time-series writes by outcome (success, error, skipped)",
		},
		[]string{"outcome"},
	)
	PersistWriteDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "persistWriteDurationSeconds",
			Help:    "Time-series write latency in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5},
		},
	)
	CollectionTogglesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collectionTogglesTotal",
			Help: "Data-collection toggle flips by resulting state",
		},
		[]string{"state"},
	)

	registry.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPRequestsInFlight,
		WeatherAPICallsTotal,
		WeatherAPIDuration,
		WeatherQueriesTotal,
		LocationSearchesTotal,
		PersistWritesTotal,
		PersistWriteDuration,
		CollectionTogglesTotal,
	)
}

// MetricsHandler returns the HTTP handler serving the private registry.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
