// Package metrics exposes planning activity as Prometheus metrics. The
// Recorder consumes domain events, so the core packages stay unaware of it.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vsinha/restock/pkg/domain/events"
)

const namespace = "restock"

// Recorder owns a registry and the collectors registered on it
type Recorder struct {
	registry *prometheus.Registry

	forecastsTotal     *prometheus.CounterVec
	forecastHorizon    prometheus.Histogram
	forecastErrorRate  prometheus.Histogram
	analysesTotal      *prometheus.CounterVec
	decisionsTotal     *prometheus.CounterVec
	shortfallsTotal    prometheus.Counter
	httpRequestsTotal  *prometheus.CounterVec
	httpRequestSeconds *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with a fresh registry. Process and Go
// runtime collectors are registered alongside the planning metrics.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,

		// forecastsTotal counts forecasts by model and result
		forecastsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecasts_total",
			Help:      "Forecasts produced, by model and result",
		}, []string{"model", "result"}),

		forecastHorizon: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_horizon_days",
			Help:      "Requested forecast horizon in days",
			Buckets:   []float64{1, 7, 14, 30, 60, 90, 180, 365},
		}),

		forecastErrorRate: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_mape_percent",
			Help:      "In-sample MAPE of advanced forecasts",
			Buckets:   []float64{1, 5, 10, 20, 30, 50, 100},
		}),

		analysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "demand_analyses_total",
			Help:      "Demand analyses, by whether seasonality was detected",
		}, []string{"seasonal"}),

		decisionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "restock_decisions_total",
			Help:      "Restock decisions, by urgency",
		}, []string{"urgency"}),

		shortfallsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_shortfalls_total",
			Help:      "Decisions made from a forecast shorter than the lead time",
		}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status code",
		}, []string{"method", "route", "status"}),

		httpRequestSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		}, []string{"route"}),
	}
}

var _ events.Observer = (*Recorder)(nil)

// Observe updates counters from a planning event. Unknown events are ignored.
func (r *Recorder) Observe(event events.Event) {
	switch data := event.Data().(type) {
	case events.ForecastGenerated:
		r.forecastsTotal.WithLabelValues(string(data.Model), "success").Inc()
		r.forecastHorizon.Observe(float64(data.Metrics.ForecastHorizonDays))
		if data.Metrics.ErrorRate != nil {
			r.forecastErrorRate.Observe(*data.Metrics.ErrorRate)
		}
	case events.ForecastFailed:
		r.forecastsTotal.WithLabelValues(string(data.Model), "failure").Inc()
	case events.DemandAnalyzed:
		r.analysesTotal.WithLabelValues(strconv.FormatBool(data.Profile.SeasonalityDetected)).Inc()
	case events.RestockPlanned:
		r.decisionsTotal.WithLabelValues(data.Decision.Urgency.String()).Inc()
	case events.ForecastShortfall:
		r.shortfallsTotal.Inc()
	}
}

// ObserveRequest records one served HTTP request
func (r *Recorder) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	r.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpRequestSeconds.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry, mainly for tests
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
