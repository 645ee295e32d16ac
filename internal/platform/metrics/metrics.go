// Package metrics exposes prometheus instrumentation for the HTTP API and
// the care line forms.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/tabular"
)

const namespace = "careline"

type Collector struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	FormSavesTotal *prometheus.CounterVec
	DatasetErrors  *prometheus.CounterVec
}

// NewCollector registers every metric on a fresh registry together with the
// Go runtime and process collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		FormSavesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "form",
			Name:      "saves_total",
			Help:      "Stage form saves by stage, mode (register/edit), and write path.",
		}, []string{"stage", "mode", "path"}),

		DatasetErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "errors_total",
			Help:      "Failed dataset reads and writes by stage.",
		}, []string{"stage"}),
	}
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// RecordSave counts one completed stage save.
func (c *Collector) RecordSave(stage, mode string, path tabular.WritePath) {
	c.FormSavesTotal.WithLabelValues(stage, mode, string(path)).Inc()
}

// RecordDatasetError counts one failed dataset operation for stage.
func (c *Collector) RecordDatasetError(stage string) {
	c.DatasetErrors.WithLabelValues(stage).Inc()
}

// TrackSessions exports the number of open register sessions as reported by
// count at scrape time.
func (c *Collector) TrackSessions(count func() int) {
	c.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "register",
		Name:      "sessions_active",
		Help:      "Open register sessions.",
	}, func() float64 { return float64(count()) }))
}

// Middleware records request counts and latency labelled by route template.
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			c.InFlightGauge.Inc()
			defer c.InFlightGauge.Dec()
			start := time.Now()

			err := next(ctx)

			status := ctx.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			path := ctx.Path()
			if path == "" {
				path = "unmatched"
			}
			labels := []string{ctx.Request().Method, path, strconv.Itoa(status)}
			c.RequestsTotal.WithLabelValues(labels...).Inc()
			c.RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the registry in the prometheus exposition format.
func (c *Collector) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry}))
}
