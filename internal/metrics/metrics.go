// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records HTTP traffic and template engine outcomes. It satisfies
// mealplans.Recorder.
type Collector struct {
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	templatesSaved   prometheus.Counter
	templatesApplied prometheus.Counter
	templateFailures *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mealhub_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mealhub_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		templatesSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mealhub_templates_saved_total",
			Help: "Meal plans saved as templates.",
		}),
		templatesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mealhub_templates_applied_total",
			Help: "Templates applied to a new start date.",
		}),
		templateFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mealhub_template_failures_total",
			Help: "Failed template operations by operation and error code.",
		}, []string{"operation", "code"}),
	}

	reg.MustRegister(
		c.requests,
		c.requestDuration,
		c.templatesSaved,
		c.templatesApplied,
		c.templateFailures,
	)
	return c
}

// RecordRequest records one served HTTP request. route is the mux pattern,
// never the raw path.
func (c *Collector) RecordRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) RecordTemplateSaved() {
	c.templatesSaved.Inc()
}

func (c *Collector) RecordTemplateApplied() {
	c.templatesApplied.Inc()
}

func (c *Collector) RecordTemplateFailure(operation, code string) {
	c.templateFailures.WithLabelValues(operation, code).Inc()
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
