package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	registry        *prometheus.Registry
	authOps         *prometheus.CounterVec
	menuFetches     *prometheus.CounterVec
	menuItems       prometheus.Gauge
	catalogDuration *prometheus.HistogramVec
}

// NewPrometheus registers the storefront collectors on a fresh registry
// together with the Go runtime and process collectors.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()

	p := &PrometheusRecorder{
		registry: reg,
		authOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_auth_operations_total",
			Help: "Session operations by outcome.",
		}, []string{"op", "status"}),
		menuFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_menu_fetches_total",
			Help: "Menu fetches by source.",
		}, []string{"source"}),
		menuItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_menu_items",
			Help: "Items currently loaded in the menu.",
		}),
		catalogDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_catalog_request_duration_seconds",
			Help:    "Meal catalog request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"category", "status"}),
	}

	reg.MustRegister(
		p.authOps,
		p.menuFetches,
		p.menuItems,
		p.catalogDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// IncAuthOperation counts a session operation outcome.
func (p *PrometheusRecorder) IncAuthOperation(op, status string) {
	p.authOps.WithLabelValues(op, status).Inc()
}

// IncMenuFetch counts a menu fetch by source.
func (p *PrometheusRecorder) IncMenuFetch(source string) {
	p.menuFetches.WithLabelValues(source).Inc()
}

// SetMenuItems records the current menu size.
func (p *PrometheusRecorder) SetMenuItems(n int) {
	p.menuItems.Set(float64(n))
}

// ObserveCatalogRequest records one catalog request.
func (p *PrometheusRecorder) ObserveCatalogRequest(category string, duration time.Duration, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	p.catalogDuration.WithLabelValues(category, status).Observe(duration.Seconds())
}
