package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build many routers.
type Metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.SummaryVec
	stationsAdded *prometheus.CounterVec
	searches      *prometheus.CounterVec
	resets        prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       "fareroute_http_request_duration_seconds",
			Help:       "Summary for serving HTTP requests",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"method", "route", "status"}),
		stationsAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fareroute_station_adds_total",
			Help: "Station add requests by outcome",
		}, []string{"outcome"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fareroute_searches_total",
			Help: "Route searches by outcome",
		}, []string{"outcome"}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fareroute_resets_total",
			Help: "Station data resets",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.stationsAdded,
		m.searches,
		m.resets,
	)
	return m
}

// Register adds extra collectors, such as the store cache gauges.
func (m *Metrics) Register(cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := m.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument observes request latency per matched route.
func (m *Metrics) Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) stationAdd(outcome string) {
	m.stationsAdded.WithLabelValues(outcome).Inc()
}

func (m *Metrics) search(outcome string) {
	m.searches.WithLabelValues(outcome).Inc()
}
