package devserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "slicemaster",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slicemaster",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "status"},
	)

	feedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "slicemaster",
		Subsystem: "feed",
		Name:      "clients",
		Help:      "Websocket clients currently connected to the order feed.",
	})

	ordersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "slicemaster",
		Subsystem: "orders",
		Name:      "placed_total",
		Help:      "Orders placed against the mock backend.",
	})

	registry = prometheus.NewRegistry()
)

func init() {
	registry.MustRegister(
		requestDuration,
		requestTotal,
		feedClients,
		ordersPlaced,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func metricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		status := strconv.Itoa(sw.status)
		requestDuration.WithLabelValues(r.Method, status).Observe(time.Since(start).Seconds())
		requestTotal.WithLabelValues(r.Method, status).Inc()
	})
}
