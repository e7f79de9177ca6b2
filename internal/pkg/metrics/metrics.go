package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/samirrijal/geogrid/internal/core/domain"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geogrid",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geogrid",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geogrid",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Grid metrics
	ReconcileCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geogrid",
		Subsystem: "grid",
		Name:      "reconcile_cycles_total",
		Help:      "Total grid reconcile cycles",
	}, []string{"projection"})

	ReconcileDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geogrid",
		Subsystem: "grid",
		Name:      "reconcile_duration_seconds",
		Help:      "Duration of one grid reconcile cycle",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
	}, []string{"projection"})

	GeometryRegenerations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geogrid",
		Subsystem: "grid",
		Name:      "geometry_regenerations_total",
		Help:      "Total times grid line sources were replaced",
	})

	LabelsPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geogrid",
		Subsystem: "grid",
		Name:      "labels_placed_total",
		Help:      "Total coordinate labels rendered",
	}, []string{"anchor"})

	LabelsSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geogrid",
		Subsystem: "grid",
		Name:      "labels_suppressed_total",
		Help:      "Total coordinate labels dropped by occlusion checks",
	}, []string{"anchor"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geogrid",
		Subsystem: "session",
		Name:      "active",
		Help:      "Current number of live map sessions",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geogrid",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geogrid",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geogrid",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	MessagesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geogrid",
		Subsystem: "nats",
		Name:      "messages_published_total",
		Help:      "Total messages published to NATS",
	}, []string{"kind"})

	CommandsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geogrid",
		Subsystem: "nats",
		Name:      "commands_received_total",
		Help:      "Total session commands received from NATS",
	}, []string{"kind", "result"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		// fiber resolves the route pattern, so session ids do not blow up cardinality
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// GridObserver records every reconcile cycle. It implements ports.GridObserver.
type GridObserver struct{}

func (GridObserver) GridReconciled(s domain.GridSnapshot) {
	projection := string(s.Projection)
	ReconcileCycles.WithLabelValues(projection).Inc()
	ReconcileDuration.WithLabelValues(projection).Observe(s.Duration.Seconds())
	if s.Regenerated {
		GeometryRegenerations.Inc()
	}
	for _, l := range s.Labels {
		LabelsPlaced.WithLabelValues(string(l.Anchor)).Inc()
	}
	for anchor, n := range s.Suppressed {
		LabelsSuppressed.WithLabelValues(string(anchor)).Add(float64(n))
	}
}

// UpdateSessionMetrics sets the live session gauge.
func UpdateSessionMetrics(active int) {
	ActiveSessions.Set(float64(active))
}
