// Package monitoring provides Prometheus metrics collection
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	logger *zap.Logger

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Business metrics
	generationsCreatedTotal prometheus.Counter
	imagesGeneratedTotal    prometheus.Counter
	likesToggledTotal       *prometheus.CounterVec
	usersRegisteredTotal    prometheus.Counter
	otpsSentTotal           prometheus.Counter
	aiRequestsTotal         *prometheus.CounterVec
	aiRequestDuration       *prometheus.HistogramVec

	// System metrics
	dbQueryDuration *prometheus.HistogramVec
	cacheOperations *prometheus.CounterVec
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	return &MetricsCollector{
		logger: logger,

		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),

		generationsCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "generations_created_total",
				Help: "Total number of image generations created",
			},
		),
		imagesGeneratedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "images_generated_total",
				Help: "Total number of images generated across all variations",
			},
		),
		likesToggledTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "likes_toggled_total",
				Help: "Total number of like toggles",
			},
			[]string{"action"},
		),
		usersRegisteredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "users_registered_total",
				Help: "Total number of users registered",
			},
		),
		otpsSentTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "otps_sent_total",
				Help: "Total number of verification codes sent",
			},
		),
		aiRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_requests_total",
				Help: "Total number of AI requests",
			},
			[]string{"operation", "model", "status"},
		),
		aiRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ai_request_duration_seconds",
				Help:    "AI request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"operation", "model"},
		),

		dbQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_query_duration_seconds",
				Help:    "Database query duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"operation", "table"},
		),
		cacheOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_operations_total",
				Help: "Total number of cache operations",
			},
			[]string{"operation", "status"},
		),
	}
}

// HTTPMiddleware records request counts and latencies per route
func (m *MetricsCollector) HTTPMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				path = rctx.RoutePattern()
			}
			statusCode := strconv.Itoa(ww.Status())

			m.httpRequestsTotal.WithLabelValues(r.Method, path, statusCode).Inc()
			m.httpRequestDuration.WithLabelValues(r.Method, path, statusCode).
				Observe(time.Since(start).Seconds())
		})
	}
}

// Business metric methods
func (m *MetricsCollector) GenerationCreated(imageCount int) {
	m.generationsCreatedTotal.Inc()
	m.imagesGeneratedTotal.Add(float64(imageCount))
}

func (m *MetricsCollector) LikeToggled(liked bool) {
	action := "unlike"
	if liked {
		action = "like"
	}
	m.likesToggledTotal.WithLabelValues(action).Inc()
}

func (m *MetricsCollector) UserRegistered() {
	m.usersRegisteredTotal.Inc()
}

func (m *MetricsCollector) OTPSent() {
	m.otpsSentTotal.Inc()
}

func (m *MetricsCollector) AIRequest(operation, model, status string, duration time.Duration) {
	m.aiRequestsTotal.WithLabelValues(operation, model, status).Inc()
	m.aiRequestDuration.WithLabelValues(operation, model).Observe(duration.Seconds())
}

// System metric methods
func (m *MetricsCollector) DBQuery(operation, table string, duration time.Duration) {
	m.dbQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func (m *MetricsCollector) CacheOperation(operation, status string) {
	m.cacheOperations.WithLabelValues(operation, status).Inc()
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.Handler()
}
