// Package server Prometheus 指标导出
package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics API Server 指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// WebSocket 指标
	WSConnectionsActive prometheus.Gauge
	WSConnectionsTotal  prometheus.Counter
}

// NewMetrics 创建指标实例
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		WSConnectionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "chat_connections_active",
				Help:      "Active chat WebSocket connections",
			},
		),
		WSConnectionsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_connections_total",
				Help:      "Total accepted chat WebSocket connections",
			},
		),
	}
}

// MetricsMiddleware 创建 HTTP 指标中间件
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		// 包装 ResponseWriter 以捕获状态码
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)
		status := strconv.Itoa(wrapped.statusCode)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// WSMiddleware 统计 WebSocket 连接（连接存活期即 handler 执行期）
//
// WebSocket 升级需要 http.Hijacker，不能套 MetricsMiddleware 的包装 writer。
func (m *Metrics) WSMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.WSConnectionsTotal.Inc()
		m.WSConnectionsActive.Inc()
		defer m.WSConnectionsActive.Dec()
		next(w, r)
	}
}

// responseWriter 包装 http.ResponseWriter 以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// normalizePath 规范化路径，将 ID 替换为占位符，避免高基数标签
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/projectApi/project/") && len(path) > len("/projectApi/project/"):
		rest := path[len("/projectApi/project/"):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return "/projectApi/project/{id}" + rest[i:]
		}
		return "/projectApi/project/{id}"
	case strings.HasPrefix(path, "/projectApi/access-requests/"):
		rest := path[len("/projectApi/access-requests/"):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return "/projectApi/access-requests/{id}" + rest[i:]
		}
		return "/projectApi/access-requests/{id}"
	case strings.HasPrefix(path, "/projectApi/add-video-response/"):
		return "/projectApi/add-video-response/{id}"
	case strings.HasPrefix(path, "/projectApi/project-responses/"):
		return "/projectApi/project-responses/{id}"
	case strings.HasPrefix(path, "/projectApi/youtube/upload/"):
		return "/projectApi/youtube/upload/{id}"
	case strings.HasPrefix(path, "/notificationApi/notifications/"):
		return "/notificationApi/notifications/{id}/read"
	default:
		return path
	}
}

// MetricsHandler 返回 Prometheus HTTP Handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
