// metrics.go — Prometheus HTTP метрики медиа-хранилища.
// Регистрирует метрики: sb_http_requests_total, sb_http_request_duration_seconds.
// Бизнес-метрики (sb_media_total, sb_operations_total) экспортируются
// и обновляются из сервисного слоя.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sb_http_requests_total",
			Help: "Общее количество HTTP-запросов к медиа-хранилищу",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sb_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к медиа-хранилищу в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Бизнес-метрики (экспортируются для обновления из сервисного слоя)
var (
	// MediaTotal — текущее количество записей в индексе (gauge).
	MediaTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sb_media_total",
			Help: "Текущее количество медиафайлов в индексе",
		},
	)

	// UploadedBytesTotal — суммарный объём загруженных байт.
	UploadedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sb_uploaded_bytes_total",
			Help: "Суммарный объём загруженных медиафайлов в байтах",
		},
	)

	// OperationsTotal — общее количество операций над медиа.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sb_operations_total",
			Help: "Общее количество операций над медиафайлами",
		},
		[]string{"operation", "result"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Нормализуем путь для лейблов метрик
			// (заменяем id на {id} для предотвращения кардинальности)
			normalizedPath := NormalizePath(r.URL.Path)

			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// knownPaths — статические маршруты API.
var knownPaths = map[string]bool{
	"/upload":                       true,
	"/health/live":                  true,
	"/health/ready":                 true,
	"/metrics":                      true,
	"/openapi.json":                 true,
	"/api/v1/info":                  true,
	"/api/v1/mode/transition":       true,
	"/api/v1/maintenance/reconcile": true,
}

// NormalizePath приводит путь к шаблону маршрута.
// /media/0123…cdef → /media/{id}; неизвестные пути → "other".
func NormalizePath(path string) string {
	if knownPaths[path] {
		return path
	}
	if strings.HasPrefix(path, "/media/") {
		return "/media/{id}"
	}
	return "other"
}
