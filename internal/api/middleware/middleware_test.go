package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"/upload":                                 "/upload",
		"/media/0123456789abcdef0123456789abcdef": "/media/{id}",
		"/media/whatever":                         "/media/{id}",
		"/health/ready":                           "/health/ready",
		"/api/v1/maintenance/reconcile":           "/api/v1/maintenance/reconcile",
		"/wp-admin.php":                           "other",
	}
	for in, want := range tests {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, ожидалось %q", in, got, want)
		}
	}
}

// TestMetricsMiddleware проверяет учёт запроса с нормализованным путём.
func TestMetricsMiddleware(t *testing.T) {
	handler := MetricsMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPartialContent)
	}))

	counter := httpRequestsTotal.WithLabelValues(http.MethodGet, "/media/{id}", "206")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodGet, "/media/0123456789abcdef0123456789abcdef", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("счётчик запросов: ожидался прирост 1, получено %v", got)
	}
}

// TestRequestLogger проверяет уровень и поля записи лога.
func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("nope"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/media/unknown", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("ошибка разбора записи лога: %v (%q)", err, buf.String())
	}
	if entry["level"] != "WARN" {
		t.Errorf("уровень: ожидался WARN, получен %v", entry["level"])
	}
	if entry["status"] != float64(404) || entry["bytes"] != float64(4) {
		t.Errorf("поля записи: %v", entry)
	}
	if entry["component"] != "http" {
		t.Errorf("component: %v", entry["component"])
	}
}
