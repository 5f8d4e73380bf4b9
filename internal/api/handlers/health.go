// health.go — обработчики health endpoints для Kubernetes probes.
package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bigkaa/soundboard/media-store/internal/config"
)

const (
	statusOK   = "ok"
	statusFail = "fail"
)

// IndexReadinessChecker — интерфейс для проверки готовности индекса.
type IndexReadinessChecker interface {
	IsReady() bool
}

// healthCheck — результат одной проверки (схема HealthStatus.checks).
type healthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func failed(message string) healthCheck {
	return healthCheck{Status: statusFail, Message: message}
}

// healthStatus — тело ответа health endpoints.
type healthStatus struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version"`
	Service   string                 `json:"service"`
	Checks    map[string]healthCheck `json:"checks,omitempty"`
}

// HealthHandler реализует /health/live и /health/ready.
type HealthHandler struct {
	service string
	// dataDir — корень хранилища (пусто — не настроен)
	dataDir string
	idx     IndexReadinessChecker
}

// NewHealthHandler создаёт обработчик health endpoints.
// dataDir пуст и idx равен nil, если хранилище не настроено.
func NewHealthHandler(serviceName, dataDir string, idx IndexReadinessChecker) *HealthHandler {
	return &HealthHandler{
		service: serviceName,
		dataDir: dataDir,
		idx:     idx,
	}
}

func (h *HealthHandler) status(overall string) healthStatus {
	return healthStatus{
		Status:    overall,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   h.service,
	}
}

// HealthLive обрабатывает GET /health/live: процесс жив, зависимости
// не проверяются.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeHealth(w, http.StatusOK, h.status(statusOK))
}

// HealthReady обрабатывает GET /health/ready.
// Готовность: корень настроен и доступен на запись, индекс читается.
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	checks := map[string]healthCheck{
		"filesystem": h.checkFilesystem(),
		"index":      h.checkIndex(),
	}

	overall, httpStatus := statusOK, http.StatusOK
	for _, c := range checks {
		if c.Status != statusOK {
			overall, httpStatus = statusFail, http.StatusServiceUnavailable
		}
	}

	resp := h.status(overall)
	resp.Checks = checks
	writeHealth(w, httpStatus, resp)
}

// checkFilesystem пишет и удаляет пробный файл в корне.
func (h *HealthHandler) checkFilesystem() healthCheck {
	if h.dataDir == "" {
		return failed("Хранилище не настроено (SB_MEDIA_ROOT)")
	}

	probe := filepath.Join(h.dataDir, ".health_check")
	if err := os.WriteFile(probe, []byte(statusOK), 0o600); err != nil {
		return failed("Корень хранилища недоступен для записи")
	}
	_ = os.Remove(probe)

	return healthCheck{Status: statusOK}
}

func (h *HealthHandler) checkIndex() healthCheck {
	if h.idx == nil || !h.idx.IsReady() {
		return failed("Индекс недоступен")
	}
	return healthCheck{Status: statusOK}
}

func writeHealth(w http.ResponseWriter, status int, body healthStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
