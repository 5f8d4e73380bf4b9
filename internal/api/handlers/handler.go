// Пакет handlers — HTTP-обработчики медиа-хранилища.
// handler.go — APIHandler реализует generated.ServerInterface,
// делегируя вызовы в отдельные handler'ы по доменам.
package handlers

import (
	"net/http"

	"github.com/bigkaa/soundboard/media-store/internal/api/generated"
	"github.com/bigkaa/soundboard/media-store/internal/api/openapi"
	"github.com/bigkaa/soundboard/media-store/internal/server"
)

// APIHandler — единая реализация ServerInterface, собирающая
// все доменные handlers в один объект.
type APIHandler struct {
	media       *MediaHandler
	system      *SystemHandler
	modeHandler *ModeHandler
	maintenance *MaintenanceHandler
	health      *HealthHandler
	metrics     *server.MetricsHandler
	contract    *openapi.Handler
}

// NewAPIHandler создаёт единый handler для всех endpoints.
func NewAPIHandler(
	media *MediaHandler,
	system *SystemHandler,
	modeHandler *ModeHandler,
	maintenance *MaintenanceHandler,
	health *HealthHandler,
	metrics *server.MetricsHandler,
	contract *openapi.Handler,
) *APIHandler {
	return &APIHandler{
		media:       media,
		system:      system,
		modeHandler: modeHandler,
		maintenance: maintenance,
		health:      health,
		metrics:     metrics,
		contract:    contract,
	}
}

// --- Media ---

func (h *APIHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	h.media.UploadMedia(w, r)
}

func (h *APIHandler) GetMedia(w http.ResponseWriter, r *http.Request, id generated.MediaId) {
	h.media.GetMedia(w, r, id)
}

func (h *APIHandler) HeadMedia(w http.ResponseWriter, r *http.Request, id generated.MediaId) {
	h.media.HeadMedia(w, r, id)
}

func (h *APIHandler) DeleteMedia(w http.ResponseWriter, r *http.Request, id generated.MediaId) {
	h.media.DeleteMedia(w, r, id)
}

// --- System ---

func (h *APIHandler) GetStorageInfo(w http.ResponseWriter, r *http.Request) {
	h.system.GetStorageInfo(w, r)
}

func (h *APIHandler) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	h.contract.GetOpenAPI(w, r)
}

// --- Mode ---

func (h *APIHandler) TransitionMode(w http.ResponseWriter, r *http.Request) {
	h.modeHandler.TransitionMode(w, r)
}

// --- Maintenance ---

func (h *APIHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	h.maintenance.Reconcile(w, r)
}

// --- Health ---

func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// --- Metrics ---

func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.GetMetrics(w, r)
}

// Проверка соответствия интерфейсу на этапе компиляции.
var _ generated.ServerInterface = (*APIHandler)(nil)
