// system.go — обработчик GET /api/v1/info (информация о хранилище).
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bigkaa/soundboard/media-store/internal/api/generated"
	"github.com/bigkaa/soundboard/media-store/internal/config"
	"github.com/bigkaa/soundboard/media-store/internal/domain/mode"
	"github.com/bigkaa/soundboard/media-store/internal/domain/model"
)

// MediaCounter — источник количества записей индекса.
type MediaCounter interface {
	Count() int
}

// DiskUsageFunc возвращает ёмкость файловой системы корня в байтах.
type DiskUsageFunc func() (total, used, available int64, err error)

// SystemHandler — обработчик системных endpoints.
type SystemHandler struct {
	cfg       *config.Config
	sm        *mode.StateMachine
	counter   MediaCounter
	diskUsage DiskUsageFunc
	logger    *slog.Logger
}

// NewSystemHandler создаёт обработчик системных endpoints.
// counter и diskUsage равны nil, если хранилище не настроено.
func NewSystemHandler(
	cfg *config.Config,
	sm *mode.StateMachine,
	counter MediaCounter,
	diskUsage DiskUsageFunc,
	logger *slog.Logger,
) *SystemHandler {
	return &SystemHandler{
		cfg:       cfg,
		sm:        sm,
		counter:   counter,
		diskUsage: diskUsage,
		logger:    logger.With(slog.String("component", "system_handler")),
	}
}

// GetStorageInfo обрабатывает GET /api/v1/info.
func (h *SystemHandler) GetStorageInfo(w http.ResponseWriter, _ *http.Request) {
	ops := h.sm.AllowedOperations()
	apiOps := make([]string, 0, len(ops))
	for _, op := range ops {
		apiOps = append(apiOps, string(op))
	}

	resp := generated.StorageInfo{
		ServiceName:       h.cfg.ServiceName,
		Version:           config.Version,
		StorageConfigured: h.cfg.StorageConfigured(),
		Mode:              generated.StorageInfoMode(h.sm.CurrentMode()),
		AllowedOperations: apiOps,
		AllowedFormats:    model.AllowedFormats(),
		MaxFileSize:       h.cfg.MaxFileSize,
	}

	if h.counter != nil {
		resp.MediaCount = h.counter.Count()
	}

	if h.diskUsage != nil {
		total, used, available, err := h.diskUsage()
		if err != nil {
			h.logger.Warn("Не удалось получить ёмкость диска",
				slog.String("error", err.Error()),
			)
		} else {
			resp.Capacity = &generated.CapacityInfo{
				TotalBytes:     total,
				UsedBytes:      used,
				AvailableBytes: available,
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
