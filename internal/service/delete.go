package service

import (
	"fmt"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/soundboard/media-store/internal/api/errors"
	"github.com/bigkaa/soundboard/media-store/internal/api/middleware"
	"github.com/bigkaa/soundboard/media-store/internal/domain/mode"
	"github.com/bigkaa/soundboard/media-store/internal/storage/filestore"
	"github.com/bigkaa/soundboard/media-store/internal/storage/index"
)

// DeleteError — ошибка удаления с HTTP-кодом.
type DeleteError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// DeleteService — сервис удаления медиафайлов.
type DeleteService struct {
	store  *filestore.FileStore
	idx    *index.Index
	sm     *mode.StateMachine
	logger *slog.Logger
}

// NewDeleteService создаёт сервис удаления.
func NewDeleteService(
	store *filestore.FileStore,
	idx *index.Index,
	sm *mode.StateMachine,
	logger *slog.Logger,
) *DeleteService {
	return &DeleteService{
		store:  store,
		idx:    idx,
		sm:     sm,
		logger: logger.With(slog.String("component", "delete_service")),
	}
}

// Delete удаляет файл с диска, затем запись из индекса.
// Отсутствующий файл не ошибка: запись индекса всё равно удаляется.
func (s *DeleteService) Delete(id string) *DeleteError {
	if !s.sm.CanPerform(mode.OpDelete) {
		return &DeleteError{
			StatusCode: http.StatusConflict,
			Code:       apierrors.CodeModeNotAllowed,
			Message:    fmt.Sprintf("Удаление недоступно в режиме %s", s.sm.CurrentMode()),
		}
	}

	relativePath, ok := s.idx.Resolve(id)
	if !ok {
		return &DeleteError{
			StatusCode: http.StatusNotFound,
			Code:       apierrors.CodeNotFound,
			Message:    fmt.Sprintf("Медиафайл %s не найден", id),
		}
	}

	if err := s.store.DeleteFile(relativePath); err != nil {
		middleware.OperationsTotal.WithLabelValues("delete", "error").Inc()
		s.logger.Error("Ошибка удаления файла",
			slog.String("media_id", id),
			slog.String("relative_path", relativePath),
			slog.String("error", err.Error()),
		)
		return &DeleteError{
			StatusCode: http.StatusInternalServerError,
			Code:       apierrors.CodeInternalError,
			Message:    "Ошибка удаления файла",
		}
	}

	removed, err := s.idx.Remove(id)
	if err != nil {
		middleware.OperationsTotal.WithLabelValues("delete", "error").Inc()
		s.logger.Error("Ошибка удаления записи из индекса",
			slog.String("media_id", id),
			slog.String("error", err.Error()),
		)
		return &DeleteError{
			StatusCode: http.StatusInternalServerError,
			Code:       apierrors.CodeInternalError,
			Message:    "Ошибка обновления индекса",
		}
	}
	if removed {
		middleware.MediaTotal.Dec()
	}

	middleware.OperationsTotal.WithLabelValues("delete", "success").Inc()
	s.logger.Info("Файл удалён",
		slog.String("media_id", id),
		slog.String("relative_path", relativePath),
	)
	return nil
}
