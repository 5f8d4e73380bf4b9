// Пакет service — бизнес-логика медиа-хранилища.
// upload.go — сервис загрузки аудиофайлов.
package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apierrors "github.com/bigkaa/soundboard/media-store/internal/api/errors"
	"github.com/bigkaa/soundboard/media-store/internal/api/middleware"
	"github.com/bigkaa/soundboard/media-store/internal/domain/mode"
	"github.com/bigkaa/soundboard/media-store/internal/domain/model"
	"github.com/bigkaa/soundboard/media-store/internal/mediaurl"
	"github.com/bigkaa/soundboard/media-store/internal/storage/filestore"
	"github.com/bigkaa/soundboard/media-store/internal/storage/index"
	"github.com/bigkaa/soundboard/media-store/internal/storage/sanitize"
)

// UploadParams — параметры загрузки файла.
type UploadParams struct {
	// Reader — поток данных файла
	Reader io.Reader
	// OriginalFilename — имя файла из multipart part
	OriginalFilename string
	// CategoryID — категория (опционально, пусто → uncategorized)
	CategoryID string
	// Description — описание звука (опционально)
	Description string
}

// UploadError — ошибка загрузки с HTTP-кодом.
type UploadError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// StagedUpload — байты файла уже во временном файле, запись в индекс
// ещё не выполнена.
type StagedUpload struct {
	ID               string
	OriginalFilename string
	Format           string
	Size             int64

	temp *filestore.StagedFile
}

// UploadService — сервис загрузки аудиофайлов.
type UploadService struct {
	store  *filestore.FileStore
	idx    *index.Index
	sm     *mode.StateMachine
	logger *slog.Logger
}

// NewUploadService создаёт сервис загрузки.
func NewUploadService(
	store *filestore.FileStore,
	idx *index.Index,
	sm *mode.StateMachine,
	logger *slog.Logger,
) *UploadService {
	return &UploadService{
		store:  store,
		idx:    idx,
		sm:     sm,
		logger: logger.With(slog.String("component", "upload_service")),
	}
}

// CheckAllowed проверяет, допустима ли загрузка в текущем режиме.
func (s *UploadService) CheckAllowed() *UploadError {
	if !s.sm.CanPerform(mode.OpUpload) {
		return &UploadError{
			StatusCode: http.StatusConflict,
			Code:       apierrors.CodeModeNotAllowed,
			Message:    fmt.Sprintf("Загрузка недоступна в режиме %s", s.sm.CurrentMode()),
		}
	}
	return nil
}

// ValidateFilename проверяет расширение файла по списку допустимых
// форматов и возвращает формат (расширение в нижнем регистре).
// Вызывается до любой записи на диск.
func ValidateFilename(filename string) (string, *UploadError) {
	if strings.TrimSpace(filename) == "" {
		return "", &UploadError{
			StatusCode: http.StatusBadRequest,
			Code:       apierrors.CodeValidationError,
			Message:    "Поле 'file' обязательно",
		}
	}

	format := model.FormatOf(filename)
	if !model.IsAllowedFormat(format) {
		return "", &UploadError{
			StatusCode: http.StatusBadRequest,
			Code:       apierrors.CodeValidationError,
			Message: fmt.Sprintf("Недопустимый формат файла %q, допустимые: %s",
				format, strings.Join(model.AllowedFormats(), ", ")),
		}
	}
	return format, nil
}

// Stage проверяет режим и формат, генерирует id и потоково пишет байты
// во временный файл .uploads/{id}.part.
// Пустой файл отклоняется (400), превышение лимита тела — 413.
func (s *UploadService) Stage(reader io.Reader, originalFilename string) (*StagedUpload, *UploadError) {
	if uploadErr := s.CheckAllowed(); uploadErr != nil {
		return nil, uploadErr
	}

	format, uploadErr := ValidateFilename(originalFilename)
	if uploadErr != nil {
		return nil, uploadErr
	}

	id := mediaurl.NewID()

	temp, err := s.store.SaveTemp(reader, id)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			middleware.OperationsTotal.WithLabelValues("upload", "too_large").Inc()
			return nil, &UploadError{
				StatusCode: http.StatusRequestEntityTooLarge,
				Code:       apierrors.CodeFileTooLarge,
				Message:    fmt.Sprintf("Размер загрузки превышает максимум %d байт", maxBytesErr.Limit),
			}
		}

		middleware.OperationsTotal.WithLabelValues("upload", "error").Inc()
		s.logger.Error("Ошибка записи загружаемого файла",
			slog.String("media_id", id),
			slog.String("error", err.Error()),
		)
		return nil, &UploadError{
			StatusCode: http.StatusInternalServerError,
			Code:       apierrors.CodeInternalError,
			Message:    "Ошибка сохранения файла",
		}
	}

	if temp.Size == 0 {
		_ = s.store.Discard(temp)
		return nil, &UploadError{
			StatusCode: http.StatusBadRequest,
			Code:       apierrors.CodeValidationError,
			Message:    "Файл пуст",
		}
	}

	return &StagedUpload{
		ID:               id,
		OriginalFilename: originalFilename,
		Format:           format,
		Size:             temp.Size,
		temp:             temp,
	}, nil
}

// Discard удаляет временный файл незавершённой загрузки.
func (s *UploadService) Discard(staged *StagedUpload) {
	if staged == nil {
		return
	}
	if err := s.store.Discard(staged.temp); err != nil {
		s.logger.Warn("Не удалось удалить временный файл",
			slog.String("media_id", staged.ID),
			slog.String("error", err.Error()),
		)
	}
}

// Complete переносит временный файл в каталог категории и регистрирует
// id в индексе.
//
// Поток:
//  1. safeCategory / {safeName}-{id}.{ext}
//  2. Commit (mkdir -p + atomic rename), размер — по stat
//  3. Чтение встроенных тегов (best effort)
//  4. index.Insert — точка фиксации
//
// Ошибка Insert оставляет файл на диске без записи в индексе:
// такой файл безвреден, reconcile зарегистрирует его по id в имени.
func (s *UploadService) Complete(staged *StagedUpload, categoryID, description string) (*model.SoundMetadata, *UploadError) {
	category := strings.TrimSpace(categoryID)
	if category == "" {
		category = model.DefaultCategory
	}

	safeName := sanitize.Stem(staged.OriginalFilename)
	safeCategory := sanitize.Segment(category)
	fileName := fmt.Sprintf("%s-%s.%s", safeName, staged.ID, staged.Format)
	relativePath := safeCategory + "/" + fileName

	size, err := s.store.Commit(staged.temp, relativePath)
	if err != nil {
		middleware.OperationsTotal.WithLabelValues("upload", "error").Inc()
		s.logger.Error("Ошибка переноса файла в каталог категории",
			slog.String("media_id", staged.ID),
			slog.String("relative_path", relativePath),
			slog.String("error", err.Error()),
		)
		return nil, &UploadError{
			StatusCode: http.StatusInternalServerError,
			Code:       apierrors.CodeInternalError,
			Message:    "Ошибка сохранения файла",
		}
	}

	tags := readTags(s.store, relativePath)

	if err := s.idx.Insert(staged.ID, relativePath); err != nil {
		middleware.OperationsTotal.WithLabelValues("upload", "error").Inc()
		s.logger.Error("Ошибка записи в индекс, файл остаётся без регистрации",
			slog.String("media_id", staged.ID),
			slog.String("relative_path", relativePath),
			slog.String("error", err.Error()),
		)
		return nil, &UploadError{
			StatusCode: http.StatusInternalServerError,
			Code:       apierrors.CodeInternalError,
			Message:    "Ошибка регистрации файла",
		}
	}

	middleware.OperationsTotal.WithLabelValues("upload", "success").Inc()
	middleware.UploadedBytesTotal.Add(float64(size))
	middleware.MediaTotal.Inc()

	s.logger.Info("Файл загружен",
		slog.String("media_id", staged.ID),
		slog.String("relative_path", relativePath),
		slog.String("category", category),
		slog.Int64("size", size),
		slog.Bool("tags", tags != nil),
	)

	return &model.SoundMetadata{
		ID:          staged.ID,
		Name:        safeName,
		Description: description,
		CategoryID:  category,
		FileName:    fileName,
		FilePath:    mediaurl.Path(staged.ID),
		FileSize:    size,
		Duration:    0,
		Format:      staged.Format,
		CreatedAt:   time.Now().UTC(),
		Tags:        tags,
	}, nil
}

// Upload выполняет загрузку целиком: Stage + Complete.
// Используется, когда категория известна до чтения байтов.
func (s *UploadService) Upload(params UploadParams) (*model.SoundMetadata, *UploadError) {
	staged, uploadErr := s.Stage(params.Reader, params.OriginalFilename)
	if uploadErr != nil {
		return nil, uploadErr
	}
	return s.Complete(staged, params.CategoryID, params.Description)
}
