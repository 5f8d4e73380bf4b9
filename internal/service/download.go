// download.go — сервис отдачи медиафайлов.
package service

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	apierrors "github.com/bigkaa/soundboard/media-store/internal/api/errors"
	"github.com/bigkaa/soundboard/media-store/internal/api/middleware"
	"github.com/bigkaa/soundboard/media-store/internal/domain/mode"
	"github.com/bigkaa/soundboard/media-store/internal/domain/model"
	"github.com/bigkaa/soundboard/media-store/internal/storage/filestore"
	"github.com/bigkaa/soundboard/media-store/internal/storage/index"
)

// CacheControl — файлы адресуются по неизменяемому id, поэтому
// клиенты и прокси могут кэшировать их на год.
const CacheControl = "public, max-age=31536000, immutable"

// DownloadService — сервис отдачи медиафайлов.
type DownloadService struct {
	store  *filestore.FileStore
	idx    *index.Index
	sm     *mode.StateMachine
	logger *slog.Logger
}

// NewDownloadService создаёт сервис отдачи медиафайлов.
func NewDownloadService(
	store *filestore.FileStore,
	idx *index.Index,
	sm *mode.StateMachine,
	logger *slog.Logger,
) *DownloadService {
	return &DownloadService{
		store:  store,
		idx:    idx,
		sm:     sm,
		logger: logger.With(slog.String("component", "download_service")),
	}
}

// DownloadError — ошибка отдачи с HTTP-кодом.
type DownloadError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// notFound — единый ответ для неизвестного id и записи без файла.
func notFound(id string) *DownloadError {
	return &DownloadError{
		StatusCode: http.StatusNotFound,
		Code:       apierrors.CodeNotFound,
		Message:    fmt.Sprintf("Медиафайл %s не найден", id),
	}
}

// Serve отдаёт файл клиенту через http.ServeContent (GET и HEAD).
//
// Поток:
//  1. Проверка режима
//  2. Resolve id → относительный путь (неизвестный id → 404)
//  3. Stat через os.Root (нет файла или каталог → 404)
//  4. Заголовки ETag, Last-Modified, Cache-Control, Content-Type
//  5. If-None-Match → 304 без открытия файла
//  6. Нормализация Range: диапазон вне файла → 416 в формате ошибок API
//  7. http.ServeContent (200/206)
func (s *DownloadService) Serve(w http.ResponseWriter, r *http.Request, id string) *DownloadError {
	if !s.sm.CanPerform(mode.OpDownload) {
		return &DownloadError{
			StatusCode: http.StatusConflict,
			Code:       apierrors.CodeModeNotAllowed,
			Message:    fmt.Sprintf("Отдача файлов недоступна в режиме %s", s.sm.CurrentMode()),
		}
	}

	relativePath, ok := s.idx.Resolve(id)
	if !ok {
		middleware.OperationsTotal.WithLabelValues("download", "not_found").Inc()
		return notFound(id)
	}

	info, err := s.store.Stat(relativePath)
	if err != nil || info.IsDir() {
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			// Запись индекса без файла: удалён вручную или не пережил сбой.
			s.logger.Warn("Файл из индекса отсутствует на диске",
				slog.String("media_id", id),
				slog.String("relative_path", relativePath),
			)
			middleware.OperationsTotal.WithLabelValues("download", "not_found").Inc()
			return notFound(id)
		}
		s.logger.Error("Ошибка stat файла",
			slog.String("media_id", id),
			slog.String("relative_path", relativePath),
			slog.String("error", err.Error()),
		)
		middleware.OperationsTotal.WithLabelValues("download", "error").Inc()
		return &DownloadError{
			StatusCode: http.StatusInternalServerError,
			Code:       apierrors.CodeInternalError,
			Message:    "Ошибка чтения файла",
		}
	}

	etag := ETag(info.Size(), info.ModTime().UnixNano())

	h := w.Header()
	h.Set("ETag", etag)
	h.Set("Accept-Ranges", "bytes")
	h.Set("Last-Modified", info.ModTime().UTC().Format(http.TimeFormat))
	h.Set("Cache-Control", CacheControl)
	h.Set("Content-Type", model.ContentTypeFor(relativePath))

	if MatchETag(r.Header.Get("If-None-Match"), etag) {
		middleware.OperationsTotal.WithLabelValues("download", "not_modified").Inc()
		w.WriteHeader(http.StatusNotModified)
		return nil
	}

	if !normalizeRange(r, info.Size()) {
		middleware.OperationsTotal.WithLabelValues("download", "range_not_satisfiable").Inc()
		h.Set("Content-Range", fmt.Sprintf("bytes */%d", info.Size()))
		return &DownloadError{
			StatusCode: http.StatusRequestedRangeNotSatisfiable,
			Code:       apierrors.CodeRangeNotSatisfiable,
			Message:    "Запрошенный диапазон вне файла",
		}
	}

	file, err := s.store.Open(relativePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			middleware.OperationsTotal.WithLabelValues("download", "not_found").Inc()
			return notFound(id)
		}
		s.logger.Error("Ошибка открытия файла",
			slog.String("media_id", id),
			slog.String("relative_path", relativePath),
			slog.String("error", err.Error()),
		)
		middleware.OperationsTotal.WithLabelValues("download", "error").Inc()
		return &DownloadError{
			StatusCode: http.StatusInternalServerError,
			Code:       apierrors.CodeInternalError,
			Message:    "Ошибка чтения файла",
		}
	}
	defer file.Close()

	// ServeContent обрабатывает Range (206), HEAD и Content-Length.
	http.ServeContent(w, r, relativePath, info.ModTime(), file)

	middleware.OperationsTotal.WithLabelValues("download", "success").Inc()

	s.logger.Debug("Файл отдан",
		slog.String("media_id", id),
		slog.String("method", r.Method),
		slog.String("range", r.Header.Get("Range")),
		slog.Int64("size", info.Size()),
	)

	return nil
}

// ETag формирует сильный ETag из размера и времени изменения файла
// (hex), без чтения содержимого.
func ETag(size, modTimeNano int64) string {
	return fmt.Sprintf("\"%x-%x\"", size, modTimeNano)
}

// MatchETag проверяет заголовок If-None-Match: "*", список через
// запятую, слабый префикс W/ допускается.
func MatchETag(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == etag {
			return true
		}
	}
	return false
}

// normalizeRange приводит заголовок Range к виду, который отдаёт
// ровно один фрагмент:
//   - не "bytes=", синтаксическая ошибка или start > end → заголовок
//     удаляется (200, весь файл)
//   - несколько диапазонов → остаётся только первый
//
// Возвращает false, если корректный диапазон не пересекается с файлом.
func normalizeRange(r *http.Request, size int64) bool {
	header := r.Header.Get("Range")
	if header == "" {
		return true
	}

	spec, ok := strings.CutPrefix(strings.TrimSpace(header), "bytes=")
	if !ok {
		r.Header.Del("Range")
		return true
	}

	first, _, _ := strings.Cut(spec, ",")
	first = strings.TrimSpace(first)
	start, end, ok := parseRangeSpec(first)
	if !ok {
		r.Header.Del("Range")
		return true
	}

	// "-N" — последние N байт; N = 0 не выбирает ничего
	if start < 0 {
		if end == 0 {
			return false
		}
	} else if start >= size {
		return false
	}

	r.Header.Set("Range", "bytes="+first)
	return true
}

// parseRangeSpec разбирает один диапазон: "start-end", "start-" или
// "-suffix". Отсутствующая граница возвращается как -1.
func parseRangeSpec(spec string) (start, end int64, ok bool) {
	rawStart, rawEnd, found := strings.Cut(spec, "-")
	if !found {
		return 0, 0, false
	}
	rawStart = strings.TrimSpace(rawStart)
	rawEnd = strings.TrimSpace(rawEnd)
	if rawStart == "" && rawEnd == "" {
		return 0, 0, false
	}

	start, end = -1, -1
	var err error
	if rawStart != "" {
		if !isDigits(rawStart) {
			return 0, 0, false
		}
		if start, err = strconv.ParseInt(rawStart, 10, 64); err != nil {
			return 0, 0, false
		}
	}
	if rawEnd != "" {
		if !isDigits(rawEnd) {
			return 0, 0, false
		}
		if end, err = strconv.ParseInt(rawEnd, 10, 64); err != nil {
			return 0, 0, false
		}
	}
	if start >= 0 && end >= 0 && start > end {
		return 0, 0, false
	}
	return start, end, true
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
