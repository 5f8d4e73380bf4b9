// media.go — обработчики загрузки, отдачи и удаления медиафайлов.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/soundboard/media-store/internal/api/errors"
	"github.com/bigkaa/soundboard/media-store/internal/api/generated"
	"github.com/bigkaa/soundboard/media-store/internal/mediaurl"
	"github.com/bigkaa/soundboard/media-store/internal/service"
)

// maxFieldSize — лимит текстовых полей multipart (categoryId, description).
const maxFieldSize = 4096

// MediaHandler — обработчик операций с медиафайлами.
// Сервисы равны nil, если корень хранилища не настроен: тогда любая
// операция отвечает 503 без обращения к диску.
type MediaHandler struct {
	upload      *service.UploadService
	download    *service.DownloadService
	deleter     *service.DeleteService
	maxFileSize int64
	logger      *slog.Logger
}

// NewMediaHandler создаёт обработчик медиафайлов.
func NewMediaHandler(
	upload *service.UploadService,
	download *service.DownloadService,
	deleter *service.DeleteService,
	maxFileSize int64,
	logger *slog.Logger,
) *MediaHandler {
	return &MediaHandler{
		upload:      upload,
		download:    download,
		deleter:     deleter,
		maxFileSize: maxFileSize,
		logger:      logger.With(slog.String("component", "media_handler")),
	}
}

// UploadMedia обрабатывает POST /upload (multipart/form-data).
//
// Тело читается потоком через multipart.Reader: файл сразу пишется во
// временный файл, части могут идти в любом порядке, поэтому категория
// применяется после чтения всего тела.
func (h *MediaHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if h.upload == nil {
		apierrors.StorageNotConfigured(w)
		return
	}
	if uploadErr := h.upload.CheckAllowed(); uploadErr != nil {
		writeUploadError(w, uploadErr)
		return
	}

	// Заведомо большое тело отклоняем до чтения
	if r.ContentLength > h.maxFileSize {
		apierrors.FileTooLarge(w, "Размер загрузки превышает допустимый максимум")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)

	reader, err := r.MultipartReader()
	if err != nil {
		apierrors.ValidationError(w, "Ожидается тело multipart/form-data")
		return
	}

	var (
		staged      *service.StagedUpload
		categoryID  string
		description string
	)

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			h.upload.Discard(staged)
			writeBodyError(w, err)
			return
		}

		switch part.FormName() {
		case "file":
			if staged != nil {
				// Берётся только первая часть file
				_ = part.Close()
				continue
			}
			var uploadErr *service.UploadError
			staged, uploadErr = h.upload.Stage(part, part.FileName())
			_ = part.Close()
			if uploadErr != nil {
				writeUploadError(w, uploadErr)
				return
			}
		case "categoryId":
			categoryID, err = readField(part)
		case "description":
			description, err = readField(part)
		default:
			_ = part.Close()
		}
		if err != nil {
			h.upload.Discard(staged)
			writeBodyError(w, err)
			return
		}
	}

	if staged == nil {
		apierrors.ValidationError(w, "Поле 'file' обязательно")
		return
	}

	meta, uploadErr := h.upload.Complete(staged, categoryID, description)
	if uploadErr != nil {
		writeUploadError(w, uploadErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(meta)
}

// GetMedia обрабатывает GET /media/{id}.
func (h *MediaHandler) GetMedia(w http.ResponseWriter, r *http.Request, id generated.MediaId) {
	h.serve(w, r, id)
}

// HeadMedia обрабатывает HEAD /media/{id}: те же заголовки, без тела.
func (h *MediaHandler) HeadMedia(w http.ResponseWriter, r *http.Request, id generated.MediaId) {
	h.serve(w, r, id)
}

func (h *MediaHandler) serve(w http.ResponseWriter, r *http.Request, id string) {
	if h.download == nil {
		apierrors.StorageNotConfigured(w)
		return
	}

	if !mediaurl.IsValidID(id) {
		// /media/clip-{id}.mp3 и id в верхнем регистре — ссылки старых клиентов
		if canonical, ok := mediaurl.ExtractID(id); ok {
			http.Redirect(w, r, mediaurl.Path(canonical), http.StatusPermanentRedirect)
			return
		}
		apierrors.NotFound(w, "Медиафайл не найден")
		return
	}

	if dlErr := h.download.Serve(w, r, id); dlErr != nil {
		apierrors.WriteError(w, dlErr.StatusCode, dlErr.Code, dlErr.Message)
	}
}

// DeleteMedia обрабатывает DELETE /media/{id}.
func (h *MediaHandler) DeleteMedia(w http.ResponseWriter, _ *http.Request, id generated.MediaId) {
	if h.deleter == nil {
		apierrors.StorageNotConfigured(w)
		return
	}
	if !mediaurl.IsValidID(id) {
		apierrors.NotFound(w, "Медиафайл не найден")
		return
	}

	if delErr := h.deleter.Delete(id); delErr != nil {
		apierrors.WriteError(w, delErr.StatusCode, delErr.Code, delErr.Message)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LegacyRedirect — NotFound-обработчик роутера. Прямые ссылки на файлы
// старого формата (/sounds/fx/clip-{id}.mp3) перенаправляются на
// /media/{id}, остальное — 404 в стандартном формате.
func LegacyRedirect(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		if canonical := mediaurl.Canonical(r.URL.Path); canonical != r.URL.Path {
			http.Redirect(w, r, canonical, http.StatusPermanentRedirect)
			return
		}
	}
	apierrors.NotFound(w, "Ресурс не найден")
}

// writeUploadError конвертирует ошибку сервиса загрузки в HTTP-ответ.
func writeUploadError(w http.ResponseWriter, uploadErr *service.UploadError) {
	apierrors.WriteError(w, uploadErr.StatusCode, uploadErr.Code, uploadErr.Message)
}

// writeBodyError отвечает на ошибку чтения multipart тела.
func writeBodyError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		apierrors.FileTooLarge(w, "Размер загрузки превышает допустимый максимум")
		return
	}
	apierrors.ValidationError(w, "Некорректное multipart тело")
}

// errFieldTooLong — текстовое поле длиннее maxFieldSize.
var errFieldTooLong = errors.New("поле multipart слишком длинное")

// readField читает текстовое поле multipart целиком.
func readField(part io.ReadCloser) (string, error) {
	defer part.Close()
	data, err := io.ReadAll(io.LimitReader(part, maxFieldSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxFieldSize {
		return "", errFieldTooLong
	}
	return string(data), nil
}
