// Пакет errors — ответы с ошибками медиа-хранилища.
// Тело всегда {"error": {"code": "...", "message": "..."}}, HTTP-статус
// определяется кодом. Сообщения не содержат путей файловой системы.
package errors //nolint:revive // конфликт имени со stdlib, импортируется как apierrors

import (
	"encoding/json"
	"net/http"
)

// Машиночитаемые коды из OpenAPI контракта (схема Error).
const (
	CodeValidationError      = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
	CodeModeNotAllowed       = "MODE_NOT_ALLOWED"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeConfirmationRequired = "CONFIRMATION_REQUIRED"
	CodeFileTooLarge         = "FILE_TOO_LARGE"
	CodeRangeNotSatisfiable  = "RANGE_NOT_SATISFIABLE"
	CodeReconcileInProgress  = "RECONCILE_IN_PROGRESS"
	CodeStorageNotConfigured = "STORAGE_NOT_CONFIGURED"
	CodeInternalError        = "INTERNAL_ERROR"
)

// statusByCode — HTTP-статус для каждого кода.
var statusByCode = map[string]int{
	CodeValidationError:      http.StatusBadRequest,
	CodeNotFound:             http.StatusNotFound,
	CodeMethodNotAllowed:     http.StatusMethodNotAllowed,
	CodeModeNotAllowed:       http.StatusConflict,
	CodeInvalidTransition:    http.StatusConflict,
	CodeConfirmationRequired: http.StatusConflict,
	CodeFileTooLarge:         http.StatusRequestEntityTooLarge,
	CodeRangeNotSatisfiable:  http.StatusRequestedRangeNotSatisfiable,
	CodeReconcileInProgress:  http.StatusConflict,
	CodeStorageNotConfigured: http.StatusServiceUnavailable,
	CodeInternalError:        http.StatusInternalServerError,
}

// StatusFor возвращает HTTP-статус кода ошибки; неизвестный код — 500.
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError записывает ответ ошибки с явным статусом. Сервисный слой
// передаёт сюда StatusCode своих типизированных ошибок.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	// Ошибка не кэшируется, даже если ответ на /media/{id}
	w.Header().Del("Cache-Control")
	w.Header().Del("ETag")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{Code: code, Message: message},
	})
}

// write — WriteError со статусом по коду.
func write(w http.ResponseWriter, code, message string) {
	WriteError(w, StatusFor(code), code, message)
}

// ValidationError — 400.
func ValidationError(w http.ResponseWriter, message string) {
	write(w, CodeValidationError, message)
}

// NotFound — 404. Неизвестный id и пропавший файл неотличимы.
func NotFound(w http.ResponseWriter, message string) {
	write(w, CodeNotFound, message)
}

// MethodNotAllowed — 405 для известного пути с чужим методом.
func MethodNotAllowed(w http.ResponseWriter) {
	write(w, CodeMethodNotAllowed, "Метод не поддерживается")
}

func InvalidTransition(w http.ResponseWriter, message string) {
	write(w, CodeInvalidTransition, message)
}

func ConfirmationRequired(w http.ResponseWriter, message string) {
	write(w, CodeConfirmationRequired, message)
}

// FileTooLarge — 413, тело загрузки больше SB_MAX_FILE_SIZE.
func FileTooLarge(w http.ResponseWriter, message string) {
	write(w, CodeFileTooLarge, message)
}

func ReconcileInProgress(w http.ResponseWriter, message string) {
	write(w, CodeReconcileInProgress, message)
}

// StorageNotConfigured — 503, корень хранилища не задан (SB_MEDIA_ROOT).
func StorageNotConfigured(w http.ResponseWriter) {
	write(w, CodeStorageNotConfigured, "Хранилище медиа не настроено")
}

func InternalError(w http.ResponseWriter, message string) {
	write(w, CodeInternalError, message)
}
