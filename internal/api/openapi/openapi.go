// Пакет openapi — встроенный OpenAPI контракт медиа-хранилища.
// Документ загружается и валидируется при старте; невалидный контракт
// останавливает запуск. Отдаётся как JSON на /openapi.json.
package openapi

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var spec []byte

// Load разбирает и валидирует встроенный контракт.
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора OpenAPI контракта: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("OpenAPI контракт невалиден: %w", err)
	}
	return doc, nil
}

// Handler отдаёт контракт в JSON. Документ сериализуется один раз.
type Handler struct {
	body []byte
}

// NewHandler создаёт обработчик /openapi.json.
func NewHandler(doc *openapi3.T) (*Handler, error) {
	body, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации OpenAPI контракта: %w", err)
	}
	return &Handler{body: body}, nil
}

// GetOpenAPI обрабатывает GET /openapi.json.
func (h *Handler) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.body)
}
