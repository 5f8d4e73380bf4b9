package openapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoad(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatalf("ошибка загрузки контракта: %v", err)
	}

	for _, p := range []string{"/upload", "/media/{id}", "/api/v1/info", "/health/ready", "/openapi.json"} {
		if doc.Paths.Find(p) == nil {
			t.Errorf("в контракте нет пути %s", p)
		}
	}
	if doc.Components.Schemas["SoundMetadata"] == nil {
		t.Error("в контракте нет схемы SoundMetadata")
	}
}

// TestSoundMetadataSchema проверяет схему на корректном и битом ответе.
func TestSoundMetadataSchema(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatalf("ошибка загрузки контракта: %v", err)
	}
	schema := doc.Components.Schemas["SoundMetadata"].Value

	var valid any
	_ = json.Unmarshal([]byte(`{
		"id": "0123456789abcdef0123456789abcdef",
		"name": "clip",
		"description": "",
		"categoryId": "fx",
		"fileName": "clip-0123456789abcdef0123456789abcdef.mp3",
		"filePath": "/media/0123456789abcdef0123456789abcdef",
		"fileSize": 5,
		"duration": 0,
		"format": "mp3",
		"createdAt": "2026-01-02T03:04:05.123456789Z"
	}`), &valid)
	if err := schema.VisitJSON(valid); err != nil {
		t.Errorf("корректный ответ не прошёл схему: %v", err)
	}

	var invalid any
	_ = json.Unmarshal([]byte(`{
		"id": "0123456789abcdef0123456789abcdef",
		"name": "clip",
		"description": "",
		"categoryId": "fx",
		"fileName": "clip.exe",
		"filePath": "/sounds/fx/clip.exe",
		"fileSize": 5,
		"duration": 0,
		"format": "exe",
		"createdAt": "2026-01-02T03:04:05Z"
	}`), &invalid)
	if err := schema.VisitJSON(invalid); err == nil {
		t.Error("ответ с путём файловой системы должен быть отклонён")
	}
}

func TestHandler(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatalf("ошибка загрузки контракта: %v", err)
	}
	h, err := NewHandler(doc)
	if err != nil {
		t.Fatalf("ошибка создания обработчика: %v", err)
	}

	rec := httptest.NewRecorder()
	h.GetOpenAPI(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("ответ: %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("тело не JSON: %v", err)
	}
	if body["openapi"] != "3.0.3" {
		t.Errorf("версия OpenAPI: %v", body["openapi"])
	}
}
