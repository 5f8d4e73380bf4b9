package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/bigkaa/soundboard/media-store/internal/api/generated"
	"github.com/bigkaa/soundboard/media-store/internal/api/openapi"
	"github.com/bigkaa/soundboard/media-store/internal/config"
	"github.com/bigkaa/soundboard/media-store/internal/domain/mode"
	"github.com/bigkaa/soundboard/media-store/internal/mediaurl"
	"github.com/bigkaa/soundboard/media-store/internal/server"
	"github.com/bigkaa/soundboard/media-store/internal/service"
	"github.com/bigkaa/soundboard/media-store/internal/storage/filestore"
	"github.com/bigkaa/soundboard/media-store/internal/storage/index"
)

// testMaxFileSize — лимит загрузки в тестах.
const testMaxFileSize = 1024

// testAPI — роутер поверх временного корня хранилища.
type testAPI struct {
	root   string
	idx    *index.Index
	sm     *mode.StateMachine
	router http.Handler
	doc    *openapi3.T
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func loadContract(t *testing.T) (*openapi3.T, *openapi.Handler) {
	t.Helper()
	doc, err := openapi.Load(context.Background())
	if err != nil {
		t.Fatalf("ошибка загрузки контракта: %v", err)
	}
	contract, err := openapi.NewHandler(doc)
	if err != nil {
		t.Fatalf("ошибка создания обработчика контракта: %v", err)
	}
	return doc, contract
}

// newTestAPI собирает все обработчики так же, как main, но без фоновых задач.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	root := t.TempDir()
	logger := testLogger()

	cfg := &config.Config{
		MediaRoot:   root,
		Mode:        "rw",
		MaxFileSize: testMaxFileSize,
		ServiceName: "media-store-test",
	}

	store, err := filestore.New(root)
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	idx, err := index.New(root, 16, 0, logger)
	if err != nil {
		t.Fatalf("ошибка создания индекса: %v", err)
	}
	sm, err := mode.NewStateMachine(mode.ModeRW)
	if err != nil {
		t.Fatalf("ошибка создания StateMachine: %v", err)
	}

	doc, contract := loadContract(t)

	media := NewMediaHandler(
		service.NewUploadService(store, idx, sm, logger),
		service.NewDownloadService(store, idx, sm, logger),
		service.NewDeleteService(store, idx, sm, logger),
		cfg.MaxFileSize,
		logger,
	)
	api := NewAPIHandler(
		media,
		NewSystemHandler(cfg, sm, idx, nil, logger),
		NewModeHandler(sm, logger),
		NewMaintenanceHandler(service.NewReconcileService(store, idx, time.Hour, false, logger)),
		NewHealthHandler(cfg.ServiceName, root, idx),
		server.NewMetricsHandler(),
		contract,
	)

	return &testAPI{
		root:   root,
		idx:    idx,
		sm:     sm,
		router: server.NewRouter(api, LegacyRedirect),
		doc:    doc,
	}
}

// newUnconfiguredAPI — хранилище без SB_MEDIA_ROOT.
func newUnconfiguredAPI(t *testing.T) http.Handler {
	t.Helper()
	logger := testLogger()
	cfg := &config.Config{Mode: "rw", MaxFileSize: testMaxFileSize, ServiceName: "media-store-test"}
	sm, err := mode.NewStateMachine(mode.ModeRW)
	if err != nil {
		t.Fatalf("ошибка создания StateMachine: %v", err)
	}
	_, contract := loadContract(t)

	api := NewAPIHandler(
		NewMediaHandler(nil, nil, nil, cfg.MaxFileSize, logger),
		NewSystemHandler(cfg, sm, nil, nil, logger),
		NewModeHandler(sm, logger),
		NewMaintenanceHandler(nil),
		NewHealthHandler(cfg.ServiceName, "", nil),
		server.NewMetricsHandler(),
		contract,
	)
	return server.NewRouter(api, LegacyRedirect)
}

func (a *testAPI) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// multipartBody собирает тело загрузки; пустой filename — без части file.
func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("ошибка записи поля: %v", err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("ошибка создания части file: %v", err)
		}
		_, _ = fw.Write(content)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("ошибка закрытия multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func uploadRequest(t *testing.T, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	body, contentType := multipartBody(t, filename, content, fields)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	return req
}

// upload загружает файл и возвращает разобранный ответ.
func (a *testAPI) upload(t *testing.T, filename, category string, content []byte) map[string]any {
	t.Helper()
	rec := a.do(uploadRequest(t, filename, content, map[string]string{"categoryId": category}))
	if rec.Code != http.StatusOK {
		t.Fatalf("загрузка: ожидался 200, получен %d: %s", rec.Code, rec.Body.String())
	}
	var meta map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &meta); err != nil {
		t.Fatalf("ошибка разбора ответа: %v", err)
	}
	a.assertSchema(t, "SoundMetadata", rec.Body.Bytes())
	return meta
}

// assertSchema проверяет тело ответа по схеме контракта.
func (a *testAPI) assertSchema(t *testing.T, name string, body []byte) {
	t.Helper()
	ref := a.doc.Components.Schemas[name]
	if ref == nil {
		t.Fatalf("в контракте нет схемы %s", name)
	}
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		t.Fatalf("ошибка разбора тела: %v", err)
	}
	if err := ref.Value.VisitJSON(value); err != nil {
		t.Errorf("ответ не соответствует схеме %s: %v", name, err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("ошибка разбора тела ошибки: %v (%s)", err, rec.Body.String())
	}
	return body.Error.Code
}

func TestUploadAndServe(t *testing.T) {
	api := newTestAPI(t)

	meta := api.upload(t, "clip.mp3", "fx", []byte("hello"))

	id, _ := meta["id"].(string)
	if !mediaurl.IsValidID(id) {
		t.Fatalf("некорректный id: %q", id)
	}
	if meta["format"] != "mp3" {
		t.Errorf("format = %v, ожидался mp3", meta["format"])
	}
	if meta["fileSize"] != float64(5) {
		t.Errorf("fileSize = %v, ожидался 5", meta["fileSize"])
	}
	if meta["filePath"] != "/media/"+id {
		t.Errorf("filePath = %v", meta["filePath"])
	}
	if _, err := os.Stat(filepath.Join(api.root, "fx", "clip-"+id+".mp3")); err != nil {
		t.Errorf("файл не найден на диске: %v", err)
	}

	rec := api.do(httptest.NewRequest(http.MethodGet, "/media/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидался 200, получен %d", rec.Code)
	}
	if rec.Body.String() != "hello" {
		t.Errorf("тело = %q", rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "audio/mpeg" {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Header().Get("Cache-Control"), "immutable") {
		t.Errorf("Cache-Control = %q", rec.Header().Get("Cache-Control"))
	}

	req := httptest.NewRequest(http.MethodGet, "/media/"+id, nil)
	req.Header.Set("Range", "bytes=0-2")
	rec = api.do(req)
	if rec.Code != http.StatusPartialContent {
		t.Fatalf("Range: ожидался 206, получен %d", rec.Code)
	}
	if rec.Body.String() != "hel" {
		t.Errorf("Range: тело = %q", rec.Body.String())
	}
	if rec.Header().Get("Content-Range") != "bytes 0-2/5" {
		t.Errorf("Content-Range = %q", rec.Header().Get("Content-Range"))
	}

	etag := rec.Header().Get("ETag")
	req = httptest.NewRequest(http.MethodGet, "/media/"+id, nil)
	req.Header.Set("If-None-Match", etag)
	rec = api.do(req)
	if rec.Code != http.StatusNotModified {
		t.Errorf("If-None-Match: ожидался 304, получен %d", rec.Code)
	}

	rec = api.do(httptest.NewRequest(http.MethodHead, "/media/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Errorf("HEAD: ожидался 200, получен %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD: тело не пустое: %d байт", rec.Body.Len())
	}
}

func TestUploadInvalidFormat(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(uploadRequest(t, "evil.exe", []byte("MZ"), nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("ожидался 400, получен %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "VALIDATION_ERROR" {
		t.Errorf("код ошибки = %q", code)
	}
	api.assertSchema(t, "Error", rec.Body.Bytes())
	if api.idx.Count() != 0 {
		t.Errorf("индекс не пуст: %d", api.idx.Count())
	}
}

func TestUploadMissingFile(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(uploadRequest(t, "", nil, map[string]string{"categoryId": "fx"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("ожидался 400, получен %d", rec.Code)
	}
}

func TestUploadNotMultipart(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := api.do(req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("ожидался 400, получен %d", rec.Code)
	}
}

func TestUploadTooLarge(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(uploadRequest(t, "big.mp3", bytes.Repeat([]byte("a"), testMaxFileSize*2), nil))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("ожидался 413, получен %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "FILE_TOO_LARGE" {
		t.Errorf("код ошибки = %q", code)
	}

	// Без Content-Length лимит срабатывает при чтении тела
	req := uploadRequest(t, "big.mp3", bytes.Repeat([]byte("a"), testMaxFileSize*2), nil)
	req.ContentLength = -1
	rec = api.do(req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("потоковое тело: ожидался 413, получен %d", rec.Code)
	}
	if api.idx.Count() != 0 {
		t.Errorf("индекс не пуст: %d", api.idx.Count())
	}
}

// TestMediaRanges: некорректный диапазон даёт весь файл, диапазон вне
// файла — 416 в стандартном формате ошибок.
func TestMediaRanges(t *testing.T) {
	api := newTestAPI(t)
	id := api.upload(t, "clip.mp3", "fx", []byte("hello"))["id"].(string)

	req := httptest.NewRequest(http.MethodGet, "/media/"+id, nil)
	req.Header.Set("Range", "bytes=3-1")
	rec := api.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("bytes=3-1: ожидался 200, получен %d", rec.Code)
	}
	if rec.Body.String() != "hello" {
		t.Errorf("bytes=3-1: тело = %q", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/media/"+id, nil)
	req.Header.Set("Range", "bytes=10-20")
	rec = api.do(req)
	if rec.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("bytes=10-20: ожидался 416, получен %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cr := rec.Header().Get("Content-Range"); cr != "bytes */5" {
		t.Errorf("Content-Range = %q", cr)
	}
	if code := errorCode(t, rec); code != "RANGE_NOT_SATISFIABLE" {
		t.Errorf("код ошибки = %q", code)
	}
	api.assertSchema(t, "Error", rec.Body.Bytes())
}

// TestUploadLongName: имя из 100 иероглифов не превышает лимит FS.
func TestUploadLongName(t *testing.T) {
	api := newTestAPI(t)

	meta := api.upload(t, strings.Repeat("音", 100)+".mp3", strings.Repeat("😀", 100), []byte("hello"))
	if name, _ := meta["fileName"].(string); len(name) > 255 {
		t.Errorf("fileName %d байт длиннее 255", len(name))
	}
}

func TestMediaNotFound(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(httptest.NewRequest(http.MethodGet, "/media/0123456789abcdef0123456789abcdef", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("ожидался 404, получен %d", rec.Code)
	}
	api.assertSchema(t, "Error", rec.Body.Bytes())

	rec = api.do(httptest.NewRequest(http.MethodGet, "/media/not-an-id", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("некорректный id: ожидался 404, получен %d", rec.Code)
	}
}

func TestLegacyRedirect(t *testing.T) {
	api := newTestAPI(t)
	id := api.upload(t, "clip.mp3", "fx", []byte("hello"))["id"].(string)

	tests := []struct {
		name string
		path string
	}{
		{"прямой путь к файлу", "/sounds/fx/clip-" + id + ".mp3"},
		{"имя файла под /media", "/media/clip-" + id + ".mp3"},
		{"id в верхнем регистре", "/media/" + strings.ToUpper(id)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != http.StatusPermanentRedirect {
				t.Fatalf("ожидался 308, получен %d", rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != "/media/"+id {
				t.Errorf("Location = %q", loc)
			}
		})
	}

	rec := api.do(httptest.NewRequest(http.MethodGet, "/sounds/fx/readme.txt", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("путь без id: ожидался 404, получен %d", rec.Code)
	}
}

func TestDeleteMedia(t *testing.T) {
	api := newTestAPI(t)
	id := api.upload(t, "clip.wav", "", []byte("RIFF"))["id"].(string)

	rec := api.do(httptest.NewRequest(http.MethodDelete, "/media/"+id, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("ожидался 204, получен %d", rec.Code)
	}

	rec = api.do(httptest.NewRequest(http.MethodGet, "/media/"+id, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("после удаления: ожидался 404, получен %d", rec.Code)
	}
	rec = api.do(httptest.NewRequest(http.MethodDelete, "/media/"+id, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("повторное удаление: ожидался 404, получен %d", rec.Code)
	}
}

func TestStorageNotConfigured(t *testing.T) {
	router := newUnconfiguredAPI(t)

	requests := []*http.Request{
		uploadRequest(t, "clip.mp3", []byte("hello"), nil),
		httptest.NewRequest(http.MethodGet, "/media/0123456789abcdef0123456789abcdef", nil),
		httptest.NewRequest(http.MethodDelete, "/media/0123456789abcdef0123456789abcdef", nil),
		httptest.NewRequest(http.MethodPost, "/api/v1/maintenance/reconcile", nil),
		httptest.NewRequest(http.MethodGet, "/health/ready", nil),
	}
	for _, req := range requests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s: ожидался 503, получен %d", req.Method, req.URL.Path, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/info", nil))
	var info generated.StorageInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("ошибка разбора info: %v", err)
	}
	if info.StorageConfigured {
		t.Error("storage_configured = true без корня")
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("live: ожидался 200, получен %d", rec.Code)
	}
}

func TestModeTransition(t *testing.T) {
	api := newTestAPI(t)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/mode/transition", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return api.do(req)
	}

	rec := post(`{"mode":"ro","reason":"обслуживание"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("rw→ro: ожидался 200, получен %d: %s", rec.Code, rec.Body.String())
	}
	var resp generated.ModeTransitionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("ошибка разбора ответа: %v", err)
	}
	if resp.PreviousMode != "rw" || resp.CurrentMode != "ro" {
		t.Errorf("переход %s→%s", resp.PreviousMode, resp.CurrentMode)
	}

	rec = api.do(uploadRequest(t, "clip.mp3", []byte("hello"), nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("загрузка в ro: ожидался 409, получен %d", rec.Code)
	}

	rec = post(`{"mode":"rw"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("ro→rw без confirm: ожидался 409, получен %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "CONFIRMATION_REQUIRED" {
		t.Errorf("код ошибки = %q", code)
	}

	rec = post(`{"mode":"rw","confirm":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("ro→rw с confirm: ожидался 200, получен %d", rec.Code)
	}

	rec = post(`{"mode":"archive"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("неизвестный режим: ожидался 400, получен %d", rec.Code)
	}
	rec = post(`{`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("битый JSON: ожидался 400, получен %d", rec.Code)
	}
}

func TestReconcileEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.upload(t, "clip.mp3", "fx", []byte("hello"))

	// Файл, положенный в корень в обход загрузки
	orphanID := "fedcba9876543210fedcba9876543210"
	if err := os.WriteFile(filepath.Join(api.root, "fx", "manual-"+orphanID+".ogg"), []byte("OggS"), 0o644); err != nil {
		t.Fatalf("ошибка записи файла: %v", err)
	}

	rec := api.do(httptest.NewRequest(http.MethodPost, "/api/v1/maintenance/reconcile", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидался 200, получен %d: %s", rec.Code, rec.Body.String())
	}
	var resp generated.ReconcileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("ошибка разбора ответа: %v", err)
	}
	if resp.Summary.OrphanedFiles != 1 || resp.Summary.Registered != 1 {
		t.Errorf("summary = %+v", resp.Summary)
	}

	rec = api.do(httptest.NewRequest(http.MethodGet, "/media/"+orphanID, nil))
	if rec.Code != http.StatusOK {
		t.Errorf("зарегистрированный файл: ожидался 200, получен %d", rec.Code)
	}
}

// busyReconciler — сверка, которая всегда уже выполняется.
type busyReconciler struct{}

func (busyReconciler) RunOnce() (*generated.ReconcileResponse, bool) {
	return nil, true
}

func TestReconcileInProgress(t *testing.T) {
	rec := httptest.NewRecorder()
	NewMaintenanceHandler(busyReconciler{}).Reconcile(rec, httptest.NewRequest(http.MethodPost, "/api/v1/maintenance/reconcile", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("ожидался 409, получен %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "RECONCILE_IN_PROGRESS" {
		t.Errorf("код ошибки = %q", code)
	}
}

func TestStorageInfo(t *testing.T) {
	api := newTestAPI(t)
	api.upload(t, "a.mp3", "fx", []byte("a"))
	api.upload(t, "b.flac", "fx", []byte("b"))

	rec := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/info", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидался 200, получен %d", rec.Code)
	}
	api.assertSchema(t, "StorageInfo", rec.Body.Bytes())

	var info generated.StorageInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("ошибка разбора ответа: %v", err)
	}
	if info.MediaCount != 2 {
		t.Errorf("media_count = %d, ожидалось 2", info.MediaCount)
	}
	if !info.StorageConfigured || info.Mode != "rw" {
		t.Errorf("info = %+v", info)
	}
	if info.MaxFileSize != testMaxFileSize {
		t.Errorf("max_file_size = %d", info.MaxFileSize)
	}
}

func TestHealthReady(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидался 200, получен %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("ошибка разбора ответа: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %v", resp["status"])
	}
	api.assertSchema(t, "HealthStatus", rec.Body.Bytes())
	if _, err := os.Stat(filepath.Join(api.root, ".health_check")); !os.IsNotExist(err) {
		t.Error("пробный файл не удалён")
	}
}

func TestOpenAPIEndpoint(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидался 200, получен %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !bytes.Contains(body, []byte(`"/media/{id}"`)) {
		t.Error("в контракте нет /media/{id}")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(httptest.NewRequest(http.MethodPut, "/upload", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("ожидался 405, получен %d", rec.Code)
	}
}
