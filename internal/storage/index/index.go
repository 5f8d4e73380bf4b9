// Пакет index — персистентный индекс медиа: id → относительный путь.
//
// Источник истины — JSON-объект в скрытом файле {root}/.media-index.json.
// Запись: read-modify-write всего объекта под эксклюзивной блокировкой,
// на диск атомарно (temp → fsync → rename), поэтому читатель никогда
// не видит обрезанный JSON.
//
// Resolve обслуживается из LRU-кэша с TTL (hashicorp/golang-lru/v2/expirable).
// При промахе файл перечитывается под разделяемой блокировкой: читатели
// не мешают друг другу, а одновременные промахи по одному id сводятся
// в одно чтение (golang.org/x/sync/singleflight). Insert/Remove обновляют
// кэш под эксклюзивной блокировкой и сбрасывают незавершённые чтения
// затронутых id. Размер кэша 0 — кэш выключен, каждый Resolve читает файл.
//
// Повреждённый или нечитаемый файл считается пустым индексом
// (предупреждение в лог), следующий успешный Insert его перезаписывает.
package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/bigkaa/soundboard/media-store/internal/mediaurl"
)

// FileName — имя файла индекса в корне хранилища.
const FileName = ".media-index.json"

// Prometheus-метрики кэша индекса.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sb_index_cache_hits_total",
		Help: "Общее количество попаданий в кэш индекса.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sb_index_cache_misses_total",
		Help: "Общее количество промахов кэша индекса.",
	})
)

// ErrInvalidEntry — недопустимый id или относительный путь.
var ErrInvalidEntry = errors.New("недопустимая запись индекса")

// Index — потокобезопасный индекс id → относительный путь.
type Index struct {
	mu     sync.RWMutex
	path   string
	cache  *expirable.LRU[string, string] // nil — кэш выключен
	flight singleflight.Group
	ready  bool
	logger *slog.Logger
}

// New открывает индекс в dataDir. Если файла нет, создаёт пустой "{}".
// cacheSize <= 0 выключает кэш.
func New(dataDir string, cacheSize int, cacheTTL time.Duration, logger *slog.Logger) (*Index, error) {
	idx := &Index{
		path:   filepath.Join(dataDir, FileName),
		logger: logger.With(slog.String("component", "index")),
	}
	if cacheSize > 0 {
		idx.cache = expirable.NewLRU[string, string](cacheSize, nil, cacheTTL)
	}

	if _, err := os.Stat(idx.path); errors.Is(err, fs.ErrNotExist) {
		if err := idx.write(map[string]string{}); err != nil {
			return nil, fmt.Errorf("не удалось создать файл индекса: %w", err)
		}
		idx.logger.Info("Создан пустой индекс", slog.String("path", idx.path))
	}

	idx.ready = true
	return idx, nil
}

// IsReady возвращает true, если индекс открыт и файл доступен на чтение.
func (idx *Index) IsReady() bool {
	if !idx.ready {
		return false
	}
	_, err := os.Stat(idx.path)
	return err == nil
}

// Resolve возвращает относительный путь по id.
// Отсутствие id — не ошибка: возвращается ("", false).
func (idx *Index) Resolve(id string) (string, bool) {
	if idx.cache != nil {
		if rel, ok := idx.cache.Get(id); ok {
			cacheHitsTotal.Inc()
			return rel, true
		}
		cacheMissesTotal.Inc()
	}

	v, _, _ := idx.flight.Do(id, func() (any, error) {
		idx.mu.RLock()
		defer idx.mu.RUnlock()

		rel, ok := idx.load()[id]
		// Заполнение кэша под RLock: писатель не может вклиниться между
		// чтением файла и Add и оставить в кэше удалённую запись.
		if ok && idx.cache != nil {
			idx.cache.Add(id, rel)
		}
		return lookup{rel: rel, ok: ok}, nil
	})
	res := v.(lookup)
	return res.rel, res.ok
}

// lookup — результат чтения одного id из файла.
type lookup struct {
	rel string
	ok  bool
}

// forget вызывается писателем под mu: Resolve, начатый после записи,
// не присоединится к чтению, начатому до неё.
func (idx *Index) forget(id string) {
	idx.flight.Forget(id)
	if idx.cache != nil {
		idx.cache.Remove(id)
	}
}

// Insert регистрирует id → relativePath. Повторный Insert того же id
// перезаписывает путь (last write wins).
func (idx *Index) Insert(id, relativePath string) error {
	return idx.Apply(map[string]string{id: relativePath}, nil)
}

// Remove удаляет id из индекса. Возвращает true, если запись была.
func (idx *Index) Remove(id string) (bool, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	m := idx.load()
	if _, ok := m[id]; !ok {
		idx.forget(id)
		return false, nil
	}
	delete(m, id)

	if err := idx.write(m); err != nil {
		return false, err
	}
	idx.forget(id)
	return true, nil
}

// Apply атомарно применяет пакет изменений одной перезаписью файла:
// сначала upserts, затем removals. Используется reconcile.
func (idx *Index) Apply(upserts map[string]string, removals []string) error {
	for id, rel := range upserts {
		if !mediaurl.IsValidID(id) || !ValidRelativePath(rel) {
			return fmt.Errorf("%w: id=%q path=%q", ErrInvalidEntry, id, rel)
		}
	}
	if len(upserts) == 0 && len(removals) == 0 {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	m := idx.load()
	for id, rel := range upserts {
		m[id] = rel
	}
	for _, id := range removals {
		delete(m, id)
	}

	if err := idx.write(m); err != nil {
		return err
	}

	for id, rel := range upserts {
		idx.flight.Forget(id)
		if idx.cache != nil {
			idx.cache.Add(id, rel)
		}
	}
	for _, id := range removals {
		idx.forget(id)
	}
	return nil
}

// Snapshot возвращает копию всего индекса.
func (idx *Index) Snapshot() map[string]string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.load()
}

// Count возвращает количество записей в индексе.
func (idx *Index) Count() int {
	return len(idx.Snapshot())
}

// load читает и разбирает файл индекса. Вызывается под mu.
// Любая ошибка чтения или разбора даёт пустой индекс.
func (idx *Index) load() map[string]string {
	data, err := os.ReadFile(idx.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			idx.logger.Warn("Файл индекса не читается, считаем индекс пустым",
				slog.String("error", err.Error()),
			)
		}
		return map[string]string{}
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		idx.logger.Warn("Файл индекса повреждён, считаем индекс пустым",
			slog.String("error", err.Error()),
		)
		return map[string]string{}
	}

	m := make(map[string]string, len(raw))
	for id, rel := range raw {
		if !mediaurl.IsValidID(id) || !ValidRelativePath(rel) {
			idx.logger.Warn("Пропущена недопустимая запись индекса",
				slog.String("media_id", id),
				slog.String("relative_path", rel),
			)
			continue
		}
		m[id] = rel
	}
	return m
}

// write атомарно перезаписывает файл индекса: temp → fsync → rename.
// Временный файл скрытый и лежит в том же каталоге, чтобы rename
// не пересекал границу файловой системы.
func (idx *Index) write(m map[string]string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации индекса: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(idx.path), ".media-index-*.tmp")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpPath := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка записи: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tmpPath, idx.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return nil
}

// ValidRelativePath проверяет путь записи индекса: непустой, через "/",
// в канонической форме, без "..", не абсолютный, без тома (":") и без
// скрытых сегментов (служебные файлы корня не адресуются).
func ValidRelativePath(rel string) bool {
	if rel == "" || strings.ContainsAny(rel, `\:`) {
		return false
	}
	if path.IsAbs(rel) || path.Clean(rel) != rel {
		return false
	}
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return false
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == "" || strings.HasPrefix(seg, ".") {
			return false
		}
	}
	return true
}
