// gc.go — сервис очистки брошенных загрузок.
//
// Загрузка пишет байты в .uploads/{id}.part и переносит файл в каталог
// категории. Если процесс упал между этими шагами, .part остаётся
// навсегда. GC удаляет такие файлы старше SB_TEMP_TTL.
//
// Запускается как горутина с периодическим тикером (SB_GC_INTERVAL).
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/soundboard/media-store/internal/storage/filestore"
)

// Prometheus метрики GC
var (
	// gcRunsTotal — количество запусков GC.
	gcRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sb_gc_runs_total",
		Help: "Общее количество запусков очистки временных файлов",
	})

	// gcFilesDeletedTotal — количество удалённых временных файлов.
	gcFilesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sb_gc_files_deleted_total",
		Help: "Общее количество временных файлов, удалённых GC",
	})

	// gcDurationSeconds — длительность выполнения GC.
	gcDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sb_gc_duration_seconds",
		Help:    "Длительность очистки временных файлов в секундах",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)

// GCResult — результат одного запуска GC.
type GCResult struct {
	// DeletedCount — количество удалённых .part файлов
	DeletedCount int
	// Errors — количество ошибок удаления
	Errors int
	// Duration — длительность выполнения
	Duration time.Duration
}

// GCService — сервис очистки временных файлов загрузок.
type GCService struct {
	store    *filestore.FileStore
	interval time.Duration
	ttl      time.Duration
	logger   *slog.Logger

	// now подменяется в тестах
	now func() time.Time

	mu     sync.Mutex // защита от параллельного запуска RunOnce
	cancel context.CancelFunc
}

// NewGCService создаёт сервис GC.
// ttl — возраст, после которого .part файл считается брошенным.
func NewGCService(
	store *filestore.FileStore,
	interval time.Duration,
	ttl time.Duration,
	logger *slog.Logger,
) *GCService {
	return &GCService{
		store:    store,
		interval: interval,
		ttl:      ttl,
		logger:   logger.With(slog.String("component", "gc")),
		now:      time.Now,
	}
}

// Start запускает фоновую горутину GC с периодическим тикером.
func (gc *GCService) Start(ctx context.Context) {
	gcCtx, cancel := context.WithCancel(ctx)
	gc.cancel = cancel

	go gc.run(gcCtx)

	gc.logger.Info("GC запущен",
		slog.String("interval", gc.interval.String()),
		slog.String("temp_ttl", gc.ttl.String()),
	)
}

// Stop останавливает фоновый процесс GC.
func (gc *GCService) Stop() {
	if gc.cancel != nil {
		gc.cancel()
	}
	gc.logger.Info("GC остановлен")
}

func (gc *GCService) run(ctx context.Context) {
	gc.RunOnce()

	ticker := time.NewTicker(gc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gc.RunOnce()
		}
	}
}

// RunOnce выполняет один цикл GC.
// Файлы моложе ttl не трогаются: это могут быть идущие загрузки.
func (gc *GCService) RunOnce() *GCResult {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	start := time.Now()
	result := &GCResult{}

	temps, err := gc.store.ListTemp()
	if err != nil {
		gc.logger.Error("GC: ошибка чтения временных файлов",
			slog.String("error", err.Error()),
		)
		result.Errors++
	}

	cutoff := gc.now().Add(-gc.ttl)
	for _, t := range temps {
		if t.ModTime.After(cutoff) {
			continue
		}
		if err := gc.store.RemoveTemp(t.Path); err != nil {
			gc.logger.Error("GC: ошибка удаления временного файла",
				slog.String("path", t.Path),
				slog.String("error", err.Error()),
			)
			result.Errors++
			continue
		}
		gc.logger.Debug("GC: временный файл удалён",
			slog.String("path", t.Path),
			slog.Time("mod_time", t.ModTime),
		)
		result.DeletedCount++
	}

	result.Duration = time.Since(start)

	gcRunsTotal.Inc()
	gcFilesDeletedTotal.Add(float64(result.DeletedCount))
	gcDurationSeconds.Observe(result.Duration.Seconds())

	if result.DeletedCount > 0 || result.Errors > 0 {
		gc.logger.Info("GC завершён",
			slog.Int("deleted", result.DeletedCount),
			slog.Int("errors", result.Errors),
			slog.Duration("duration", result.Duration),
		)
	}

	return result
}
