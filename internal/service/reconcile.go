// reconcile.go — сервис фоновой сверки индекса и файлов на диске.
//
// Сверка обходит корень хранилища (скрытые файлы и каталоги пропускаются)
// и сравнивает найденные файлы с индексом. Id берётся из имени файла:
// {name}-{id}.{ext}.
//
// Обнаруживает проблемы:
//   - orphaned_file: файл с id в имени, но без записи в индексе
//     (регистрируется заново)
//   - duplicate_id: файл с тем же id, что и у другой существующей записи
//   - missing_file: запись в индексе без файла на диске
//     (удаляется из индекса при SB_RECONCILE_PRUNE=true)
//
// Запускается как горутина с периодическим тикером (SB_RECONCILE_INTERVAL)
// и по запросу POST /api/v1/maintenance/reconcile.
package service

import (
	"context"
	"log/slog"
	"os"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/soundboard/media-store/internal/api/generated"
	"github.com/bigkaa/soundboard/media-store/internal/api/middleware"
	"github.com/bigkaa/soundboard/media-store/internal/mediaurl"
	"github.com/bigkaa/soundboard/media-store/internal/storage/filestore"
	"github.com/bigkaa/soundboard/media-store/internal/storage/index"
)

// Prometheus метрики сверки
var (
	// reconcileRunsTotal — количество запусков сверки.
	reconcileRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sb_reconcile_runs_total",
		Help: "Общее количество запусков сверки индекса",
	})

	// reconcileIssuesTotal — количество обнаруженных проблем по типу.
	reconcileIssuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sb_reconcile_issues_total",
		Help: "Общее количество проблем, обнаруженных сверкой",
	}, []string{"type"})

	// reconcileDurationSeconds — длительность сверки.
	reconcileDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sb_reconcile_duration_seconds",
		Help:    "Длительность сверки индекса в секундах",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})
)

// ReconcileService — сервис сверки индекса и диска.
type ReconcileService struct {
	store    *filestore.FileStore
	idx      *index.Index
	interval time.Duration
	prune    bool
	logger   *slog.Logger

	mu        sync.Mutex // защита от параллельного запуска
	inProcess bool       // сверка в процессе выполнения
	cancel    context.CancelFunc
}

// NewReconcileService создаёт сервис сверки.
// prune — удалять из индекса записи, файлы которых отсутствуют.
func NewReconcileService(
	store *filestore.FileStore,
	idx *index.Index,
	interval time.Duration,
	prune bool,
	logger *slog.Logger,
) *ReconcileService {
	return &ReconcileService{
		store:    store,
		idx:      idx,
		interval: interval,
		prune:    prune,
		logger:   logger.With(slog.String("component", "reconcile")),
	}
}

// Start запускает фоновую горутину сверки с периодическим тикером.
func (rs *ReconcileService) Start(ctx context.Context) {
	rsCtx, cancel := context.WithCancel(ctx)
	rs.cancel = cancel

	go rs.run(rsCtx)

	rs.logger.Info("Сверка запущена",
		slog.String("interval", rs.interval.String()),
		slog.Bool("prune", rs.prune),
	)
}

// Stop останавливает фоновую сверку.
func (rs *ReconcileService) Stop() {
	if rs.cancel != nil {
		rs.cancel()
	}
	rs.logger.Info("Сверка остановлена")
}

// IsInProgress возвращает true, если сверка выполняется.
func (rs *ReconcileService) IsInProgress() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.inProcess
}

func (rs *ReconcileService) run(ctx context.Context) {
	// Первый проход сразу после старта: восстанавливает записи,
	// потерянные при сбое между rename и записью индекса.
	rs.RunOnce()

	ticker := time.NewTicker(rs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rs.RunOnce()
		}
	}
}

// RunOnce выполняет один цикл сверки.
// Если сверка уже выполняется, возвращает nil, true.
func (rs *ReconcileService) RunOnce() (*generated.ReconcileResponse, bool) {
	rs.mu.Lock()
	if rs.inProcess {
		rs.mu.Unlock()
		rs.logger.Warn("Сверка уже выполняется, пропуск")
		return nil, true
	}
	rs.inProcess = true
	rs.mu.Unlock()

	defer func() {
		rs.mu.Lock()
		rs.inProcess = false
		rs.mu.Unlock()
	}()

	startedAt := time.Now().UTC()
	rs.logger.Info("Сверка начата")

	filesChecked, issues, summary := rs.reconcile()

	completedAt := time.Now().UTC()
	duration := completedAt.Sub(startedAt)

	reconcileRunsTotal.Inc()
	reconcileDurationSeconds.Observe(duration.Seconds())
	for _, issue := range issues {
		reconcileIssuesTotal.WithLabelValues(string(issue.Type)).Inc()
	}
	middleware.MediaTotal.Set(float64(rs.idx.Count()))

	rs.logger.Info("Сверка завершена",
		slog.Int("files_checked", filesChecked),
		slog.Int("issues", len(issues)),
		slog.Int("registered", summary.Registered),
		slog.Int("pruned", summary.Pruned),
		slog.Duration("duration", duration),
	)

	return &generated.ReconcileResponse{
		StartedAt:    startedAt,
		CompletedAt:  completedAt,
		FilesChecked: filesChecked,
		Issues:       issues,
		Summary:      summary,
	}, false
}

// reconcile сравнивает снимок индекса с файлами на диске и применяет
// исправления одной записью индекса.
func (rs *ReconcileService) reconcile() (int, []generated.ReconcileIssue, generated.ReconcileSummary) {
	issues := []generated.ReconcileIssue{}
	summary := generated.ReconcileSummary{}

	snapshot := rs.idx.Snapshot()

	// onDisk — относительные пути всех медиафайлов, найденных при обходе.
	onDisk := make(map[string]bool)
	// found — id из имён файлов → пути (сортируются для детерминизма).
	found := make(map[string][]string)
	filesChecked := 0

	err := rs.store.WalkMedia(func(relativePath string, _ os.FileInfo) error {
		filesChecked++
		onDisk[relativePath] = true
		if id, ok := mediaurl.ExtractID(path.Base(relativePath)); ok {
			found[id] = append(found[id], relativePath)
		}
		return nil
	})
	if err != nil {
		rs.logger.Error("Ошибка обхода корня хранилища",
			slog.String("error", err.Error()),
		)
		return filesChecked, issues, summary
	}

	upserts := make(map[string]string)
	var removals []string

	ids := make([]string, 0, len(found))
	for id := range found {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// 1. Файлы на диске: orphaned_file и duplicate_id
	for _, id := range ids {
		paths := found[id]
		sort.Strings(paths)

		mapped, inIndex := snapshot[id]
		owner := mapped
		if !inIndex || !onDisk[mapped] {
			// Запись отсутствует или указывает на пропавший файл:
			// первый найденный путь становится владельцем id.
			owner = paths[0]
			if index.ValidRelativePath(owner) {
				upserts[id] = owner
				issueID, issuePath := id, owner
				issues = append(issues, generated.ReconcileIssue{
					Type:        generated.OrphanedFile,
					MediaId:     &issueID,
					Path:        &issuePath,
					Description: "Файл на диске без записи в индексе, зарегистрирован",
					Repaired:    true,
				})
				summary.OrphanedFiles++
				summary.Registered++
			}
		}

		for _, p := range paths {
			if p == owner {
				continue
			}
			issueID, issuePath := id, p
			issues = append(issues, generated.ReconcileIssue{
				Type:        generated.DuplicateId,
				MediaId:     &issueID,
				Path:        &issuePath,
				Description: "Id уже принадлежит другому файлу",
			})
			summary.DuplicateIds++
		}
	}

	// 2. Записи индекса: missing_file
	indexed := make([]string, 0, len(snapshot))
	for id := range snapshot {
		indexed = append(indexed, id)
	}
	sort.Strings(indexed)

	for _, id := range indexed {
		relativePath := snapshot[id]
		if onDisk[relativePath] {
			summary.Ok++
			continue
		}
		if _, reassigned := upserts[id]; reassigned {
			// Файл переименован или перемещён: запись уже обновлена выше.
			continue
		}

		issueID, issuePath := id, relativePath
		issue := generated.ReconcileIssue{
			Type:        generated.MissingFile,
			MediaId:     &issueID,
			Path:        &issuePath,
			Description: "Запись в индексе без файла на диске",
		}
		if rs.prune {
			removals = append(removals, id)
			issue.Repaired = true
			summary.Pruned++
		}
		issues = append(issues, issue)
		summary.MissingFiles++
	}

	if len(upserts) > 0 || len(removals) > 0 {
		if err := rs.idx.Apply(upserts, removals); err != nil {
			rs.logger.Error("Ошибка применения исправлений к индексу",
				slog.String("error", err.Error()),
			)
			for i := range issues {
				issues[i].Repaired = false
			}
			summary.Registered = 0
			summary.Pruned = 0
		}
	}

	return filesChecked, issues, summary
}
