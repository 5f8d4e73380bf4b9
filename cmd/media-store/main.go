// Точка входа медиа-хранилища звуковой панели: загрузка, отдача
// и удаление аудиофайлов по непрозрачному id.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bigkaa/soundboard/media-store/internal/api/handlers"
	"github.com/bigkaa/soundboard/media-store/internal/api/middleware"
	"github.com/bigkaa/soundboard/media-store/internal/api/openapi"
	"github.com/bigkaa/soundboard/media-store/internal/config"
	"github.com/bigkaa/soundboard/media-store/internal/domain/mode"
	"github.com/bigkaa/soundboard/media-store/internal/server"
	"github.com/bigkaa/soundboard/media-store/internal/service"
	"github.com/bigkaa/soundboard/media-store/internal/storage/filestore"
	"github.com/bigkaa/soundboard/media-store/internal/storage/index"
)

func main() {
	// Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка конфигурации: %v\n", err)
		os.Exit(1)
	}

	// Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("Медиа-хранилище запускается",
		slog.String("service", cfg.ServiceName),
		slog.String("version", config.Version),
		slog.String("mode", cfg.Mode),
		slog.Int("port", cfg.Port),
		slog.Bool("storage_configured", cfg.StorageConfigured()),
	)

	ctx := context.Background()

	// --- Инициализация компонентов ---

	// 1. Конечный автомат режимов
	sm, err := mode.NewStateMachine(mode.StorageMode(cfg.Mode))
	if err != nil {
		logger.Error("Ошибка инициализации state machine", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. OpenAPI контракт: невалидный документ останавливает запуск
	doc, err := openapi.Load(ctx)
	if err != nil {
		logger.Error("Ошибка загрузки OpenAPI контракта", slog.String("error", err.Error()))
		os.Exit(1)
	}
	contractHandler, err := openapi.NewHandler(doc)
	if err != nil {
		logger.Error("Ошибка подготовки OpenAPI контракта", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 3. Хранилище, индекс и сервисы. Без SB_MEDIA_ROOT сервер
	// поднимается, но медиа-операции отвечают 503.
	var (
		store        *filestore.FileStore
		uploadSvc    *service.UploadService
		downloadSvc  *service.DownloadService
		deleteSvc    *service.DeleteService
		reconcileSvc *service.ReconcileService
		gcSvc        *service.GCService

		// Интерфейсы остаются nil-интерфейсами, а не typed nil
		mediaCounter handlers.MediaCounter
		indexChecker handlers.IndexReadinessChecker
		reconciler   handlers.ReconcileRunner
		diskUsage    handlers.DiskUsageFunc
		dataDir      string
	)

	if cfg.StorageConfigured() {
		var idx *index.Index
		store, idx, err = openStorage(cfg, logger)
		if err != nil {
			logger.Error("Хранилище недоступно", slog.String("error", err.Error()))
			os.Exit(1)
		}
		middleware.MediaTotal.Set(float64(idx.Count()))
		logger.Info("Индекс загружен", slog.Int("media_count", idx.Count()))

		uploadSvc = service.NewUploadService(store, idx, sm, logger)
		downloadSvc = service.NewDownloadService(store, idx, sm, logger)
		deleteSvc = service.NewDeleteService(store, idx, sm, logger)

		// Фоновые процессы
		reconcileSvc = service.NewReconcileService(store, idx, cfg.ReconcileInterval, cfg.ReconcilePrune, logger)
		reconcileSvc.Start(ctx)

		gcSvc = service.NewGCService(store, cfg.GCInterval, cfg.TempTTL, logger)
		gcSvc.Start(ctx)

		mediaCounter = idx
		indexChecker = idx
		reconciler = reconcileSvc
		diskUsage = diskUsageFn(store.DataDir())
		dataDir = store.DataDir()
	} else {
		logger.Warn("SB_MEDIA_ROOT не задан, медиа-операции недоступны")
	}

	// 4. topologymetrics — мониторинг зависимости (опционально)
	var dephealthSvc *service.DephealthService
	if cfg.DephealthURL != "" {
		dephealthSvc, err = service.NewDephealthService(service.DephealthConfig{
			ServiceName:   cfg.ServiceName,
			Group:         cfg.DephealthGroup,
			DepName:       cfg.DephealthDepName,
			URL:           cfg.DephealthURL,
			CheckInterval: cfg.DephealthCheckInterval,
		}, logger)
		if err != nil {
			logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
				slog.String("error", err.Error()),
			)
			dephealthSvc = nil
		} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
			dephealthSvc = nil
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("url", cfg.DephealthURL),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 5. Handlers
	mediaHandler := handlers.NewMediaHandler(uploadSvc, downloadSvc, deleteSvc, cfg.MaxFileSize, logger)
	systemHandler := handlers.NewSystemHandler(cfg, sm, mediaCounter, diskUsage, logger)
	modeHandler := handlers.NewModeHandler(sm, logger)
	maintenanceHandler := handlers.NewMaintenanceHandler(reconciler)
	healthHandler := handlers.NewHealthHandler(cfg.ServiceName, dataDir, indexChecker)
	metricsHandler := server.NewMetricsHandler()

	// Единый API handler
	apiHandler := handlers.NewAPIHandler(
		mediaHandler,
		systemHandler,
		modeHandler,
		maintenanceHandler,
		healthHandler,
		metricsHandler,
		contractHandler,
	)

	// 6. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler, handlers.LegacyRedirect,
		middleware.RequestLogger(logger),
		middleware.MetricsMiddleware(),
	)

	runErr := srv.Run()
	if runErr != nil {
		logger.Error("Ошибка сервера", slog.String("error", runErr.Error()))
	}

	// --- Graceful shutdown фоновых процессов ---
	logger.Info("Остановка фоновых процессов...")

	if gcSvc != nil {
		gcSvc.Stop()
	}
	if reconcileSvc != nil {
		reconcileSvc.Stop()
	}
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}
	// Корень закрывается после фоновых задач: они работают через него
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Warn("Ошибка закрытия корня хранилища", slog.String("error", err.Error()))
		}
	}

	if runErr != nil {
		os.Exit(1)
	}
	logger.Info("Медиа-хранилище остановлено")
}

// diskUsageFn возвращает функцию для получения информации об ёмкости диска.
func diskUsageFn(dataDir string) handlers.DiskUsageFunc {
	return func() (int64, int64, int64, error) {
		return getDiskUsage(dataDir)
	}
}
