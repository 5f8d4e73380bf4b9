// Пакет config — загрузка и валидация конфигурации медиа-хранилища
// из переменных окружения (префикс SB_).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации медиа-хранилища.
type Config struct {
	// Корень медиа-хранилища. Пустое значение отключает загрузку и отдачу
	MediaRoot string
	// Порт HTTP-сервера
	Port int
	// Начальный режим работы (rw, ro)
	Mode string
	// Максимальный размер тела загрузки в байтах
	MaxFileSize int64
	// Количество записей LRU-кэша индекса (0 — кэш выключен)
	IndexCacheSize int
	// Время жизни записи кэша индекса
	IndexCacheTTL time.Duration
	// Интервал фоновой сверки индекса и диска
	ReconcileInterval time.Duration
	// Удалять записи индекса без файла при сверке
	ReconcilePrune bool
	// Интервал очистки незавершённых загрузок
	GCInterval time.Duration
	// Возраст, после которого .part файл считается брошенным
	TempTTL time.Duration
	// Путь к TLS сертификату (опционально)
	TLSCert string
	// Путь к TLS приватному ключу (опционально)
	TLSKey string
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration

	// Имя вершины графа в метриках topologymetrics
	ServiceName string
	// URL зависимости для мониторинга (пусто — мониторинг выключен)
	DephealthURL string
	// Имя зависимости в метриках topologymetrics
	DephealthDepName string
	// Имя группы в метриках topologymetrics
	DephealthGroup string
	// Интервал проверки зависимости
	DephealthCheckInterval time.Duration
}

// StorageConfigured возвращает true, если корень хранилища задан.
func (c *Config) StorageConfigured() bool {
	return c.MediaRoot != ""
}

// Load загружает конфигурацию из переменных окружения, валидирует
// значения и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// SB_MEDIA_ROOT — корень хранилища (без значения по умолчанию)
	cfg.MediaRoot = strings.TrimSpace(os.Getenv("SB_MEDIA_ROOT"))

	// SB_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("SB_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("SB_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("SB_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// SB_MODE — режим работы (по умолчанию rw)
	cfg.Mode = getEnvDefault("SB_MODE", "rw")
	if cfg.Mode != "rw" && cfg.Mode != "ro" {
		return nil, fmt.Errorf("SB_MODE: недопустимое значение %q, допустимые: rw, ro", cfg.Mode)
	}

	// SB_MAX_FILE_SIZE — максимальный размер загрузки (по умолчанию 100 MB)
	cfg.MaxFileSize, err = getEnvInt64("SB_MAX_FILE_SIZE", 104857600)
	if err != nil {
		return nil, fmt.Errorf("SB_MAX_FILE_SIZE: %w", err)
	}
	if cfg.MaxFileSize <= 0 {
		return nil, fmt.Errorf("SB_MAX_FILE_SIZE: значение должно быть положительным")
	}

	// SB_INDEX_CACHE_SIZE — размер LRU-кэша индекса (по умолчанию 4096)
	cfg.IndexCacheSize, err = getEnvInt("SB_INDEX_CACHE_SIZE", 4096)
	if err != nil {
		return nil, fmt.Errorf("SB_INDEX_CACHE_SIZE: %w", err)
	}
	if cfg.IndexCacheSize < 0 {
		return nil, fmt.Errorf("SB_INDEX_CACHE_SIZE: значение не может быть отрицательным")
	}

	// SB_INDEX_CACHE_TTL — TTL записи кэша (по умолчанию 5m)
	cfg.IndexCacheTTL, err = getEnvDuration("SB_INDEX_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("SB_INDEX_CACHE_TTL: %w", err)
	}

	// SB_RECONCILE_INTERVAL — интервал сверки (по умолчанию 1h)
	cfg.ReconcileInterval, err = getEnvDuration("SB_RECONCILE_INTERVAL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("SB_RECONCILE_INTERVAL: %w", err)
	}
	if cfg.ReconcileInterval <= 0 {
		return nil, fmt.Errorf("SB_RECONCILE_INTERVAL: значение должно быть положительным")
	}

	// SB_RECONCILE_PRUNE — удалять записи без файла (по умолчанию false)
	cfg.ReconcilePrune, err = getEnvBool("SB_RECONCILE_PRUNE", false)
	if err != nil {
		return nil, fmt.Errorf("SB_RECONCILE_PRUNE: %w", err)
	}

	// SB_GC_INTERVAL — интервал очистки .part файлов (по умолчанию 30m)
	cfg.GCInterval, err = getEnvDuration("SB_GC_INTERVAL", 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("SB_GC_INTERVAL: %w", err)
	}
	if cfg.GCInterval <= 0 {
		return nil, fmt.Errorf("SB_GC_INTERVAL: значение должно быть положительным")
	}

	// SB_TEMP_TTL — возраст брошенной загрузки (по умолчанию 1h)
	cfg.TempTTL, err = getEnvDuration("SB_TEMP_TTL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("SB_TEMP_TTL: %w", err)
	}

	// SB_TLS_CERT / SB_TLS_KEY — задаются только парой
	cfg.TLSCert = getEnvDefault("SB_TLS_CERT", "")
	cfg.TLSKey = getEnvDefault("SB_TLS_KEY", "")
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return nil, fmt.Errorf("SB_TLS_CERT и SB_TLS_KEY должны задаваться вместе")
	}

	// SB_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("SB_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("SB_LOG_LEVEL: %w", err)
	}

	// SB_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("SB_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("SB_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// SB_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("SB_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SB_SHUTDOWN_TIMEOUT: %w", err)
	}

	// SB_SERVICE_NAME — имя вершины графа (по умолчанию soundboard-media)
	cfg.ServiceName = getEnvDefault("SB_SERVICE_NAME", "soundboard-media")

	// SB_DEPHEALTH_URL — URL зависимости (опционально)
	cfg.DephealthURL = getEnvDefault("SB_DEPHEALTH_URL", "")

	// SB_DEPHEALTH_DEP_NAME — имя зависимости (по умолчанию metadata-api)
	cfg.DephealthDepName = getEnvDefault("SB_DEPHEALTH_DEP_NAME", "metadata-api")

	// SB_DEPHEALTH_GROUP — имя группы (по умолчанию soundboard)
	cfg.DephealthGroup = getEnvDefault("SB_DEPHEALTH_GROUP", "soundboard")

	// SB_DEPHEALTH_CHECK_INTERVAL — интервал проверки (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("SB_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SB_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64 значение переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает bool из переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное логическое значение: %q (true/false)", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 5m, 1h)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
