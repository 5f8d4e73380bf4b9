package main

import (
	"fmt"
	"log/slog"

	"github.com/bigkaa/soundboard/media-store/internal/config"
	"github.com/bigkaa/soundboard/media-store/internal/storage/filestore"
	"github.com/bigkaa/soundboard/media-store/internal/storage/index"
)

// openStorage открывает корень хранилища и индекс в нём.
// Если индекс не открылся, корень закрывается до возврата ошибки.
func openStorage(cfg *config.Config, logger *slog.Logger) (*filestore.FileStore, *index.Index, error) {
	store, err := filestore.New(cfg.MediaRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка инициализации FileStore: %w", err)
	}

	idx, err := index.New(store.DataDir(), cfg.IndexCacheSize, cfg.IndexCacheTTL, logger)
	if err != nil {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warn("Ошибка закрытия корня хранилища", slog.String("error", closeErr.Error()))
		}
		return nil, nil, fmt.Errorf("ошибка открытия индекса: %w", err)
	}

	return store, idx, nil
}
