package service

import (
	"strings"

	"github.com/dhowden/tag"

	"github.com/bigkaa/soundboard/media-store/internal/domain/model"
	"github.com/bigkaa/soundboard/media-store/internal/storage/filestore"
)

// readTags читает встроенные теги (ID3v1/v2, MP4, FLAC, OGG) из уже
// сохранённого файла. Ошибки игнорируются: отсутствие тегов — норма
// для коротких звуков. Возвращает nil, если тегов нет.
func readTags(store *filestore.FileStore, relativePath string) *model.AudioTags {
	file, err := store.Open(relativePath)
	if err != nil {
		return nil
	}
	defer file.Close()

	meta, err := tag.ReadFrom(file)
	if err != nil {
		return nil
	}

	tags := &model.AudioTags{
		Title:  strings.TrimSpace(meta.Title()),
		Artist: strings.TrimSpace(meta.Artist()),
		Album:  strings.TrimSpace(meta.Album()),
		Genre:  strings.TrimSpace(meta.Genre()),
		Year:   meta.Year(),
	}
	if tags.IsEmpty() {
		return nil
	}
	return tags
}
