// Пакет model — доменные модели медиа-хранилища.
// MediaRecord живёт в индексе (id → относительный путь),
// SoundMetadata — ответ загрузки, который сохраняет внешний
// CRUD-сервис звуков вместе с тегами, избранным и счётчиками.
package model

import (
	"time"
)

// DefaultCategory — категория для загрузок без categoryId.
const DefaultCategory = "uncategorized"

// MediaRecord — запись индекса: непрозрачный id и путь файла
// относительно корня хранилища (всегда через "/").
type MediaRecord struct {
	ID           string `json:"id"`
	RelativePath string `json:"relative_path"`
}

// SoundMetadata — метаданные загруженного звука.
// FilePath — всегда /media/{id}, физическая раскладка наружу не выходит.
type SoundMetadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CategoryID  string `json:"categoryId"`
	// FileName — итоговое имя файла на диске: {name}-{id}.{ext}
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
	// FileSize — размер по данным файловой системы, не клиента
	FileSize int64 `json:"fileSize"`
	// Duration — секунды; 0, пока клиент не вычислит её при воспроизведении
	Duration  float64   `json:"duration"`
	Format    string    `json:"format"`
	CreatedAt time.Time `json:"createdAt"`
	// Tags — встроенные теги аудио (ID3, MP4, FLAC, OGG), если есть
	Tags *AudioTags `json:"tags,omitempty"`
}

// AudioTags — теги, прочитанные из самого аудиофайла.
type AudioTags struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Genre  string `json:"genre,omitempty"`
	Year   int    `json:"year,omitempty"`
}

// IsEmpty возвращает true, если ни одно поле не заполнено.
func (t *AudioTags) IsEmpty() bool {
	return t == nil || (t.Title == "" && t.Artist == "" && t.Album == "" && t.Genre == "" && t.Year == 0)
}
