package model

import (
	"path/filepath"
	"strings"
)

// DefaultContentType — Content-Type для неизвестных расширений.
const DefaultContentType = "application/octet-stream"

// contentTypes — допустимые аудиоформаты и их Content-Type.
// Ключи — расширение в нижнем регистре без точки.
var contentTypes = map[string]string{
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"aac":  "audio/aac",
	"m4a":  "audio/mp4",
	"flac": "audio/flac",
}

// FormatOf возвращает расширение файла в нижнем регистре без точки.
func FormatOf(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// IsAllowedFormat проверяет, входит ли формат в список допустимых.
func IsAllowedFormat(format string) bool {
	_, ok := contentTypes[format]
	return ok
}

// AllowedFormats возвращает список допустимых форматов (для сообщений об ошибках).
func AllowedFormats() []string {
	return []string{"mp3", "wav", "ogg", "aac", "m4a", "flac"}
}

// ContentTypeFor возвращает Content-Type по имени или пути файла.
func ContentTypeFor(filename string) string {
	if ct, ok := contentTypes[FormatOf(filename)]; ok {
		return ct
	}
	return DefaultContentType
}
