// Пакет mediaurl — идентификаторы медиа и канонический адрес /media/{id}.
//
// Канонический адрес — непрозрачная ссылка, не раскрывающая раскладку
// файлов на диске. Canonical и ExtractID — код обратной совместимости:
// старые клиенты хранили прямые пути к файлам, id из которых извлекается
// по завершающему 32-символьному hex-токену в имени файла.
// Расширять эвристику не нужно.
package mediaurl

import (
	"encoding/hex"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Prefix — префикс канонического адреса медиа.
const Prefix = "/media/"

// IDLength — длина идентификатора медиа (128 бит в hex).
const IDLength = 32

// NewID генерирует новый идентификатор: 128 случайных бит
// (UUID v4) в нижнем регистре hex без дефисов.
func NewID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// IsValidID проверяет, что строка — 32 символа [0-9a-f].
func IsValidID(s string) bool {
	if len(s) != IDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Path возвращает канонический адрес медиа: /media/{id}.
func Path(id string) string {
	return Prefix + id
}

// ExtractID извлекает id из имени файла вида "{name}-{id}.{ext}".
// Берётся последний сегмент пути без расширения; id — его последние
// 32 символа. Возвращает false, если валидного токена нет.
func ExtractID(name string) (string, bool) {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	if len(name) < IDLength {
		return "", false
	}

	token := strings.ToLower(name[len(name)-IDLength:])
	if !IsValidID(token) {
		return "", false
	}
	// Токен должен быть отдельным словом: "{id}" или "...-{id}"
	if len(name) > IDLength && name[len(name)-IDLength-1] != '-' {
		return "", false
	}
	return token, true
}

// Canonical приводит ссылку на медиа к виду /media/{id}.
//
// Поддерживаются: уже канонический путь, абсолютный URL с каноническим
// путём и прямые пути к файлам старого формата. Если id извлечь нельзя,
// ссылка возвращается без изменений.
func Canonical(ref string) string {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return ref
	}

	p := trimmed
	if u, err := url.Parse(trimmed); err == nil && u.Path != "" {
		p = u.Path
	}

	if strings.HasPrefix(p, Prefix) {
		id := strings.TrimSuffix(strings.TrimPrefix(p, Prefix), "/")
		if IsValidID(id) {
			return Path(id)
		}
	}

	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	if id, ok := ExtractID(path.Clean("/" + strings.ReplaceAll(p, `\`, "/"))); ok {
		return Path(id)
	}
	return ref
}
