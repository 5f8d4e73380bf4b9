// Пакет sanitize — приведение пользовательских имён к безопасному
// сегменту пути. Единственная защита от path traversal при загрузке:
// результат никогда не содержит разделителей пути и не бывает пустым.
package sanitize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fallback — имя, подставляемое вместо пустого результата.
const Fallback = "file"

// Лимит имени в файловых системах — 255 байт, не символов.
const (
	// MaxSegmentBytes — предел для сегмента целиком (каталог категории).
	MaxSegmentBytes = 255
	// MaxStemBytes — предел для основы имени файла: на диске к ней
	// добавляется "-{id}.{ext}" (до 38 байт).
	MaxStemBytes = 200
)

// illegalChars — символы, запрещённые в именах файлов хотя бы на одной
// из поддерживаемых платформ. Оба слэша запрещены всегда.
const illegalChars = `<>:"/\|?*`

// reservedNames — зарезервированные имена устройств Windows.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// Segment превращает произвольную строку в безопасный сегмент пути.
//
// Правила:
//   - удаляются управляющие символы и символы из illegalChars;
//   - обрезаются пробелы и точки по краям;
//   - строка только из точек, пустая или из пробелов → Fallback;
//   - зарезервированные имена устройств получают суффикс "_";
//   - длина ограничена MaxSegmentBytes байтами по границе символа.
func Segment(s string) string {
	return segment(s, MaxSegmentBytes)
}

func segment(s string, maxBytes int) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) || strings.ContainsRune(illegalChars, r) {
			continue
		}
		b.WriteRune(r)
	}

	// Ведущие точки делают файл скрытым (служебные .uploads и
	// .media-index.json), хвостовые запрещены в Windows
	result := strings.TrimSpace(b.String())
	result = strings.Trim(result, ". ")

	if result == "" {
		return Fallback
	}

	// "CON.backup" тоже зарезервировано — сравниваем часть до первой точки
	base, _, _ := strings.Cut(result, ".")
	if reservedNames[strings.ToUpper(base)] {
		result = base + "_" + strings.TrimPrefix(result, base)
	}

	if len(result) > maxBytes {
		result = truncate(result, maxBytes)
		result = strings.TrimRight(result, ". ")
		if result == "" {
			return Fallback
		}
	}

	return result
}

// truncate обрезает строку до maxBytes байт, не разрывая символ UTF-8.
func truncate(s string, maxBytes int) string {
	end := 0
	for i, r := range s {
		if i+utf8.RuneLen(r) > maxBytes {
			break
		}
		end = i + utf8.RuneLen(r)
	}
	return s[:end]
}

// Stem возвращает имя файла без расширения, прошедшее через Segment.
// Путь в имени (клиенты иногда присылают "C:\dir\a.mp3") отбрасывается.
func Stem(filename string) string {
	if i := strings.LastIndexAny(filename, `/\`); i >= 0 {
		filename = filename[i+1:]
	}
	if i := strings.LastIndexByte(filename, '.'); i >= 0 {
		filename = filename[:i]
	}
	return segment(filename, MaxStemBytes)
}
