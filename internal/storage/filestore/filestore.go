// Пакет filestore — операции с физическими файлами под корнем хранилища.
//
// Все обращения идут через os.Root: ни один относительный путь
// (включая symlink и "..") не может выйти за пределы корня.
// Запись двухфазная: поток → .uploads/{id}.part (fsync) → rename
// в итоговый каталог категории.
package filestore

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// TempDir — служебный каталог незавершённых загрузок.
const TempDir = ".uploads"

// tempSuffix — суффикс временного файла загрузки.
const tempSuffix = ".part"

// FileStore — управление физическими файлами под корнем хранилища.
type FileStore struct {
	// dataDir — корневая директория хранения (SB_MEDIA_ROOT)
	dataDir string
	root    *os.Root
}

// StagedFile — файл, записанный во временный каталог и ещё не
// перенесённый на итоговое место.
type StagedFile struct {
	// TempPath — путь временного файла относительно корня
	TempPath string
	// Size — количество записанных байт
	Size int64
}

// TempFileInfo — временный файл загрузки (для GC).
type TempFileInfo struct {
	Path    string
	ModTime time.Time
}

// New создаёт FileStore. Создаёт корневую директорию, если её нет.
func New(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию данных %s: %w", dataDir, err)
	}

	root, err := os.OpenRoot(dataDir)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть корень хранилища %s: %w", dataDir, err)
	}

	return &FileStore{dataDir: dataDir, root: root}, nil
}

// Close освобождает дескриптор корня.
func (fs *FileStore) Close() error {
	return fs.root.Close()
}

// DataDir возвращает путь к корню хранилища.
func (fs *FileStore) DataDir() string {
	return fs.dataDir
}

// SaveTemp потоково записывает данные во временный файл .uploads/{id}.part.
// Паттерн: O_EXCL create → io.Copy → fsync → close.
// При ошибке временный файл удаляется, исходная ошибка чтения
// сохраняется в цепочке (%w) — вызывающий код различает, например,
// *http.MaxBytesError.
func (fs *FileStore) SaveTemp(reader io.Reader, id string) (*StagedFile, error) {
	if err := fs.root.MkdirAll(TempDir, 0o750); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога %s: %w", TempDir, err)
	}

	tempPath := path.Join(TempDir, id+tempSuffix)
	osPath := filepath.FromSlash(tempPath)

	f, err := fs.root.OpenFile(osPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	size, err := io.Copy(f, reader)
	if err != nil {
		f.Close()
		_ = fs.root.Remove(osPath)
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		_ = fs.root.Remove(osPath)
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = fs.root.Remove(osPath)
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	return &StagedFile{TempPath: tempPath, Size: size}, nil
}

// Commit переносит временный файл на итоговое место (atomic rename)
// и возвращает размер файла по данным файловой системы.
// relativePath — путь относительно корня через "/".
func (fs *FileStore) Commit(staged *StagedFile, relativePath string) (int64, error) {
	target := filepath.FromSlash(relativePath)

	if dir := filepath.Dir(target); dir != "." {
		if err := fs.root.MkdirAll(dir, 0o750); err != nil {
			_ = fs.Discard(staged)
			return 0, fmt.Errorf("ошибка создания каталога категории: %w", err)
		}
	}

	if err := fs.root.Rename(filepath.FromSlash(staged.TempPath), target); err != nil {
		_ = fs.Discard(staged)
		return 0, fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	info, err := fs.root.Stat(target)
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения размера записанного файла: %w", err)
	}
	return info.Size(), nil
}

// Discard удаляет временный файл. Отсутствие файла — не ошибка.
func (fs *FileStore) Discard(staged *StagedFile) error {
	if staged == nil {
		return nil
	}
	return fs.remove(staged.TempPath)
}

// Open открывает файл для чтения. Вызывающий код обязан закрыть файл.
func (fs *FileStore) Open(relativePath string) (*os.File, error) {
	f, err := fs.root.Open(filepath.FromSlash(relativePath))
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	return f, nil
}

// Stat возвращает информацию о файле.
// Для отсутствующего файла ошибка удовлетворяет errors.Is(err, fs.ErrNotExist).
func (fs *FileStore) Stat(relativePath string) (os.FileInfo, error) {
	info, err := fs.root.Stat(filepath.FromSlash(relativePath))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения информации о файле: %w", err)
	}
	return info, nil
}

// FileExists проверяет, что по пути лежит обычный файл.
func (fs *FileStore) FileExists(relativePath string) bool {
	info, err := fs.root.Stat(filepath.FromSlash(relativePath))
	return err == nil && info.Mode().IsRegular()
}

// DeleteFile удаляет файл. Отсутствие файла — не ошибка.
func (fs *FileStore) DeleteFile(relativePath string) error {
	return fs.remove(relativePath)
}

func (fs *FileStore) remove(relativePath string) error {
	err := fs.root.Remove(filepath.FromSlash(relativePath))
	if err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return fmt.Errorf("ошибка удаления файла: %w", err)
	}
	return nil
}

// WalkMedia обходит медиафайлы под корнем. Скрытые файлы и каталоги
// (индекс, .uploads) пропускаются. relativePath передаётся через "/".
func (fs *FileStore) WalkMedia(fn func(relativePath string, info os.FileInfo) error) error {
	return iofs.WalkDir(fs.root.FS(), ".", func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return iofs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				// Файл удалён во время обхода
				return nil
			}
			return err
		}
		return fn(p, info)
	})
}

// ListTemp возвращает временные файлы незавершённых загрузок.
func (fs *FileStore) ListTemp() ([]TempFileInfo, error) {
	entries, err := iofs.ReadDir(fs.root.FS(), TempDir)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения каталога %s: %w", TempDir, err)
	}

	result := make([]TempFileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), tempSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		result = append(result, TempFileInfo{
			Path:    path.Join(TempDir, e.Name()),
			ModTime: info.ModTime(),
		})
	}
	return result, nil
}

// RemoveTemp удаляет временный файл по пути из ListTemp.
func (fs *FileStore) RemoveTemp(tempPath string) error {
	return fs.remove(tempPath)
}
