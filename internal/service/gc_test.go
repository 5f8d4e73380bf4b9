package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bigkaa/soundboard/media-store/internal/domain/mode"
)

// TestGC_RemovesStaleTemp — старые .part удаляются, свежие остаются.
func TestGC_RemovesStaleTemp(t *testing.T) {
	env := newTestEnv(t, mode.ModeRW)

	stale, err := env.store.SaveTemp(strings.NewReader("old"), reconcileID1)
	if err != nil {
		t.Fatalf("ошибка SaveTemp: %v", err)
	}
	if _, err := env.store.SaveTemp(strings.NewReader("new"), reconcileID2); err != nil {
		t.Fatalf("ошибка SaveTemp: %v", err)
	}

	old := time.Now().Add(-2 * time.Hour)
	stalePath := filepath.Join(env.root, filepath.FromSlash(stale.TempPath))
	if err := os.Chtimes(stalePath, old, old); err != nil {
		t.Fatalf("ошибка Chtimes: %v", err)
	}

	gc := NewGCService(env.store, time.Minute, time.Hour, env.log)
	result := gc.RunOnce()

	if result.DeletedCount != 1 || result.Errors != 0 {
		t.Errorf("результат: %+v", result)
	}
	if _, err := os.Stat(stalePath); !os.IsNotExist(err) {
		t.Error("старый временный файл должен быть удалён")
	}
	if env.countTemp(t) != 1 {
		t.Error("свежий временный файл должен остаться")
	}
}

// TestGC_NoTempDir — отсутствие .uploads не ошибка.
func TestGC_NoTempDir(t *testing.T) {
	env := newTestEnv(t, mode.ModeRW)

	result := NewGCService(env.store, time.Minute, time.Hour, env.log).RunOnce()
	if result.DeletedCount != 0 || result.Errors != 0 {
		t.Errorf("результат: %+v", result)
	}
}

// TestGC_KeepsMedia — GC не трогает опубликованные файлы.
func TestGC_KeepsMedia(t *testing.T) {
	env := newTestEnv(t, mode.ModeRW)
	id := env.upload(t, "clip.mp3", "fx", []byte("hello"))

	gc := NewGCService(env.store, time.Minute, 0, env.log)
	gc.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	gc.RunOnce()

	if !env.store.FileExists(mustResolve(t, env, id)) {
		t.Error("медиафайл не должен удаляться GC")
	}
}

func mustResolve(t *testing.T, env *testEnv, id string) string {
	t.Helper()
	rel, ok := env.idx.Resolve(id)
	if !ok {
		t.Fatalf("id %s не найден", id)
	}
	return rel
}
