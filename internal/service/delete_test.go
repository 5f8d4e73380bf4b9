package service

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/bigkaa/soundboard/media-store/internal/domain/mode"
)

func TestDelete(t *testing.T) {
	env := newTestEnv(t, mode.ModeRW)
	svc := NewDeleteService(env.store, env.idx, env.sm, env.log)

	id := env.upload(t, "clip.mp3", "fx", []byte("hello"))
	rel, _ := env.idx.Resolve(id)

	if delErr := svc.Delete(id); delErr != nil {
		t.Fatalf("ошибка удаления: %v", delErr)
	}
	if _, ok := env.idx.Resolve(id); ok {
		t.Error("запись должна быть удалена из индекса")
	}
	if _, err := os.Stat(filepath.Join(env.root, filepath.FromSlash(rel))); !os.IsNotExist(err) {
		t.Error("файл должен быть удалён с диска")
	}

	delErr := svc.Delete(id)
	if delErr == nil || delErr.StatusCode != http.StatusNotFound {
		t.Errorf("повторное удаление: ожидался 404, получено %v", delErr)
	}
}

// TestDelete_MissingFile — запись без файла удаляется без ошибки.
func TestDelete_MissingFile(t *testing.T) {
	env := newTestEnv(t, mode.ModeRW)
	svc := NewDeleteService(env.store, env.idx, env.sm, env.log)

	id := env.upload(t, "clip.mp3", "fx", []byte("hello"))
	rel, _ := env.idx.Resolve(id)
	if err := os.Remove(filepath.Join(env.root, filepath.FromSlash(rel))); err != nil {
		t.Fatalf("ошибка удаления: %v", err)
	}

	if delErr := svc.Delete(id); delErr != nil {
		t.Fatalf("ошибка удаления: %v", delErr)
	}
	if env.idx.Count() != 0 {
		t.Error("индекс должен быть пуст")
	}
}

func TestDelete_ReadOnly(t *testing.T) {
	env := newTestEnv(t, mode.ModeRW)
	id := env.upload(t, "clip.mp3", "fx", []byte("hello"))
	if err := env.sm.TransitionTo(mode.ModeRO, false, "тест"); err != nil {
		t.Fatalf("ошибка перехода: %v", err)
	}

	delErr := NewDeleteService(env.store, env.idx, env.sm, env.log).Delete(id)
	if delErr == nil || delErr.StatusCode != http.StatusConflict {
		t.Fatalf("ожидался 409, получено %v", delErr)
	}
	if _, ok := env.idx.Resolve(id); !ok {
		t.Error("запись не должна удаляться в режиме ro")
	}
}
