package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "http://localhost:8001/media/")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	if err := s.Put(ctx, "villas/villa-1/hero.jpg", strings.NewReader("jpeg-bytes"), "image/jpeg"); err != nil {
		t.Fatalf("put: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "villas", "villa-1", "hero.jpg"))
	if err != nil || string(data) != "jpeg-bytes" {
		t.Fatalf("unexpected file contents %q (%v)", data, err)
	}

	ok, err := s.Exists(ctx, "villas/villa-1/hero.jpg")
	if err != nil || !ok {
		t.Fatalf("expected object to exist: %v", err)
	}
	if url := s.URL("villas/villa-1/hero.jpg"); url != "http://localhost:8001/media/villas/villa-1/hero.jpg" {
		t.Fatalf("unexpected url %s", url)
	}

	if err := s.Delete(ctx, "villas/villa-1/hero.jpg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "villas/villa-1/hero.jpg"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if ok, _ := s.Exists(ctx, "villas/villa-1/hero.jpg"); ok {
		t.Fatalf("expected object to be gone")
	}
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "http://x")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, key := range []string{"../etc/passwd", "/abs", ""} {
		if err := s.Put(context.Background(), key, strings.NewReader("x"), "text/plain"); err != ErrInvalidKey {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestNewPicksLocalWithoutCredentials(t *testing.T) {
	s, err := New(context.Background(), Config{LocalPath: t.TempDir(), LocalBaseURL: "http://x/media"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := s.(*LocalStorage); !ok {
		t.Fatalf("expected local storage, got %T", s)
	}
}
