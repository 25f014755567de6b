package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func setupTestStorage(t *testing.T, files ...string) *Storage {
	t.Helper()

	root := t.TempDir()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(p, []byte("data:"+f), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", f, err)
		}
	}

	return NewStorage(root, "https://example.com/uploads/", []string{"**/cache/**", "**/thumbs/**"})
}

func TestStorage_ExistsRemoveSize(t *testing.T) {
	s := setupTestStorage(t, "2024/beach.jpg")

	if !s.Exists("2024/beach.jpg") {
		t.Fatal("expected file to exist")
	}
	if s.Exists("2024") {
		t.Error("directories are not files")
	}

	size, err := s.Size("2024/beach.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if size != int64(len("data:2024/beach.jpg")) {
		t.Errorf("unexpected size %d", size)
	}

	if err := s.Remove("2024/beach.jpg"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if s.Exists("2024/beach.jpg") {
		t.Error("file still exists after Remove")
	}
	if err := s.Remove("2024/beach.jpg"); err != nil {
		t.Errorf("removing a missing file should succeed, got %v", err)
	}
}

func TestStorage_RejectsPathsOutsideRoot(t *testing.T) {
	s := setupTestStorage(t)

	for _, p := range []string{"", "/", "."} {
		if err := s.Remove(p); !errors.Is(err, ErrOutsideRoot) {
			t.Errorf("Remove(%q) = %v, want ErrOutsideRoot", p, err)
		}
	}

	abs, err := s.Abs("../../etc/passwd")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(filepath.Dir(abs)) != s.Root() {
		t.Errorf("traversal should be clamped under root, got %s", abs)
	}
}

func TestStorage_Derived(t *testing.T) {
	s := setupTestStorage(t,
		"2024/beach.jpg",
		"2024/beach-scaled.jpg",
		"2024/beach-400x267.jpg",
		"2024/beach-1920x800.jpg",
		"2024/beach-400x267.png",
		"2024/beach-old-400x267.jpg",
		"2024/dunes-400x267.jpg",
	)

	derived, err := s.Derived("2024/beach.jpg")
	if err != nil {
		t.Fatalf("Derived failed: %v", err)
	}

	var paths []string
	for _, d := range derived {
		paths = append(paths, d.Path)
	}
	want := []string{"2024/beach-1920x800.jpg", "2024/beach-400x267.jpg"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("got %v, want %v", paths, want)
	}
	if derived[0].Width != 1920 || derived[0].Height != 800 {
		t.Errorf("unexpected dimensions %+v", derived[0])
	}

	fromScaled, err := s.Derived("2024/beach-scaled.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if len(fromScaled) != 2 {
		t.Errorf("scaled master should share derivatives, got %+v", fromScaled)
	}
}

func TestStorage_WalkImages(t *testing.T) {
	s := setupTestStorage(t,
		"2024/beach.jpg",
		"2024/notes.txt",
		"2024/.DS_Store",
		".trash/old.jpg",
		"wp-content/cache/beach.jpg",
		"2023/thumbs/tiny.png",
		"2023/logo.PNG",
	)

	var got []string
	err := s.WalkImages(context.Background(), func(path string, size int64) error {
		got = append(got, path)
		if size <= 0 {
			t.Errorf("%s: expected positive size", path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WalkImages failed: %v", err)
	}

	want := []string{"2023/logo.PNG", "2024/beach.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestStorage_WalkImagesCancelled(t *testing.T) {
	s := setupTestStorage(t, "a.jpg", "b.jpg")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.WalkImages(ctx, func(string, int64) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestStorage_URL(t *testing.T) {
	s := NewStorage("/srv/media", "https://example.com/uploads/", nil)
	if got := s.URL("2024/beach.jpg"); got != "https://example.com/uploads/2024/beach.jpg" {
		t.Errorf("unexpected url %q", got)
	}
}
