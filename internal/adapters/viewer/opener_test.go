package viewer

import (
	"os"
	"path/filepath"
	"testing"
)

type dirResolver string

func (d dirResolver) Abs(file string) (string, error) {
	return filepath.Join(string(d), filepath.FromSlash(file)), nil
}

func TestOpener_Command(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "2024"), 0755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(dir, "2024", "beach.jpg")
	if err := os.WriteFile(file, []byte("jpeg"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("configured viewer", func(t *testing.T) {
		t.Setenv(ViewerEnvVar, "feh")
		o := NewOpener(dirResolver(dir))

		cmd, err := o.Command("2024/beach.jpg")
		if err != nil {
			t.Fatalf("Command failed: %v", err)
		}
		if len(cmd.Args) != 2 || cmd.Args[0] != "feh" || cmd.Args[1] != file {
			t.Errorf("unexpected args %v", cmd.Args)
		}
	})

	t.Run("system default", func(t *testing.T) {
		t.Setenv(ViewerEnvVar, "")
		o := NewOpener(dirResolver(dir))

		cmd, err := o.Command("2024/beach.jpg")
		if err != nil {
			t.Skipf("no default opener on this platform: %v", err)
		}
		if cmd.Args[len(cmd.Args)-1] != file {
			t.Errorf("expected the file as last argument, got %v", cmd.Args)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		o := NewOpener(dirResolver(dir))
		if _, err := o.Command("2024/missing.jpg"); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
