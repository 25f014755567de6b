package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mediasweep/internal/domain"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Scan.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Scan.Workers)
	}
	if cfg.Scan.Timeout != 10*time.Minute {
		t.Errorf("expected 10m timeout, got %v", cfg.Scan.Timeout)
	}
	if _, ok := domain.FindBox("hero", cfg.Variants.Boxes); !ok {
		t.Error("expected default hero box")
	}
	if strings.HasPrefix(cfg.Database.Path, "~") {
		t.Errorf("expected ~ to be expanded, got %s", cfg.Database.Path)
	}
}

func TestLoadFile_FileAndEnvLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mediasweep.yaml")
	content := `
database:
  path: /tmp/ms.db
storage:
  root: /srv/uploads
  public_url: https://example.com/uploads
scan:
  workers: 2
  timeout: 30s
variants:
  big_image_threshold: 0
  boxes:
    - name: hero
      width: 1600
      height: 600
      crop: true
    - name: teaser-photo
      width: 300
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MEDIASWEEP_SCAN__WORKERS", "8")
	t.Setenv("MEDIASWEEP_STORAGE__EXCLUDE", "**/cache/**, **/tmp/**")
	t.Setenv("MEDIASWEEP_LOG__LEVEL", "debug")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Database.Path != "/tmp/ms.db" {
		t.Errorf("expected file value for database.path, got %s", cfg.Database.Path)
	}
	if cfg.Scan.Workers != 8 {
		t.Errorf("expected env override 8 workers, got %d", cfg.Scan.Workers)
	}
	if cfg.Scan.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.Scan.Timeout)
	}
	if len(cfg.Variants.Boxes) != 2 {
		t.Fatalf("expected file boxes to replace defaults, got %+v", cfg.Variants.Boxes)
	}
	if b := cfg.Variants.Boxes[0]; b.Name != "hero" || b.Width != 1600 || !b.Crop {
		t.Errorf("unexpected hero box %+v", b)
	}
	if cfg.Variants.BigImageThreshold != 0 {
		t.Errorf("expected threshold 0, got %d", cfg.Variants.BigImageThreshold)
	}
	if len(cfg.Storage.Exclude) != 2 || cfg.Storage.Exclude[1] != "**/tmp/**" {
		t.Errorf("unexpected exclude list %v", cfg.Storage.Exclude)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "zero workers", mutate: func(c *Config) { c.Scan.Workers = 0 }, wantErr: "Workers"},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "Level"},
		{name: "no boxes", mutate: func(c *Config) { c.Variants.Boxes = nil }, wantErr: "Boxes"},
		{name: "box without width", mutate: func(c *Config) {
			c.Variants.Boxes = []domain.VariantBox{{Name: "x", Width: 0}}
		}, wantErr: "Width"},
		{name: "duplicate box names", mutate: func(c *Config) {
			c.Variants.Boxes = append(c.Variants.Boxes, domain.VariantBox{Name: "hero", Width: 10})
		}, wantErr: "duplicate box name"},
		{name: "reserved name", mutate: func(c *Config) {
			c.Variants.Boxes = append(c.Variants.Boxes, domain.VariantBox{Name: "scaled", Width: 10})
		}, wantErr: "reserved"},
		{name: "crop without height", mutate: func(c *Config) {
			c.Variants.Boxes = []domain.VariantBox{{Name: "x", Width: 10, Crop: true}}
		}, wantErr: "no height"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandHome("~/x"); got != filepath.Join(home, "x") {
		t.Errorf("ExpandHome(~/x) = %s", got)
	}
	if got := ExpandHome("/abs"); got != "/abs" {
		t.Errorf("ExpandHome(/abs) = %s", got)
	}
}
