package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"mediasweep/internal/domain"
)

// EnvPrefix prefixes every environment override; "__" separates nesting levels
// (MEDIASWEEP_SCAN__WORKERS -> scan.workers)
const EnvPrefix = "MEDIASWEEP_"

// ConfigPathEnvVar names the variable holding an explicit config file path
const ConfigPathEnvVar = "MEDIASWEEP_CONFIG"

// DefaultConfigPaths are searched in order when no explicit path is given
var DefaultConfigPaths = []string{
	"mediasweep.yaml",
	"mediasweep.yml",
	"~/.config/mediasweep/config.yaml",
}

// Config is the complete runtime configuration
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Storage  StorageConfig  `koanf:"storage"`
	Scan     ScanConfig     `koanf:"scan"`
	Variants VariantsConfig `koanf:"variants"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

type StorageConfig struct {
	Root      string   `koanf:"root" validate:"required"`
	PublicURL string   `koanf:"public_url"`
	Exclude   []string `koanf:"exclude"`
}

type ScanConfig struct {
	Workers int           `koanf:"workers" validate:"min=1,max=64"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

type VariantsConfig struct {
	Boxes             []domain.VariantBox `koanf:"boxes" validate:"required,min=1,dive"`
	BigImageThreshold int                 `koanf:"big_image_threshold" validate:"gte=0"` // 0 disables the scaled master
	Quality           int                 `koanf:"quality" validate:"min=1,max=100"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
	File   string `koanf:"file"`
}

type MetricsConfig struct {
	Addr string `koanf:"addr"` // Empty disables the /metrics listener
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "~/.local/share/mediasweep/mediasweep.db",
		},
		Storage: StorageConfig{
			Root:      "~/mediasweep/uploads",
			PublicURL: "/uploads",
			Exclude:   []string{"**/cache/**", "**/thumbs/**", "**/.thumbnails/**"},
		},
		Scan: ScanConfig{
			Workers: 4,
			Timeout: 10 * time.Minute,
		},
		Variants: VariantsConfig{
			Boxes: []domain.VariantBox{
				{Name: "hero", Width: 1920, Height: 800, Crop: true, Smart: true},
				{Name: "page-background", Width: 1920, Height: 0},
				{Name: "carousel-photo", Width: 1200, Height: 675, Crop: true},
				{Name: "standard-page-photo", Width: 800, Height: 0},
				{Name: "teaser-photo", Width: 400, Height: 0},
			},
			BigImageThreshold: 2560,
			Quality:           82,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration from defaults, the config file and the
// environment, in increasing priority
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file; an empty path skips the file layer
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(ExpandHome(path)), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.Database.Path = ExpandHome(cfg.Database.Path)
	cfg.Storage.Root = ExpandHome(cfg.Storage.Root)
	cfg.Log.File = ExpandHome(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envTransformFunc maps MEDIASWEEP_SCAN__WORKERS to scan.workers.
// The config path variable itself is not a setting.
func envTransformFunc(key string) string {
	if key == ConfigPathEnvVar {
		return ""
	}
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// sliceConfigPaths are accepted as comma-separated strings from the environment
var sliceConfigPaths = []string{"storage.exclude"}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// findConfigFile returns the explicit config path or the first default that exists
func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(ExpandHome(p)); err == nil {
			return p
		}
	}
	return ""
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and cross-field rules
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Variants.Boxes))
	for _, b := range c.Variants.Boxes {
		if seen[b.Name] {
			return fmt.Errorf("variants.boxes: duplicate box name %q", b.Name)
		}
		if b.Name == domain.ScaledMasterName {
			return fmt.Errorf("variants.boxes: %q is reserved for the scaled master", b.Name)
		}
		if b.Crop && b.AutoHeight() {
			return fmt.Errorf("variants.boxes: %q crops but has no height", b.Name)
		}
		seen[b.Name] = true
	}
	return nil
}
