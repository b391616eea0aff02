package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test convert defaults
	if cfg.Convert.UnitScale != 0.05 {
		t.Errorf("expected unit scale 0.05, got %f", cfg.Convert.UnitScale)
	}
	if cfg.Convert.TolerantImages {
		t.Error("expected tolerant images to be false by default")
	}
	if !cfg.Convert.EmbedTextures {
		t.Error("expected embed textures to be true by default")
	}
	if cfg.Convert.Timeout != time.Minute {
		t.Errorf("expected timeout 1m, got %v", cfg.Convert.Timeout)
	}

	// Test thumbnail defaults
	if cfg.Thumbnail.Width != 512 || cfg.Thumbnail.Height != 512 {
		t.Errorf("expected thumbnail 512x512, got %dx%d", cfg.Thumbnail.Width, cfg.Thumbnail.Height)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero scale", func(c *Config) { c.Convert.UnitScale = 0 }},
		{"negative scale", func(c *Config) { c.Convert.UnitScale = -1 }},
		{"negative timeout", func(c *Config) { c.Convert.Timeout = -time.Second }},
		{"zero width", func(c *Config) { c.Thumbnail.Width = 0 }},
		{"negative height", func(c *Config) { c.Thumbnail.Height = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
convert:
  unit_scale: 0.1
  tolerant_images: true
  embed_textures: false
  timeout: 30s

thumbnail:
  width: 1024
  height: 768

logging:
  level: "debug"
  log_file: "vpxtool.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Convert.UnitScale != 0.1 {
		t.Errorf("expected unit scale 0.1, got %f", cfg.Convert.UnitScale)
	}
	if !cfg.Convert.TolerantImages {
		t.Error("expected tolerant images to be true")
	}
	if cfg.Convert.EmbedTextures {
		t.Error("expected embed textures to be false")
	}
	if cfg.Convert.Timeout != 30*time.Second {
		t.Errorf("expected timeout 30s, got %v", cfg.Convert.Timeout)
	}

	if cfg.Thumbnail.Width != 1024 {
		t.Errorf("expected width 1024, got %d", cfg.Thumbnail.Width)
	}
	if cfg.Thumbnail.Height != 768 {
		t.Errorf("expected height 768, got %d", cfg.Thumbnail.Height)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "vpxtool.log" {
		t.Errorf("expected log file 'vpxtool.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
thumbnail:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Keep the user's real config out of the way
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create config.yaml in current directory
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("thumbnail:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Convert.UnitScale = 0.25
	cfg.Thumbnail.Width = 300
	cfg.Logging.Level = "warn"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved config: %v", err)
	}
	if !strings.HasPrefix(string(data), fileHeader) {
		t.Errorf("saved config lacks header:\n%s", data)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loading saved config: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch: got %+v, want %+v", *loaded, *cfg)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "scale flag",
			setup: func() {
				*flagScale = 0.5
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Convert.UnitScale != 0.5 {
					t.Errorf("expected unit scale 0.5, got %f", cfg.Convert.UnitScale)
				}
			},
			teardown: func() {
				*flagScale = 0
			},
		},
		{
			name: "tolerant flag",
			setup: func() {
				*flagTolerant = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Convert.TolerantImages {
					t.Error("expected tolerant images with tolerant flag")
				}
			},
			teardown: func() {
				*flagTolerant = false
			},
		},
		{
			name: "no-textures flag",
			setup: func() {
				*flagNoTextures = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Convert.EmbedTextures {
					t.Error("expected embed textures to be false with no-textures flag")
				}
			},
			teardown: func() {
				*flagNoTextures = false
			},
		},
		{
			name: "timeout flag",
			setup: func() {
				*flagTimeout = 5 * time.Second
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Convert.Timeout != 5*time.Second {
					t.Errorf("expected timeout 5s, got %v", cfg.Convert.Timeout)
				}
			},
			teardown: func() {
				*flagTimeout = 0
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Thumbnail.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Thumbnail.Width)
				}
				if cfg.Thumbnail.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Thumbnail.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setup()
			defer tt.teardown()

			// Apply flags to default config
			cfg := Default()
			applyFlags(cfg)

			// Verify
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
thumbnail:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Thumbnail.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Thumbnail.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Thumbnail.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Thumbnail.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("convert:\n  unit_scale: -2\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestLoadFromFileUnknownKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("convert:\n  unit_scal: 0.1\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("empty file: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("empty file changed config: %+v", *cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(configPath, []byte("logging:\n  level: error\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv(EnvConfig, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("expected log level 'error' from env config, got %s", cfg.Logging.Level)
	}
}
