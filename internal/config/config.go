// Package config handles converter configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all converter settings.
type Config struct {
	Convert   ConvertConfig   `yaml:"convert"`
	Thumbnail ThumbnailConfig `yaml:"thumbnail"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ConvertConfig holds scene conversion settings.
type ConvertConfig struct {
	UnitScale      float32       `yaml:"unit_scale"`      // Table units to scene units
	TolerantImages bool          `yaml:"tolerant_images"` // Keep partially decoded bitmaps
	EmbedTextures  bool          `yaml:"embed_textures"`
	Timeout        time.Duration `yaml:"timeout"` // Per table, 0 disables
}

// ThumbnailConfig holds preview image settings.
type ThumbnailConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			UnitScale:      0.05,
			TolerantImages: false,
			EmbedTextures:  true,
			Timeout:        time.Minute,
		},
		Thumbnail: ThumbnailConfig{
			Width:  512,
			Height: 512,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if !(c.Convert.UnitScale > 0) {
		return fmt.Errorf("%w: unit_scale must be positive, got %g", ErrInvalid, c.Convert.UnitScale)
	}
	if c.Convert.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout %v", ErrInvalid, c.Convert.Timeout)
	}
	if c.Thumbnail.Width <= 0 || c.Thumbnail.Height <= 0 {
		return fmt.Errorf("%w: thumbnail size %dx%d", ErrInvalid, c.Thumbnail.Width, c.Thumbnail.Height)
	}
	return nil
}
