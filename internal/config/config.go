// Package config loads the background layer settings from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Background configures the image drawn behind the terminal grid.
type Background struct {
	// Image is the path of the image file; empty disables the layer.
	Image string `yaml:"image"`

	// Opacity is the alpha the layer is composited with, in [0, 1].
	Opacity float32 `yaml:"opacity"`
}

// Config is the subset of the emulator configuration this layer reads.
type Config struct {
	Background Background `yaml:"background"`
}

// Default returns the configuration used when no file is given: no image,
// full opacity.
func Default() Config {
	return Config{Background: Background{Opacity: 1}}
}

// Load reads a YAML configuration file. Missing keys keep their defaults and
// the opacity is clamped into [0, 1].
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration bytes over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	cfg.Background.Opacity = Clamp01(cfg.Background.Opacity)
	return cfg, nil
}

// Clamp01 clamps an opacity value into [0, 1]. Override layers (flags) use
// it so every settings source applies the same bounds.
func Clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
