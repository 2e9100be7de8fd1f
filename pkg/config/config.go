// Package config provides configuration loading and management.
package config

import (
	"image/color"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the full configuration: the engine settings the plugin
// consumes plus the simulation-harness settings used only by the CLI.
type Config struct {
	// Engine
	Enabled         bool   `yaml:"enabled"`
	OutputDirectory string `yaml:"output_directory"`

	// Logging
	Log LogConfig `yaml:"log"`

	// Harness
	Harness HarnessConfig `yaml:"harness"`
}

// LogConfig represents logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// HarnessConfig represents the simulated host the CLI runs the engine in.
// An embedding host ignores this section entirely.
type HarnessConfig struct {
	Scenes       []string `yaml:"scenes"`
	AudioSources []string `yaml:"audio_sources"`
	Width        int      `yaml:"width"`
	Height       int      `yaml:"height"`
	FPS          float64  `yaml:"fps"`
	PixelFormat  string   `yaml:"pixel_format"`
	DurationSec  int      `yaml:"duration_sec"`
	HTTPAddr     string   `yaml:"http_addr"`

	// Test pattern colors
	BackgroundColor string `yaml:"background_color"`
	BarColor        string `yaml:"bar_color"`
	LabelColor      string `yaml:"label_color"`
}

// Defaults returns a Config with default values. An empty output directory
// resolves to the host's module config path at load time.
func Defaults() Config {
	return Config{
		Enabled: true,

		Log: LogConfig{
			Level: "info",
		},

		Harness: HarnessConfig{
			Scenes:       []string{"Game", "Lobby"},
			AudioSources: []string{"Game"},
			Width:        640,
			Height:       360,
			FPS:          60.0,
			PixelFormat:  "I420",
			DurationSec:  3,

			BackgroundColor: "#1a1a2e",
			BarColor:        "#4ade80",
			LabelColor:      "#ffffff",
		},
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ParseColor parses a hex color string to color.Color.
func ParseColor(hex string) color.Color {
	if len(hex) == 0 {
		return color.Black
	}

	if hex[0] == '#' {
		hex = hex[1:]
	}

	if len(hex) != 6 {
		return color.Black
	}

	var r, g, b uint8
	for i, c := range []byte{hex[0], hex[1]} {
		v := hexValue(c)
		if i == 0 {
			r = v << 4
		} else {
			r |= v
		}
	}
	for i, c := range []byte{hex[2], hex[3]} {
		v := hexValue(c)
		if i == 0 {
			g = v << 4
		} else {
			g |= v
		}
	}
	for i, c := range []byte{hex[4], hex[5]} {
		v := hexValue(c)
		if i == 0 {
			b = v << 4
		} else {
			b |= v
		}
	}

	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func hexValue(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}
