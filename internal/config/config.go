// Package config handles configuration loading and shared settings.
package config

import (
	"os"

	"github.com/woozymasta/wkbgeo/internal/wkb"

	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
type Config struct {
	Decoder Decoder `yaml:"decoder" json:"decoder"`
	Render  Render  `yaml:"render" json:"render"`
}

// Decoder holds WKB decoding limits.
type Decoder struct {
	MaxDepth       int  `yaml:"max_depth,omitempty" json:"max_depth"`
	MaxInputSize   int  `yaml:"max_input_size,omitempty" json:"max_input_size"` // bytes, after hex unpacking
	RejectTrailing bool `yaml:"reject_trailing,omitempty" json:"reject_trailing"`
}

// Render holds preview image settings.
type Render struct {
	Size        int     `yaml:"size,omitempty" json:"size"`
	MaxSize     int     `yaml:"max_size,omitempty" json:"max_size"`
	Padding     int     `yaml:"padding,omitempty" json:"padding"`
	StrokeWidth float64 `yaml:"stroke_width,omitempty" json:"stroke_width"`
	PointSize   float64 `yaml:"point_size,omitempty" json:"point_size"`
	Thumbnail   int     `yaml:"thumbnail,omitempty" json:"thumbnail"`
	Quality     float32 `yaml:"quality,omitempty" json:"quality"`
	Lossless    bool    `yaml:"lossless,omitempty" json:"lossless"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Decoder: Decoder{
			MaxDepth:     wkb.DefaultMaxDepth,
			MaxInputSize: 16 << 20,
		},
		Render: Render{
			Size:        512,
			MaxSize:     4096,
			Padding:     16,
			StrokeWidth: 2,
			PointSize:   6,
			Thumbnail:   0,
			Quality:     85,
		},
	}
}

// Load reads and parses the YAML configuration file from the specified path.
// Fields left unset keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadOrDefault loads path, or returns Default when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Options converts the decoder section into wkb.Options.
func (d Decoder) Options() wkb.Options {
	return wkb.Options{
		MaxDepth:       d.MaxDepth,
		MaxInputSize:   d.MaxInputSize,
		RejectTrailing: d.RejectTrailing,
	}
}

func (c *Config) applyDefaults() {
	def := Default()

	if c.Decoder.MaxDepth <= 0 {
		c.Decoder.MaxDepth = def.Decoder.MaxDepth
	}
	if c.Decoder.MaxInputSize <= 0 {
		c.Decoder.MaxInputSize = def.Decoder.MaxInputSize
	}

	if c.Render.Size <= 0 {
		c.Render.Size = def.Render.Size
	}
	if c.Render.MaxSize <= 0 {
		c.Render.MaxSize = def.Render.MaxSize
	}
	if c.Render.Padding < 0 {
		c.Render.Padding = 0
	}
	if c.Render.StrokeWidth <= 0 {
		c.Render.StrokeWidth = def.Render.StrokeWidth
	}
	if c.Render.PointSize <= 0 {
		c.Render.PointSize = def.Render.PointSize
	}
	if c.Render.Quality <= 0 || c.Render.Quality > 100 {
		c.Render.Quality = def.Render.Quality
	}
}
