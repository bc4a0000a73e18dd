// Package config loads the YAML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

type Dim struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

type SPI struct {
	Dev     string `yaml:"dev"`      // "" picks the first port
	SpeedHz int    `yaml:"speed_hz"` // e.g. 2500000
}

type Cube struct {
	Driver          string  `yaml:"driver"` // "sim" | "spi"
	Dim             Dim     `yaml:"dim"`
	XFlipEveryRow   bool    `yaml:"x_flip_every_row"`
	YFlipEveryPanel bool    `yaml:"y_flip_every_panel"`
	ColorOrder      string  `yaml:"color_order"`
	Brightness      float64 `yaml:"brightness"`
	Shader          string  `yaml:"shader"`
	Preset          string  `yaml:"preset,omitempty"`
	BudgetmA        float64 `yaml:"budget_ma"`
	WhiteCap        float64 `yaml:"white_cap"`
	SPI             SPI     `yaml:"spi,omitempty"`
}

type Frames struct {
	Root    string `yaml:"root,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

type Capture struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Upload struct {
	Dir   string `yaml:"dir,omitempty"`
	URL   string `yaml:"url,omitempty"`
	Queue int    `yaml:"queue"`
}

type Preview struct {
	ThrottleMs int `yaml:"throttle_ms"`
}

type Config struct {
	Addr        string `yaml:"addr"`
	LogLevel    string `yaml:"log_level"`
	Scenes      string `yaml:"scenes"`
	WatchScenes bool   `yaml:"watch_scenes"`
	CloudType   string `yaml:"cloud_type,omitempty"`
	MaxInflight int64  `yaml:"max_inflight"`

	Frames  Frames  `yaml:"frames"`
	Capture Capture `yaml:"capture"`
	Upload  Upload  `yaml:"upload"`
	Cube    Cube    `yaml:"cube"`
	Preview Preview `yaml:"preview"`
}

func Default() *Config {
	return &Config{
		Addr:        ":8080",
		LogLevel:    "info",
		Scenes:      "scenes.json",
		MaxInflight: 8,
		Frames:      Frames{Root: "frames"},
		Capture:     Capture{Width: 256, Height: 256},
		Upload:      Upload{Queue: 16},
		Cube: Cube{
			Driver:     "sim",
			Dim:        Dim{X: 8, Y: 8, Z: 8},
			ColorOrder: "GRB",
			Brightness: 0.5,
			Shader:     "points",
			BudgetmA:   3000,
			WhiteCap:   2.2,
			SPI:        SPI{SpeedHz: 2500000},
		},
		Preview: Preview{ThrottleMs: 50},
	}
}

// Load reads path over the defaults, so a partial file is fine.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}
	if c.Scenes == "" {
		bad("scenes path is empty")
	}
	if c.Frames.Root == "" && c.Frames.BaseURL == "" {
		bad("one of frames.root or frames.base_url is required")
	}
	if c.MaxInflight <= 0 {
		bad("max_inflight must be positive, got %d", c.MaxInflight)
	}
	if c.Capture.Width <= 0 || c.Capture.Height <= 0 {
		bad("capture size %dx%d", c.Capture.Width, c.Capture.Height)
	}
	if c.Upload.Queue < 0 {
		bad("upload.queue must not be negative")
	}
	d := c.Cube.Dim
	if d.X <= 0 || d.Y <= 0 || d.Z <= 0 {
		bad("cube.dim %dx%dx%d", d.X, d.Y, d.Z)
	}
	switch strings.ToLower(c.Cube.Driver) {
	case "sim", "spi":
	default:
		bad("cube.driver %q, want sim or spi", c.Cube.Driver)
	}
	if c.Cube.Brightness < 0 || c.Cube.Brightness > 1 {
		bad("cube.brightness %v outside [0,1]", c.Cube.Brightness)
	}
	return errors.Join(errs...)
}
