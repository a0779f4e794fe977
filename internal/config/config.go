package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfiguration отмечает настройки, с которыми запуск невозможен.
var ErrInvalidConfiguration = errors.New("invalid configuration")

type Config struct {
	InputPath string `yaml:"input,omitempty"`
	OutputDir string `yaml:"output,omitempty"`
	Detector  string `yaml:"detector"`

	HorizontalGap  int `yaml:"horizontal_gap"`
	VerticalGap    int `yaml:"vertical_gap"`
	Padding        int `yaml:"padding"`
	AlphaThreshold int `yaml:"alpha_threshold"`
	MinElementSize int `yaml:"min_element_size"`
	Connectivity   int `yaml:"connectivity"`

	// KeyColor задает цвет фона для непрозрачных источников (PDF): "white", "black" или "#rrggbb".
	KeyColor     string `yaml:"key_color,omitempty"`
	KeyTolerance int    `yaml:"key_tolerance"`

	DPI           int    `yaml:"dpi"`
	Workers       int    `yaml:"workers"`
	WriteManifest bool   `yaml:"manifest"`
	ShowStats     bool   `yaml:"stats"`
	Quiet         bool   `yaml:"quiet"`
	BuildVersion  string `yaml:"-"`
}

func Default() *Config {
	return &Config{
		Detector:       "alpha",
		HorizontalGap:  100,
		VerticalGap:    50,
		Padding:        20,
		AlphaThreshold: 10,
		MinElementSize: 10,
		Connectivity:   4,
		KeyTolerance:   16,
		DPI:            150,
		Workers:        runtime.NumCPU(),
		WriteManifest:  true,
	}
}

// Load читает YAML-файл поверх значений по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения конфигурации %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.HorizontalGap < 0:
		return fmt.Errorf("%w: horizontal_gap=%d < 0", ErrInvalidConfiguration, c.HorizontalGap)
	case c.VerticalGap < 0:
		return fmt.Errorf("%w: vertical_gap=%d < 0", ErrInvalidConfiguration, c.VerticalGap)
	case c.Padding < 0:
		return fmt.Errorf("%w: padding=%d < 0", ErrInvalidConfiguration, c.Padding)
	case c.AlphaThreshold < 0 || c.AlphaThreshold > 255:
		return fmt.Errorf("%w: alpha_threshold=%d вне диапазона [0,255]", ErrInvalidConfiguration, c.AlphaThreshold)
	case c.MinElementSize < 0:
		return fmt.Errorf("%w: min_element_size=%d < 0", ErrInvalidConfiguration, c.MinElementSize)
	case c.Connectivity != 4 && c.Connectivity != 8:
		return fmt.Errorf("%w: connectivity=%d (допустимо 4 или 8)", ErrInvalidConfiguration, c.Connectivity)
	case c.KeyTolerance < 0 || c.KeyTolerance > 255:
		return fmt.Errorf("%w: key_tolerance=%d вне диапазона [0,255]", ErrInvalidConfiguration, c.KeyTolerance)
	case c.DPI <= 0:
		return fmt.Errorf("%w: dpi=%d", ErrInvalidConfiguration, c.DPI)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers=%d", ErrInvalidConfiguration, c.Workers)
	}
	return nil
}
