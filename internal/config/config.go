// Package config handles terrain tool and viewer configuration.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/mountainhome/internal/logger"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all settings.
type Config struct {
	Terrain  TerrainConfig  `yaml:"terrain"`
	Data     DataConfig     `yaml:"data"`
	Graphics GraphicsConfig `yaml:"graphics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// TerrainConfig describes the grid and how it is meshed.
type TerrainConfig struct {
	Width            int     `yaml:"width"`
	Height           int     `yaml:"height"`
	Depth            int     `yaml:"depth"`
	Backend          string  `yaml:"backend"` // octree or matrix
	ChunkSize        int     `yaml:"chunk_size"`
	PolyReduction    bool    `yaml:"poly_reduction"`
	AutoUpdate       bool    `yaml:"auto_update"`
	ReductionMaxCost float32 `yaml:"reduction_max_cost"`
	Material         string  `yaml:"material"`
}

// DataConfig holds world file locations.
type DataConfig struct {
	WorldPath   string `yaml:"world_path"`   // terrain save to load on start
	FetchSource string `yaml:"fetch_source"` // go-getter source for terraintool fetch
	FetchDir    string `yaml:"fetch_dir"`
	Screenshots string `yaml:"screenshots"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			Width:            64,
			Height:           64,
			Depth:            32,
			Backend:          "octree",
			ChunkSize:        16,
			PolyReduction:    false,
			AutoUpdate:       true,
			ReductionMaxCost: 0.05,
			Material:         "terrain",
		},
		Data: DataConfig{
			FetchDir:    "worlds",
			Screenshots: "screenshots",
		},
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	t := c.Terrain
	if t.Width <= 0 || t.Height <= 0 || t.Depth <= 0 {
		return fmt.Errorf("%w: terrain dimensions %dx%dx%d must be positive", ErrInvalid, t.Width, t.Height, t.Depth)
	}
	switch t.Backend {
	case "octree", "matrix":
	default:
		return fmt.Errorf("%w: terrain backend %q (want octree or matrix)", ErrInvalid, t.Backend)
	}
	if t.ChunkSize < 2 || t.ChunkSize > 256 || t.ChunkSize&(t.ChunkSize-1) != 0 {
		return fmt.Errorf("%w: chunk size %d must be a power of two in [2, 256]", ErrInvalid, t.ChunkSize)
	}
	if t.ReductionMaxCost < 0 {
		return fmt.Errorf("%w: reduction max cost %v is negative", ErrInvalid, t.ReductionMaxCost)
	}
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Graphics.Width, c.Graphics.Height)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
