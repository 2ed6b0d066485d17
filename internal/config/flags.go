package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagWorld      = flag.String("world", "", "Terrain save to load")
	flagBackend    = flag.String("backend", "", "Grid backend: octree or matrix")
	flagChunkSize  = flag.Int("chunk-size", 0, "Chunk edge length in tiles")
	flagReduce     = flag.Bool("reduce", false, "Simplify chunk meshes")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagWorld != "" {
		cfg.Data.WorldPath = *flagWorld
	}
	if *flagBackend != "" {
		cfg.Terrain.Backend = *flagBackend
	}
	if *flagChunkSize > 0 {
		cfg.Terrain.ChunkSize = *flagChunkSize
	}
	if *flagReduce {
		cfg.Terrain.PolyReduction = true
	}
}
