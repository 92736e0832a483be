package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Engine backends.
const (
	BackendMPV   = "mpv"
	BackendAudio = "audio"
)

// Defaults applied by the getters.
const (
	DefaultCacheTTLMinutes = 180
	DefaultSinkWidth       = 1280
	DefaultSinkHeight      = 720
	DefaultVolume          = 100
)

type Config struct {
	Icons string `koanf:"icons"` // "nerd", "unicode" (default) or "none"

	// Resolution of media references into stream URIs
	Resolver ResolverConfig `koanf:"resolver"`

	// Media engine selection
	Engine EngineConfig `koanf:"engine"`

	// Render surface dimensions
	Sink SinkConfig `koanf:"sink"`

	Logging LoggingConfig `koanf:"logging"`

	// Desktop notifications (enabled by default)
	Notifications ToggleConfig `koanf:"notifications"`

	// MPRIS D-Bus interface (enabled by default)
	MPRIS ToggleConfig `koanf:"mpris"`
}

// ResolverConfig configures the yt-dlp resolver and the resolution cache.
type ResolverConfig struct {
	Command         string   `koanf:"command"`           // default: "yt-dlp"
	Args            []string `koanf:"args"`              // extra arguments passed before the reference
	Format          string   `koanf:"format"`            // yt-dlp format selector
	CacheTTLMinutes int      `koanf:"cache_ttl_minutes"` // 0 uses the default, negative disables the cache
}

// EngineConfig selects and configures the media engine.
type EngineConfig struct {
	Backend string   `koanf:"backend"` // "mpv" (default) or "audio"
	Command string   `koanf:"command"` // mpv binary (default: "mpv")
	Args    []string `koanf:"args"`    // extra mpv arguments
	Video   *bool    `koanf:"video"`   // open a video window (default: true)
	Volume  int      `koanf:"volume"`  // initial volume 0-100 (default: 100)
}

// SinkConfig holds the render surface dimensions.
type SinkConfig struct {
	Width  int `koanf:"width"`
	Height int `koanf:"height"`
}

// LoggingConfig holds the log destination and level.
type LoggingConfig struct {
	File  string `koanf:"file"`  // default: $XDG_STATE_HOME/tubeplay/tubeplay.log
	Level string `koanf:"level"` // default: "info"
}

// ToggleConfig is a section with a single enabled flag.
type ToggleConfig struct {
	Enabled *bool `koanf:"enabled"`
}

// Load reads ~/.config/tubeplay/config.toml then ./config.toml.
func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom merges the given TOML files in order, later files winning.
// Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.Logging.File = expandPath(cfg.Logging.File)
	cfg.Engine.Backend = strings.ToLower(strings.TrimSpace(cfg.Engine.Backend))
	cfg.Engine.Command = expandPath(cfg.Engine.Command)
	cfg.Resolver.Command = expandPath(cfg.Resolver.Command)

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/tubeplay/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "tubeplay", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// CacheEnabled reports whether resolutions are cached.
func (c *Config) CacheEnabled() bool {
	return c.Resolver.CacheTTLMinutes >= 0
}

// CacheTTL returns how long a cached resolution stays fresh.
func (c *Config) CacheTTL() time.Duration {
	minutes := c.Resolver.CacheTTLMinutes
	if minutes <= 0 {
		minutes = DefaultCacheTTLMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// GetEngineConfig returns the engine configuration with defaults applied.
func (c *Config) GetEngineConfig() EngineConfig {
	cfg := c.Engine

	if cfg.Backend != BackendAudio {
		cfg.Backend = BackendMPV
	}
	if cfg.Video == nil {
		video := true
		cfg.Video = &video
	}
	if cfg.Volume <= 0 || cfg.Volume > 100 {
		cfg.Volume = DefaultVolume
	}

	return cfg
}

// VideoEnabled reports whether the engine should open a video window.
func (c *Config) VideoEnabled() bool {
	cfg := c.GetEngineConfig()
	return cfg.Backend == BackendMPV && *cfg.Video
}

// GetSinkConfig returns the surface dimensions with defaults applied.
func (c *Config) GetSinkConfig() SinkConfig {
	cfg := c.Sink
	if cfg.Width <= 0 {
		cfg.Width = DefaultSinkWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultSinkHeight
	}
	return cfg
}

// NotificationsEnabled reports whether desktop notifications are sent.
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications.Enabled == nil || *c.Notifications.Enabled
}

// MPRISEnabled reports whether the MPRIS interface is exported.
func (c *Config) MPRISEnabled() bool {
	return c.MPRIS.Enabled == nil || *c.MPRIS.Enabled
}
