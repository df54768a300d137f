// Package config loads tabpanel configuration.
//
// Configuration is read from TOML or YAML depending on the file extension.
// Every field has a default, so a config file only needs the values it
// changes:
//
//	[export]
//	renderer = "chrome"
//	concurrency = 8
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/tabpanel/pkg/errors"
)

// Config is the root configuration structure.
type Config struct {
	Server ServerConfig `toml:"server" yaml:"server"`
	Export ExportConfig `toml:"export" yaml:"export"`
	Chart  ChartConfig  `toml:"chart" yaml:"chart"`
	Cache  CacheConfig  `toml:"cache" yaml:"cache"`
	Tabs   TabsConfig   `toml:"tabs" yaml:"tabs"`
}

// ServerConfig holds HTTP panel settings.
type ServerConfig struct {
	Addr       string        `toml:"addr" yaml:"addr"`
	SessionTTL time.Duration `toml:"session_ttl" yaml:"session_ttl"`
}

// ExportConfig holds document export settings.
type ExportConfig struct {
	Filename      string        `toml:"filename" yaml:"filename"`
	FontSize      float64       `toml:"font_size" yaml:"font_size"`
	Concurrency   int           `toml:"concurrency" yaml:"concurrency"`
	FetchTimeout  time.Duration `toml:"fetch_timeout" yaml:"fetch_timeout"`
	MaxImageBytes int64         `toml:"max_image_bytes" yaml:"max_image_bytes"`
	Renderer      string        `toml:"renderer" yaml:"renderer"` // fpdf or chrome
	BaseURL       string        `toml:"base_url" yaml:"base_url"` // resolves relative image sources
	PagePerTab    bool          `toml:"page_per_tab" yaml:"page_per_tab"`
	ChromeBin     string        `toml:"chrome_bin" yaml:"chrome_bin"`
}

// ChartConfig holds chart geometry and timing.
type ChartConfig struct {
	Width         int           `toml:"width" yaml:"width"`
	Height        int           `toml:"height" yaml:"height"`
	RenderDelay   time.Duration `toml:"render_delay" yaml:"render_delay"`
	ReselectDelay time.Duration `toml:"reselect_delay" yaml:"reselect_delay"`
	SnapshotDelay time.Duration `toml:"snapshot_delay" yaml:"snapshot_delay"`
}

// CacheConfig selects the image cache backend.
type CacheConfig struct {
	Backend  string        `toml:"backend" yaml:"backend"` // none, file or redis
	Dir      string        `toml:"dir" yaml:"dir"`
	RedisURL string        `toml:"redis_url" yaml:"redis_url"`
	TTL      time.Duration `toml:"ttl" yaml:"ttl"`
}

// TabsConfig points at an optional tabs file replacing the built-in tabs.
type TabsConfig struct {
	File string `toml:"file" yaml:"file"`
}

// Renderer names.
const (
	RendererFPDF   = "fpdf"
	RendererChrome = "chrome"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:       ":8080",
			SessionTTL: 30 * time.Minute,
		},
		Export: ExportConfig{
			Filename:      "tabs-export.pdf",
			FontSize:      12,
			Concurrency:   4,
			FetchTimeout:  10 * time.Second,
			MaxImageBytes: 10 << 20,
			Renderer:      RendererFPDF,
		},
		Chart: ChartConfig{
			Width:         900,
			Height:        400,
			RenderDelay:   500 * time.Millisecond,
			ReselectDelay: 50 * time.Millisecond,
			SnapshotDelay: 500 * time.Millisecond,
		},
		Cache: CacheConfig{
			Backend: "file",
			TTL:     24 * time.Hour,
		},
	}
}

// Load reads the config file at path on top of the defaults.
// Files ending in .yaml or .yml are YAML, everything else is TOML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path, or the user config file when path is empty.
// A missing user config file yields the defaults; a missing explicit path is
// an error.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	user := UserConfigPath()
	if user == "" {
		return Default(), nil
	}
	if _, err := os.Stat(user); err != nil {
		return Default(), nil
	}
	return Load(user)
}

// UserConfigPath returns $XDG_CONFIG_HOME/tabpanel/config.toml, or the
// platform equivalent. Returns "" if no config directory can be determined.
func UserConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tabpanel", "config.toml")
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch {
	case c.Export.FontSize <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "export.font_size must be positive, got %v", c.Export.FontSize)
	case c.Export.Concurrency < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "export.concurrency must be at least 1, got %d", c.Export.Concurrency)
	case c.Export.MaxImageBytes <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "export.max_image_bytes must be positive")
	case c.Chart.Width <= 0 || c.Chart.Height <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "chart size must be positive, got %dx%d", c.Chart.Width, c.Chart.Height)
	case c.Chart.RenderDelay < 0 || c.Chart.ReselectDelay < 0 || c.Chart.SnapshotDelay < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "chart delays cannot be negative")
	case c.Server.SessionTTL <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "server.session_ttl must be positive")
	}

	switch c.Export.Renderer {
	case RendererFPDF, RendererChrome:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "export.renderer must be %q or %q, got %q", RendererFPDF, RendererChrome, c.Export.Renderer)
	}

	switch c.Cache.Backend {
	case "none", "file", "redis":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be none, file or redis, got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisURL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
	}

	if c.Export.Filename != "" {
		if err := errors.ValidateFilename(c.Export.Filename); err != nil {
			return err
		}
	}
	return nil
}
