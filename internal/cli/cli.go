// Package cli implements the tabpanel command-line interface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tabpanel/pkg/cache"
	"github.com/matzehuels/tabpanel/pkg/chart"
	"github.com/matzehuels/tabpanel/pkg/config"
	"github.com/matzehuels/tabpanel/pkg/errors"
	"github.com/matzehuels/tabpanel/pkg/export"
	"github.com/matzehuels/tabpanel/pkg/httputil"
	"github.com/matzehuels/tabpanel/pkg/render/docdef"
	"github.com/matzehuels/tabpanel/pkg/render/sink"
	"github.com/matzehuels/tabpanel/pkg/tabs"
	"github.com/matzehuels/tabpanel/pkg/view"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "tabpanel"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	stdout     io.Writer // documents written with --output -
	configPath string
	chartData  string
	tabsFile   string
	config     *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		stdout: os.Stdout,
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Factories
// =============================================================================

// loadTabs returns the tabs from --tabs, the config file, or the built-in set.
func (c *CLI) loadTabs() ([]tabs.Tab, error) {
	path := c.tabsFile
	if path == "" {
		path = c.config.Tabs.File
	}
	if path == "" {
		return tabs.Default(), nil
	}
	list, err := tabs.LoadFile(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded tabs", "file", path, "count", len(list))
	return list, nil
}

// loadChartConfig returns the chart data from --chart-data, or the defaults.
func (c *CLI) loadChartConfig() (chart.Config, error) {
	if c.chartData == "" {
		return chart.DefaultConfig(), nil
	}
	data, err := os.ReadFile(c.chartData)
	if err != nil {
		if os.IsNotExist(err) {
			return chart.Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "chart data %s", c.chartData)
		}
		return chart.Config{}, err
	}
	cfg := chart.DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return chart.Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse chart data %s", c.chartData)
	}
	return cfg, cfg.Validate()
}

// openCache opens the configured cache backend. With noCache, or when the
// cache cannot be opened, a NullCache is returned.
func (c *CLI) openCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir := c.config.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache()
		}
	}
	cc, err := cache.Open(ctx, cache.Options{
		Backend:  c.config.Cache.Backend,
		Dir:      dir,
		RedisURL: c.config.Cache.RedisURL,
	})
	if err != nil {
		c.Logger.Warn("cache disabled", "backend", c.config.Cache.Backend, "err", err)
		return cache.NewNullCache()
	}
	return cc
}

// newExporter builds the export service for format.
func (c *CLI) newExporter(format string, cc cache.Cache, pagePerTab bool) (*export.Service, error) {
	cfg := c.config.Export
	renderer, err := sink.ForFormat(format, sink.Options{
		Engine:    cfg.Renderer,
		ChromeBin: cfg.ChromeBin,
		Logger:    c.Logger,
	})
	if err != nil {
		return nil, err
	}
	fetcher := httputil.NewFetcher(
		httputil.WithTimeout(cfg.FetchTimeout),
		httputil.WithMaxBytes(cfg.MaxImageBytes),
		httputil.WithCache(cc, nil, c.config.Cache.TTL),
	)
	return export.NewService(fetcher, renderer, c.Logger,
		export.WithFormat(format),
		export.WithBaseURL(cfg.BaseURL),
		export.WithFontSize(cfg.FontSize),
		export.WithConcurrency(cfg.Concurrency),
		export.WithPagePerTab(pagePerTab || cfg.PagePerTab),
		export.WithInfo(docdef.Info{Creator: appName}),
	), nil
}

// newView builds an interactive view with a canvas of the configured size.
// The caller calls AfterViewInit.
func (c *CLI) newView(list []tabs.Tab, exp view.Exporter, chartCfg chart.Config) (*view.View, error) {
	cc := c.config.Chart
	v, err := view.New(list,
		view.WithInteractive(true),
		view.WithLogger(c.Logger),
		view.WithExporter(exp),
		view.WithChartConfig(chartCfg),
		view.WithFilename(c.config.Export.Filename),
		view.WithDelays(view.Delays{
			Render:   cc.RenderDelay,
			Reselect: cc.ReselectDelay,
			Snapshot: cc.SnapshotDelay,
		}),
	)
	if err != nil {
		return nil, err
	}
	v.AttachCanvas(chart.NewCanvas(cc.Width, cc.Height))
	return v, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/tabpanel/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// resolvedCacheDir is the directory the file cache uses.
func (c *CLI) resolvedCacheDir() (string, error) {
	if c.config.Cache.Dir != "" {
		return c.config.Cache.Dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}
