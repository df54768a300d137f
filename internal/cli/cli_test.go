package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/tabpanel/pkg/cache"
	"github.com/matzehuels/tabpanel/pkg/chart"
	"github.com/matzehuels/tabpanel/pkg/errors"
	"github.com/matzehuels/tabpanel/pkg/render/sink"
)

func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	c := New(io.Discard, LogInfo)
	c.config.Cache.Dir = t.TempDir()
	return c
}

func TestLoadChartConfig(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name     string
		path     string
		wantCode errors.Code
		wantLen  int
	}{
		{"default", "", "", 5},
		{"custom", write("ok.json", `{"labels":["A","B"],"values":[1,2]}`), "", 2},
		{"missing", filepath.Join(dir, "nope.json"), errors.ErrCodeFileNotFound, 0},
		{"malformed", write("bad.json", `{"labels":`), errors.ErrCodeInvalidConfig, 0},
		{"mismatched", write("mismatch.json", `{"labels":["A"],"values":[1,2]}`), errors.ErrCodeChartFailed, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCLI(t)
			c.chartData = tt.path
			cfg, err := c.loadChartConfig()
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("err = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadChartConfig: %v", err)
			}
			if len(cfg.Values) != tt.wantLen {
				t.Errorf("values = %d, want %d", len(cfg.Values), tt.wantLen)
			}
		})
	}
}

func TestLoadTabs(t *testing.T) {
	c := newTestCLI(t)
	list, err := c.loadTabs()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Errorf("default tabs = %d, want 3", len(list))
	}

	path := filepath.Join(t.TempDir(), "tabs.toml")
	os.WriteFile(path, []byte(`
[[tab]]
id = "only"
title = "Only"
html = "<p>hi</p>"
`), 0o644)
	c.tabsFile = path
	list, err = c.loadTabs()
	if err != nil {
		t.Fatalf("loadTabs: %v", err)
	}
	if len(list) != 1 || list[0].ID != "only" {
		t.Errorf("tabs = %+v", list)
	}
}

func TestRenderChartCache(t *testing.T) {
	ctx := context.Background()
	c := newTestCLI(t)
	cc, err := cache.NewFileCache(c.config.Cache.Dir)
	if err != nil {
		t.Fatal(err)
	}
	defer cc.Close()

	first, cached, err := c.renderChart(ctx, cc, chart.DefaultConfig(), 300, 150)
	if err != nil {
		t.Fatalf("renderChart: %v", err)
	}
	if cached {
		t.Error("first render reported cached")
	}
	second, cached, err := c.renderChart(ctx, cc, chart.DefaultConfig(), 300, 150)
	if err != nil {
		t.Fatal(err)
	}
	if !cached || string(first) != string(second) {
		t.Error("second render not served from cache")
	}

	_, cached, _ = c.renderChart(ctx, cc, chart.DefaultConfig(), 301, 150)
	if cached {
		t.Error("different size served from cache")
	}

	n, err := clearCacheDir(c.config.Cache.Dir)
	if err != nil {
		t.Fatalf("clearCacheDir: %v", err)
	}
	if n != 2 {
		t.Errorf("cleared %d entries, want 2", n)
	}
}

func TestClearCacheDirMissing(t *testing.T) {
	n, err := clearCacheDir(filepath.Join(t.TempDir(), "absent"))
	if err != nil || n != 0 {
		t.Errorf("clearCacheDir(absent) = %d, %v", n, err)
	}
}

func TestNewExporter(t *testing.T) {
	c := newTestCLI(t)
	for _, f := range sink.Formats {
		svc, err := c.newExporter(f, cache.NewNullCache(), false)
		if err != nil {
			t.Fatalf("newExporter(%s): %v", f, err)
		}
		if svc.Format() != f {
			t.Errorf("Format = %q, want %q", svc.Format(), f)
		}
	}
	c.config.Export.Renderer = "bogus"
	if _, err := c.newExporter(sink.FormatPDF, cache.NewNullCache(), false); err == nil {
		t.Error("unknown renderer accepted")
	}
}

func TestOpenCacheFallback(t *testing.T) {
	c := newTestCLI(t)
	if _, ok := c.openCache(context.Background(), true).(*cache.NullCache); !ok {
		t.Error("--no-cache did not yield a NullCache")
	}
	if _, ok := c.openCache(context.Background(), false).(*cache.FileCache); !ok {
		t.Error("file backend did not yield a FileCache")
	}
	c.config.Cache.Backend = "bogus"
	if _, ok := c.openCache(context.Background(), false).(*cache.NullCache); !ok {
		t.Error("unknown backend did not fall back to NullCache")
	}
}

func TestRootCommand(t *testing.T) {
	c := newTestCLI(t)
	root := c.RootCommand()
	want := []string{"serve", "tabs", "export", "chart", "cache", "completion"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestDisplayURL(t *testing.T) {
	tests := map[string]string{
		":8080":          "http://localhost:8080",
		"127.0.0.1:9000": "http://127.0.0.1:9000",
	}
	for in, want := range tests {
		if got := displayURL(in); got != want {
			t.Errorf("displayURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{3 << 20, "3.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
