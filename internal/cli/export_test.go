package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/tabpanel/pkg/render/sink"
)

func newExportCLI(t *testing.T, renderDelay time.Duration) (*CLI, *bytes.Buffer) {
	t.Helper()
	c := newTestCLI(t)
	c.config.Cache.Backend = "none"
	c.config.Chart.Width, c.config.Chart.Height = 300, 150
	c.config.Chart.RenderDelay = renderDelay
	c.config.Chart.ReselectDelay = time.Millisecond
	c.config.Chart.SnapshotDelay = 2 * time.Second

	path := filepath.Join(t.TempDir(), "tabs.toml")
	err := os.WriteFile(path, []byte(`
[[tab]]
id = "pie"
title = "Pie"
chart = true

[[tab]]
id = "notes"
title = "Notes"
html = "<p>static tab body</p>"
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	c.tabsFile = path

	var out bytes.Buffer
	c.stdout = &out
	return c, &out
}

func TestRunExport(t *testing.T) {
	tests := []struct {
		name        string
		renderDelay time.Duration
		timeout     time.Duration
		toStdout    bool
		format      string
		wantFile    string
		check       func(t *testing.T, data []byte)
	}{
		{
			name:        "pdf to directory",
			renderDelay: time.Millisecond,
			timeout:     10 * time.Second,
			format:      sink.FormatPDF,
			wantFile:    "tabs-export.pdf",
			check: func(t *testing.T, data []byte) {
				if !bytes.HasPrefix(data, []byte("%PDF")) {
					t.Errorf("not a PDF: %.20q", data)
				}
			},
		},
		{
			name:        "pdf to stdout with chart not ready",
			renderDelay: 5 * time.Second,
			timeout:     10 * time.Millisecond,
			toStdout:    true,
			format:      sink.FormatPDF,
			check: func(t *testing.T, data []byte) {
				if !bytes.HasPrefix(data, []byte("%PDF")) {
					t.Errorf("stdout does not start with the document: %.60q", data)
				}
			},
		},
		{
			name:        "markdown swaps the extension",
			renderDelay: time.Millisecond,
			timeout:     10 * time.Second,
			format:      sink.FormatMarkdown,
			wantFile:    "tabs-export.md",
			check: func(t *testing.T, data []byte) {
				if !strings.Contains(string(data), "static tab body") {
					t.Errorf("markdown missing tab text: %q", data)
				}
			},
		},
		{
			name:        "json to stdout",
			renderDelay: time.Millisecond,
			timeout:     10 * time.Second,
			toStdout:    true,
			format:      sink.FormatJSON,
			check: func(t *testing.T, data []byte) {
				if !json.Valid(data) {
					t.Errorf("stdout is not JSON: %.60q", data)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, stdout := newExportCLI(t, tt.renderDelay)
			dir := t.TempDir()
			opts := exportOpts{
				output:  dir,
				format:  tt.format,
				noCache: true,
				timeout: tt.timeout,
			}
			if tt.toStdout {
				opts.output = "-"
			}

			ctx := withLogger(context.Background(), c.Logger)
			if err := c.runExport(ctx, opts); err != nil {
				t.Fatalf("runExport: %v", err)
			}

			data := stdout.Bytes()
			if !tt.toStdout {
				if stdout.Len() != 0 {
					t.Errorf("stdout written in directory mode: %d bytes", stdout.Len())
				}
				var err error
				data, err = os.ReadFile(filepath.Join(dir, tt.wantFile))
				if err != nil {
					t.Fatalf("read export: %v", err)
				}
			}
			tt.check(t, data)
		})
	}
}

func TestRunExportInvalidFormat(t *testing.T) {
	c, _ := newExportCLI(t, time.Millisecond)
	err := c.runExport(context.Background(), exportOpts{output: t.TempDir(), format: "docx", timeout: time.Second})
	if err == nil {
		t.Fatal("runExport accepted an unknown format")
	}
}
