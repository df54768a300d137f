// Package pkg provides the core libraries for tabpanel.
//
// # Overview
//
// Tabpanel shows a small set of tabs (static HTML cards and one pie chart)
// and exports every tab, chart included, into a single document. The pkg
// directory is organized into four main areas:
//
//  1. [view] - The tab panel state machine (selection, chart lifecycle, snapshots)
//  2. [export] - Image embedding and document generation
//  3. [render] - HTML to document definition conversion and output sinks
//  4. [server], [session] - The HTTP panel and its per-visitor state
//
// # Architecture
//
// The typical data flow through tabpanel:
//
//	Tab definitions ([tabs])
//	         ↓
//	    [view] package (select tab, render chart, capture snapshot)
//	         ↓
//	    [export] package (embed images as data URIs, sanitize)
//	         ↓
//	    [render] package (htmlconv → docdef → sink)
//	         ↓
//	    PDF/JSON/Markdown/HTML output
//
// # Quick Start
//
// Export the default tabs to a PDF in the current directory:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/tabpanel/pkg/chart"
//	    "github.com/matzehuels/tabpanel/pkg/export"
//	    "github.com/matzehuels/tabpanel/pkg/httputil"
//	    "github.com/matzehuels/tabpanel/pkg/render/sink"
//	    "github.com/matzehuels/tabpanel/pkg/tabs"
//	    "github.com/matzehuels/tabpanel/pkg/view"
//	)
//
//	r, _ := sink.ForFormat(sink.FormatPDF, sink.Options{})
//	svc := export.NewService(httputil.NewFetcher(), r, nil)
//
//	v, _ := view.New(tabs.Default(), view.WithInteractive(true), view.WithExporter(svc))
//	defer v.Destroy()
//	v.AttachCanvas(chart.NewCanvas(900, 400))
//	v.AfterViewInit()
//
//	ctx := context.Background()
//	_, _ = v.WaitSnapshot(ctx)
//	_ = v.Download(ctx, export.FileDownloader{Dir: "."})
//
// # Main Packages
//
// [tabs] - Tab definitions, loading from TOML/YAML/JSON and the HTML policy
// used to sanitize tab markup.
//
// [chart] - Pie chart rendering with go-chart onto a gg canvas. A canvas hosts
// at most one live chart; rendering completes asynchronously.
//
// [view] - Selection, debounced chart rendering and the snapshot that stands
// in for the chart in exports.
//
// [export] - Bounded concurrent image embedding and the document pipeline.
//
// [render] - [render/htmlconv] converts markup into a [render/docdef]
// definition; [render/sink] writes PDF (fpdf or headless Chrome), JSON,
// Markdown or HTML.
//
// ## Infrastructure
//
// [cache] - File, Redis and no-op caches for fetched images and chart PNGs.
//
// [httputil] - Image fetcher producing data URIs, backed by [cache].
//
// [config] - TOML configuration with defaults and validation.
//
// [session] - In-memory panel sessions with sliding expiry, and the
// file-backed state of the terminal panel.
//
// [observability] - Hooks for export, chart, cache and HTTP events.
//
// [errors] - Coded errors shared by the CLI, terminal panel and HTTP panel.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/view/...      # Specific package
//
// [tabs]: https://pkg.go.dev/github.com/matzehuels/tabpanel/pkg/tabs
// [chart]: https://pkg.go.dev/github.com/matzehuels/tabpanel/pkg/chart
// [view]: https://pkg.go.dev/github.com/matzehuels/tabpanel/pkg/view
// [export]: https://pkg.go.dev/github.com/matzehuels/tabpanel/pkg/export
// [render]: https://pkg.go.dev/github.com/matzehuels/tabpanel/pkg/render
// [render/htmlconv]: https://pkg.go.dev/github.com/matzehuels/tabpanel/pkg/render/htmlconv
// [render/docdef]: https://pkg.go.dev/github.com/matzehuels/tabpanel/pkg/render/docdef
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/tabpanel/pkg/render/sink
// [server]: https://pkg.go.dev/github.com/matzehuels/tabpanel/pkg/server
// [session]: https://pkg.go.dev/github.com/matzehuels/tabpanel/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/tabpanel/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/tabpanel/pkg/httputil
// [config]: https://pkg.go.dev/github.com/matzehuels/tabpanel/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/tabpanel/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/tabpanel/pkg/errors
package pkg
