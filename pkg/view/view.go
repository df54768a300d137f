// Package view holds the state of a tab panel: the tabs, the selected tab,
// the chart drawn on the chart tab and the last snapshot of that chart.
//
// A View is driven by a UI surface (the HTTP panel, the terminal panel or a
// one-shot export). Interactive views schedule chart renders the way a
// browser page would: once after the view is initialized and again whenever
// the chart tab is re-selected. Every render replaces the previous chart;
// when the new chart finishes painting, its image becomes the snapshot that
// exports embed in place of the live canvas.
//
//	v, _ := view.New(tabs.Default(), view.WithInteractive(true))
//	v.AttachCanvas(chart.NewCanvas(640, 360))
//	v.AfterViewInit()
//	src, err := v.WaitSnapshot(ctx)
package view

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tabpanel/pkg/chart"
	"github.com/matzehuels/tabpanel/pkg/errors"
	"github.com/matzehuels/tabpanel/pkg/export"
	"github.com/matzehuels/tabpanel/pkg/observability"
	"github.com/matzehuels/tabpanel/pkg/tabs"
)

// DefaultFilename is the name exported documents are downloaded as.
const DefaultFilename = "tabs-export.pdf"

// ErrDestroyed is returned by operations on a destroyed view.
var ErrDestroyed = stderrors.New("view destroyed")

// Delays controls when interactive views render and snapshot the chart.
type Delays struct {
	Render   time.Duration // after AfterViewInit
	Reselect time.Duration // after the chart tab is selected
	Snapshot time.Duration // fallback capture if the chart never finishes
}

// DefaultDelays returns 500ms / 50ms / 500ms.
func DefaultDelays() Delays {
	return Delays{
		Render:   500 * time.Millisecond,
		Reselect: 50 * time.Millisecond,
		Snapshot: 500 * time.Millisecond,
	}
}

// Exporter builds and delivers documents. *export.Service implements it.
type Exporter interface {
	Build(ctx context.Context, fragment, filename string) (*export.Document, error)
	GenerateDocument(ctx context.Context, fragment, filename string, dst export.Downloader) error
}

// View is the state of one tab panel. It is safe for concurrent use.
type View struct {
	tabs        []tabs.Tab
	chartIdx    int
	interactive bool
	logger      *log.Logger
	exporter    Exporter
	chartCfg    chart.Config
	delays      Delays
	filename    string

	mu        sync.Mutex
	selected  int
	canvas    *chart.Canvas
	chart     *chart.Chart
	gen       uint64
	snapshot  string
	snapReady chan struct{}
	timer     *time.Timer
	destroyed bool
}

// Option configures a View.
type Option func(*View)

// WithInteractive makes the view schedule chart renders on its own.
func WithInteractive(on bool) Option {
	return func(v *View) { v.interactive = on }
}

// WithLogger sets the logger. Chart failures are logged at debug level.
func WithLogger(l *log.Logger) Option {
	return func(v *View) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithExporter sets the service used by Export and Download.
func WithExporter(e Exporter) Option {
	return func(v *View) { v.exporter = e }
}

// WithChartConfig sets the chart data.
func WithChartConfig(cfg chart.Config) Option {
	return func(v *View) { v.chartCfg = cfg }
}

// WithDelays overrides the render and snapshot delays.
func WithDelays(d Delays) Option {
	return func(v *View) { v.delays = d }
}

// WithFilename sets the download filename.
func WithFilename(name string) Option {
	return func(v *View) {
		if name != "" {
			v.filename = name
		}
	}
}

// New creates a view over list with the first tab selected.
func New(list []tabs.Tab, opts ...Option) (*View, error) {
	if err := tabs.Validate(list); err != nil {
		return nil, err
	}
	v := &View{
		tabs:      append([]tabs.Tab(nil), list...),
		chartIdx:  tabs.ChartIndex(list),
		logger:    log.Default(),
		chartCfg:  chart.DefaultConfig(),
		delays:    DefaultDelays(),
		filename:  DefaultFilename,
		snapReady: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Tabs returns the view's tabs.
func (v *View) Tabs() []tabs.Tab { return v.tabs }

// ChartIndex returns the index of the chart tab, or -1.
func (v *View) ChartIndex() int { return v.chartIdx }

// Filename returns the download filename.
func (v *View) Filename() string { return v.filename }

// Selected returns the selected tab index.
func (v *View) Selected() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected
}

// AttachCanvas sets the chart's render target. It does not render.
func (v *View) AttachCanvas(c *chart.Canvas) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.canvas != c && v.chart != nil {
		v.chart.Destroy()
		v.chart = nil
	}
	v.canvas = c
}

// DetachCanvas destroys the chart and drops the render target.
func (v *View) DetachCanvas() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.chart != nil {
		v.chart.Destroy()
		v.chart = nil
	}
	v.canvas = nil
}

// Canvas returns the attached canvas, or nil.
func (v *View) Canvas() *chart.Canvas {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.canvas
}

// AfterViewInit schedules the first chart render on interactive views.
func (v *View) AfterViewInit() {
	if !v.interactive {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scheduleLocked(v.delays.Render)
}

// SetIndex selects tab i. Selecting the chart tab on an interactive view
// schedules a fresh render.
func (v *View) SetIndex(i int) error {
	if err := errors.ValidateTabIndex(i, len(v.tabs)); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return ErrDestroyed
	}
	v.selected = i
	if v.interactive && i == v.chartIdx {
		v.scheduleLocked(v.delays.Reselect)
	}
	return nil
}

// Render draws the chart now, regardless of the interactive flag.
func (v *View) Render() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.renderLocked()
}

func (v *View) scheduleLocked(d time.Duration) {
	if v.destroyed {
		return
	}
	if v.timer != nil {
		v.timer.Stop()
	}
	v.timer = time.AfterFunc(d, v.Render)
}

// renderLocked replaces the live chart. Without a canvas it does nothing.
func (v *View) renderLocked() {
	if v.destroyed || v.canvas == nil || v.chartIdx < 0 {
		return
	}
	if v.chart != nil {
		v.chart.Destroy()
		v.chart = nil
	}
	v.gen++
	ch, err := chart.New(context.Background(), v.canvas, v.chartCfg)
	if err != nil {
		v.logger.Debug("chart render failed", "err", err)
		return
	}
	v.chart = ch
	go v.awaitSnapshot(ch, v.gen)
}

// awaitSnapshot captures the chart once it has painted. If painting takes
// longer than the snapshot delay, the partial canvas is captured first.
func (v *View) awaitSnapshot(ch *chart.Chart, gen uint64) {
	fallback := time.NewTimer(v.delays.Snapshot)
	defer fallback.Stop()

	select {
	case <-ch.Done():
	case <-fallback.C:
		v.capture(ch, gen)
		<-ch.Done()
	}
	if err := ch.Err(); err != nil && !stderrors.Is(err, chart.ErrDestroyed) {
		v.logger.Debug("chart paint failed", "err", err)
		return
	}
	v.capture(ch, gen)
}

func (v *View) capture(ch *chart.Chart, gen uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed || gen != v.gen || v.chart != ch {
		return
	}
	src, err := ch.ToBase64Image()
	if err != nil {
		v.logger.Debug("chart snapshot failed", "err", err)
		return
	}
	v.snapshot = src
	close(v.snapReady)
	v.snapReady = make(chan struct{})
	observability.Chart().OnSnapshot(context.Background(), len(src))
}

// Snapshot returns the last captured chart image as a data URI, or "".
func (v *View) Snapshot() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot
}

// WaitSnapshot blocks until a snapshot exists.
func (v *View) WaitSnapshot(ctx context.Context) (string, error) {
	for {
		v.mu.Lock()
		if v.snapshot != "" {
			s := v.snapshot
			v.mu.Unlock()
			return s, nil
		}
		if v.destroyed {
			v.mu.Unlock()
			return "", ErrDestroyed
		}
		ready := v.snapReady
		v.mu.Unlock()

		select {
		case <-ready:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// Resize resizes the canvas and refreshes the snapshot from the repainted
// chart.
func (v *View) Resize(width, height int) error {
	v.mu.Lock()
	c, ch, gen := v.canvas, v.chart, v.gen
	v.mu.Unlock()
	if c == nil {
		return nil
	}
	if err := c.Resize(width, height); err != nil {
		return err
	}
	if ch != nil {
		select {
		case <-ch.Done():
			v.capture(ch, gen)
		default:
			// awaitSnapshot captures once the first paint lands.
		}
	}
	return nil
}

// AllTabsHTML returns one tab-page section per tab, in tab order. The chart
// tab contributes the snapshot image, or nothing before the first snapshot.
func (v *View) AllTabsHTML() string {
	snap := v.Snapshot()

	var b strings.Builder
	for i, t := range v.tabs {
		body := t.HTML
		if i == v.chartIdx {
			body = ""
			if snap != "" {
				body = chartSection(snap)
			}
		}
		fmt.Fprintf(&b, `<div class="%s">%s</div>`, export.PageClass, body)
	}
	return b.String()
}

func chartSection(src string) string {
	return `<h2>Simple Pie Chart</h2>` +
		`<p>This tab includes a pie chart rendered with go-chart.</p>` +
		`<img src="` + src + `" style="max-width:100%;height:auto;border-radius:8px;"/>`
}

// Export builds the document for all tabs without delivering it.
func (v *View) Export(ctx context.Context) (*export.Document, error) {
	if v.exporter == nil {
		return nil, errors.New(errors.ErrCodeInternal, "view has no exporter")
	}
	return v.exporter.Build(ctx, v.AllTabsHTML(), v.filename)
}

// Download exports all tabs and hands the document to dst.
func (v *View) Download(ctx context.Context, dst export.Downloader) error {
	if v.exporter == nil {
		return errors.New(errors.ErrCodeInternal, "view has no exporter")
	}
	return v.exporter.GenerateDocument(ctx, v.AllTabsHTML(), v.filename, dst)
}

// Destroy stops pending renders, destroys the chart and detaches the canvas.
// It is safe to call more than once.
func (v *View) Destroy() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return
	}
	v.destroyed = true
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	if v.chart != nil {
		v.chart.Destroy()
		v.chart = nil
	}
	v.canvas = nil
	close(v.snapReady)
}
