package chart

import (
	"bytes"
	"context"
	stderrors "errors"
	"image"
	"image/png"
	"strings"
	"sync"
	"time"

	"github.com/fogleman/gg"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font/basicfont"

	"github.com/matzehuels/tabpanel/pkg/dataurl"
	"github.com/matzehuels/tabpanel/pkg/observability"
)

var (
	// ErrCanvasInUse is returned by [New] when the canvas already hosts a live chart.
	ErrCanvasInUse = stderrors.New("canvas already hosts a chart")

	// ErrDestroyed is returned by operations on a destroyed chart.
	ErrDestroyed = stderrors.New("chart destroyed")
)

// Legend geometry, in pixels.
const (
	legendBoxWidth  = 30
	legendBoxHeight = 10
	legendGap       = 6
	legendMargin    = 10
	legendLineH     = 20
)

// Chart is a pie chart painted onto a canvas.
type Chart struct {
	canvas *Canvas
	cfg    Config
	done   chan struct{}

	mu        sync.Mutex
	err       error
	destroyed bool
}

// New attaches a chart to canvas and starts painting it.
// It fails with [ErrCanvasInUse] if the canvas already hosts a chart.
func New(ctx context.Context, canvas *Canvas, cfg Config) (*Chart, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Chart{canvas: canvas, cfg: cfg, done: make(chan struct{})}
	if err := canvas.attach(c); err != nil {
		return nil, err
	}

	go func() {
		err := c.paint(ctx)
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		close(c.done)
	}()
	return c, nil
}

// Done is closed once the first paint has finished, successfully or not.
func (c *Chart) Done() <-chan struct{} { return c.done }

// Err returns the result of the first paint. It is nil until Done is closed.
func (c *Chart) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// ToBase64Image encodes the canvas content as a PNG data URI.
// Before painting finishes the result is whatever the canvas shows.
func (c *Chart) ToBase64Image() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return "", ErrDestroyed
	}
	data, err := c.canvas.PNG()
	if err != nil {
		return "", err
	}
	return dataurl.Encode("image/png", data), nil
}

// Destroy releases the canvas. It is safe to call more than once.
func (c *Chart) Destroy() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	c.mu.Unlock()
	c.canvas.detach(c)
}

// Destroyed reports whether Destroy has been called.
func (c *Chart) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

var errStaleFrame = stderrors.New("canvas resized during paint")

func (c *Chart) paint(ctx context.Context) error {
	start := time.Now()
	width, height, pad, ok := c.canvas.frame(c)
	if !ok {
		return ErrDestroyed
	}

	img, err := drawFrame(c.cfg, width, height, pad)
	if err == nil {
		err = c.canvas.compose(c, img)
	}
	if err == errStaleFrame {
		// The resize that invalidated this frame repaints on its own.
		err = nil
	}
	observability.Chart().OnChartRender(ctx, width, height, time.Since(start), err)
	return err
}

// drawFrame renders a complete canvas frame: background, pie and legend.
func drawFrame(cfg Config, width, height int, pad Padding) (image.Image, error) {
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	legendW := 0
	if cfg.Legend != LegendNone {
		legendW = legendWidth(dc, cfg.Labels)
	}

	pieX := pad.Left
	pieW := width - pad.Left - pad.Right - legendW
	if pieW >= 20 && height >= 20 {
		pie, err := drawPie(cfg, pieW, height)
		if err != nil {
			return nil, err
		}
		dc.DrawImage(pie, pieX, 0)
	}

	if legendW > 0 {
		x := float64(width - pad.Right - legendW)
		if x < 0 {
			x = 0
		}
		drawLegend(dc, cfg, x, float64(height))
	}
	return dc.Image(), nil
}

func drawPie(cfg Config, width, height int) (image.Image, error) {
	values := make([]gochart.Value, len(cfg.Values))
	for i, v := range cfg.Values {
		values[i] = gochart.Value{
			Value: v,
			Style: gochart.Style{
				FillColor:   drawing.ColorFromHex(strings.TrimPrefix(cfg.color(i), "#")),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
			},
		}
	}

	pie := gochart.PieChart{
		Width:  width,
		Height: height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: legendMargin, Left: legendMargin, Right: legendMargin, Bottom: legendMargin},
		},
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

func legendWidth(dc *gg.Context, labels []string) int {
	widest := 0.0
	for _, l := range labels {
		if w, _ := dc.MeasureString(l); w > widest {
			widest = w
		}
	}
	return legendMargin*2 + legendBoxWidth + legendGap + int(widest+0.5)
}

func drawLegend(dc *gg.Context, cfg Config, x, height float64) {
	total := float64(len(cfg.Labels)) * legendLineH
	y := (height - total) / 2
	for i, label := range cfg.Labels {
		top := y + float64(i)*legendLineH
		bx := x + legendMargin

		dc.SetHexColor(cfg.color(i))
		dc.DrawRectangle(bx, top+(legendLineH-legendBoxHeight)/2, legendBoxWidth, legendBoxHeight)
		dc.Fill()

		dc.SetHexColor("#666666")
		dc.DrawStringAnchored(label, bx+legendBoxWidth+legendGap, top+legendLineH/2, 0, 0.5)
	}
}

// Render paints cfg on a fresh canvas and returns the PNG bytes.
func Render(ctx context.Context, cfg Config, width, height int) ([]byte, error) {
	c, err := New(ctx, NewCanvas(width, height), cfg)
	if err != nil {
		return nil, err
	}
	defer c.Destroy()

	select {
	case <-c.Done():
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return c.canvas.PNG()
}
