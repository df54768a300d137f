package chart

import (
	"bytes"
	"context"
	"image"
	"image/draw"
	"sync"

	"github.com/fogleman/gg"
)

// Responsive padding breakpoints. A canvas narrower than
// ResponsiveBreakpoint reserves NarrowPadding pixels on the right, wider
// canvases reserve WidePadding.
// TODO: WidePadding leaves less room for the pie than NarrowPadding on
// canvases just above the breakpoint; confirm the intended values.
const (
	ResponsiveBreakpoint = 800
	NarrowPadding        = 50
	WidePadding          = 500
)

// ResponsivePadding returns the right padding for a canvas of the given width.
func ResponsivePadding(width int) int {
	if width < ResponsiveBreakpoint {
		return NarrowPadding
	}
	return WidePadding
}

// Padding is the space reserved around the chart area.
type Padding struct {
	Left, Right int
}

// Canvas is a raster surface hosting at most one live chart.
type Canvas struct {
	mu      sync.Mutex
	dc      *gg.Context
	padding Padding
	owner   *Chart
}

// NewCanvas creates a blank canvas with no padding.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{dc: gg.NewContext(max(width, 1), max(height, 1))}
	c.clearLocked()
	return c
}

// Size returns the canvas dimensions in pixels.
func (c *Canvas) Size() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dc.Width(), c.dc.Height()
}

// Padding returns the current chart padding.
func (c *Canvas) Padding() Padding {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.padding
}

// Live reports whether a chart currently owns the canvas.
func (c *Canvas) Live() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.owner != nil
}

// Resize changes the canvas size, applies the responsive right padding and
// repaints the live chart, if any.
func (c *Canvas) Resize(width, height int) error {
	c.mu.Lock()
	c.dc = gg.NewContext(max(width, 1), max(height, 1))
	c.padding = Padding{Left: 0, Right: ResponsivePadding(width)}
	c.clearLocked()
	owner := c.owner
	c.mu.Unlock()

	if owner == nil {
		return nil
	}
	return owner.paint(context.Background())
}

// Image returns a copy of the current frame.
func (c *Canvas) Image() image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	src := c.dc.Image()
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

// PNG encodes the current frame.
func (c *Canvas) PNG() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var buf bytes.Buffer
	if err := c.dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Canvas) attach(ch *Chart) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owner != nil {
		return ErrCanvasInUse
	}
	c.owner = ch
	return nil
}

func (c *Canvas) detach(ch *Chart) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owner == ch {
		c.owner = nil
		c.clearLocked()
	}
}

// frame returns the geometry the owner should paint with, or ok=false if ch
// no longer owns the canvas.
func (c *Canvas) frame(ch *Chart) (width, height int, pad Padding, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owner != ch {
		return 0, 0, Padding{}, false
	}
	return c.dc.Width(), c.dc.Height(), c.padding, true
}

// compose replaces the frame with img if ch still owns the canvas and the
// canvas size hasn't changed since img was painted.
func (c *Canvas) compose(ch *Chart, img image.Image) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owner != ch {
		return ErrDestroyed
	}
	if img.Bounds().Dx() != c.dc.Width() || img.Bounds().Dy() != c.dc.Height() {
		return errStaleFrame
	}
	c.dc.DrawImage(img, 0, 0)
	return nil
}

func (c *Canvas) clearLocked() {
	c.dc.SetRGB(1, 1, 1)
	c.dc.Clear()
}
