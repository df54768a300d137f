package sink

import (
	"context"
	"fmt"
	"io"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// ChromeOption configures a [ChromeRenderer].
type ChromeOption func(*ChromeRenderer)

// WithChromeBin uses the browser binary at path. Empty means look it up
// (or download it) the way the launcher does by default.
func WithChromeBin(path string) ChromeOption {
	return func(r *ChromeRenderer) { r.bin = path }
}

// WithControlURL connects to an already running browser instead of
// launching one.
func WithControlURL(u string) ChromeOption {
	return func(r *ChromeRenderer) { r.controlURL = u }
}

// ChromeRenderer prints the page produced by [HTMLRenderer] with a headless
// browser, so the PDF keeps the markup's CSS layout.
type ChromeRenderer struct {
	bin        string
	controlURL string
}

// NewChromeRenderer creates a browser-backed PDF renderer.
func NewChromeRenderer(opts ...ChromeOption) *ChromeRenderer {
	r := &ChromeRenderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render implements [Renderer].
func (r *ChromeRenderer) Render(ctx context.Context, in Input) ([]byte, error) {
	page, err := HTMLRenderer{}.Render(ctx, in)
	if err != nil {
		return nil, err
	}

	wsURL := r.controlURL
	if wsURL == "" {
		l := launcher.New().Context(ctx).Headless(true)
		if r.bin != "" {
			l = l.Bin(r.bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("chrome: launch: %w", err)
		}
		defer l.Kill()
		wsURL = u
	}

	browser := rod.New().ControlURL(wsURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("chrome: connect: %w", err)
	}
	defer browser.Close()

	tab, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("chrome: open page: %w", err)
	}
	if err := tab.SetDocumentContent(string(page)); err != nil {
		return nil, fmt.Errorf("chrome: set content: %w", err)
	}
	if err := tab.WaitLoad(); err != nil {
		return nil, fmt.Errorf("chrome: wait load: %w", err)
	}

	stream, err := tab.PDF(&proto.PagePrintToPDF{PrintBackground: true})
	if err != nil {
		return nil, fmt.Errorf("chrome: print: %w", err)
	}
	return io.ReadAll(stream)
}
