package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tabpanel/pkg/dataurl"
	"github.com/matzehuels/tabpanel/pkg/errors"
	"github.com/matzehuels/tabpanel/pkg/render/docdef"
	"github.com/matzehuels/tabpanel/pkg/render/htmlconv"
	"github.com/matzehuels/tabpanel/pkg/tabs"
)

func testImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	return img
}

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(w, h)); err != nil {
		t.Fatal(err)
	}
	return dataurl.Encode("image/png", buf.Bytes())
}

func jpegDataURL(t *testing.T, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(w, h), nil); err != nil {
		t.Fatal(err)
	}
	return dataurl.Encode("image/jpeg", buf.Bytes())
}

func sampleInput(t *testing.T) Input {
	t.Helper()
	var html strings.Builder
	html.WriteString(`<div class="tab-page"><h2>Simple Pie Chart</h2><p>A chart.</p><img src="` + pngDataURL(t, 64, 32) + `"/></div>`)
	for _, tab := range tabs.Default() {
		if tab.HTML != "" {
			html.WriteString(`<div class="tab-page">` + tab.HTML + `</div>`)
		}
	}
	html.WriteString(`<div class="tab-page"><ul><li>one</li><li>two</li></ul><ol><li>first</li></ol><hr/><img src="` + jpegDataURL(t, 16, 16) + `"/></div>`)

	nodes, err := htmlconv.Convert(html.String(), htmlconv.WithPageBreakClass("tab-page"))
	if err != nil {
		t.Fatal(err)
	}
	return Input{
		HTML: html.String(),
		Definition: &docdef.Definition{
			Info:         docdef.Info{Title: "tabs-export", Creator: "tabpanel"},
			Content:      nodes,
			DefaultStyle: docdef.Style{FontSize: 12},
		},
	}
}

func TestPDFRenderer(t *testing.T) {
	in := sampleInput(t)
	data, err := NewPDFRenderer().Render(context.Background(), in)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", data[:min(len(data), 16)])
	}

	info, err := Inspect(data)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	// Four tab pages, each starting on a new page.
	if info.Pages != 4 {
		t.Errorf("Pages = %d, want 4", info.Pages)
	}
}

func TestPDFRenderer_NoDefinition(t *testing.T) {
	_, err := NewPDFRenderer().Render(context.Background(), Input{HTML: "<p>x</p>"})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v", err)
	}
}

func TestPDFRenderer_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewPDFRenderer().Render(ctx, sampleInput(t))
	if err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestPDFRenderer_SkippedImageLogged(t *testing.T) {
	var logs bytes.Buffer
	logger := log.New(&logs)
	logger.SetLevel(log.DebugLevel)

	svg := dataurl.Encode("image/svg+xml", []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`))
	in := Input{Definition: &docdef.Definition{
		Content: []docdef.Node{{Text: "before"}, {Image: svg}, {Text: "after"}},
	}}
	data, err := NewPDFRenderer(WithPDFLogger(logger)).Render(context.Background(), in)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
	if !strings.Contains(logs.String(), "image skipped") {
		t.Errorf("undecodable image not logged: %q", logs.String())
	}
}

func TestTextStyle_Decoration(t *testing.T) {
	tests := []struct {
		name string
		node docdef.Node
		want string
	}{
		{"plain", docdef.Node{}, ""},
		{"bold italic", docdef.Node{Bold: true, Italics: true}, "BI"},
		{"underline", docdef.Node{Decoration: docdef.Underline}, "U"},
		{"line through", docdef.Node{Decoration: docdef.LineThrough}, "S"},
		{"bold line through", docdef.Node{Bold: true, Decoration: docdef.LineThrough}, "BS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (textStyle{size: 12}).merge(tt.node).fontStyle(); got != tt.want {
				t.Errorf("fontStyle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPDFRenderer_Strikethrough(t *testing.T) {
	nodes, err := htmlconv.Convert(`<p>keep <del>gone</del> <s>old</s></p>`)
	if err != nil {
		t.Fatal(err)
	}
	in := Input{Definition: &docdef.Definition{Content: nodes}}
	if _, err := NewPDFRenderer().Render(context.Background(), in); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
}

func TestPrepareImage(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantKind string
		wantErr  bool
	}{
		{"png", pngDataURL(t, 4, 2), "PNG", false},
		{"jpeg passthrough", jpegDataURL(t, 4, 4), "JPG", false},
		{"not an image", dataurl.Encode("image/png", []byte("nope")), "", true},
		{"malformed", "data:image/png;base64,%%%", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := prepareImage(tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("prepareImage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeUnsupportedImage) {
					t.Errorf("code = %s", errors.GetCode(err))
				}
				return
			}
			if img.kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", img.kind, tt.wantKind)
			}
		})
	}
}

func TestPrintable(t *testing.T) {
	tests := map[string]string{
		"plain":       "plain",
		"🐦 TWITTER":   " TWITTER",
		"\u25b6\ufe0f play": " play",
		"café":        "café",
		"a\u00a0b":    "a b",
		"line\nbreak": "line\nbreak",
	}
	for in, want := range tests {
		if got := printable(in); got != want {
			t.Errorf("printable(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b int
	}{
		{"", 0, 0, 0},
		{"blue", 0, 0, 238},
		{"#EEEEEE", 238, 238, 238},
		{"#fff", 255, 255, 255},
		{"ff6384", 255, 99, 132},
		{"bogus", 0, 0, 0},
	}
	for _, tt := range tests {
		r, g, b := parseColor(tt.in)
		if r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("parseColor(%q) = %d,%d,%d", tt.in, r, g, b)
		}
	}
}

func TestJSONRenderer(t *testing.T) {
	in := sampleInput(t)
	data, err := JSONRenderer{}.Render(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	var def docdef.Definition
	if err := json.Unmarshal(data, &def); err != nil {
		t.Fatalf("output is not a definition: %v", err)
	}
	if def.DefaultStyle.FontSize != 12 || len(def.Content) != len(in.Definition.Content) {
		t.Errorf("definition = %+v", def.DefaultStyle)
	}
}

func TestMarkdownRenderer(t *testing.T) {
	data, err := NewMarkdownRenderer().Render(context.Background(), Input{
		HTML: `<h2>Social Platforms</h2><p>Hello <b>world</b></p><table><tr><th>A</th></tr><tr><td>1</td></tr></table>`,
	})
	if err != nil {
		t.Fatal(err)
	}
	md := string(data)
	for _, want := range []string{"## Social Platforms", "**world**", "| A |"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestHTMLRenderer(t *testing.T) {
	data, err := HTMLRenderer{}.Render(context.Background(), Input{
		HTML:       `<div class="tab-page"><p>x</p></div>`,
		Definition: &docdef.Definition{Info: docdef.Info{Title: "a<b"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	page := string(data)
	if !strings.Contains(page, `<div class="tab-page"><p>x</p></div>`) {
		t.Errorf("body not embedded verbatim:\n%s", page)
	}
	if !strings.Contains(page, "<title>a&lt;b</title>") {
		t.Errorf("title not escaped:\n%s", page)
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format  string
		opts    Options
		want    string
		wantErr errors.Code
	}{
		{FormatPDF, Options{}, "*sink.PDFRenderer", ""},
		{FormatPDF, Options{Engine: EngineChrome}, "*sink.ChromeRenderer", ""},
		{FormatPDF, Options{Engine: "latex"}, "", errors.ErrCodeInvalidConfig},
		{FormatJSON, Options{}, "sink.JSONRenderer", ""},
		{FormatMarkdown, Options{}, "*sink.MarkdownRenderer", ""},
		{FormatHTML, Options{}, "sink.HTMLRenderer", ""},
		{"docx", Options{}, "", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.format+tt.opts.Engine, func(t *testing.T) {
			r, err := ForFormat(tt.format, tt.opts)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got := typeName(r); got != tt.want {
				t.Errorf("renderer = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(v any) string { return fmt.Sprintf("%T", v) }

func TestMediaType(t *testing.T) {
	if got := MediaType(FormatPDF); got != "application/pdf" {
		t.Errorf("MediaType(pdf) = %q", got)
	}
	if got := Extension(FormatMarkdown); got != ".md" {
		t.Errorf("Extension(md) = %q", got)
	}
}
