package sink

import (
	"context"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tabpanel/pkg/errors"
	"github.com/matzehuels/tabpanel/pkg/render/docdef"
)

// Output formats.
const (
	FormatPDF      = "pdf"
	FormatJSON     = "json"
	FormatMarkdown = "md"
	FormatHTML     = "html"
)

// Formats lists every supported format.
var Formats = []string{FormatPDF, FormatJSON, FormatMarkdown, FormatHTML}

// Input is what a renderer consumes. HTML is the sanitized markup the
// definition was converted from; renderers use whichever they need.
type Input struct {
	HTML       string
	Definition *docdef.Definition
}

// Renderer produces a document from an Input.
type Renderer interface {
	Render(ctx context.Context, in Input) ([]byte, error)
}

// RendererFunc adapts a function to [Renderer].
type RendererFunc func(ctx context.Context, in Input) ([]byte, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, in Input) ([]byte, error) { return f(ctx, in) }

// ValidateFormat checks a format name.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want one of %v)", format, Formats)
	}
	return nil
}

// MediaType returns the MIME type of a format.
func MediaType(format string) string {
	switch format {
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// Extension returns the file extension of a format, with the leading dot.
func Extension(format string) string {
	return "." + format
}

// PDF engines.
const (
	EngineFPDF   = "fpdf"
	EngineChrome = "chrome"
)

// Options selects and configures renderers in [ForFormat].
type Options struct {
	Engine    string // PDF engine, fpdf when empty
	ChromeBin string // browser binary for the chrome engine; found automatically when empty
	PageSize  string // A4 when empty
	Logger    *log.Logger
}

// ForFormat returns the renderer for format.
func ForFormat(format string, opts Options) (Renderer, error) {
	switch format {
	case FormatPDF:
		switch opts.Engine {
		case "", EngineFPDF:
			pdfOpts := []PDFOption{WithPDFLogger(opts.Logger)}
			if opts.PageSize != "" {
				pdfOpts = append(pdfOpts, WithPageSize(opts.PageSize))
			}
			return NewPDFRenderer(pdfOpts...), nil
		case EngineChrome:
			return NewChromeRenderer(WithChromeBin(opts.ChromeBin)), nil
		default:
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown pdf engine %q", opts.Engine)
		}
	case FormatJSON:
		return JSONRenderer{}, nil
	case FormatMarkdown:
		return NewMarkdownRenderer(), nil
	case FormatHTML:
		return HTMLRenderer{}, nil
	}
	return nil, ValidateFormat(format)
}
