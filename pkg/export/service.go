package export

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/tabpanel/pkg/errors"
	"github.com/matzehuels/tabpanel/pkg/observability"
	"github.com/matzehuels/tabpanel/pkg/render/docdef"
	"github.com/matzehuels/tabpanel/pkg/render/htmlconv"
	"github.com/matzehuels/tabpanel/pkg/render/sink"
)

const (
	// DefaultFilename is used when GenerateDocument gets an empty filename.
	DefaultFilename = "tabs-content.pdf"

	// DefaultFontSize is the document's base font size in points.
	DefaultFontSize = 12

	// DefaultConcurrency bounds parallel image fetches.
	DefaultConcurrency = 4

	// PageClass marks the top-level section of each tab.
	PageClass = "tab-page"
)

// ImageFetcher resolves an absolute image URL to a data URI.
type ImageFetcher interface {
	DataURL(ctx context.Context, absURL string) (string, error)
}

// Document is the result of an export.
type Document struct {
	ID         string
	Filename   string
	Format     string
	HTML       string // fragment as received
	Sanitized  string // images embedded, canvases removed
	Definition *docdef.Definition
	Data       []byte
	Stats      Stats
}

// MediaType returns the document's MIME type.
func (d *Document) MediaType() string { return sink.MediaType(d.Format) }

// Stats records what an export did.
type Stats struct {
	Images     int
	Embedded   int
	Dropped    int
	Canvases   int
	EmbedTime  time.Duration
	RenderTime time.Duration
}

// Service runs the export pipeline. It is safe for concurrent use if its
// fetcher and renderer are.
type Service struct {
	fetcher     ImageFetcher
	renderer    sink.Renderer
	logger      *log.Logger
	format      string
	baseURL     *url.URL
	fontSize    float64
	concurrency int
	pagePerTab  bool
	info        docdef.Info
}

// Option configures a Service.
type Option func(*Service)

// WithFormat records the output format the renderer produces. Default pdf.
func WithFormat(format string) Option {
	return func(s *Service) { s.format = format }
}

// WithBaseURL sets the URL relative image sources resolve against.
// An unparsable URL leaves relative sources unresolved.
func WithBaseURL(base string) Option {
	return func(s *Service) {
		if u, err := url.Parse(base); err == nil && base != "" {
			s.baseURL = u
		}
	}
}

// WithFontSize sets the document's base font size.
func WithFontSize(size float64) Option {
	return func(s *Service) {
		if size > 0 {
			s.fontSize = size
		}
	}
}

// WithConcurrency bounds parallel image fetches.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithPagePerTab starts every tab section on a new page.
func WithPagePerTab(on bool) Option {
	return func(s *Service) { s.pagePerTab = on }
}

// WithInfo sets document metadata. An empty title defaults to the filename.
func WithInfo(info docdef.Info) Option {
	return func(s *Service) { s.info = info }
}

// NewService creates an export service.
// If logger is nil, log.Default() is used.
func NewService(fetcher ImageFetcher, renderer sink.Renderer, logger *log.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = log.Default()
	}
	s := &Service{
		fetcher:     fetcher,
		renderer:    renderer,
		logger:      logger,
		format:      sink.FormatPDF,
		fontSize:    DefaultFontSize,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Format returns the output format.
func (s *Service) Format() string { return s.format }

// GenerateDocument exports fragment and hands the result to dst.
// An empty filename defaults to [DefaultFilename].
func (s *Service) GenerateDocument(ctx context.Context, fragment, filename string, dst Downloader) error {
	if dst == nil {
		return errors.New(errors.ErrCodeInvalidInput, "no download target")
	}
	doc, err := s.Build(ctx, fragment, filename)
	if err != nil {
		return err
	}
	if err := dst.Download(ctx, doc); err != nil {
		s.logger.Error("document download failed", "file", doc.Filename, "err", err)
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "download %s", doc.Filename)
	}
	s.logger.Debug("document delivered", "id", doc.ID, "file", doc.Filename, "bytes", len(doc.Data))
	return nil
}

// Build runs the pipeline without the download step.
func (s *Service) Build(ctx context.Context, fragment, filename string) (*Document, error) {
	filename = s.filename(filename)
	if err := errors.ValidateFilename(filename); err != nil {
		return nil, err
	}

	doc := &Document{
		ID:       uuid.NewString(),
		Filename: filename,
		Format:   s.format,
		HTML:     fragment,
	}
	hooks := observability.Export()

	// Stage 1: embed images
	embedStart := time.Now()
	sanitized, stats, err := s.embed(ctx, doc.ID, fragment)
	if err != nil {
		return nil, err
	}
	stats.EmbedTime = time.Since(embedStart)
	doc.Sanitized = sanitized
	doc.Stats = stats
	hooks.OnEmbedComplete(ctx, doc.ID, stats.Embedded, stats.Dropped, stats.EmbedTime)

	s.logger.Debug("embedded images",
		"id", doc.ID,
		"images", stats.Images,
		"embedded", stats.Embedded,
		"dropped", stats.Dropped,
		"canvases", stats.Canvases,
		"duration", stats.EmbedTime)

	// Stage 2: convert
	var convOpts []htmlconv.Option
	if s.pagePerTab {
		convOpts = append(convOpts, htmlconv.WithPageBreakClass(PageClass))
	}
	content, err := htmlconv.Convert(sanitized, convOpts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "convert markup")
	}
	info := s.info
	if info.Title == "" {
		info.Title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	doc.Definition = &docdef.Definition{
		Info:         info,
		Content:      content,
		DefaultStyle: docdef.Style{FontSize: s.fontSize},
	}

	// Stage 3: render
	renderStart := time.Now()
	hooks.OnRenderStart(ctx, doc.ID, s.format)
	data, err := s.renderer.Render(ctx, sink.Input{HTML: sanitized, Definition: doc.Definition})
	doc.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, doc.ID, s.format, len(data), doc.Stats.RenderTime, err)
	if err != nil {
		s.logger.Error("document creation failed", "file", filename, "format", s.format, "err", err)
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "create %s", filename)
	}
	doc.Data = data

	s.logger.Debug("rendered document",
		"id", doc.ID,
		"format", s.format,
		"bytes", len(data),
		"duration", doc.Stats.RenderTime)
	return doc, nil
}

// filename applies the default name and swaps a .pdf extension for the
// service's format.
func (s *Service) filename(name string) string {
	if name == "" {
		name = DefaultFilename
	}
	if s.format != sink.FormatPDF && filepath.Ext(name) == sink.Extension(sink.FormatPDF) {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + sink.Extension(s.format)
	}
	return name
}
