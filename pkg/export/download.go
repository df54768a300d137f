package export

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/tabpanel/pkg/errors"
)

// Downloader delivers a finished document.
type Downloader interface {
	Download(ctx context.Context, doc *Document) error
}

// DownloaderFunc adapts a function to [Downloader].
type DownloaderFunc func(ctx context.Context, doc *Document) error

// Download calls f.
func (f DownloaderFunc) Download(ctx context.Context, doc *Document) error { return f(ctx, doc) }

// FileDownloader writes documents into a directory under their filename.
type FileDownloader struct {
	Dir string // current directory when empty
}

// Path returns where doc would be written.
func (d FileDownloader) Path(doc *Document) string {
	return filepath.Join(d.Dir, doc.Filename)
}

// Download implements [Downloader].
func (d FileDownloader) Download(_ context.Context, doc *Document) error {
	if err := errors.ValidateFilename(doc.Filename); err != nil {
		return err
	}
	if d.Dir != "" {
		if err := os.MkdirAll(d.Dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(d.Path(doc), doc.Data, 0o644)
}

// WriterDownloader writes the document bytes to W.
type WriterDownloader struct {
	W io.Writer
}

// Download implements [Downloader].
func (d WriterDownloader) Download(_ context.Context, doc *Document) error {
	_, err := d.W.Write(doc.Data)
	return err
}
