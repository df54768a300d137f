package sink

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/go-pdf/fpdf"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/tabpanel/pkg/dataurl"
	"github.com/matzehuels/tabpanel/pkg/errors"
	"github.com/matzehuels/tabpanel/pkg/render/docdef"
)

// image places an embedded image on its own line, scaled to fit the content
// width. Images that cannot be decoded are skipped.
func (w *pdfWriter) image(n docdef.Node) {
	img, err := prepareImage(n.Image)
	if err != nil {
		w.logger.Debug("image skipped", "src", truncate(n.Image, 48), "err", err)
		return
	}

	width := float64(img.width) * pxToPt
	if n.Width > 0 {
		width = n.Width * pxToPt
	}
	width = min(width, w.width)
	height := width * float64(img.height) / float64(img.width)

	_, pageH := w.pdf.GetPageSize()
	_, _, _, bottom := w.pdf.GetMargins()
	if avail := pageH - bottom - w.top; height > avail {
		// Taller than a page: shrink to fit one.
		width *= avail / height
		height = avail
	}
	if w.pdf.GetY()+height > pageH-bottom {
		w.pdf.AddPage()
	}

	w.images++
	name := fmt.Sprintf("img%d", w.images)
	opts := fpdf.ImageOptions{ImageType: img.kind}
	w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.data))
	y := w.pdf.GetY()
	w.pdf.ImageOptions(name, w.left, y, width, height, false, opts, 0, "")
	w.pdf.SetY(y + height + 4)
}

type pdfImage struct {
	data          []byte
	kind          string
	width, height int
}

// prepareImage decodes a data URI into something fpdf accepts. JPEG is kept
// as is; every other raster format is re-encoded as PNG.
func prepareImage(src string) (*pdfImage, error) {
	_, data, err := dataurl.Decode(src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupportedImage, err, "decode data url")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupportedImage, err, "unrecognized image")
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, errors.New(errors.ErrCodeUnsupportedImage, "empty image")
	}
	if format == "jpeg" {
		return &pdfImage{data: data, kind: "JPG", width: cfg.Width, height: cfg.Height}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupportedImage, err, "decode %s", format)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupportedImage, err, "encode png")
	}
	return &pdfImage{data: buf.Bytes(), kind: "PNG", width: cfg.Width, height: cfg.Height}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
