package sink

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFInfo summarizes a rendered PDF.
type PDFInfo struct {
	Pages   int
	Title   string
	Creator string
}

// Inspect parses and validates a PDF.
func Inspect(data []byte) (*PDFInfo, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, err
	}
	return &PDFInfo{
		Pages:   ctx.PageCount,
		Title:   ctx.Title,
		Creator: ctx.Creator,
	}, nil
}
