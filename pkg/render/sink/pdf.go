package sink

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/go-pdf/fpdf"

	"github.com/matzehuels/tabpanel/pkg/errors"
	"github.com/matzehuels/tabpanel/pkg/render/docdef"
)

// PDFOption configures PDF rendering.
type PDFOption func(*PDFRenderer)

// WithPageSize sets the paper size (A4, Letter, Legal, A3, A5).
func WithPageSize(size string) PDFOption {
	return func(r *PDFRenderer) { r.pageSize = size }
}

// WithFontFamily sets the core font family (Helvetica, Times, Courier).
func WithFontFamily(family string) PDFOption {
	return func(r *PDFRenderer) { r.family = family }
}

// WithPDFLogger sets the logger. Skipped images are logged at debug level.
func WithPDFLogger(l *log.Logger) PDFOption {
	return func(r *PDFRenderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// PDFRenderer lays out a document definition with fpdf.
type PDFRenderer struct {
	pageSize string
	family   string
	logger   *log.Logger
}

// NewPDFRenderer creates an fpdf-backed renderer. Defaults: A4, Helvetica.
func NewPDFRenderer(opts ...PDFOption) *PDFRenderer {
	r := &PDFRenderer{pageSize: "A4", family: "Helvetica", logger: log.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Default page margins in points: left, top, right, bottom.
var defaultMargins = docdef.Margins{40, 40, 40, 40}

const (
	lineSpacing = 1.3
	listIndent  = 15.0
	cellPadding = 4.0
	pxToPt      = 0.75
)

// Render implements [Renderer].
func (r *PDFRenderer) Render(ctx context.Context, in Input) ([]byte, error) {
	def := in.Definition
	if def == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "pdf: no document definition")
	}

	pageSize := r.pageSize
	if def.PageSize != "" {
		pageSize = def.PageSize
	}
	margins := defaultMargins
	if def.PageMargins != nil {
		margins = *def.PageMargins
	}
	base := 12.0
	if def.DefaultStyle.FontSize > 0 {
		base = def.DefaultStyle.FontSize
	}
	family := r.family
	if def.DefaultStyle.Font != "" {
		family = def.DefaultStyle.Font
	}

	pdf := fpdf.New("P", "pt", pageSize, "")
	pdf.SetMargins(margins[0], margins[1], margins[2])
	pdf.SetAutoPageBreak(true, margins[3])
	if def.Info.Title != "" {
		pdf.SetTitle(def.Info.Title, true)
	}
	if def.Info.Author != "" {
		pdf.SetAuthor(def.Info.Author, true)
	}
	if def.Info.Subject != "" {
		pdf.SetSubject(def.Info.Subject, true)
	}
	if def.Info.Creator != "" {
		pdf.SetCreator(def.Info.Creator, true)
	}
	pdf.AddPage()

	w := &pdfWriter{
		pdf:    pdf,
		logger: r.logger,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		family: family,
		left:   margins[0],
		top:    margins[1],
	}
	pageW, _ := pdf.GetPageSize()
	w.width = pageW - margins[0] - margins[2]

	for _, n := range def.Content {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w.node(n, textStyle{size: base})
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "pdf output")
	}
	return buf.Bytes(), nil
}

// textStyle is the formatting inherited down the content tree.
type textStyle struct {
	size       float64
	bold       bool
	italics    bool
	underline  bool
	strike     bool
	color      string
	link       string
	background string
}

func (s textStyle) merge(n docdef.Node) textStyle {
	if n.FontSize > 0 {
		s.size = n.FontSize
	}
	s.bold = s.bold || n.Bold
	s.italics = s.italics || n.Italics
	switch n.Decoration {
	case docdef.Underline:
		s.underline = true
	case docdef.LineThrough:
		s.strike = true
	}
	if n.Color != "" {
		s.color = n.Color
	}
	if n.Link != "" {
		s.link = n.Link
	}
	if n.FillColor != "" {
		s.background = n.FillColor
	}
	return s
}

func (s textStyle) fontStyle() string {
	var b strings.Builder
	if s.bold {
		b.WriteByte('B')
	}
	if s.italics {
		b.WriteByte('I')
	}
	if s.underline {
		b.WriteByte('U')
	}
	if s.strike {
		b.WriteByte('S')
	}
	return b.String()
}

func (s textStyle) lineHeight() float64 { return s.size * lineSpacing }

// pdfWriter walks the definition and emits fpdf calls. It keeps the cursor
// at the start of a line between blocks.
type pdfWriter struct {
	pdf    *fpdf.Fpdf
	logger *log.Logger
	tr     func(string) string
	family string
	left   float64
	top    float64
	width  float64
	images int
}

func (w *pdfWriter) node(n docdef.Node, st textStyle) {
	if n.PageBreak == docdef.PageBreakBefore && w.pdf.GetY() > w.top+1 {
		w.pdf.AddPage()
	}
	st = st.merge(n)
	if n.Margin != nil && n.Margin[1] > 0 {
		w.pdf.Ln(n.Margin[1])
	}

	switch n.Kind() {
	case docdef.KindText:
		w.text(n, st)
		w.pdf.Ln(st.lineHeight())
	case docdef.KindStack:
		for _, c := range n.Stack {
			w.node(c, st)
		}
	case docdef.KindTable:
		w.table(n.Table, st)
	case docdef.KindList:
		w.list(n, st)
	case docdef.KindImage:
		w.image(n)
	case docdef.KindRule:
		y := w.pdf.GetY() + 4
		w.pdf.SetDrawColor(200, 200, 200)
		w.pdf.Line(w.left, y, w.left+w.width, y)
		w.pdf.Ln(10)
	}

	if n.Margin != nil && n.Margin[3] > 0 {
		w.pdf.Ln(n.Margin[3])
	}
}

// text writes the node's runs in flow, continuing on the current line.
func (w *pdfWriter) text(n docdef.Node, st textStyle) {
	runs := n.Runs
	if len(runs) == 0 {
		runs = []docdef.Node{{Text: n.Text}}
	}
	for _, run := range runs {
		rs := st.merge(run)
		text := w.tr(printable(run.Text))
		if text == "" {
			continue
		}
		w.setFont(rs)
		if rs.link != "" {
			w.pdf.WriteLinkString(rs.lineHeight(), text, rs.link)
		} else {
			w.pdf.Write(rs.lineHeight(), text)
		}
	}
	w.setFont(st)
}

func (w *pdfWriter) setFont(st textStyle) {
	w.pdf.SetFont(w.family, st.fontStyle(), st.size)
	r, g, b := parseColor(st.color)
	w.pdf.SetTextColor(r, g, b)
}

func (w *pdfWriter) list(n docdef.Node, st textStyle) {
	items, ordered := n.UL, false
	if n.OL != nil {
		items, ordered = n.OL, true
	}

	indent := w.pdf.GetX() + listIndent
	prevLeft := w.left
	w.left = indent
	w.pdf.SetLeftMargin(indent)
	defer func() {
		w.left = prevLeft
		w.pdf.SetLeftMargin(prevLeft)
		w.pdf.SetX(prevLeft)
	}()

	for i, item := range items {
		marker := "•"
		if ordered {
			marker = strconv.Itoa(i+1) + "."
		}
		w.setFont(st)
		w.pdf.SetX(indent - listIndent)
		w.pdf.CellFormat(listIndent, st.lineHeight(), w.tr(marker), "", 0, "L", false, 0, "")
		w.pdf.SetX(indent)

		w.width -= listIndent
		if item.Kind() == docdef.KindText {
			w.text(item, st.merge(item))
			w.pdf.Ln(st.lineHeight())
		} else {
			w.pdf.Ln(st.lineHeight())
			w.node(item, st)
		}
		w.width += listIndent
	}
}

func (w *pdfWriter) table(t *docdef.Table, st textStyle) {
	if len(t.Body) == 0 {
		return
	}
	cols := len(t.Body[0])
	colW := w.width / float64(cols)
	lh := st.lineHeight()

	w.pdf.SetDrawColor(220, 220, 220)
	for _, row := range t.Body {
		texts := make([][]string, len(row))
		rowH := lh + 2*cellPadding
		for i, cell := range row {
			cs := st.merge(cell)
			w.setFont(cs)
			lines := w.pdf.SplitText(w.tr(printable(cellText(cell))), colW-2*cellPadding)
			texts[i] = lines
			rowH = max(rowH, float64(len(lines))*lh+2*cellPadding)
		}

		_, pageH := w.pdf.GetPageSize()
		_, _, _, bottom := w.pdf.GetMargins()
		if w.pdf.GetY()+rowH > pageH-bottom {
			w.pdf.AddPage()
		}

		y := w.pdf.GetY()
		for i, cell := range row {
			cs := st.merge(cell)
			x := w.left + float64(i)*colW
			style := "D"
			if cs.background != "" {
				r, g, b := parseColor(cs.background)
				w.pdf.SetFillColor(r, g, b)
				style = "FD"
			}
			w.pdf.Rect(x, y, colW, rowH, style)
			w.setFont(cs)
			for j, line := range texts[i] {
				w.pdf.SetXY(x+cellPadding, y+cellPadding+float64(j)*lh)
				w.pdf.CellFormat(colW-2*cellPadding, lh, line, "", 0, "L", false, 0, "")
			}
		}
		w.pdf.SetXY(w.left, y+rowH)
	}
	w.setFont(st)
	w.pdf.Ln(cellPadding)
}

// cellText flattens a table cell, one line per block.
func cellText(n docdef.Node) string {
	if len(n.Stack) > 0 {
		lines := make([]string, 0, len(n.Stack))
		for _, c := range n.Stack {
			if t := strings.TrimSpace(cellText(c)); t != "" {
				lines = append(lines, t)
			}
		}
		return strings.Join(lines, "\n")
	}
	return docdef.PlainText(n)
}

// printable drops characters the core fonts cannot show.
func printable(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r > 0xFFFF, unicode.Is(unicode.So, r), unicode.Is(unicode.Variation_Selector, r):
			return -1
		case r == 0xA0:
			return ' '
		}
		return r
	}, s)
}

func parseColor(c string) (r, g, b int) {
	switch strings.ToLower(c) {
	case "":
		return 0, 0, 0
	case "blue":
		return 0, 0, 238
	case "red":
		return 255, 0, 0
	case "gray", "grey":
		return 128, 128, 128
	}
	hex := strings.TrimPrefix(c, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0
	}
	return hexByte(hex[0:2]), hexByte(hex[2:4]), hexByte(hex[4:6])
}

func hexByte(s string) int {
	v := 0
	for _, c := range s {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= int(c - '0')
		case c >= 'a' && c <= 'f':
			v |= int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= int(c-'A') + 10
		}
	}
	return v
}
