// Package docdef defines the declarative document definition that sits
// between converted markup and a rendered document.
//
// A [Definition] is a tree of [Node] values. Each node is exactly one of:
// a text block (Text or Runs), a vertical Stack, a Table, an unordered (UL)
// or ordered (OL) list, an Image, or a horizontal rule (HR). Inline styling
// (Bold, Italics, Decoration, Link, Color, FontSize) applies to the node and,
// for text blocks, is inherited by runs that don't override it.
//
// The definition serializes to JSON with pdfmake-compatible field names, which
// is what the json export format writes.
package docdef

// Definition is a complete document.
type Definition struct {
	Info         Info     `json:"info,omitempty"`
	Content      []Node   `json:"content"`
	DefaultStyle Style    `json:"defaultStyle"`
	PageSize     string   `json:"pageSize,omitempty"`
	PageMargins  *Margins `json:"pageMargins,omitempty"`
}

// Info is document metadata.
type Info struct {
	Title   string `json:"title,omitempty"`
	Author  string `json:"author,omitempty"`
	Subject string `json:"subject,omitempty"`
	Creator string `json:"creator,omitempty"`
}

// Style holds document-wide text defaults.
type Style struct {
	FontSize float64 `json:"fontSize,omitempty"`
	Font     string  `json:"font,omitempty"`
}

// Margins are left, top, right and bottom, in points.
type Margins [4]float64

// Decoration values.
const (
	Underline   = "underline"
	LineThrough = "lineThrough"
)

// PageBreakBefore forces a node onto a new page.
const PageBreakBefore = "before"

// Node is one element of the content tree.
type Node struct {
	Text  string  `json:"text,omitempty"`
	Runs  []Node  `json:"runs,omitempty"`
	Stack []Node  `json:"stack,omitempty"`
	Table *Table  `json:"table,omitempty"`
	UL    []Node  `json:"ul,omitempty"`
	OL    []Node  `json:"ol,omitempty"`
	Image string  `json:"image,omitempty"`
	Width float64 `json:"width,omitempty"`
	HR    bool    `json:"hr,omitempty"`

	NodeName   string   `json:"nodeName,omitempty"`
	Style      []string `json:"style,omitempty"`
	Link       string   `json:"link,omitempty"`
	FontSize   float64  `json:"fontSize,omitempty"`
	Bold       bool     `json:"bold,omitempty"`
	Italics    bool     `json:"italics,omitempty"`
	Decoration string   `json:"decoration,omitempty"`
	Color      string   `json:"color,omitempty"`
	FillColor  string   `json:"fillColor,omitempty"`
	Margin     *Margins `json:"margin,omitempty"`
	PageBreak  string   `json:"pageBreak,omitempty"`
}

// Table is a grid of cells. All rows have the same number of cells.
type Table struct {
	HeaderRows int      `json:"headerRows,omitempty"`
	Body       [][]Node `json:"body"`
}

// Kind names the structural variant of a node.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindStack
	KindTable
	KindList
	KindImage
	KindRule
)

// Kind reports which variant n is.
func (n Node) Kind() Kind {
	switch {
	case n.Image != "":
		return KindImage
	case n.Table != nil:
		return KindTable
	case n.UL != nil || n.OL != nil:
		return KindList
	case n.Stack != nil:
		return KindStack
	case n.HR:
		return KindRule
	case n.Text != "" || len(n.Runs) > 0:
		return KindText
	default:
		return KindEmpty
	}
}

// HasStyle reports whether n carries the named style class.
func (n Node) HasStyle(name string) bool {
	for _, s := range n.Style {
		if s == name {
			return true
		}
	}
	return false
}

// Walk calls fn for every node in the tree, depth first, parents before
// children. Returning false from fn skips the node's children.
func Walk(nodes []Node, fn func(*Node) bool) {
	for i := range nodes {
		walk(&nodes[i], fn)
	}
}

func walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	Walk(n.Runs, fn)
	Walk(n.Stack, fn)
	Walk(n.UL, fn)
	Walk(n.OL, fn)
	if n.Table != nil {
		for _, row := range n.Table.Body {
			Walk(row, fn)
		}
	}
}

// PlainText returns the concatenated text of n and its descendants.
func PlainText(n Node) string {
	var out []byte
	walk(&n, func(c *Node) bool {
		out = append(out, c.Text...)
		return true
	})
	return string(out)
}
