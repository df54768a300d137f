// Package htmlconv converts HTML fragments into document-definition content.
//
// The converter understands the element subset tab markup uses: headings,
// paragraphs, generic containers, tables, lists, links, inline formatting,
// embedded images, line breaks and horizontal rules. Unknown elements are
// treated as containers so their text survives. Script, style and canvas
// content is dropped.
//
// Every produced node carries its element name and an "html-<tag>" style
// followed by the element's class names, so renderers can style by class:
//
//	nodes, err := htmlconv.Convert(`<div class="card"><h6>TWITTER</h6><p>Hi</p></div>`)
//	// nodes[0].NodeName == "DIV", nodes[0].Style == []string{"html-div", "card"}
//
// Images are only kept when their source is already a data URI; resolving
// external sources is the caller's job.
package htmlconv

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/matzehuels/tabpanel/pkg/dataurl"
	"github.com/matzehuels/tabpanel/pkg/render/docdef"
)

// Heading font sizes, h1 through h6.
var headingSizes = [6]float64{24, 22, 20, 18, 16, 14}

// LinkColor is applied to anchors.
const LinkColor = "blue"

// Option configures a conversion.
type Option func(*converter)

// WithPageBreakClass starts every element carrying class on a new page,
// except the first one.
func WithPageBreakClass(class string) Option {
	return func(c *converter) { c.breakClass = class }
}

// Convert parses fragment as the content of a body element and converts it.
func Convert(fragment string, opts ...Option) ([]docdef.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, err
	}
	return ConvertNodes(nodes, opts...), nil
}

// ConvertNodes converts already parsed sibling nodes.
func ConvertNodes(nodes []*html.Node, opts ...Option) []docdef.Node {
	c := &converter{}
	for _, opt := range opts {
		opt(c)
	}
	content := c.blocks(nodes, inline{})
	if content == nil {
		content = []docdef.Node{}
	}
	return content
}

type converter struct {
	breakClass string
	seenBreak  bool
}

// inline is the formatting inherited by text runs.
type inline struct {
	bold, italics bool
	decoration    string
	link          string
	color         string
}

func (s inline) apply(n *html.Node) inline {
	switch n.DataAtom {
	case atom.B, atom.Strong, atom.Th:
		s.bold = true
	case atom.I, atom.Em, atom.Cite, atom.Var, atom.Dfn:
		s.italics = true
	case atom.U, atom.Ins:
		s.decoration = docdef.Underline
	case atom.S, atom.Strike, atom.Del:
		s.decoration = docdef.LineThrough
	case atom.A:
		if href := attr(n, "href"); isLinkable(href) {
			s.link = href
			s.color = LinkColor
			s.decoration = docdef.Underline
		}
	}
	return s
}

func (s inline) run(text string) docdef.Node {
	return docdef.Node{
		Text:       text,
		Bold:       s.bold,
		Italics:    s.italics,
		Decoration: s.decoration,
		Link:       s.link,
		Color:      s.color,
	}
}

// blocks converts a list of siblings into block nodes, grouping consecutive
// inline content into text blocks.
func (c *converter) blocks(list []*html.Node, st inline) []docdef.Node {
	var out, runs []docdef.Node
	flush := func() {
		if runs = trimRuns(runs); len(runs) > 0 {
			out = append(out, textBlock(runs))
		}
		runs = nil
	}

	for _, n := range list {
		switch n.Type {
		case html.TextNode:
			runs = append(runs, st.run(collapse(n.Data)))
		case html.ElementNode:
			if skipped(n) {
				continue
			}
			if isInline(n) && !containsBlock(n) {
				runs = append(runs, c.runs(n, st)...)
				continue
			}
			flush()
			if isInline(n) {
				out = append(out, c.blocks(children(n), st.apply(n))...)
				continue
			}
			out = append(out, c.block(n, st)...)
		}
	}
	flush()
	return out
}

// runs flattens n and its descendants into text runs.
func (c *converter) runs(n *html.Node, st inline) []docdef.Node {
	switch n.Type {
	case html.TextNode:
		return []docdef.Node{st.run(collapse(n.Data))}
	case html.ElementNode:
	default:
		return nil
	}
	if skipped(n) {
		return nil
	}
	if n.DataAtom == atom.Br {
		return []docdef.Node{st.run("\n")}
	}
	st = st.apply(n)
	var out []docdef.Node
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		out = append(out, c.runs(ch, st)...)
	}
	return out
}

func (c *converter) block(n *html.Node, st inline) []docdef.Node {
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return c.heading(n, st)
	case atom.P:
		return c.container(n, st, &docdef.Margins{0, 5, 0, 10})
	case atom.Table:
		return c.table(n, st)
	case atom.Ul, atom.Ol:
		return c.list(n, st)
	case atom.Img:
		return image(n)
	case atom.Hr:
		return []docdef.Node{{HR: true, NodeName: "HR", Style: styles(n)}}
	case atom.Pre:
		text := textContent(n)
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []docdef.Node{{Text: text, NodeName: "PRE", Style: styles(n)}}
	default:
		return c.container(n, st, nil)
	}
}

func (c *converter) heading(n *html.Node, st inline) []docdef.Node {
	st.bold = true
	var runs []docdef.Node
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		runs = append(runs, c.runs(ch, st)...)
	}
	runs = trimRuns(runs)
	if len(runs) == 0 {
		return nil
	}
	node := textBlock(runs)
	level := int(n.Data[1] - '0')
	node.NodeName = strings.ToUpper(n.Data)
	node.Style = styles(n)
	node.FontSize = headingSizes[level-1]
	node.Bold = true
	node.Margin = &docdef.Margins{0, 5, 0, 5}
	return []docdef.Node{node}
}

// container converts a generic block element. A single text child is
// promoted to the container itself; anything else becomes a stack.
func (c *converter) container(n *html.Node, st inline, margin *docdef.Margins) []docdef.Node {
	content := c.blocks(children(n), st.apply(n))
	if len(content) == 0 {
		return nil
	}

	var node docdef.Node
	if len(content) == 1 && content[0].NodeName == "" && content[0].Kind() == docdef.KindText {
		node = content[0]
	} else {
		node = docdef.Node{Stack: content}
	}
	node.NodeName = strings.ToUpper(n.Data)
	node.Style = styles(n)
	node.Margin = margin

	if c.breakClass != "" && hasClass(n, c.breakClass) {
		if c.seenBreak {
			node.PageBreak = docdef.PageBreakBefore
		}
		c.seenBreak = true
	}
	return []docdef.Node{node}
}

func (c *converter) table(n *html.Node, st inline) []docdef.Node {
	var rows [][]docdef.Node
	headerRows := 0

	var collect func(*html.Node, bool)
	collect = func(parent *html.Node, header bool) {
		for ch := parent.FirstChild; ch != nil; ch = ch.NextSibling {
			if ch.Type != html.ElementNode {
				continue
			}
			switch ch.DataAtom {
			case atom.Thead:
				collect(ch, true)
			case atom.Tbody, atom.Tfoot:
				collect(ch, false)
			case atom.Tr:
				if row := c.row(ch, st); len(row) > 0 {
					rows = append(rows, row)
					if header {
						headerRows++
					}
				}
			}
		}
	}
	collect(n, false)

	if len(rows) == 0 {
		return nil
	}
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	for i := range rows {
		for len(rows[i]) < cols {
			rows[i] = append(rows[i], docdef.Node{Text: ""})
		}
	}

	return []docdef.Node{{
		Table:    &docdef.Table{HeaderRows: headerRows, Body: rows},
		NodeName: "TABLE",
		Style:    styles(n),
		Margin:   &docdef.Margins{0, 0, 0, 8},
	}}
}

func (c *converter) row(tr *html.Node, st inline) []docdef.Node {
	var cells []docdef.Node
	for td := tr.FirstChild; td != nil; td = td.NextSibling {
		if td.Type != html.ElementNode || (td.DataAtom != atom.Td && td.DataAtom != atom.Th) {
			continue
		}
		cellSt := st.apply(td)
		content := c.blocks(children(td), cellSt)

		var cell docdef.Node
		switch len(content) {
		case 0:
			cell = docdef.Node{Text: ""}
		case 1:
			cell = content[0]
		default:
			cell = docdef.Node{Stack: content}
		}
		if cell.NodeName == "" {
			cell.NodeName = strings.ToUpper(td.Data)
			cell.Style = styles(td)
		}
		if td.DataAtom == atom.Th {
			cell.Bold = true
			cell.FillColor = "#EEEEEE"
		}
		cells = append(cells, cell)
	}
	return cells
}

func (c *converter) list(n *html.Node, st inline) []docdef.Node {
	var items []docdef.Node
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || skipped(li) {
			continue
		}
		var content []docdef.Node
		if li.DataAtom == atom.Li {
			content = c.blocks(children(li), st)
		} else {
			content = c.blocks([]*html.Node{li}, st)
		}
		switch len(content) {
		case 0:
		case 1:
			items = append(items, content[0])
		default:
			items = append(items, docdef.Node{Stack: content})
		}
	}
	if len(items) == 0 {
		return nil
	}

	node := docdef.Node{NodeName: strings.ToUpper(n.Data), Style: styles(n), Margin: &docdef.Margins{0, 0, 0, 5}}
	if n.DataAtom == atom.Ol {
		node.OL = items
	} else {
		node.UL = items
	}
	return []docdef.Node{node}
}

func image(n *html.Node) []docdef.Node {
	src := attr(n, "src")
	if !dataurl.IsImage(src) {
		return nil
	}
	node := docdef.Node{Image: src, NodeName: "IMG", Style: styles(n)}
	if w, err := strconv.ParseFloat(strings.TrimSuffix(attr(n, "width"), "px"), 64); err == nil && w > 0 {
		node.Width = w
	}
	return []docdef.Node{node}
}

// textBlock turns runs into one text node. A lone run is the block itself.
func textBlock(runs []docdef.Node) docdef.Node {
	if len(runs) == 1 {
		return runs[0]
	}
	return docdef.Node{Runs: runs}
}

// trimRuns drops empty runs, leading and trailing blanks, and blanks that
// would double up across run boundaries.
func trimRuns(runs []docdef.Node) []docdef.Node {
	out := runs[:0]
	atLineStart := true
	for _, r := range runs {
		if atLineStart {
			r.Text = strings.TrimLeft(r.Text, " ")
		}
		if r.Text == "" {
			continue
		}
		out = append(out, r)
		atLineStart = strings.HasSuffix(r.Text, " ") || strings.HasSuffix(r.Text, "\n")
	}
	for len(out) > 0 {
		last := &out[len(out)-1]
		last.Text = strings.TrimRight(last.Text, " ")
		if last.Text != "" {
			break
		}
		out = out[:len(out)-1]
	}
	return out
}

// collapse folds runs of HTML whitespace into a single space.
func collapse(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return b.String()
}

func children(n *html.Node) []*html.Node {
	var out []*html.Node
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		out = append(out, ch)
	}
	return out
}

func skipped(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Head, atom.Title, atom.Meta, atom.Link,
		atom.Canvas, atom.Noscript, atom.Template, atom.Iframe, atom.Object,
		atom.Embed, atom.Svg, atom.Input, atom.Select, atom.Textarea:
		return true
	}
	return false
}

func isInline(n *html.Node) bool {
	switch n.DataAtom {
	case atom.A, atom.Abbr, atom.B, atom.Bdi, atom.Bdo, atom.Br, atom.Cite,
		atom.Code, atom.Data, atom.Dfn, atom.Em, atom.I, atom.Kbd, atom.Label,
		atom.Mark, atom.Q, atom.S, atom.Samp, atom.Small, atom.Span, atom.Strong,
		atom.Sub, atom.Sup, atom.Time, atom.U, atom.Var, atom.Del, atom.Ins,
		atom.Strike, atom.Font, atom.Big, atom.Tt, atom.Button:
		return true
	}
	return false
}

func containsBlock(n *html.Node) bool {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type != html.ElementNode || skipped(ch) {
			continue
		}
		if !isInline(ch) || containsBlock(ch) {
			return true
		}
	}
	return false
}

func styles(n *html.Node) []string {
	out := []string{"html-" + n.Data}
	return append(out, strings.Fields(attr(n, "class"))...)
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func isLinkable(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "mailto:")
}
