package export

import (
	"context"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/tabpanel/pkg/dataurl"
	"github.com/matzehuels/tabpanel/pkg/errors"
	"github.com/matzehuels/tabpanel/pkg/observability"
)

// EmbedImages returns fragment with every image embedded as a data URI and
// every canvas removed. Images that cannot be resolved are removed.
func (s *Service) EmbedImages(ctx context.Context, fragment string) (string, error) {
	out, _, err := s.embed(ctx, "", fragment)
	return out, err
}

type fetchJob struct {
	img *html.Node
	src string
	abs string
	out string
	err error
}

func (s *Service) embed(ctx context.Context, exportID, fragment string) (string, Stats, error) {
	var stats Stats

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", stats, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse markup")
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}

	// Fallback content inside a canvas goes away with the canvas.
	var images, canvases []*html.Node
	walk(body, func(n *html.Node) bool {
		switch n.DataAtom {
		case atom.Img:
			images = append(images, n)
		case atom.Canvas:
			canvases = append(canvases, n)
			return false
		}
		return true
	})
	stats.Images = len(images)
	observability.Export().OnEmbedStart(ctx, exportID, len(images))

	for _, c := range canvases {
		remove(c)
	}
	stats.Canvases = len(canvases)

	var jobs []*fetchJob
	for _, img := range images {
		src := strings.TrimSpace(getAttr(img, "src"))
		switch {
		case src == "":
			remove(img)
			stats.Dropped++
		case dataurl.IsImage(src):
			stats.Embedded++
		default:
			jobs = append(jobs, &fetchJob{img: img, src: src, abs: s.resolve(src)})
		}
	}

	if len(jobs) > 0 && s.fetcher == nil {
		for _, j := range jobs {
			j.err = errors.New(errors.ErrCodeFetchFailed, "no image fetcher configured")
		}
	} else if len(jobs) > 0 {
		var g errgroup.Group
		g.SetLimit(s.concurrency)
		for _, j := range jobs {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					j.err = err
					return nil
				}
				j.out, j.err = s.fetcher.DataURL(ctx, j.abs)
				return nil
			})
		}
		g.Wait()
		if err := ctx.Err(); err != nil {
			return "", stats, err
		}
	}

	// DOM mutations happen only after every fetch has finished.
	for _, j := range jobs {
		if j.err != nil {
			s.logger.Debug("image dropped", "src", truncate(j.src, 80), "err", errors.Wrap(errors.ErrCodeFetchFailed, j.err, "fetch %s", truncate(j.abs, 80)))
			remove(j.img)
			stats.Dropped++
			continue
		}
		setAttr(j.img, "src", j.out)
		stats.Embedded++
	}

	var b strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", stats, errors.Wrap(errors.ErrCodeInternal, err, "serialize markup")
		}
	}
	return b.String(), stats, nil
}

// resolve makes src absolute against the base URL. Sources that don't parse
// are returned unchanged.
func (s *Service) resolve(src string) string {
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	if s.baseURL == nil {
		return ref.String()
	}
	return s.baseURL.ResolveReference(ref).String()
}

// walk visits element nodes depth-first. Children are skipped when fn
// returns false.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if n.Type == html.ElementNode && !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func remove(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
