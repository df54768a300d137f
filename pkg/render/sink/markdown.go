package sink

import (
	"context"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// MarkdownRenderer converts the sanitized markup to CommonMark with tables.
type MarkdownRenderer struct {
	conv *converter.Converter
}

// NewMarkdownRenderer creates a Markdown renderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{conv: converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)}
}

// Render implements [Renderer].
func (r *MarkdownRenderer) Render(_ context.Context, in Input) ([]byte, error) {
	md, err := r.Convert(in.HTML)
	if err != nil {
		return nil, err
	}
	return []byte(md + "\n"), nil
}

// Convert returns fragment as Markdown.
func (r *MarkdownRenderer) Convert(fragment string) (string, error) {
	return r.conv.ConvertString(fragment)
}
