// Package render turns exported tab markup into documents.
//
// # Overview
//
// Rendering is a two-step pipeline:
//
//   - [htmlconv] converts sanitized HTML into a declarative document
//     definition ([docdef])
//   - [sink] renders the definition (or the markup itself) into PDF, JSON,
//     Markdown or standalone HTML
//
//	nodes, err := htmlconv.Convert(sanitized)
//	def := &docdef.Definition{Content: nodes, DefaultStyle: docdef.Style{FontSize: 12}}
//	r, err := sink.ForFormat("pdf", sink.Options{})
//	pdf, err := r.Render(ctx, sink.Input{HTML: sanitized, Definition: def})
//
// The export service in pkg/export drives this pipeline after embedding
// every image as a data URI.
//
// [htmlconv]: github.com/matzehuels/tabpanel/pkg/render/htmlconv
// [docdef]: github.com/matzehuels/tabpanel/pkg/render/docdef
// [sink]: github.com/matzehuels/tabpanel/pkg/render/sink
package render
