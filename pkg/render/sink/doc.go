// Package sink renders exported tab content into downloadable documents.
//
// # Overview
//
// A "sink" turns an [Input] (the sanitized markup and its document
// definition) into the bytes of a final format:
//
//   - PDF via fpdf: lays out the document definition natively ([PDFRenderer])
//   - PDF via headless Chrome: prints the sanitized markup ([ChromeRenderer])
//   - JSON: the document definition itself ([JSONRenderer])
//   - Markdown: the sanitized markup converted to Markdown ([MarkdownRenderer])
//   - HTML: a standalone page with every image embedded ([HTMLRenderer])
//
// [ForFormat] maps a format name to its renderer:
//
//	r, err := sink.ForFormat("pdf", sink.Options{Engine: sink.EngineFPDF})
//	data, err := r.Render(ctx, sink.Input{HTML: sanitized, Definition: def})
//
// # PDF Output
//
// The fpdf renderer uses the core PDF fonts, so text is limited to the
// Windows-1252 repertoire; characters outside it (emoji, most symbols) are
// dropped. Images must be data URIs. JPEG passes through, other raster
// formats (PNG, GIF, WebP, BMP) are re-encoded to PNG. Images wider than the
// content area are scaled down to fit.
//
// [Inspect] reads a rendered PDF back with pdfcpu and reports its page count
// and metadata.
//
// # Adding New Formats
//
//  1. Implement [Renderer]
//  2. Add the format constant with its media type and extension
//  3. Register it in [ForFormat]
package sink
