// Package export turns a tab markup fragment into a downloadable document.
//
// # Pipeline
//
// [Service.GenerateDocument] runs four stages:
//
//  1. Embed: every img source becomes a data URI. Empty sources are removed,
//     data URIs pass through, anything else is resolved against the base URL
//     and fetched. Images that cannot be fetched are removed. Canvas
//     elements are always removed.
//  2. Convert: the sanitized markup becomes a document definition.
//  3. Render: the configured [sink.Renderer] produces the document bytes.
//  4. Download: the [Downloader] delivers the document.
//
// Image fetches run concurrently with a bounded worker count; a failing image
// never fails the export. Rendering and download errors are logged and
// returned as RENDER_FAILED errors that still unwrap to the original cause.
//
//	svc := export.NewService(fetcher, renderer, logger, export.WithConcurrency(4))
//	err := svc.GenerateDocument(ctx, fragment, "tabs-export.pdf", export.FileDownloader{Dir: "."})
//
// [sink.Renderer]: github.com/matzehuels/tabpanel/pkg/render/sink.Renderer
package export
