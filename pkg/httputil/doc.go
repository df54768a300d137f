// Package httputil fetches the external resources referenced by tab markup.
//
// # Overview
//
// The export pipeline must turn every image reference into embedded data.
// [Fetcher] resolves a URL to bytes and to a data URI:
//
//   - http and https URLs are fetched with a timeout-bound client
//   - file URLs are read from the local filesystem
//   - non-success statuses, oversize payloads and non-image payloads are errors
//
// There is no retry policy: a failed image is dropped by the caller and the
// export carries on without it.
//
// # Caching
//
// When configured with a [cache.Cache], [Fetcher.DataURL] stores the resolved
// data URI under the image's absolute URL so repeated exports skip the network:
//
//	f := httputil.NewFetcher(httputil.WithCache(c, cache.NewDefaultKeyer(), 24*time.Hour))
//	src, err := f.DataURL(ctx, "https://example.com/avatar.png")
//
// The cache can be cleared via `tabpanel cache clear`.
//
// [cache.Cache]: github.com/matzehuels/tabpanel/pkg/cache.Cache
package httputil
