package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/matzehuels/tabpanel/pkg/cache"
	"github.com/matzehuels/tabpanel/pkg/dataurl"
	"github.com/matzehuels/tabpanel/pkg/observability"
)

const (
	// DefaultTimeout bounds a single fetch.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxBytes caps the size of a fetched resource.
	DefaultMaxBytes int64 = 10 << 20
)

var (
	// ErrNotFound is returned when the resource doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures and non-success statuses.
	ErrNetwork = errors.New("network error")

	// ErrTooLarge is returned when a resource exceeds the size limit.
	ErrTooLarge = errors.New("resource too large")

	// ErrNotImage is returned by [Fetcher.DataURL] for non-image payloads.
	ErrNotImage = errors.New("resource is not an image")

	// ErrUnsupportedScheme is returned for URLs that are neither http(s) nor file.
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
)

// Resource is a fetched payload with its media type.
type Resource struct {
	Data      []byte
	MediaType string
}

// Fetcher retrieves external resources for embedding.
// A Fetcher is safe for concurrent use if its cache is.
type Fetcher struct {
	http     *http.Client
	cache    cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	maxBytes int64
	headers  map[string]string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.http = c }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.http = &http.Client{Timeout: d}
		}
	}
}

// WithCache enables caching of resolved data URIs.
func WithCache(c cache.Cache, keyer cache.Keyer, ttl time.Duration) Option {
	return func(f *Fetcher) {
		f.cache = c
		if keyer != nil {
			f.keyer = keyer
		}
		f.ttl = ttl
	}
}

// WithMaxBytes caps the accepted payload size.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithHeaders sets headers applied to every HTTP request.
func WithHeaders(h map[string]string) Option {
	return func(f *Fetcher) { f.headers = h }
}

// NewFetcher creates a Fetcher. Without options it uses a 10s timeout,
// a 10 MiB size limit and no cache.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		http:     &http.Client{Timeout: DefaultTimeout},
		cache:    cache.NewNullCache(),
		keyer:    cache.NewDefaultKeyer(),
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DataURL resolves rawURL to an embedded data URI.
// The URL must be absolute. Payloads that are not images are rejected.
func (f *Fetcher) DataURL(ctx context.Context, rawURL string) (string, error) {
	key := f.keyer.ImageKey(rawURL)
	if data, hit, err := f.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "image")
		return string(data), nil
	}
	observability.Cache().OnCacheMiss(ctx, "image")

	res, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(res.MediaType, "image/") {
		return "", fmt.Errorf("%w: %s is %s", ErrNotImage, rawURL, res.MediaType)
	}

	src := dataurl.Encode(res.MediaType, res.Data)
	if err := f.cache.Set(ctx, key, []byte(src), f.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "image", len(src))
	}
	return src, nil
}

// Fetch retrieves the resource at rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Resource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "http", "https":
		return f.fetchHTTP(ctx, u)
	case "file":
		return f.fetchFile(ctx, u)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, u *url.URL) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	start := time.Now()

	resp, err := f.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	data, err := f.readLimited(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Resource{Data: data, MediaType: mediaType(resp.Header.Get("Content-Type"), data)}, nil
}

func (f *Fetcher) fetchFile(ctx context.Context, u *url.URL) (*Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(u.Path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, u.Path)
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := f.readLimited(file)
	if err != nil {
		return nil, err
	}
	return &Resource{Data: data, MediaType: mediaType(mime.TypeByExtension(extension(u.Path)), data)}, nil
}

func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBytes)
	}
	return data, nil
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// mediaType prefers the declared type and sniffs the payload otherwise.
func mediaType(declared string, data []byte) string {
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}

func extension(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 && !strings.ContainsRune(path[i:], '/') {
		return path[i:]
	}
	return ""
}
