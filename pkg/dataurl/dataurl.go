// Package dataurl encodes and decodes RFC 2397 data URIs.
//
// Exported documents carry every image inline, so the export pipeline turns
// fetched bytes into data URIs and the document renderers turn them back into
// bytes. Only the base64 form is produced; both forms are accepted.
package dataurl

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Prefix starts every data URI.
const Prefix = "data:"

// ImagePrefix starts every embedded image reference.
const ImagePrefix = "data:image/"

// ErrMalformed is returned by [Decode] for strings that are not data URIs.
var ErrMalformed = errors.New("malformed data url")

// Encode returns data as a base64 data URI with the given media type.
func Encode(mediaType string, data []byte) string {
	var b strings.Builder
	b.Grow(len(Prefix) + len(mediaType) + 8 + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString(Prefix)
	b.WriteString(mediaType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// IsImage reports whether s is an embedded image reference.
func IsImage(s string) bool {
	return strings.HasPrefix(s, ImagePrefix)
}

// Decode splits a data URI into its media type and payload.
// A missing media type defaults to text/plain as RFC 2397 specifies.
func Decode(s string) (mediaType string, data []byte, err error) {
	if !strings.HasPrefix(s, Prefix) {
		return "", nil, ErrMalformed
	}
	header, payload, ok := strings.Cut(s[len(Prefix):], ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing comma", ErrMalformed)
	}

	isBase64 := false
	if h, found := strings.CutSuffix(header, ";base64"); found {
		header, isBase64 = h, true
	}
	mediaType, _, _ = strings.Cut(header, ";")
	if mediaType == "" {
		mediaType = "text/plain"
	}

	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some producers strip padding.
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return mediaType, data, nil
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return mediaType, []byte(unescaped), nil
}
