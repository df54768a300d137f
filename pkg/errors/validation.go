package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateFilename validates a download filename for safety.
// The name ends up in a Content-Disposition header or as a file in the
// output directory, so it must be a plain basename.
//
// The validation rules:
//   - No empty names
//   - No control characters or null bytes
//   - No path separators or parent-directory references
//   - Maximum length of 255 characters
func ValidateFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidFilename, "filename cannot be empty")
	}

	if len(name) > 255 {
		return New(ErrCodeInvalidFilename, "filename too long (max 255 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidFilename, "filename contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, `/\"`) {
		return New(ErrCodeInvalidFilename, "filename must not contain path separators or quotes: %q", name)
	}

	if name == "." || name == ".." || filepath.Base(name) != name {
		return New(ErrCodeInvalidFilename, "filename must be a plain file name: %q", name)
	}

	return nil
}

// ValidateTabIndex checks that i addresses one of n tabs.
func ValidateTabIndex(i, n int) error {
	if n == 0 {
		return New(ErrCodeInvalidTab, "no tabs defined")
	}
	if i < 0 || i >= n {
		return New(ErrCodeInvalidTab, "tab index %d out of range [0, %d)", i, n)
	}
	return nil
}

// ValidateTabID checks that a tab identifier is usable as an HTML id.
func ValidateTabID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidTab, "tab id cannot be empty")
	}
	for _, r := range id {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return New(ErrCodeInvalidTab, "tab id %q contains invalid character %q", id, r)
		}
	}
	return nil
}
