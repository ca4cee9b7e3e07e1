package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// MaxFilenameLength bounds upload filenames.
const MaxFilenameLength = 255

// ValidateUploadFilename checks the client-supplied name of an uploaded file.
// Only the extension is used for format dispatch; the name is never used as
// a path, but it is logged and cached, so it must be printable.
func ValidateUploadFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidUpload, "No selected file")
	}
	if len(name) > MaxFilenameLength {
		return New(ErrCodeInvalidUpload, "filename too long (max %d characters)", MaxFilenameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidUpload, "filename contains invalid control characters")
		}
	}
	return nil
}

// ValidateExtension checks that the filename ends in one of the allowed
// extensions (compared case-insensitively, with leading dot).
func ValidateExtension(name string, allowed ...string) error {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	return New(ErrCodeUnsupportedFormat, "Unsupported file type")
}

// idRegex matches graph and session identifiers: UUIDs and content hashes.
var idRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,127}$`)

// ValidateID validates a resource identifier taken from a URL path.
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}
	if !idRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid id: %q", id)
	}
	return nil
}

// ValidateAttributeKey validates an attribute name used in an encoding
// configuration or filter. Presence in the graph is checked separately.
func ValidateAttributeKey(key string) error {
	if len(key) > 256 {
		return New(ErrCodeInvalidAttribute, "attribute name too long (max 256 characters)")
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidAttribute, "attribute name contains invalid control characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has one of the given schemes.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use one of the schemes %v", schemes)
}
