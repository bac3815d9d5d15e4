// Package validator provides input validation for document uploads. It
// enforces content-type, size, and encoding constraints and returns
// per-field error details.
package validator

import (
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"
)

const textPlain = "text/plain"

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// ValidateUpload checks that the uploaded file is a non-empty, valid UTF-8
// plain-text document within the size limit. Content-type parameters
// (charset) are tolerated; only the media type itself must be text/plain.
func ValidateUpload(filename, contentType string, data []byte, maxSize int64) error {
	errs := make(map[string]string)

	if strings.TrimSpace(filename) == "" {
		errs["filename"] = "filename is required"
	}
	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}
	if mediaType != textPlain {
		errs["content_type"] = fmt.Sprintf("only %s files are allowed", textPlain)
	}
	if len(data) == 0 {
		errs["file"] = "file is empty"
	} else if maxSize > 0 && int64(len(data)) > maxSize {
		errs["file"] = fmt.Sprintf("file exceeds the %d byte limit", maxSize)
	} else if !utf8.Valid(data) {
		errs["file"] = "file cannot be decoded as UTF-8 text"
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
