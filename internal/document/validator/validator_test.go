package validator

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		maxSize     int64
		wantField   string
	}{
		{
			name:        "valid plain text",
			filename:    "doc.txt",
			contentType: "text/plain",
			data:        []byte("кот сидит на окне"),
			maxSize:     1000,
		},
		{
			name:        "charset parameter is tolerated",
			filename:    "doc.txt",
			contentType: "text/plain; charset=utf-8",
			data:        []byte("кот"),
			maxSize:     1000,
		},
		{
			name:        "missing filename",
			filename:    "  ",
			contentType: "text/plain",
			data:        []byte("кот"),
			maxSize:     1000,
			wantField:   "filename",
		},
		{
			name:        "wrong media type",
			filename:    "doc.pdf",
			contentType: "application/pdf",
			data:        []byte("кот"),
			maxSize:     1000,
			wantField:   "content_type",
		},
		{
			name:        "empty file",
			filename:    "doc.txt",
			contentType: "text/plain",
			data:        nil,
			maxSize:     1000,
			wantField:   "file",
		},
		{
			name:        "file too large",
			filename:    "doc.txt",
			contentType: "text/plain",
			data:        []byte(strings.Repeat("к", 100)),
			maxSize:     10,
			wantField:   "file",
		},
		{
			name:        "invalid utf-8",
			filename:    "doc.txt",
			contentType: "text/plain",
			data:        []byte{0xff, 0xfe, 0xfd},
			maxSize:     1000,
			wantField:   "file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.filename, tt.contentType, tt.data, tt.maxSize)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if _, ok := vErr.Fields[tt.wantField]; !ok {
				t.Errorf("expected failure on field %q, got %v", tt.wantField, vErr.Fields)
			}
		})
	}
}
