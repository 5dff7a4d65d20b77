// Package sanitize holds the pure helpers that make uploaded metadata and payloads safe to
// store in a TEXT column.
package sanitize

import (
	"encoding/base64"
	"path/filepath"
	"strings"
)

// OctetStream is the fallback content type.
const OctetStream = "application/octet-stream"

var extensionTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Text removes C0 and C1 control characters (U+0000-U+001F, U+007F-U+009F).
// Invalid UTF-8 sequences are dropped as well so the result always round-trips through postgres.
func Text(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToValidUTF8(s, "")
	return strings.Map(func(r rune) rune {
		if isControl(r) {
			return -1
		}
		return r
	}, s)
}

func isControl(r rune) bool {
	return r <= 0x1F || (r >= 0x7F && r <= 0x9F)
}

// EncodeBinary returns the standard base64 form of b.
func EncodeBinary(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeBinary reverses EncodeBinary. Malformed input yields an empty slice and the decode error,
// which callers log instead of failing.
func DecodeBinary(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return []byte{}, err
	}
	return b, nil
}

// ContentType returns declared when present, otherwise the type registered for the filename's
// extension, otherwise OctetStream. It never returns an empty string.
func ContentType(filename, declared string) string {
	if declared = strings.TrimSpace(declared); declared != "" {
		return declared
	}
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return t
	}
	return OctetStream
}
