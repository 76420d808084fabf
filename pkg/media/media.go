// Package media handles the image answers collected by image fields: reading
// uploads into data URLs, mapping the jpg/png/gif format choices onto MIME
// types, and producing small preview thumbnails for submission receipts.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxReadBytes caps how much of an upload is read into memory.
const MaxReadBytes = 32 << 20

// BytesPerMegabyte converts image size limits expressed in megabytes.
const BytesPerMegabyte = 1024 * 1024

var (
	// ErrNotDataURL is returned when a value is not a base64 data URL.
	ErrNotDataURL = errors.New("media: value is not a base64 data url")
	// ErrTooLarge is returned when an upload exceeds MaxReadBytes.
	ErrTooLarge = errors.New("media: upload exceeds read limit")
)

// formats maps the builder's format choices onto MIME types.
var formats = []struct {
	name string
	mime string
}{
	{name: "jpg", mime: "image/jpeg"},
	{name: "png", mime: "image/png"},
	{name: "gif", mime: "image/gif"},
}

// Formats lists the image formats an image field can allow.
func Formats() []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		out = append(out, f.name)
	}
	return out
}

// MIMEForFormat resolves a format choice ("jpg", "jpeg", "png", "gif").
func MIMEForFormat(format string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(format))
	if name == "jpeg" {
		name = "jpg"
	}
	for _, f := range formats {
		if f.name == name {
			return f.mime, true
		}
	}
	return "", false
}

// FormatForMIME is the inverse of MIMEForFormat.
func FormatForMIME(mime string) (string, bool) {
	mime = strings.ToLower(strings.TrimSpace(mime))
	for _, f := range formats {
		if f.mime == mime {
			return f.name, true
		}
	}
	return "", false
}

// AcceptAttribute renders the allowed formats as an HTML accept list. An empty
// allow-list accepts every supported image type.
func AcceptAttribute(allowed []string) string {
	if len(allowed) == 0 {
		allowed = Formats()
	}
	mimes := make([]string, 0, len(allowed))
	for _, format := range allowed {
		if mime, ok := MIMEForFormat(format); ok {
			mimes = append(mimes, mime)
		}
	}
	return strings.Join(mimes, ",")
}

// DetectMIME sniffs the content type from the data itself.
func DetectMIME(data []byte) string {
	return mimetype.Detect(data).String()
}

// ReadDataURL reads r fully and encodes it as a base64 data URL using the
// sniffed content type.
func ReadDataURL(r io.Reader) (string, error) {
	if r == nil {
		return "", errors.New("media: reader is nil")
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxReadBytes+1))
	if err != nil {
		return "", fmt.Errorf("media: read upload: %w", err)
	}
	if len(data) > MaxReadBytes {
		return "", ErrTooLarge
	}
	return EncodeDataURL(data), nil
}

// EncodeDataURL encodes data as a base64 data URL.
func EncodeDataURL(data []byte) string {
	mime := DetectMIME(data)
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = mime[:idx]
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL splits a base64 data URL into its declared MIME type and
// payload bytes.
func DecodeDataURL(value string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(value, "data:")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	mime, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("media: decode payload: %w", err)
	}
	return strings.ToLower(mime), data, nil
}

// IsDataURL reports whether value looks like a base64 data URL.
func IsDataURL(value string) bool {
	_, _, err := DecodeDataURL(value)
	return err == nil
}

// SniffMatches reports whether the sniffed type of data agrees with mime.
func SniffMatches(mime string, data []byte) bool {
	return len(data) > 0 && mimetype.Detect(data).Is(mime)
}
