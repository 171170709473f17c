// Package images converts uploaded picture files to and from embeddable data URIs.
package images

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNotImage       = errors.New("file is not an image")
	ErrEmptyFile      = errors.New("file is empty")
	ErrTooLarge       = errors.New("file is too large")
	ErrInvalidDataURI = errors.New("invalid data URI")
)

// FromUpload reads an uploaded file and returns it as a data URI.
// maxBytes <= 0 disables the size limit.
func FromUpload(r io.Reader, maxBytes int64) (string, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", ErrTooLarge
	}
	return FromBytes(data)
}

// FromBytes sniffs the content type of data and encodes it as a data URI.
func FromBytes(data []byte) (string, error) {
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mime.String())
	}
	return EncodeDataURI(baseMIME(mime.String()), data), nil
}

// EncodeDataURI builds a base64 data URI.
func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI splits a base64 data URI into its MIME type and payload.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURI)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload", ErrInvalidDataURI)
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidDataURI)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return baseMIME(mime), data, nil
}

// Verify checks an inline data URI: it must be labelled as an image, fit in maxBytes and
// carry bytes that sniff as an image. maxBytes <= 0 disables the size limit.
func Verify(uri string, maxBytes int64) error {
	mime, data, err := DecodeDataURI(uri)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(mime, "image/") {
		return ErrNotImage
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return ErrTooLarge
	}
	if len(data) == 0 {
		return ErrEmptyFile
	}
	if detected := mimetype.Detect(data); !strings.HasPrefix(detected.String(), "image/") {
		return fmt.Errorf("%w: labelled %s but content is %s", ErrNotImage, mime, detected.String())
	}
	return nil
}

// IsDataURI reports whether s looks like a data URI carrying an image.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:image/")
}

func baseMIME(mime string) string {
	base, _, _ := strings.Cut(mime, ";")
	return strings.TrimSpace(base)
}
