package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/storybook/internal/entities"
)

// Format is a book document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var ErrUnknownFormat = errors.New("unknown book document format")

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// EncodeBook writes the book document in the given format.
func EncodeBook(book *entities.Book, format Format, w io.Writer) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(book)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(book); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// DecodeBook reads a book document, normalizes it and checks its invariants.
func DecodeBook(r io.Reader, format Format) (*entities.Book, error) {
	var book entities.Book
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&book)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&book)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode book: %w", err)
	}

	book.Normalize()
	if err := book.Validate(); err != nil {
		return nil, fmt.Errorf("invalid book: %w", err)
	}
	return &book, nil
}

// LoadBook reads a book document from disk.
func LoadBook(path string) (*entities.Book, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open book: %w", err)
	}
	defer f.Close()
	return DecodeBook(f, format)
}
