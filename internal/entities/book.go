package entities

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Image scale bounds shared by pages and covers.
const (
	MinImageScale     = 0.5
	MaxImageScale     = 2.0
	DefaultImageScale = 1.0
)

// Title fallbacks used when the book has no title yet.
const (
	DefaultDisplayTitle = "My Story Book"
	DefaultPromptTitle  = "Children's storybook"
)

var (
	ErrDuplicatePageID = errors.New("duplicate page id")
	ErrScaleOutOfRange = errors.New("image scale out of range")
)

func init() {
	// Books live inside the session, which is gob-encoded
	gob.Register(&Book{})
}

// Page is a single story page. Image holds a data URI, empty when the page has no picture.
type Page struct {
	ID         string  `json:"id" yaml:"id"`
	Image      string  `json:"image,omitempty" yaml:"image,omitempty"`
	ImageScale float64 `json:"image_scale" yaml:"image_scale"`
	Text       string  `json:"text" yaml:"text"`
}

// HasImage reports whether the page carries a picture.
func (p Page) HasImage() bool {
	return p.Image != ""
}

type CoverData struct {
	Image      string  `json:"image,omitempty" yaml:"image,omitempty"`
	ImageScale float64 `json:"image_scale" yaml:"image_scale"`
}

// Book is the aggregate root. Pages order is the reading order.
type Book struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Cover     CoverData `json:"cover" yaml:"cover"`
	Pages     []Page    `json:"pages" yaml:"pages"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewBook returns an empty book with a fresh id.
func NewBook() *Book {
	now := time.Now()
	return &Book{
		ID:        uuid.NewString(),
		Cover:     CoverData{ImageScale: DefaultImageScale},
		Pages:     []Page{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewPageID returns a fresh opaque page identifier.
func NewPageID() string {
	return uuid.NewString()
}

// ClampScale forces a scale into [MinImageScale, MaxImageScale].
// NaN falls back to the default scale.
func ClampScale(scale float64) float64 {
	if math.IsNaN(scale) {
		return DefaultImageScale
	}
	return math.Min(MaxImageScale, math.Max(MinImageScale, scale))
}

// DisplayTitle is the title shown on the cover.
func (b *Book) DisplayTitle() string {
	if b.Title == "" {
		return DefaultDisplayTitle
	}
	return b.Title
}

// PromptTitle is the title handed to the image generator as story context.
func (b *Book) PromptTitle() string {
	if b.Title == "" {
		return DefaultPromptTitle
	}
	return b.Title
}

// Touch bumps UpdatedAt.
func (b *Book) Touch() {
	b.UpdatedAt = time.Now()
}

// PageIndex returns the position of the page with the given id, or -1.
func (b *Book) PageIndex(id string) int {
	for i := range b.Pages {
		if b.Pages[i].ID == id {
			return i
		}
	}
	return -1
}

// Validate checks the book invariants: unique page ids and in-range scales.
func (b *Book) Validate() error {
	seen := make(map[string]struct{}, len(b.Pages))
	for _, p := range b.Pages {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePageID, p.ID)
		}
		seen[p.ID] = struct{}{}
		if !scaleInRange(p.ImageScale) {
			return fmt.Errorf("%w: page %s has %v", ErrScaleOutOfRange, p.ID, p.ImageScale)
		}
	}
	if !scaleInRange(b.Cover.ImageScale) {
		return fmt.Errorf("%w: cover has %v", ErrScaleOutOfRange, b.Cover.ImageScale)
	}
	return nil
}

// Normalize repairs values coming from outside (documents, old sessions):
// missing ids are filled, scales clamped, nil page lists replaced.
func (b *Book) Normalize() {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Pages == nil {
		b.Pages = []Page{}
	}
	if b.Cover.ImageScale == 0 {
		b.Cover.ImageScale = DefaultImageScale
	}
	b.Cover.ImageScale = ClampScale(b.Cover.ImageScale)
	for i := range b.Pages {
		if b.Pages[i].ID == "" {
			b.Pages[i].ID = NewPageID()
		}
		if b.Pages[i].ImageScale == 0 {
			b.Pages[i].ImageScale = DefaultImageScale
		}
		b.Pages[i].ImageScale = ClampScale(b.Pages[i].ImageScale)
	}
}

func scaleInRange(scale float64) bool {
	return scale >= MinImageScale && scale <= MaxImageScale
}
