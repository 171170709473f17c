// Package storybook implements the page store: the mutations the editor applies to a book.
//
// Every operation works on a *entities.Book owned by the caller (normally the book held in
// the user's session) and bumps UpdatedAt when it changes something.
package storybook

import (
	"errors"
	"fmt"

	"github.com/mrlokans/storybook/internal/entities"
)

var (
	ErrInvalidPermutation = errors.New("page order is not a permutation of the current pages")
	ErrIndexOutOfRange    = errors.New("page index out of range")
)

// PageUpdate carries the fields to merge into a page. Nil fields are left untouched.
type PageUpdate struct {
	Text       *string  `json:"text,omitempty"`
	Image      *string  `json:"image,omitempty"`
	ImageScale *float64 `json:"image_scale,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (u PageUpdate) IsEmpty() bool {
	return u.Text == nil && u.Image == nil && u.ImageScale == nil
}

// AddPage appends a new page. It is a no-op when both image and text are empty.
func AddPage(book *entities.Book, image string, scale float64, text string) (entities.Page, bool) {
	if image == "" && text == "" {
		return entities.Page{}, false
	}

	page := entities.Page{
		ID:         entities.NewPageID(),
		Image:      image,
		ImageScale: entities.ClampScale(scale),
		Text:       text,
	}
	book.Pages = append(book.Pages, page)
	book.Touch()
	return page, true
}

// UpdatePage merges the update into the page with the given id.
// Returns false when no page matches.
func UpdatePage(book *entities.Book, id string, update PageUpdate) bool {
	idx := book.PageIndex(id)
	if idx < 0 {
		return false
	}

	page := &book.Pages[idx]
	if update.Text != nil {
		page.Text = *update.Text
	}
	if update.Image != nil {
		// A new picture starts at its natural size unless a scale comes with it
		if *update.Image != page.Image {
			page.ImageScale = entities.DefaultImageScale
		}
		page.Image = *update.Image
	}
	if update.ImageScale != nil {
		page.ImageScale = entities.ClampScale(*update.ImageScale)
	}
	book.Touch()
	return true
}

// DeletePage removes the page with the given id, keeping the others in order.
func DeletePage(book *entities.Book, id string) bool {
	idx := book.PageIndex(id)
	if idx < 0 {
		return false
	}

	book.Pages = append(book.Pages[:idx:idx], book.Pages[idx+1:]...)
	book.Touch()
	return true
}

// FindPage looks up a page by id.
func FindPage(book *entities.Book, id string) (entities.Page, bool) {
	idx := book.PageIndex(id)
	if idx < 0 {
		return entities.Page{}, false
	}
	return book.Pages[idx], true
}

// ReorderPages replaces the page order with the given id sequence.
// The sequence must name every current page exactly once; anything else is rejected
// and the book is left as it was.
func ReorderPages(book *entities.Book, ids []string) error {
	if len(ids) != len(book.Pages) {
		return fmt.Errorf("%w: got %d ids for %d pages", ErrInvalidPermutation, len(ids), len(book.Pages))
	}

	byID := make(map[string]entities.Page, len(book.Pages))
	for _, p := range book.Pages {
		byID[p.ID] = p
	}

	reordered := make([]entities.Page, 0, len(ids))
	used := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		page, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown page %q", ErrInvalidPermutation, id)
		}
		if _, dup := used[id]; dup {
			return fmt.Errorf("%w: page %q listed twice", ErrInvalidPermutation, id)
		}
		used[id] = struct{}{}
		reordered = append(reordered, page)
	}

	book.Pages = reordered
	book.Touch()
	return nil
}

// MovePage removes the page at from and inserts it at to.
func MovePage(book *entities.Book, from, to int) error {
	n := len(book.Pages)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d with %d pages", ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}

	ids := make([]string, 0, n)
	for _, p := range book.Pages {
		ids = append(ids, p.ID)
	}
	moved := ids[from]
	ids = append(ids[:from], ids[from+1:]...)
	ids = append(ids[:to], append([]string{moved}, ids[to:]...)...)

	return ReorderPages(book, ids)
}

// SetTitle renames the book.
func SetTitle(book *entities.Book, title string) {
	book.Title = title
	book.Touch()
}

// SetCoverImage replaces the cover picture and resets its scale.
func SetCoverImage(book *entities.Book, image string) {
	book.Cover = entities.CoverData{Image: image, ImageScale: entities.DefaultImageScale}
	book.Touch()
}

// SetCoverScale resizes the cover picture.
func SetCoverScale(book *entities.Book, scale float64) {
	book.Cover.ImageScale = entities.ClampScale(scale)
	book.Touch()
}

// ClearCover removes the cover picture.
func ClearCover(book *entities.Book) {
	SetCoverImage(book, "")
}

// Reset starts a fresh book, discarding the current one.
func Reset() *entities.Book {
	return entities.NewBook()
}
