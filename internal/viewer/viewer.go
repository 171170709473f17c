// Package viewer implements book pagination for the reading view.
//
// Spread indexes run from 0 (front cover) through 1..N (story pages, index k shows
// pages[k-1]) to N+1 (back cover), where N is the number of pages.
package viewer

import (
	"encoding/gob"
	"fmt"

	"github.com/mrlokans/storybook/internal/entities"
)

func init() {
	gob.Register(Cursor{})
}

type SpreadKind string

const (
	SpreadCover SpreadKind = "cover"
	SpreadPage  SpreadKind = "page"
	SpreadBack  SpreadKind = "back"
)

// Target is a clickable region of the viewer.
type Target string

const (
	TargetFrontCover Target = "front-cover"
	TargetBackCover  Target = "back-cover"
	TargetLeftEdge   Target = "left-edge"
	TargetRightEdge  Target = "right-edge"
	TargetLeftArrow  Target = "left-arrow"
	TargetRightArrow Target = "right-arrow"
)

// Cursor is the current position in a book with Pages story pages.
type Cursor struct {
	Index int `json:"index"`
	Pages int `json:"pages"`
}

// NewCursor opens a book with n pages at the front cover.
func NewCursor(n int) Cursor {
	if n < 0 {
		n = 0
	}
	return Cursor{Pages: n}
}

// Total is the number of spreads, covers included.
func (c Cursor) Total() int {
	return c.Pages + 2
}

// Last is the back cover index.
func (c Cursor) Last() int {
	return c.Pages + 1
}

func (c Cursor) AtStart() bool { return c.Index == 0 }
func (c Cursor) AtEnd() bool   { return c.Index == c.Last() }

// Next advances one spread. Returns false at the back cover.
func (c *Cursor) Next() bool {
	if c.Index >= c.Last() {
		return false
	}
	c.Index++
	return true
}

// Prev goes back one spread. Returns false at the front cover.
func (c *Cursor) Prev() bool {
	if c.Index <= 0 {
		return false
	}
	c.Index--
	return true
}

// Click handles a click on one of the viewer regions.
// The covers turn the book inward: the front cover opens it and the back cover steps back.
func (c *Cursor) Click(target Target) (bool, error) {
	switch target {
	case TargetFrontCover:
		if !c.AtStart() {
			return false, nil
		}
		return c.Next(), nil
	case TargetBackCover:
		if !c.AtEnd() {
			return false, nil
		}
		return c.Prev(), nil
	case TargetLeftEdge, TargetLeftArrow:
		return c.Prev(), nil
	case TargetRightEdge, TargetRightArrow:
		return c.Next(), nil
	default:
		return false, fmt.Errorf("unknown click target %q", target)
	}
}

// Resize adapts the cursor to a page count change, keeping the index in range.
func (c *Cursor) Resize(n int) {
	if n < 0 {
		n = 0
	}
	c.Pages = n
	if c.Index > c.Last() {
		c.Index = c.Last()
	}
	if c.Index < 0 {
		c.Index = 0
	}
}

// Spread is everything needed to draw the current view.
type Spread struct {
	Kind    SpreadKind          `json:"kind"`
	Index   int                 `json:"index"`
	Total   int                 `json:"total"`
	Number  int                 `json:"number,omitempty"`
	Title   string              `json:"title"`
	Cover   *entities.CoverData `json:"cover,omitempty"`
	Page    *entities.Page      `json:"page,omitempty"`
	CanPrev bool                `json:"can_prev"`
	CanNext bool                `json:"can_next"`
	Hint    string              `json:"hint"`
}

// Spread resolves the cursor against the book. The cursor is resized to the book first.
func (c *Cursor) Spread(book *entities.Book) Spread {
	c.Resize(len(book.Pages))

	s := Spread{
		Index:   c.Index,
		Total:   c.Total(),
		Title:   book.DisplayTitle(),
		CanPrev: !c.AtStart(),
		CanNext: !c.AtEnd(),
		Hint:    "Click the page edges or arrows to turn pages",
	}

	switch {
	case c.AtStart():
		cover := book.Cover
		s.Kind = SpreadCover
		s.Cover = &cover
		s.Hint = "Click the cover to open the book"
	case c.AtEnd():
		s.Kind = SpreadBack
	default:
		page := book.Pages[c.Index-1]
		s.Kind = SpreadPage
		s.Page = &page
		s.Number = c.Index
	}
	return s
}
