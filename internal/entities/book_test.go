package entities

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampScale(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{"within range", 1.3, 1.3},
		{"lower bound", 0.5, 0.5},
		{"upper bound", 2.0, 2.0},
		{"below range", 0.1, MinImageScale},
		{"above range", 5, MaxImageScale},
		{"negative", -1, MinImageScale},
		{"positive infinity", math.Inf(1), MaxImageScale},
		{"nan", math.NaN(), DefaultImageScale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampScale(tt.input)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, MinImageScale)
			assert.LessOrEqual(t, got, MaxImageScale)
		})
	}
}

func TestNewBook(t *testing.T) {
	book := NewBook()

	assert.NotEmpty(t, book.ID)
	assert.Empty(t, book.Pages)
	assert.NotNil(t, book.Pages)
	assert.Equal(t, DefaultImageScale, book.Cover.ImageScale)
	assert.False(t, book.CreatedAt.IsZero())
	assert.Equal(t, book.CreatedAt, book.UpdatedAt)
	require.NoError(t, book.Validate())
}

func TestBook_Titles(t *testing.T) {
	book := NewBook()
	assert.Equal(t, "My Story Book", book.DisplayTitle())
	assert.Equal(t, "Children's storybook", book.PromptTitle())

	book.Title = "The Fox"
	assert.Equal(t, "The Fox", book.DisplayTitle())
	assert.Equal(t, "The Fox", book.PromptTitle())
}

func TestBook_Validate(t *testing.T) {
	t.Run("duplicate ids", func(t *testing.T) {
		book := NewBook()
		book.Pages = []Page{
			{ID: "a", ImageScale: 1},
			{ID: "a", ImageScale: 1},
		}
		assert.ErrorIs(t, book.Validate(), ErrDuplicatePageID)
	})

	t.Run("page scale out of range", func(t *testing.T) {
		book := NewBook()
		book.Pages = []Page{{ID: "a", ImageScale: 3}}
		assert.ErrorIs(t, book.Validate(), ErrScaleOutOfRange)
	})

	t.Run("cover scale out of range", func(t *testing.T) {
		book := NewBook()
		book.Cover.ImageScale = 0.2
		assert.ErrorIs(t, book.Validate(), ErrScaleOutOfRange)
	})
}

func TestBook_Normalize(t *testing.T) {
	book := &Book{
		Pages: []Page{
			{Text: "no id, no scale"},
			{ID: "big", ImageScale: 9},
		},
	}

	book.Normalize()

	assert.NotEmpty(t, book.ID)
	assert.Equal(t, DefaultImageScale, book.Cover.ImageScale)
	assert.NotEmpty(t, book.Pages[0].ID)
	assert.Equal(t, DefaultImageScale, book.Pages[0].ImageScale)
	assert.Equal(t, MaxImageScale, book.Pages[1].ImageScale)
	require.NoError(t, book.Validate())
}

func TestBook_PageIndex(t *testing.T) {
	book := NewBook()
	book.Pages = []Page{{ID: "a"}, {ID: "b"}}

	assert.Equal(t, 1, book.PageIndex("b"))
	assert.Equal(t, -1, book.PageIndex("missing"))
}
