package http

import (
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/storybook/internal/editor"
	"github.com/mrlokans/storybook/internal/entities"
)

func addPages(t *testing.T, tc *testClient, texts ...string) []entities.Page {
	t.Helper()
	pages := make([]entities.Page, 0, len(texts))
	for _, text := range texts {
		w := tc.request(http.MethodPost, "/api/pages", map[string]string{"text": text})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		pages = append(pages, decode[entities.Page](t, w))
	}
	return pages
}

func bookPages(t *testing.T, tc *testClient) []entities.Page {
	t.Helper()
	return decode[BookResponse](t, tc.request(http.MethodGet, "/api/book", nil)).Book.Pages
}

func pageTextsOf(pages []entities.Page) []string {
	texts := make([]string, 0, len(pages))
	for _, p := range pages {
		texts = append(texts, p.Text)
	}
	return texts
}

func TestPagesController_Create(t *testing.T) {
	t.Run("json page with text", func(t *testing.T) {
		tc := newTestClient(t, &fakeGenerator{})

		w := tc.request(http.MethodPost, "/api/pages", map[string]any{"text": "Once upon a time", "image_scale": 0.1})
		require.Equal(t, http.StatusCreated, w.Code)

		page := decode[entities.Page](t, w)
		assert.NotEmpty(t, page.ID)
		assert.Equal(t, "Once upon a time", page.Text)
		assert.Equal(t, entities.MinImageScale, page.ImageScale)
	})

	t.Run("json page with inline image", func(t *testing.T) {
		tc := newTestClient(t, &fakeGenerator{})

		uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(testPNG())
		w := tc.request(http.MethodPost, "/api/pages", map[string]string{"image": uri})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, uri, decode[entities.Page](t, w).Image)
	})

	t.Run("multipart page with file", func(t *testing.T) {
		tc := newTestClient(t, &fakeGenerator{})

		w := tc.multipart(http.MethodPost, "/api/pages", map[string]string{"text": "Look!", "image_scale": "1.5"}, testPNG())
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		page := decode[entities.Page](t, w)
		assert.True(t, page.HasImage())
		assert.Equal(t, 1.5, page.ImageScale)
	})

	t.Run("empty page is rejected", func(t *testing.T) {
		tc := newTestClient(t, &fakeGenerator{})

		w := tc.request(http.MethodPost, "/api/pages", map[string]string{"text": ""})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), CodeEmptyPage)
		assert.Empty(t, bookPages(t, tc))
	})

	t.Run("non-image data URI is rejected", func(t *testing.T) {
		tc := newTestClient(t, &fakeGenerator{})

		w := tc.request(http.MethodPost, "/api/pages", map[string]string{"image": "data:text/plain;base64,aGVsbG8="})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), CodeInvalidImage)
	})

	t.Run("image label with non-image bytes is rejected", func(t *testing.T) {
		tc := newTestClient(t, &fakeGenerator{})

		w := tc.request(http.MethodPost, "/api/pages", map[string]string{"image": "data:image/png;base64,aGVsbG8="})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), CodeInvalidImage)
		assert.Empty(t, bookPages(t, tc))
	})
}

func TestPagesController_Update(t *testing.T) {
	tc := newTestClient(t, &fakeGenerator{})
	pages := addPages(t, tc, "first", "second")

	w := tc.request(http.MethodPatch, "/api/pages/"+pages[1].ID, map[string]any{"text": "changed", "image_scale": 3})
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[entities.Page](t, w)
	assert.Equal(t, "changed", page.Text)
	assert.Equal(t, entities.MaxImageScale, page.ImageScale)

	assert.Equal(t, []string{"first", "changed"}, pageTextsOf(bookPages(t, tc)))

	t.Run("unknown page", func(t *testing.T) {
		w := tc.request(http.MethodPatch, "/api/pages/missing", map[string]string{"text": "x"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("empty update", func(t *testing.T) {
		w := tc.request(http.MethodPatch, "/api/pages/"+pages[0].ID, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPagesController_Delete(t *testing.T) {
	tc := newTestClient(t, &fakeGenerator{})
	pages := addPages(t, tc, "a", "b", "c")

	w := tc.request(http.MethodDelete, "/api/pages/"+pages[1].ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"a", "c"}, pageTextsOf(bookPages(t, tc)))

	w = tc.request(http.MethodDelete, "/api/pages/"+pages[1].ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPagesController_Reorder(t *testing.T) {
	tc := newTestClient(t, &fakeGenerator{})
	pages := addPages(t, tc, "a", "b", "c")

	w := tc.request(http.MethodPut, "/api/pages/order", map[string][]string{"ids": {pages[2].ID, pages[0].ID, pages[1].ID}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"c", "a", "b"}, pageTextsOf(bookPages(t, tc)))

	t.Run("rejects a list that is not a permutation", func(t *testing.T) {
		bad := [][]string{
			{pages[0].ID, pages[1].ID},
			{pages[0].ID, pages[0].ID, pages[1].ID},
			{pages[0].ID, pages[1].ID, "other"},
		}
		for _, ids := range bad {
			w := tc.request(http.MethodPut, "/api/pages/order", map[string][]string{"ids": ids})
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), CodeInvalidOrder)
		}
		assert.Equal(t, []string{"c", "a", "b"}, pageTextsOf(bookPages(t, tc)))
	})
}

func TestPagesController_Drag(t *testing.T) {
	drag := func(tc *testClient, event string, index int) DragResponse {
		w := tc.request(http.MethodPost, "/api/pages/drag", map[string]any{"event": event, "index": index})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode[DragResponse](t, w)
	}

	t.Run("drop moves the dragged page", func(t *testing.T) {
		tc := newTestClient(t, &fakeGenerator{})
		addPages(t, tc, "a", "b", "c")

		resp := drag(tc, "start", 0)
		assert.Equal(t, editor.DragDragging, resp.Drag.Phase)

		resp = drag(tc, "over", 2)
		assert.Equal(t, editor.DragHovering, resp.Drag.Phase)
		assert.Equal(t, 2, resp.Drag.Over)

		resp = drag(tc, "drop", 2)
		assert.True(t, resp.Moved)
		assert.True(t, resp.Drag.IsIdle())
		assert.Equal(t, []string{"b", "c", "a"}, pageTextsOf(resp.Pages))
		assert.Equal(t, []string{"b", "c", "a"}, pageTextsOf(bookPages(t, tc)))
	})

	t.Run("drop on the source is a no-op", func(t *testing.T) {
		tc := newTestClient(t, &fakeGenerator{})
		addPages(t, tc, "a", "b")

		drag(tc, "start", 1)
		resp := drag(tc, "drop", 1)
		assert.False(t, resp.Moved)
		assert.Equal(t, []string{"a", "b"}, pageTextsOf(resp.Pages))
	})

	t.Run("drop without start is ignored", func(t *testing.T) {
		tc := newTestClient(t, &fakeGenerator{})
		addPages(t, tc, "a", "b")

		resp := drag(tc, "over", 1)
		assert.True(t, resp.Drag.IsIdle())
		resp = drag(tc, "drop", 1)
		assert.False(t, resp.Moved)
	})

	t.Run("end cancels", func(t *testing.T) {
		tc := newTestClient(t, &fakeGenerator{})
		addPages(t, tc, "a", "b")

		drag(tc, "start", 0)
		assert.True(t, drag(tc, "end", 0).Drag.IsIdle())
		assert.False(t, drag(tc, "drop", 1).Moved)
	})

	t.Run("out of range index resets the gesture", func(t *testing.T) {
		tc := newTestClient(t, &fakeGenerator{})
		addPages(t, tc, "a", "b")

		drag(tc, "start", 0)
		w := tc.request(http.MethodPost, "/api/pages/drag", map[string]any{"event": "drop", "index": 5})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.True(t, decode[BookResponse](t, tc.request(http.MethodGet, "/api/book", nil)).Drag.IsIdle())
	})

	t.Run("unknown event", func(t *testing.T) {
		tc := newTestClient(t, &fakeGenerator{})
		addPages(t, tc, "a")

		w := tc.request(http.MethodPost, "/api/pages/drag", map[string]any{"event": "fling", "index": 0})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
