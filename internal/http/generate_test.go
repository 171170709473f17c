package http

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/storybook/internal/entities"
)

func withCredential(t *testing.T, tc *testClient) {
	t.Helper()
	w := tc.request(http.MethodPost, "/api/credential", map[string]string{"api_key": testAPIKey})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGenerateController_GeneratePage(t *testing.T) {
	t.Run("without credential nothing is called", func(t *testing.T) {
		gen := &fakeGenerator{}
		tc := newTestClient(t, gen)
		pages := addPages(t, tc, "A dragon eats soup")

		w := tc.request(http.MethodPost, "/api/pages/"+pages[0].ID+"/generate", nil)
		assert.Equal(t, http.StatusPreconditionFailed, w.Code)
		assert.Contains(t, w.Body.String(), CodeNoCredential)
		assert.Zero(t, gen.Calls())
		assert.Empty(t, decode[BookResponse](t, tc.request(http.MethodGet, "/api/book", nil)).Generating)
	})

	t.Run("returns the image without storing it", func(t *testing.T) {
		gen := &fakeGenerator{}
		tc := newTestClient(t, gen)
		withCredential(t, tc)
		require.Equal(t, http.StatusOK, tc.request(http.MethodPut, "/api/book/title", map[string]string{"title": "Soup Time"}).Code)
		pages := addPages(t, tc, "The dragon wakes up", "A dragon eats soup")

		w := tc.request(http.MethodPost, "/api/pages/"+pages[1].ID+"/generate", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decode[GenerateResponse](t, w)
		assert.Contains(t, resp.Image, "data:image/png;base64,")
		assert.Equal(t, entities.DefaultImageScale, resp.ImageScale)
		assert.Empty(t, w.Result().Cookies(), "session is left untouched")
		assert.Empty(t, bookPages(t, tc)[1].Image)

		assert.Equal(t, "Soup Time", gen.lastTitle)
		assert.Equal(t, "A dragon eats soup", gen.lastText)
		assert.Equal(t, []string{"The dragon wakes up"}, gen.history)
	})

	t.Run("attaching the image resets the scale", func(t *testing.T) {
		tc := newTestClient(t, &fakeGenerator{})
		withCredential(t, tc)
		w := tc.request(http.MethodPost, "/api/pages", map[string]any{"text": "A dragon eats soup", "image": "data:image/png;base64," + base64.StdEncoding.EncodeToString(testPNG()), "image_scale": 2.0})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		page := decode[entities.Page](t, w)
		require.Equal(t, 2.0, page.ImageScale)

		resp := decode[GenerateResponse](t, tc.request(http.MethodPost, "/api/pages/"+page.ID+"/generate", nil))
		w = tc.request(http.MethodPatch, "/api/pages/"+page.ID, map[string]any{"image": resp.Image})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		stored := bookPages(t, tc)[0]
		assert.Equal(t, resp.Image, stored.Image)
		assert.Equal(t, 1.0, stored.ImageScale)
	})

	t.Run("edits made while generating survive", func(t *testing.T) {
		gen := &fakeGenerator{started: make(chan struct{}, 1), release: make(chan struct{})}
		tc := newTestClient(t, gen)
		withCredential(t, tc)
		pages := addPages(t, tc, "first page")

		done := tc.background(http.MethodPost, "/api/pages/"+pages[0].ID+"/generate", nil)
		select {
		case <-gen.started:
		case <-time.After(2 * time.Second):
			close(gen.release)
			t.Fatal("generation did not start")
		}

		assert.Equal(t, []string{pages[0].ID}, decode[BookResponse](t, tc.request(http.MethodGet, "/api/book", nil)).Generating)
		addPages(t, tc, "second page")
		require.Equal(t, http.StatusOK, tc.request(http.MethodPut, "/api/book/title", map[string]string{"title": "Still Here"}).Code)
		close(gen.release)

		w := <-done
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[GenerateResponse](t, w)

		require.Equal(t, http.StatusOK, tc.request(http.MethodPatch, "/api/pages/"+pages[0].ID, map[string]any{"image": resp.Image, "image_scale": resp.ImageScale}).Code)

		book := decode[BookResponse](t, tc.request(http.MethodGet, "/api/book", nil))
		require.Len(t, book.Book.Pages, 2)
		assert.Equal(t, []string{"first page", "second page"}, pageTextsOf(book.Book.Pages))
		assert.Equal(t, resp.Image, book.Book.Pages[0].Image)
		assert.Equal(t, "Still Here", book.Book.Title)
		assert.Empty(t, book.Generating)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		gen := &fakeGenerator{}
		tc := newTestClient(t, gen)
		withCredential(t, tc)
		pages := addPages(t, tc, "A dragon eats soup")

		req := httptest.NewRequest(http.MethodPost, "/api/pages/"+pages[0].ID+"/generate", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		w := tc.do(req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), CodeValidation)
		assert.Zero(t, gen.Calls())
	})

	t.Run("text override is used", func(t *testing.T) {
		gen := &fakeGenerator{}
		tc := newTestClient(t, gen)
		withCredential(t, tc)
		pages := addPages(t, tc, "old text")

		w := tc.request(http.MethodPost, "/api/pages/"+pages[0].ID+"/generate", map[string]string{"text": "unsaved text"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "unsaved text", gen.lastText)
	})

	t.Run("provider failure leaves the page unchanged", func(t *testing.T) {
		gen := &fakeGenerator{err: errProvider}
		tc := newTestClient(t, gen)
		withCredential(t, tc)
		pages := addPages(t, tc, "A dragon eats soup")

		w := tc.request(http.MethodPost, "/api/pages/"+pages[0].ID+"/generate", nil)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.NotContains(t, w.Body.String(), errProvider.Error())
		assert.Empty(t, bookPages(t, tc)[0].Image)
		assert.Empty(t, decode[BookResponse](t, tc.request(http.MethodGet, "/api/book", nil)).Generating)
	})

	t.Run("unknown page", func(t *testing.T) {
		tc := newTestClient(t, &fakeGenerator{})
		withCredential(t, tc)

		w := tc.request(http.MethodPost, "/api/pages/missing/generate", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGenerateController_GenerateDraft(t *testing.T) {
	t.Run("returns an image without adding a page", func(t *testing.T) {
		gen := &fakeGenerator{}
		tc := newTestClient(t, gen)
		withCredential(t, tc)
		addPages(t, tc, "Earlier page")

		w := tc.request(http.MethodPost, "/api/draft/generate", map[string]string{"text": "A new page"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, decode[GenerateResponse](t, w).Image, "data:image/png;base64,")
		assert.Equal(t, "Children's storybook", gen.lastTitle)
		assert.Equal(t, []string{"Earlier page"}, gen.history)
		assert.Len(t, bookPages(t, tc), 1)
	})

	t.Run("empty text is rejected before calling out", func(t *testing.T) {
		gen := &fakeGenerator{}
		tc := newTestClient(t, gen)
		withCredential(t, tc)

		w := tc.request(http.MethodPost, "/api/draft/generate", map[string]string{"text": "  "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), CodeEmptyText)
		assert.Zero(t, gen.Calls())
	})
}
