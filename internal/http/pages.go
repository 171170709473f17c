package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storybook/internal/editor"
	"github.com/mrlokans/storybook/internal/entities"
	"github.com/mrlokans/storybook/internal/images"
	"github.com/mrlokans/storybook/internal/session"
	"github.com/mrlokans/storybook/internal/storybook"
)

type PagesController struct {
	sessions       *session.Manager
	maxUploadBytes int64
}

func NewPagesController(sessions *session.Manager, maxUploadBytes int64) *PagesController {
	return &PagesController{
		sessions:       sessions,
		maxUploadBytes: maxUploadBytes,
	}
}

type createPageRequest struct {
	Text       string   `json:"text"`
	Image      string   `json:"image"` // data URI
	ImageScale *float64 `json:"image_scale"`
}

// Create appends a page from JSON or from a multipart form with an optional image file.
func (pc *PagesController) Create(c *gin.Context) {
	var req createPageRequest
	if isMultipart(c) {
		req.Text = c.PostForm("text")
		scale, ok := parseScale(c.PostForm("image_scale"), entities.DefaultImageScale)
		if !ok {
			respondBadRequest(c, CodeValidation, "image_scale must be a number")
			return
		}
		req.ImageScale = &scale

		uri, err := pc.formImage(c)
		if err != nil {
			respondImageError(c, err)
			return
		}
		req.Image = uri
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, CodeValidation, "invalid request body")
			return
		}
		if err := pc.checkImageURI(req.Image); err != nil {
			respondImageError(c, err)
			return
		}
	}

	scale := entities.DefaultImageScale
	if req.ImageScale != nil {
		scale = *req.ImageScale
	}

	ctx := c.Request.Context()
	book := pc.sessions.LoadBook(ctx)
	page, ok := storybook.AddPage(book, req.Image, scale, req.Text)
	if !ok {
		respondBadRequest(c, CodeEmptyPage, "a page needs text or an image")
		return
	}
	pc.sessions.SaveBook(ctx, book)

	c.JSON(http.StatusCreated, page)
}

// Update merges the given fields into a page. An empty image string removes the image.
func (pc *PagesController) Update(c *gin.Context) {
	var update storybook.PageUpdate
	if isMultipart(c) {
		if text, ok := c.GetPostForm("text"); ok {
			update.Text = &text
		}
		if raw, ok := c.GetPostForm("image_scale"); ok {
			scale, valid := parseScale(raw, entities.DefaultImageScale)
			if !valid {
				respondBadRequest(c, CodeValidation, "image_scale must be a number")
				return
			}
			update.ImageScale = &scale
		}
		uri, err := pc.formImage(c)
		if err != nil {
			respondImageError(c, err)
			return
		}
		if uri != "" {
			update.Image = &uri
		}
	} else {
		if err := c.ShouldBindJSON(&update); err != nil {
			respondBadRequest(c, CodeValidation, "invalid request body")
			return
		}
		if update.Image != nil {
			if err := pc.checkImageURI(*update.Image); err != nil {
				respondImageError(c, err)
				return
			}
		}
	}

	if update.IsEmpty() {
		respondBadRequest(c, CodeValidation, "nothing to update")
		return
	}

	ctx := c.Request.Context()
	book := pc.sessions.LoadBook(ctx)
	id := c.Param("id")
	if !storybook.UpdatePage(book, id, update) {
		respondNotFound(c, "page")
		return
	}
	pc.sessions.SaveBook(ctx, book)

	page, _ := storybook.FindPage(book, id)
	c.JSON(http.StatusOK, page)
}

func (pc *PagesController) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	book := pc.sessions.LoadBook(ctx)
	if !storybook.DeletePage(book, c.Param("id")) {
		respondNotFound(c, "page")
		return
	}
	pc.sessions.SaveBook(ctx, book)
	// Indices held by a running gesture no longer match the pages
	pc.sessions.SaveDrag(ctx, editor.Idle())

	c.Status(http.StatusNoContent)
}

type reorderRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// Reorder replaces the page order. The ids must be a permutation of the current pages.
func (pc *PagesController) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, CodeValidation, "ids are required")
		return
	}

	ctx := c.Request.Context()
	book := pc.sessions.LoadBook(ctx)
	if err := storybook.ReorderPages(book, req.IDs); err != nil {
		if errors.Is(err, storybook.ErrInvalidPermutation) {
			respondBadRequest(c, CodeInvalidOrder, err.Error())
			return
		}
		respondInternalError(c, err, "reorder pages")
		return
	}
	pc.sessions.SaveBook(ctx, book)

	c.JSON(http.StatusOK, book.Pages)
}

type dragRequest struct {
	Event editor.DragEvent `json:"event" binding:"required"`
	Index int              `json:"index"`
}

// DragResponse reports the gesture state after an event and whether pages moved.
type DragResponse struct {
	Drag  editor.DragState `json:"drag"`
	Moved bool             `json:"moved"`
	Pages []entities.Page  `json:"pages"`
}

// Drag feeds one drag-and-drop event into the session's gesture.
func (pc *PagesController) Drag(c *gin.Context) {
	var req dragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, CodeValidation, "event is required")
		return
	}

	ctx := c.Request.Context()
	book := pc.sessions.LoadBook(ctx)
	if req.Event != editor.EventEnd && (req.Index < 0 || req.Index >= len(book.Pages)) {
		pc.sessions.SaveDrag(ctx, editor.Idle())
		respondBadRequest(c, CodeValidation, fmt.Sprintf("index %d is out of range", req.Index))
		return
	}

	state, move, ok, err := pc.sessions.LoadDrag(ctx).Apply(editor.DragEvent(strings.ToLower(string(req.Event))), req.Index)
	if err != nil {
		respondBadRequest(c, CodeValidation, err.Error())
		return
	}

	moved := false
	if ok {
		if err := storybook.MovePage(book, move.From, move.To); err != nil {
			pc.sessions.SaveDrag(ctx, editor.Idle())
			respondBadRequest(c, CodeInvalidOrder, err.Error())
			return
		}
		pc.sessions.SaveBook(ctx, book)
		moved = true
	}
	pc.sessions.SaveDrag(ctx, state)

	c.JSON(http.StatusOK, DragResponse{Drag: state, Moved: moved, Pages: book.Pages})
}

// formImage reads the optional "image" file of a multipart form. No file yields "".
func (pc *PagesController) formImage(c *gin.Context) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", images.ErrInvalidDataURI, err)
	}
	if pc.maxUploadBytes > 0 && file.Size > pc.maxUploadBytes {
		return "", images.ErrTooLarge
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	return images.FromUpload(f, pc.maxUploadBytes)
}

// checkImageURI validates an image sent inline as a data URI. Empty is allowed.
func (pc *PagesController) checkImageURI(uri string) error {
	if uri == "" {
		return nil
	}
	return images.Verify(uri, pc.maxUploadBytes)
}
