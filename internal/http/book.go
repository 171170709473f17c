package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storybook/internal/editor"
	"github.com/mrlokans/storybook/internal/entities"
	"github.com/mrlokans/storybook/internal/imagegen"
	"github.com/mrlokans/storybook/internal/images"
	"github.com/mrlokans/storybook/internal/session"
	"github.com/mrlokans/storybook/internal/storybook"
)

// BookResponse is the editor's view of the session book.
type BookResponse struct {
	Book          *entities.Book   `json:"book"`
	DisplayTitle  string           `json:"display_title"`
	Drag          editor.DragState `json:"drag"`
	Generating    []string         `json:"generating"` // page ids (or "new") with a generation in flight
	HasCredential bool             `json:"has_credential"`
}

type BookController struct {
	sessions       *session.Manager
	generation     *imagegen.Service
	maxUploadBytes int64
}

func NewBookController(sessions *session.Manager, generation *imagegen.Service, maxUploadBytes int64) *BookController {
	return &BookController{
		sessions:       sessions,
		generation:     generation,
		maxUploadBytes: maxUploadBytes,
	}
}

func (bc *BookController) Show(c *gin.Context) {
	c.JSON(http.StatusOK, bc.response(c))
}

func (bc *BookController) response(c *gin.Context) BookResponse {
	ctx := c.Request.Context()
	book := bc.sessions.LoadBook(ctx)

	generating := []string{}
	if bc.generation != nil {
		scope := bc.sessions.Scope(ctx)
		if bc.generation.Generating(scope, imagegen.NewPageKey) {
			generating = append(generating, imagegen.NewPageKey)
		}
		for _, p := range book.Pages {
			if bc.generation.Generating(scope, p.ID) {
				generating = append(generating, p.ID)
			}
		}
	}

	return BookResponse{
		Book:          book,
		DisplayTitle:  book.DisplayTitle(),
		Drag:          bc.sessions.LoadDrag(ctx),
		Generating:    generating,
		HasCredential: bc.sessions.Vault(ctx).Has(),
	}
}

type titleRequest struct {
	Title string `json:"title" form:"title"`
}

func (bc *BookController) SetTitle(c *gin.Context) {
	var req titleRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, CodeValidation, "invalid request body")
		return
	}

	ctx := c.Request.Context()
	book := bc.sessions.LoadBook(ctx)
	storybook.SetTitle(book, req.Title)
	bc.sessions.SaveBook(ctx, book)

	c.JSON(http.StatusOK, bc.response(c))
}

// Reset starts a new empty book. The stored credential is kept.
func (bc *BookController) Reset(c *gin.Context) {
	bc.sessions.ResetBook(c.Request.Context())
	c.JSON(http.StatusOK, bc.response(c))
}

func (bc *BookController) UploadCover(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		respondBadRequest(c, CodeInvalidImage, "image file is required")
		return
	}
	if bc.maxUploadBytes > 0 && file.Size > bc.maxUploadBytes {
		respondImageError(c, images.ErrTooLarge)
		return
	}

	f, err := file.Open()
	if err != nil {
		respondInternalError(c, err, "open cover upload")
		return
	}
	defer f.Close()

	uri, err := images.FromUpload(f, bc.maxUploadBytes)
	if err != nil {
		respondImageError(c, err)
		return
	}

	ctx := c.Request.Context()
	book := bc.sessions.LoadBook(ctx)
	storybook.SetCoverImage(book, uri)
	bc.sessions.SaveBook(ctx, book)

	c.JSON(http.StatusOK, book.Cover)
}

type scaleRequest struct {
	ImageScale *float64 `json:"image_scale" form:"image_scale"`
}

func (bc *BookController) ScaleCover(c *gin.Context) {
	var req scaleRequest
	if err := c.ShouldBind(&req); err != nil || req.ImageScale == nil {
		respondBadRequest(c, CodeValidation, "image_scale is required")
		return
	}

	ctx := c.Request.Context()
	book := bc.sessions.LoadBook(ctx)
	storybook.SetCoverScale(book, *req.ImageScale)
	bc.sessions.SaveBook(ctx, book)

	c.JSON(http.StatusOK, book.Cover)
}

func (bc *BookController) ClearCover(c *gin.Context) {
	ctx := c.Request.Context()
	book := bc.sessions.LoadBook(ctx)
	storybook.ClearCover(book)
	bc.sessions.SaveBook(ctx, book)

	c.JSON(http.StatusOK, book.Cover)
}
