package http

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storybook/internal/entities"
	"github.com/mrlokans/storybook/internal/imagegen"
	"github.com/mrlokans/storybook/internal/session"
)

type GenerateController struct {
	sessions   *session.Manager
	generation *imagegen.Service
	timeout    time.Duration
}

func NewGenerateController(sessions *session.Manager, generation *imagegen.Service, timeout time.Duration) *GenerateController {
	return &GenerateController{
		sessions:   sessions,
		generation: generation,
		timeout:    timeout,
	}
}

type generateRequest struct {
	// Text overrides the stored page text, e.g. unsaved edits in the page form
	Text string `json:"text" form:"text"`
}

// GenerateResponse carries a generated image and the scale it should be attached with.
// Generation never touches the session; the client attaches the image with a page update.
type GenerateResponse struct {
	Image      string  `json:"image"`
	ImageScale float64 `json:"image_scale"`
}

// GeneratePage illustrates an existing page.
func (gc *GenerateController) GeneratePage(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, CodeValidation, "invalid request body")
		return
	}

	ctx := c.Request.Context()
	book := gc.sessions.PeekBook(ctx)
	id := c.Param("id")
	index := book.PageIndex(id)
	if index < 0 {
		respondNotFound(c, "page")
		return
	}

	text := req.Text
	if text == "" {
		text = book.Pages[index].Text
	}

	img, err := gc.generate(ctx, imagegen.Request{
		Scope:   gc.sessions.CurrentScope(ctx),
		Key:     id,
		Title:   book.PromptTitle(),
		Text:    text,
		History: pageTexts(book.Pages[:index]),
	})
	if err != nil {
		respondGenerationError(c, err)
		return
	}
	log.Printf("Generated illustration for page %s (%d bytes)", id, len(img.Data))

	c.JSON(http.StatusOK, GenerateResponse{Image: img.DataURI(), ImageScale: entities.DefaultImageScale})
}

// GenerateDraft illustrates the page being composed. The client attaches the image when
// it adds the page.
func (gc *GenerateController) GenerateDraft(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, CodeValidation, "invalid request body")
		return
	}

	ctx := c.Request.Context()
	book := gc.sessions.PeekBook(ctx)

	img, err := gc.generate(ctx, imagegen.Request{
		Scope:   gc.sessions.CurrentScope(ctx),
		Key:     imagegen.NewPageKey,
		Title:   book.PromptTitle(),
		Text:    req.Text,
		History: pageTexts(book.Pages),
	})
	if err != nil {
		respondGenerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{Image: img.DataURI(), ImageScale: entities.DefaultImageScale})
}

// generate attaches the session credential and the configured timeout to the request.
func (gc *GenerateController) generate(ctx context.Context, req imagegen.Request) (imagegen.Image, error) {
	credential, _ := gc.sessions.Vault(ctx).Get()
	req.Credential = credential

	if gc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, gc.timeout)
		defer cancel()
	}
	return gc.generation.Generate(ctx, req)
}

func pageTexts(pages []entities.Page) []string {
	texts := make([]string, 0, len(pages))
	for _, p := range pages {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return texts
}
