package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storybook/internal/session"
	"github.com/mrlokans/storybook/internal/viewer"
)

type ViewerController struct {
	sessions *session.Manager
}

func NewViewerController(sessions *session.Manager) *ViewerController {
	return &ViewerController{sessions: sessions}
}

// ViewerResponse is the current spread and whether the last action turned a page.
type ViewerResponse struct {
	viewer.Spread
	Moved bool `json:"moved"`
}

func (vc *ViewerController) State(c *gin.Context) {
	vc.turn(c, func(*viewer.Cursor) (bool, error) { return false, nil })
}

func (vc *ViewerController) Next(c *gin.Context) {
	vc.turn(c, func(cur *viewer.Cursor) (bool, error) { return cur.Next(), nil })
}

func (vc *ViewerController) Prev(c *gin.Context) {
	vc.turn(c, func(cur *viewer.Cursor) (bool, error) { return cur.Prev(), nil })
}

type clickRequest struct {
	Target viewer.Target `json:"target" form:"target" binding:"required"`
}

func (vc *ViewerController) Click(c *gin.Context) {
	var req clickRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, CodeValidation, "target is required")
		return
	}
	vc.turn(c, func(cur *viewer.Cursor) (bool, error) { return cur.Click(req.Target) })
}

// turn loads the cursor, applies action and stores the cursor when it moved.
func (vc *ViewerController) turn(c *gin.Context, action func(*viewer.Cursor) (bool, error)) {
	ctx := c.Request.Context()
	book := vc.sessions.LoadBook(ctx)
	cursor := vc.sessions.LoadCursor(ctx, len(book.Pages))

	moved, err := action(&cursor)
	if err != nil {
		respondBadRequest(c, CodeValidation, err.Error())
		return
	}
	if moved {
		vc.sessions.SaveCursor(ctx, cursor)
	}

	c.JSON(http.StatusOK, ViewerResponse{Spread: cursor.Spread(book), Moved: moved})
}
