package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storybook/internal/imagegen"
	"github.com/mrlokans/storybook/internal/session"
)

// UIController renders the HTML pages. All later changes go through the JSON API.
type UIController struct {
	sessions   *session.Manager
	generation *imagegen.Service
}

func NewUIController(sessions *session.Manager, generation *imagegen.Service) *UIController {
	return &UIController{
		sessions:   sessions,
		generation: generation,
	}
}

func (controller *UIController) EditorPage(c *gin.Context) {
	ctx := c.Request.Context()
	book := controller.sessions.LoadBook(ctx)
	scope := controller.sessions.Scope(ctx)

	generating := map[string]bool{}
	if controller.generation != nil {
		generating[imagegen.NewPageKey] = controller.generation.Generating(scope, imagegen.NewPageKey)
		for _, p := range book.Pages {
			generating[p.ID] = controller.generation.Generating(scope, p.ID)
		}
	}

	c.HTML(http.StatusOK, "editor", gin.H{
		"Book":          book,
		"Drag":          controller.sessions.LoadDrag(ctx),
		"Generating":    generating,
		"HasCredential": controller.sessions.Vault(ctx).Has(),
		"CSRFToken":     session.GetCSRFToken(c),
	})
}

func (controller *UIController) ViewerPage(c *gin.Context) {
	ctx := c.Request.Context()
	book := controller.sessions.LoadBook(ctx)
	cursor := controller.sessions.LoadCursor(ctx, len(book.Pages))

	c.HTML(http.StatusOK, "viewer", gin.H{
		"Spread":    cursor.Spread(book),
		"Preview":   isPreview(c),
		"CSRFToken": session.GetCSRFToken(c),
	})
}

func (controller *UIController) SettingsPage(c *gin.Context) {
	c.HTML(http.StatusOK, "settings", gin.H{
		"HasCredential": controller.sessions.Vault(c.Request.Context()).Has(),
		"CSRFToken":     session.GetCSRFToken(c),
	})
}
