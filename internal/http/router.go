package http

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storybook/internal/entities"
	"github.com/mrlokans/storybook/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(session.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFKey) > 0 {
		router.Use(session.CSRFMiddleware(cfg.CSRFKey, cfg.SecureCookies))
	}
	router.Use(cfg.Sessions.LoadSave())

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"dict": func(pairs ...any) map[string]any {
			m := make(map[string]any, len(pairs)/2)
			for i := 0; i+1 < len(pairs); i += 2 {
				if key, ok := pairs[i].(string); ok {
					m[key] = pairs[i+1]
				}
			}
			return m
		},
		"scalePercent": func(scale float64) int {
			return int(entities.ClampScale(scale)*100 + 0.5)
		},
		// Images are data URIs produced by this server, so they are safe to inline
		"imageURL": func(uri string) template.URL {
			return template.URL(uri)
		},
	}
	tmpl := template.Must(template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html"))
	router.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	router.StaticFS("/static", http.FS(static))

	ui := NewUIController(cfg.Sessions, cfg.Generation)
	router.GET("/", ui.EditorPage)
	router.GET("/view", ui.ViewerPage)
	router.GET("/settings", ui.SettingsPage)

	api := router.Group("/api")

	book := NewBookController(cfg.Sessions, cfg.Generation, cfg.MaxUploadBytes)
	api.GET("/book", book.Show)
	api.PUT("/book/title", book.SetTitle)
	api.POST("/book/reset", book.Reset)
	api.POST("/book/cover", book.UploadCover)
	api.PATCH("/book/cover", book.ScaleCover)
	api.DELETE("/book/cover", book.ClearCover)

	pages := NewPagesController(cfg.Sessions, cfg.MaxUploadBytes)
	api.POST("/pages", pages.Create)
	api.PUT("/pages/order", pages.Reorder)
	api.POST("/pages/drag", pages.Drag)
	api.PATCH("/pages/:id", pages.Update)
	api.DELETE("/pages/:id", pages.Delete)

	gen := NewGenerateController(cfg.Sessions, cfg.Generation, cfg.GenerationTimeout)
	api.POST("/pages/:id/generate", gen.GeneratePage)
	api.POST("/draft/generate", gen.GenerateDraft)

	viewer := NewViewerController(cfg.Sessions)
	api.GET("/viewer", viewer.State)
	api.POST("/viewer/next", viewer.Next)
	api.POST("/viewer/prev", viewer.Prev)
	api.POST("/viewer/click", viewer.Click)

	credential := NewCredentialController(cfg.Sessions)
	api.GET("/credential", credential.Status)
	api.POST("/credential", credential.Save)
	api.DELETE("/credential", credential.Clear)

	exports := NewExportController(cfg.Sessions, cfg.PDFOptions)
	router.GET("/export.pdf", exports.PDF)
	router.GET("/export.json", exports.JSON)
	router.GET("/export.yaml", exports.YAML)

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	return router
}
