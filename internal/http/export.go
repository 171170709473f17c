package http

import (
	"bytes"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storybook/internal/entities"
	"github.com/mrlokans/storybook/internal/export"
	"github.com/mrlokans/storybook/internal/session"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-z0-9]+`)

// ExportController downloads the session book as a PDF or as a book document.
type ExportController struct {
	sessions *session.Manager
	options  export.PDFOptions
}

func NewExportController(sessions *session.Manager, options export.PDFOptions) *ExportController {
	return &ExportController{
		sessions: sessions,
		options:  options,
	}
}

func (ec *ExportController) PDF(c *gin.Context) {
	book := ec.sessions.LoadBook(c.Request.Context())

	var buf bytes.Buffer
	if err := export.RenderPDF(book, &buf, ec.options); err != nil {
		respondInternalError(c, err, "render pdf")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+exportFilename(book, "pdf")+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (ec *ExportController) JSON(c *gin.Context) {
	ec.document(c, export.FormatJSON, "application/json")
}

func (ec *ExportController) YAML(c *gin.Context) {
	ec.document(c, export.FormatYAML, "application/yaml")
}

func (ec *ExportController) document(c *gin.Context, format export.Format, contentType string) {
	book := ec.sessions.LoadBook(c.Request.Context())

	var buf bytes.Buffer
	if err := export.EncodeBook(book, format, &buf); err != nil {
		respondInternalError(c, err, "encode book")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+exportFilename(book, string(format))+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// exportFilename turns the display title into a safe file name.
func exportFilename(book *entities.Book, ext string) string {
	name := strings.Trim(unsafeFilenameChars.ReplaceAllString(strings.ToLower(book.DisplayTitle()), "-"), "-")
	if name == "" {
		name = "storybook"
	}
	return name + "." + ext
}
