package http

import (
	"time"

	"github.com/mrlokans/storybook/internal/database"
	"github.com/mrlokans/storybook/internal/export"
	"github.com/mrlokans/storybook/internal/imagegen"
	"github.com/mrlokans/storybook/internal/session"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Sessions   *session.Manager
	Generation *imagegen.Service
	Database   *database.Database // nil unless sessions are stored in SQLite

	// CSRF protection; disabled when the key is empty
	CSRFKey       []byte
	SecureCookies bool

	// Limits
	MaxUploadBytes    int64
	GenerationTimeout time.Duration

	PDFOptions export.PDFOptions
	Version    string
}
