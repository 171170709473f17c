package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storybook/internal/config"
	"github.com/mrlokans/storybook/internal/database"
	"github.com/mrlokans/storybook/internal/export"
	http_controllers "github.com/mrlokans/storybook/internal/http"
	"github.com/mrlokans/storybook/internal/imagegen"
	"github.com/mrlokans/storybook/internal/logging"
	"github.com/mrlokans/storybook/internal/session"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the server until ctx is cancelled, then shuts it down within the
// configured timeout.
func Serve(ctx context.Context, router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Printf("Shutdown Server, waiting %v before killing", timeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if onShutdown != nil {
		onShutdown(shutdownCtx)
	}

	log.Println("Server exiting")
	return nil
}

// Run wires the application from cfg and serves it until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, version string) error {
	logCloser := logging.Setup(cfg.Log)
	defer logCloser.Close()

	log.Printf("Starting Storybook v%s", version)

	var db *database.Database
	var sessions *session.Manager
	switch cfg.Session.Store {
	case config.SessionStoreSQLite:
		var err error
		db, err = database.NewDatabase(cfg.Session.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open session database: %w", err)
		}
		sqlDB, err := db.DB.DB()
		if err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to get session database handle: %w", err)
		}
		sessions, err = session.NewManager(cfg.Session, sqlDB)
		if err != nil {
			_ = db.Close()
			return err
		}
		log.Printf("Sessions are stored in %s", cfg.Session.DatabasePath)
	default:
		var err error
		sessions, err = session.NewManager(cfg.Session, nil)
		if err != nil {
			return err
		}
		log.Printf("Sessions are kept in memory and end on restart")
	}

	if cfg.Session.Secret == "" {
		log.Printf("WARNING: SESSION_SECRET is not set. A random CSRF key is used; open pages stop working after a restart.")
	}
	csrfKey, err := session.DeriveCSRFKey(cfg.Session.Secret)
	if err != nil {
		return err
	}

	generator := imagegen.NewGemini(cfg.Gemini.PromptModel, cfg.Gemini.ImageModel)
	log.Printf("Image generation: prompt model %s, image model %s", generator.PromptModel, generator.ImageModel)

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Sessions:          sessions,
		Generation:        imagegen.NewService(generator),
		Database:          db,
		CSRFKey:           csrfKey,
		SecureCookies:     cfg.Session.SecureCookies,
		MaxUploadBytes:    cfg.Upload.MaxImageBytes(),
		GenerationTimeout: cfg.Gemini.GenerationTimeout,
		PDFOptions:        export.DefaultPDFOptions(),
		Version:           version,
	})

	return Serve(ctx, router, cfg, func(context.Context) {
		if db == nil {
			return
		}
		if err := db.Close(); err != nil {
			log.Printf("Error closing session database: %v", err)
		}
	})
}
