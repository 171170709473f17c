package session

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/google/uuid"

	"github.com/mrlokans/storybook/internal/config"
	"github.com/mrlokans/storybook/internal/editor"
	"github.com/mrlokans/storybook/internal/entities"
	"github.com/mrlokans/storybook/internal/storybook"
	"github.com/mrlokans/storybook/internal/vault"
	"github.com/mrlokans/storybook/internal/viewer"
)

// Session data keys
const (
	KeyScope  = "scope"
	KeyBook   = "book"
	KeyCursor = "viewer_cursor"
	KeyDrag   = "drag_state"
)

// Manager wraps scs.SessionManager with accessors for the per-user storybook state.
type Manager struct {
	*scs.SessionManager
}

// NewManager creates a configured session manager. sqlDB is only used when the configured
// store is SQLite and may be nil otherwise.
func NewManager(cfg config.Session, sqlDB *sql.DB) (*Manager, error) {
	sm := scs.New()

	switch cfg.Store {
	case config.SessionStoreSQLite:
		if sqlDB == nil {
			return nil, fmt.Errorf("sqlite session store requires a database")
		}
		sm.Store = sqlite3store.New(sqlDB)
	case config.SessionStoreMemory, "":
		sm.Store = memstore.New()
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}

	sm.Lifetime = cfg.Lifetime
	if sm.Lifetime <= 0 {
		sm.Lifetime = 12 * time.Hour
	}
	if cfg.IdleTimeout > 0 {
		sm.IdleTimeout = cfg.IdleTimeout
	}

	sm.Cookie.Name = "storybook_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	// Session cookie: the book ends when the browser session ends
	sm.Cookie.Persist = false

	return &Manager{SessionManager: sm}, nil
}

// Scope returns a stable identifier for the session, creating it on first use.
// Unlike the session token it does not change when the token is renewed.
func (m *Manager) Scope(ctx context.Context) string {
	if scope := m.GetString(ctx, KeyScope); scope != "" {
		return scope
	}
	scope := uuid.NewString()
	m.Put(ctx, KeyScope, scope)
	return scope
}

// CurrentScope returns the session identifier without creating one, falling back to the
// session token. Use it in requests that must leave the session unmodified.
func (m *Manager) CurrentScope(ctx context.Context) string {
	if scope := m.GetString(ctx, KeyScope); scope != "" {
		return scope
	}
	return m.Token(ctx)
}

// PeekBook returns the session's book, or an unsaved empty one if there is none.
// The session is not modified.
func (m *Manager) PeekBook(ctx context.Context) *entities.Book {
	if book, ok := m.Get(ctx, KeyBook).(*entities.Book); ok && book != nil {
		return book
	}
	return entities.NewBook()
}

// LoadBook returns the session's book, starting an empty one if there is none.
func (m *Manager) LoadBook(ctx context.Context) *entities.Book {
	if book, ok := m.Get(ctx, KeyBook).(*entities.Book); ok && book != nil {
		return book
	}
	book := entities.NewBook()
	m.Put(ctx, KeyBook, book)
	return book
}

// SaveBook stores the book and marks the session modified.
func (m *Manager) SaveBook(ctx context.Context, book *entities.Book) {
	m.Put(ctx, KeyBook, book)
}

// LoadCursor returns the viewer position, resized to the current page count.
func (m *Manager) LoadCursor(ctx context.Context, pages int) viewer.Cursor {
	cursor, ok := m.Get(ctx, KeyCursor).(viewer.Cursor)
	if !ok {
		cursor = viewer.NewCursor(pages)
	}
	cursor.Resize(pages)
	return cursor
}

func (m *Manager) SaveCursor(ctx context.Context, cursor viewer.Cursor) {
	m.Put(ctx, KeyCursor, cursor)
}

// ResetCursor sends the viewer back to the front cover.
func (m *Manager) ResetCursor(ctx context.Context) {
	m.Remove(ctx, KeyCursor)
}

// LoadDrag returns the in-progress reorder gesture, Idle when there is none.
func (m *Manager) LoadDrag(ctx context.Context) editor.DragState {
	state, ok := m.Get(ctx, KeyDrag).(editor.DragState)
	if !ok {
		return editor.Idle()
	}
	return state
}

func (m *Manager) SaveDrag(ctx context.Context, state editor.DragState) {
	if state.IsIdle() {
		m.Remove(ctx, KeyDrag)
		return
	}
	m.Put(ctx, KeyDrag, state)
}

// ResetBook discards the book and all view state tied to it. The credential is kept.
func (m *Manager) ResetBook(ctx context.Context) *entities.Book {
	book := storybook.Reset()
	m.Put(ctx, KeyBook, book)
	m.Remove(ctx, KeyCursor)
	m.Remove(ctx, KeyDrag)
	return book
}

// Vault returns the credential vault bound to this request's session.
func (m *Manager) Vault(ctx context.Context) *vault.Vault {
	return vault.New(vault.NewSessionSlot(m.SessionManager, ctx))
}
