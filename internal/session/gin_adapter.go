package session

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
)

// committingWriter saves the session the first time the response starts, since the cookie
// has to go out with the headers.
type committingWriter struct {
	gin.ResponseWriter
	m    *Manager
	req  *http.Request
	once sync.Once
}

func (w *committingWriter) commit() {
	w.once.Do(func() {
		ctx := w.req.Context()
		switch w.m.Status(ctx) {
		case scs.Unmodified:
			// Nothing written: a read-only request must not overwrite concurrent edits
		case scs.Modified:
			token, expiry, err := w.m.Commit(ctx)
			if err != nil {
				log.Printf("Failed to commit session for %s %s: %v", w.req.Method, w.req.URL.Path, err)
				return
			}
			w.m.WriteSessionCookie(ctx, w.ResponseWriter, token, expiry)
		case scs.Destroyed:
			w.m.WriteSessionCookie(ctx, w.ResponseWriter, "", time.Time{})
		}
	})
}

func (w *committingWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *committingWriter) WriteHeaderNow() {
	w.commit()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *committingWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *committingWriter) WriteString(s string) (int, error) {
	w.commit()
	return w.ResponseWriter.WriteString(s)
}

// LoadSave loads the session named by the request cookie into the request context and
// commits it with the response. Register it before any handler that uses the session.
func (m *Manager) LoadSave() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if cookie, err := c.Request.Cookie(m.Cookie.Name); err == nil {
			token = cookie.Value
		}

		ctx, err := m.Load(c.Request.Context(), token)
		if err != nil {
			log.Printf("Failed to load session: %v", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Request = c.Request.WithContext(ctx)

		w := &committingWriter{ResponseWriter: c.Writer, m: m, req: c.Request}
		c.Writer = w
		c.Next()

		// Handlers that never wrote a body still need the cookie
		w.commit()
	}
}
