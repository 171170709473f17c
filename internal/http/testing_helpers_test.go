package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/storybook/internal/config"
	"github.com/mrlokans/storybook/internal/export"
	"github.com/mrlokans/storybook/internal/imagegen"
	"github.com/mrlokans/storybook/internal/session"
)

const testAPIKey = "AIzaSyTestKey123"

// fakeGenerator returns a fixed PNG and records what it was asked.
type fakeGenerator struct {
	mu        sync.Mutex
	calls     int
	lastTitle string
	lastText  string
	history   []string
	err       error

	// started receives once a prompt call begins; release, when set, holds the call open
	started chan struct{}
	release chan struct{}
}

func (f *fakeGenerator) GeneratePrompt(_ context.Context, _ string, title, pageText string, history []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastTitle = title
	f.lastText = pageText
	f.history = history
	err := f.err
	f.mu.Unlock()

	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.release != nil {
		<-f.release
	}

	f.mu.Lock()
	if err != nil {
		return "", err
	}
	return "a friendly dragon drawn in crayon", nil
}

func (f *fakeGenerator) GenerateImage(_ context.Context, _ string, _ string) (imagegen.Image, error) {
	return imagegen.Image{MIMEType: "image/png", Data: testPNG()}, nil
}

func (f *fakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var errProvider = errors.New("quota exceeded")

func testPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// testClient drives the router as one browser: it replays cookies between requests.
type testClient struct {
	t       *testing.T
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func newTestClient(t *testing.T, gen imagegen.Generator) *testClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions, err := session.NewManager(config.Session{
		Store:    config.SessionStoreMemory,
		Lifetime: time.Hour,
	}, nil)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Sessions:          sessions,
		Generation:        imagegen.NewService(gen),
		MaxUploadBytes:    1 << 20,
		GenerationTimeout: 5 * time.Second,
		PDFOptions:        export.DefaultPDFOptions(),
		Version:           "test",
	})
	return &testClient{t: t, router: router, cookies: map[string]*http.Cookie{}}
}

// otherBrowser returns a client without cookies against the same server.
func (tc *testClient) otherBrowser() *testClient {
	return &testClient{t: tc.t, router: tc.router, cookies: map[string]*http.Cookie{}}
}

func (tc *testClient) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range tc.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	tc.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		tc.cookies[ck.Name] = ck
	}
	return w
}

func (tc *testClient) request(method, path string, body any) *httptest.ResponseRecorder {
	tc.t.Helper()
	return tc.do(tc.newRequest(method, path, body))
}

func (tc *testClient) newRequest(method, path string, body any) *http.Request {
	tc.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(tc.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// background sends a request from another goroutine with the current cookies and
// delivers the response on the returned channel. Cookies it sets are not replayed.
func (tc *testClient) background(method, path string, body any) <-chan *httptest.ResponseRecorder {
	tc.t.Helper()
	req := tc.newRequest(method, path, body)
	for _, ck := range tc.cookies {
		req.AddCookie(ck)
	}
	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		w := httptest.NewRecorder()
		tc.router.ServeHTTP(w, req)
		done <- w
	}()
	return done
}

func (tc *testClient) multipart(method, path string, fields map[string]string, file []byte) *httptest.ResponseRecorder {
	tc.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(tc.t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("image", "picture.png")
		require.NoError(tc.t, err)
		_, err = fw.Write(file)
		require.NoError(tc.t, err)
	}
	require.NoError(tc.t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return tc.do(req)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
