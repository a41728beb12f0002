package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-enroll/internal/config"
	"github.com/stemsi/exstem-enroll/internal/service"
	"github.com/stemsi/exstem-enroll/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter_RefillsOverTime(t *testing.T) {
	rl := NewRateLimiter(2)
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"), "buckets are per IP")

	now = now.Add(30 * time.Second)
	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))

	now = now.Add(10 * time.Minute)
	rl.Cleanup(3 * time.Minute)
	assert.Empty(t, rl.visitors)
}

func TestRateLimiter_DisabledPassesThrough(t *testing.T) {
	r := gin.New()
	r.POST("/login", NewRateLimiter(0).Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/upload", BodyLimit(8), func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("12345678")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	auth := service.NewAuthService(&config.Config{SessionSecret: "mw-secret", SessionTTL: time.Hour, BcryptCost: 4})
	return NewSessionManager(auth, session.NewMemoryStore(time.Hour), false, zerolog.Nop())
}

func TestSessionManager_PersistsAcrossRequests(t *testing.T) {
	m := newTestManager(t)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/set", func(c *gin.Context) {
		GetSession(c).AddFlash("hello")
		c.String(http.StatusOK, "ok")
	})
	r.GET("/get", func(c *gin.Context) {
		c.String(http.StatusOK, "%s", strings.Join(GetSession(c).PopFlashes(), ","))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/set", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/get", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "hello", w.Body.String())
	assert.Empty(t, w.Result().Cookies(), "known session keeps its cookie")

	req = httptest.NewRequest(http.MethodGet, "/get", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Body.String(), "flashes are shown once")
}

func TestRequireLogin(t *testing.T) {
	m := newTestManager(t)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/login-as", func(c *gin.Context) {
		require.NoError(t, m.Renew(c))
		GetSession(c).Login("ada@example.com")
		c.Status(http.StatusNoContent)
	})
	r.GET("/private", RequireLogin(), func(c *gin.Context) {
		c.String(http.StatusOK, "%s", GetSession(c).Email)
	})
	r.GET("/logout", func(c *gin.Context) {
		require.NoError(t, m.Destroy(c))
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login-as", nil))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	loggedIn := cookies[len(cookies)-1]

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(loggedIn)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ada@example.com", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(loggedIn)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(loggedIn)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusSeeOther, w.Code, "old cookie is dead after logout")
}

func TestBrotli(t *testing.T) {
	page := strings.Repeat("<p>assessment</p>", 200)

	r := gin.New()
	r.Use(BrotliWithConfig(BrotliConfig{MinLength: 512, ExcludedPaths: []string{"/static/uploads"}}))
	r.GET("/page", func(c *gin.Context) { c.String(http.StatusOK, "%s", page) })
	r.GET("/tiny", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/static/uploads/a.txt", func(c *gin.Context) { c.String(http.StatusOK, "%s", page) })
	r.GET("/image", func(c *gin.Context) { c.Data(http.StatusOK, "image/png", []byte(page)) })

	fetch := func(path, accept string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Accept-Encoding", accept)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := fetch("/page", "gzip, br")
	require.Equal(t, "br", w.Header().Get("Content-Encoding"))
	decoded, err := io.ReadAll(brotli.NewReader(w.Body))
	require.NoError(t, err)
	assert.Equal(t, page, string(decoded))

	w = fetch("/tiny", "br")
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "ok", w.Body.String())

	for _, path := range []string{"/static/uploads/a.txt", "/image"} {
		w = fetch(path, "br")
		assert.Empty(t, w.Header().Get("Content-Encoding"), path)
		assert.Equal(t, page, w.Body.String(), path)
	}

	w = fetch("/page", "br;q=0")
	assert.Empty(t, w.Header().Get("Content-Encoding"))
}
