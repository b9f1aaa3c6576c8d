package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/makeup-scheduler/internal/auth"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(issuer *auth.Issuer) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger())

	api := r.Group("/api", AuthMiddleware(issuer))
	api.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": UserID(c), "admin": IsAdmin(c)})
	})
	api.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	r := newRouter(issuer)

	w := do(r, "/api/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing_authorization_header")

	w = do(r, "/api/whoami", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := issuer.MakeToken(&models.User{ID: 7, Role: models.RoleUser})
	require.NoError(t, err)
	w = do(r, "/api/whoami", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"admin":false}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestRequireAdmin(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	r := newRouter(issuer)

	user, err := issuer.MakeToken(&models.User{ID: 7, Role: models.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, do(r, "/api/admin", user).Code)

	admin, err := issuer.MakeToken(&models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, do(r, "/api/admin", admin).Code)
}

func TestRateLimit(t *testing.T) {
	l := NewIPRateLimiter(0.001, 2)
	r := gin.New()
	r.POST("/login", RateLimit(l), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, http.StatusTooManyRequests}, codes)

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIPRateLimiter_Cleanup(t *testing.T) {
	l := NewIPRateLimiter(1, 1)
	clock := time.Now()
	l.now = func() time.Time { return clock }

	l.Allow("a")
	clock = clock.Add(visitorIdle + time.Second)
	l.Allow("b")

	assert.Equal(t, 1, l.Cleanup())
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.com/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/x", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := preflight("https://app.example.com")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, HeaderRequestID, w.Header().Get("Access-Control-Expose-Headers"))

	w = preflight("https://evil.example.com")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_EmptyAllowListReflectsAnyOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
