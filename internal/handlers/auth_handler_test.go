package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/makeup-scheduler/internal/auth"
	"github.com/BruksfildServices01/makeup-scheduler/internal/testutil"
)

var codePattern = regexp.MustCompile(`>(\d{6})<`)

type captureMailer struct {
	mu     sync.Mutex
	sent   []string
	bodies []string
}

func (m *captureMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, subject)
	m.bodies = append(m.bodies, htmlBody)
	return nil
}

func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.bodies)
	match := codePattern.FindStringSubmatch(m.bodies[len(m.bodies)-1])
	require.Len(t, match, 2)
	return match[1]
}

type authFixture struct {
	router  *gin.Engine
	handler *AuthHandler
	mailer  *captureMailer
	store   *testutil.Store
	clock   time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &authFixture{
		mailer: &captureMailer{},
		store:  testutil.NewStore(),
		clock:  time.Now(),
	}
	f.handler = NewAuthHandler(f.store, auth.NewIssuer("secret", time.Hour), f.mailer)
	f.handler.checkDomain = func(string) bool { return true }
	f.handler.now = func() time.Time { return f.clock }

	r := gin.New()
	r.POST("/signup", f.handler.Signup)
	r.POST("/verify", f.handler.Verify)
	r.POST("/resend", f.handler.Resend)
	r.POST("/login", f.handler.Login)
	r.POST("/pwdresetmail", f.handler.RequestPasswordReset)
	r.POST("/pwdreset", f.handler.ResetPassword)
	f.router = r
	return f
}

func (f *authFixture) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func signupBody() gin.H {
	return gin.H{
		"name":     "Ola",
		"surname":  "Nowak",
		"email":    "Ola@Example.com",
		"phoneNum": "+48500100200",
		"password": "correct-horse",
	}
}

func TestAuth_SignupVerifyLogin(t *testing.T) {
	f := newAuthFixture(t)

	w := f.post(t, "/signup", signupBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"role":"ROLE_USER"`)
	assert.Contains(t, w.Body.String(), "ola@example.com")

	// Unverified accounts cannot log in.
	w = f.post(t, "/login", gin.H{"email": "ola@example.com", "password": "correct-horse"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.post(t, "/verify", gin.H{"email": "ola@example.com", "verificationCode": "000000x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.post(t, "/verify", gin.H{"email": "ola@example.com", "verificationCode": f.mailer.lastCode(t)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.post(t, "/login", gin.H{"email": "ola@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.post(t, "/login", gin.H{"email": "ola@example.com", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
}

func TestAuth_SignupRejectsDuplicatesAndBadInput(t *testing.T) {
	f := newAuthFixture(t)

	require.Equal(t, http.StatusCreated, f.post(t, "/signup", signupBody()).Code)

	w := f.post(t, "/signup", signupBody())
	assert.Equal(t, http.StatusConflict, w.Code)

	short := signupBody()
	short["email"] = "other@example.com"
	short["password"] = "short"
	assert.Equal(t, http.StatusBadRequest, f.post(t, "/signup", short).Code)

	badPhone := signupBody()
	badPhone["email"] = "third@example.com"
	badPhone["phoneNum"] = "call me"
	assert.Equal(t, http.StatusBadRequest, f.post(t, "/signup", badPhone).Code)
}

func TestAuth_VerificationCodeExpires(t *testing.T) {
	f := newAuthFixture(t)
	require.Equal(t, http.StatusCreated, f.post(t, "/signup", signupBody()).Code)
	code := f.mailer.lastCode(t)

	f.clock = f.clock.Add(codeTTL + time.Minute)
	w := f.post(t, "/verify", gin.H{"email": "ola@example.com", "verificationCode": code})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "code_expired")

	w = f.post(t, "/resend?email=ola@example.com", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.post(t, "/verify", gin.H{"email": "ola@example.com", "verificationCode": f.mailer.lastCode(t)})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_PasswordReset(t *testing.T) {
	f := newAuthFixture(t)
	require.Equal(t, http.StatusCreated, f.post(t, "/signup", signupBody()).Code)
	require.Equal(t, http.StatusOK, f.post(t, "/verify", gin.H{
		"email": "ola@example.com", "verificationCode": f.mailer.lastCode(t),
	}).Code)

	w := f.post(t, "/pwdresetmail?email=ola@example.com", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.post(t, "/pwdreset", gin.H{"email": "ola@example.com", "code": f.mailer.lastCode(t), "newPassword": "battery-staple"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, f.post(t, "/login", gin.H{"email": "ola@example.com", "password": "correct-horse"}).Code)
	assert.Equal(t, http.StatusOK, f.post(t, "/login", gin.H{"email": "ola@example.com", "password": "battery-staple"}).Code)

	w = f.post(t, "/pwdresetmail?email=nobody@example.com", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
