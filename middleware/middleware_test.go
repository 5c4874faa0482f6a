package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rahel786/QuickHire-sub000/models"
	"github.com/Rahel786/QuickHire-sub000/services"
	"github.com/Rahel786/QuickHire-sub000/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticVerifier map[string]utils.Identity

func (v staticVerifier) Verify(token string) (utils.Identity, error) {
	id, ok := v[token]
	if !ok {
		return utils.Identity{}, utils.ErrInvalidToken
	}
	return id, nil
}

type staticRoles map[string]string

func (r staticRoles) RoleOf(_ context.Context, userID string) (string, error) {
	role, ok := r[userID]
	if !ok {
		return "", oops.Code(services.CodeNotFound).Errorf("user not found")
	}
	return role, nil
}

var tokens = staticVerifier{
	"good":  {UserID: "u-1", Email: "a@example.com"},
	"admin": {UserID: "u-admin", Email: "admin@example.com"},
}

var roles = staticRoles{"u-1": models.RoleStudent, "u-admin": models.RoleAdmin}

func echoIdentity(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"userID": c.GetString(ContextUserID),
		"email":  c.GetString(ContextEmail),
		"role":   c.GetString(ContextRole),
	})
}

func do(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	r := gin.New()
	r.GET("/me", Auth(tokens), echoIdentity)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
		{"scheme is case insensitive", "bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			headers := map[string]string{}
			if tc.header != "" {
				headers["Authorization"] = tc.header
			}
			w := do(r, http.MethodGet, "/me", headers)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"userID":"u-1"`)
				assert.Contains(t, w.Body.String(), `"email":"a@example.com"`)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	r := gin.New()
	r.GET("/feed", OptionalAuth(tokens), echoIdentity)

	w := do(r, http.MethodGet, "/feed", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userID":""`)

	w = do(r, http.MethodGet, "/feed", map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userID":"u-1"`)

	w = do(r, http.MethodGet, "/feed", map[string]string{"Authorization": "Bearer forged"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.POST("/colleges", Auth(tokens), RequireRole(roles, models.RoleAdmin), echoIdentity)
	r.POST("/open", RequireRole(roles, models.RoleAdmin), echoIdentity)

	w := do(r, http.MethodPost, "/colleges", map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPost, "/colleges", map[string]string{"Authorization": "Bearer admin"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)

	w = do(r, http.MethodPost, "/open", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type brokenRoles struct{}

func (brokenRoles) RoleOf(context.Context, string) (string, error) {
	return "", errors.New("server selection timeout")
}

func TestRequireRole_LookupFailures(t *testing.T) {
	r := gin.New()
	r.POST("/gone", Auth(staticVerifier{"ghost": {UserID: "u-gone"}}), RequireRole(roles, models.RoleAdmin), echoIdentity)
	r.POST("/down", Auth(tokens), RequireRole(brokenRoles{}, models.RoleAdmin), echoIdentity)

	w := do(r, http.MethodPost, "/gone", map[string]string{"Authorization": "Bearer ghost"})
	assert.Equal(t, http.StatusForbidden, w.Code, "a deleted account is refused")

	w = do(r, http.MethodPost, "/down", map[string]string{"Authorization": "Bearer admin"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestResolveRole(t *testing.T) {
	r := gin.New()
	r.DELETE("/x", Auth(tokens), ResolveRole(roles), echoIdentity)

	w := do(r, http.MethodDelete, "/x", map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"student"`)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := do(r, http.MethodGet, "/", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	w = do(r, http.MethodGet, "/", nil)
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	w = do(r, http.MethodGet, "/", map[string]string{RequestIDHeader: strings.Repeat("x", 200)})
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://quickhire.dev", " "}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/", map[string]string{"Origin": "https://quickhire.dev"})
	assert.Equal(t, "https://quickhire.dev", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodGet, "/", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodOptions, "/", map[string]string{"Origin": "https://quickhire.dev"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	open := gin.New()
	open.Use(CORS(nil))
	open.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	w = do(open, http.MethodGet, "/", map[string]string{"Origin": "https://anything.example"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLogger(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := gin.New()
	r.Use(RequestID(), Logger(logger))
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	do(r, http.MethodGet, "/boom", map[string]string{RequestIDHeader: "req-1"})
	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "path=/boom")
	assert.Contains(t, out, "request_id=req-1")
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	do(r, http.MethodGet, "/api/health", nil)
	do(r, http.MethodGet, "/api/health", nil)
	do(r, http.MethodGet, "/missing", nil)
	m.ObserveOTP(models.PurposeRegistration, "issued")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/health", http.MethodGet, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", http.MethodGet, "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.otps.WithLabelValues("registration", "issued")))

	w := do(r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "quickhire_otp_events_total")
}
