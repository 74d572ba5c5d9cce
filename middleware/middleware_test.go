package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"conference-api/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func echoBody(c *gin.Context) {
	raw, _ := io.ReadAll(c.Request.Body)
	c.Data(http.StatusOK, "application/json", raw)
}

func TestSanitizeInputKeepsFreeTextVerbatim(t *testing.T) {
	r := gin.New()
	r.POST("/echo", SanitizeInputMiddleware(), echoBody)

	body := `{"title":"Dose <b and weight> effects","abstract":"turnaround x <y days","comments":"<i>fine</i>",` +
		`"authors":[{"name":"Ana & Co","affiliation":"Lab for x < 5 mm"}],"score":7.50}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, body, rec.Body.String())
}

func TestSanitizeInputRejectsMarkupInIdentifyingFields(t *testing.T) {
	r := gin.New()
	r.POST("/echo", SanitizeInputMiddleware(), echoBody)

	body := `{"title":"ok","authors":[{"name":"Ana","email":"a@example.org"},{"name":"<b>Bo</b>"}]}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "invalid_field", out["code"])
	assert.Equal(t, "authors[1].name", out["field"])
	assert.Contains(t, out["error"], "authors[1].name")
}

func TestSanitizeInputIgnoresReads(t *testing.T) {
	r := gin.New()
	r.GET("/echo", SanitizeInputMiddleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/echo", strings.NewReader(`{"name":"<b>x</b>"}`)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSanitizeInputRejectsMalformedJSON(t *testing.T) {
	r := gin.New()
	r.POST("/echo", SanitizeInputMiddleware(), echoBody)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"title":`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Malformed JSON")
}

func TestAuthAndRole(t *testing.T) {
	auth := services.NewAuthService("mw-secret", 1, "", "")
	r := gin.New()
	r.GET("/admin", AuthMiddleware(auth), RequireRole(services.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextEmail))
	})

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, call("").Code)
	assert.Equal(t, http.StatusUnauthorized, call("Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, call("Bearer garbage").Code)

	reviewer, _, err := auth.IssueToken("rev@example.org", "reviewer")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, call("Bearer "+reviewer).Code)

	admin, _, err := auth.IssueToken("chair@example.org", services.RoleAdmin)
	require.NoError(t, err)
	rec := call("Bearer " + admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "chair@example.org", rec.Body.String())
}

func TestRequestLoggerTagsRequests(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
	assert.Equal(t, int64(http.StatusNoContent), entries[0].ContextMap()["status"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.org"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://app.example.org")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example.org", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.org")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
