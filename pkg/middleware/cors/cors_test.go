package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(mw gin.HandlerFunc, method, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.Any("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	req := httptest.NewRequest(method, "/x", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestLoopbackOnlyByDefault(t *testing.T) {
	mw := New(nil)
	assert.Equal(t, "http://localhost:5173", serve(mw, http.MethodGet, "http://localhost:5173").Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, serve(mw, http.MethodGet, "https://evil.example").Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, serve(mw, http.MethodGet, "http://localhost.evil.example").Header().Get("Access-Control-Allow-Origin"))
}

func TestConfiguredOrigins(t *testing.T) {
	mw := New([]string{"https://crm.example/"})
	assert.Equal(t, "https://crm.example", serve(mw, http.MethodGet, "https://crm.example").Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, serve(mw, http.MethodGet, "http://localhost:3000").Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflightShortCircuits(t *testing.T) {
	rec := serve(New(nil), http.MethodOptions, "http://127.0.0.1:3000")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
