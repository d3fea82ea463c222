package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareGeneratesAndEchoesID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(headerKey))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(headerKey, "client-id")
	r.ServeHTTP(rec, req)
	assert.Equal(t, "client-id", seen)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(headerKey, strings.Repeat("x", maxLength+1))
	r.ServeHTTP(rec, req)
	assert.NotEqual(t, strings.Repeat("x", maxLength+1), seen)
}
