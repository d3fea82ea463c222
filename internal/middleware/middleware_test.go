package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/overseas-crm/internal/access"
	"github.com/noah-isme/overseas-crm/internal/models"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
)

type fakeAuthenticator struct {
	sessions  map[string]*models.Session
	lastToken string
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*models.Session, error) {
	f.lastToken = token
	if session, ok := f.sessions[token]; ok {
		return session, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session token")
}

func sessionWithRole(role access.Role) *models.Session {
	return &models.Session{ID: "sess-" + string(role), Identity: models.Identity{ID: "user-" + string(role), Role: role}}
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/protected", handlers...)
	return r
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSessionMiddleware(t *testing.T) {
	auth := &fakeAuthenticator{sessions: map[string]*models.Session{"good": sessionWithRole(access.RoleAdmin)}}

	var seen *models.Session
	r := newRouter(Session(auth), func(c *gin.Context) {
		seen, _ = CurrentSession(c)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Basic good").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer ").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer bad").Code)
	assert.Nil(t, seen)

	rec := serve(r, "bearer good")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "good", auth.lastToken)
	require.NotNil(t, seen)
	assert.Equal(t, access.RoleAdmin, seen.Identity.Role)
}

func TestCurrentSessionWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := CurrentSession(c)
	assert.False(t, ok)

	c.Set(ContextSessionKey, "not a session")
	_, ok = CurrentSession(c)
	assert.False(t, ok)
}

func TestRequirePermission(t *testing.T) {
	auth := &fakeAuthenticator{sessions: map[string]*models.Session{
		"admin":      sessionWithRole(access.RoleAdmin),
		"instructor": sessionWithRole(access.RoleInstructor),
		"reception":  sessionWithRole(access.RoleReceptionist),
	}}
	r := newRouter(Session(auth), RequirePermission(access.PermManageFinance, access.PermWalkIn))

	assert.Equal(t, http.StatusOK, serve(r, "Bearer admin").Code)
	assert.Equal(t, http.StatusOK, serve(r, "Bearer reception").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, "Bearer instructor").Code)

	bare := newRouter(RequirePermission(access.PermViewDashboard))
	assert.Equal(t, http.StatusUnauthorized, serve(bare, "").Code)
}

func TestRequireRoute(t *testing.T) {
	auth := &fakeAuthenticator{sessions: map[string]*models.Session{
		"accountant": sessionWithRole(access.RoleAccountant),
		"counselor":  sessionWithRole(access.RoleCounselor),
	}}
	r := newRouter(Session(auth), RequireRoute(access.RoutePayDetails))

	assert.Equal(t, http.StatusOK, serve(r, "Bearer accountant").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, "Bearer counselor").Code)
}

type recordingObserver struct {
	method string
	path   string
	status int
	calls  int
}

func (r *recordingObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	r.method, r.path, r.status = method, path, status
	r.calls++
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &recordingObserver{}
	r := gin.New()
	r.Use(Metrics(observer))
	r.GET("/students/:id", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students/abc", nil))
	assert.Equal(t, "/students/:id", observer.path)
	assert.Equal(t, http.StatusAccepted, observer.status)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, "unmatched", observer.path)
	assert.Equal(t, http.StatusNotFound, observer.status)
	assert.Equal(t, 2, observer.calls)
}

func TestMetricsWithoutObserver(t *testing.T) {
	r := newRouter(Metrics(nil))
	assert.Equal(t, http.StatusOK, serve(r, "").Code)
}

func TestResponseMetaAndCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var meta map[string]interface{}
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/dash", func(c *gin.Context) {
		SetCacheHit(c, false)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dash", nil))

	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	require.NotNil(t, meta)
	assert.Equal(t, false, meta[cacheHitKey])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestExtractMetaNilContext(t *testing.T) {
	assert.Nil(t, ExtractMeta(nil))
}
