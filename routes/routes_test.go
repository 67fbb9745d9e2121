package routes_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ripple/media"
	"ripple/routes"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := media.NewStore(t.TempDir(), "/uploads")
	require.NoError(t, err)
	return routes.SetupRouter("test-secret", store)
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := testRouter(t)

	requests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/posts"},
		{http.MethodPost, "/api/posts/comment/abc"},
		{http.MethodPut, "/api/posts/like/abc"},
		{http.MethodDelete, "/api/posts/abc"},
	}

	for _, r := range requests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(r.method, r.path, nil))
		assert.Equalf(t, http.StatusUnauthorized, w.Code, "%s %s should require a token", r.method, r.path)
	}
}

func TestUnknownAPIRouteIsJSON404(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestUploadsMountServesStoreDir(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, err := media.NewStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	ref, err := store.Save("pic.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)

	router := routes.SetupRouter("test-secret", store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, ref, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpeg-bytes", w.Body.String())
}
