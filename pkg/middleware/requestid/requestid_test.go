package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func idRouter(capture *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping", func(c *gin.Context) {
		*capture = Value(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestMiddlewareGeneratesID(t *testing.T) {
	var captured string
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	idRouter(&captured).ServeHTTP(w, req)

	require.NotEmpty(t, captured)
	require.Equal(t, captured, w.Header().Get("X-Request-ID"))
	_, err := uuid.Parse(captured)
	require.NoError(t, err)
}

func TestMiddlewareKeepsInboundID(t *testing.T) {
	var captured string
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "retry-7")
	idRouter(&captured).ServeHTTP(w, req)

	require.Equal(t, "retry-7", captured)
	require.Equal(t, "retry-7", w.Header().Get("X-Request-ID"))
}
