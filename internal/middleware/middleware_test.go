package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testRouter(logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.Use(Logging(logger))
	router.GET("/ping/:id", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFromContext(c.Request.Context()))
	})
	return router
}

func TestRequestIDReusesIncomingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ping/1", nil)
	req.Header.Set("X-Request-Id", "req-42")
	res := httptest.NewRecorder()

	testRouter(zap.NewNop()).ServeHTTP(res, req)

	assert.Equal(t, "req-42", res.Header().Get("X-Request-Id"))
	assert.Equal(t, "req-42", res.Body.String())
}

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	res := httptest.NewRecorder()
	testRouter(zap.NewNop()).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/ping/1", nil))

	generated := res.Header().Get("X-Request-Id")
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, res.Body.String())
}

func TestLoggingWritesAccessEntry(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	req := httptest.NewRequest(http.MethodGet, "/ping/7", nil)
	req.Header.Set("X-Request-Id", "req-7")

	testRouter(zap.New(core)).ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-7", fields["request_id"])
	assert.Equal(t, "/ping/:id", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}
