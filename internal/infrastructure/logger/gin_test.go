package logger

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

func newObservedRouter(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.DebugLevel)
	l := zap.New(core)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(GinRequestIDKey, "req-123")
		c.Next()
	})
	router.Use(Recovery(l), GinMiddleware(l))
	return router, recorded
}

func findEntry(recorded *observer.ObservedLogs, msg string) *observer.LoggedEntry {
	for _, e := range recorded.All() {
		if e.Message == msg {
			entry := e
			return &entry
		}
	}
	return nil
}

func TestGinMiddleware(t *testing.T) {
	t.Run("logs request at info with request id", func(t *testing.T) {
		router, recorded := newObservedRouter(t)
		router.GET("/places/:placeId/details", func(c *gin.Context) {
			assert.Equal(t, "req-123", GetRequestID(c.Request.Context()))
			GetGinLogger(c).Debug("handler ran")
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/places/abc/details", nil))
		require.Equal(t, http.StatusOK, w.Code)

		entry := findEntry(recorded, "HTTP Request")
		require.NotNil(t, entry)
		assert.Equal(t, zapcore.InfoLevel, entry.Level)
		fields := entry.ContextMap()
		assert.Equal(t, "req-123", fields["request_id"])
		assert.Equal(t, "/places/:placeId/details", fields["route"])
		assert.Equal(t, int64(http.StatusOK), fields["status"])
		assert.NotNil(t, findEntry(recorded, "handler ran"))
	})

	t.Run("client errors log at warn with user id", func(t *testing.T) {
		router, recorded := newObservedRouter(t)
		router.GET("/reviews/:id", func(c *gin.Context) {
			c.Set(GinUserIDKey, "user-7")
			c.Status(http.StatusNotFound)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reviews/x", nil))

		entry := findEntry(recorded, "HTTP Request")
		require.NotNil(t, entry)
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
		assert.Equal(t, "user-7", entry.ContextMap()["user_id"])
	})

	t.Run("server errors log at error", func(t *testing.T) {
		router, recorded := newObservedRouter(t)
		router.GET("/fail", func(c *gin.Context) {
			c.Status(http.StatusBadGateway)
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

		entry := findEntry(recorded, "HTTP Request")
		require.NotNil(t, entry)
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	})
}

func TestRecovery(t *testing.T) {
	router, recorded := newObservedRouter(t)
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INTERNAL_ERROR"`)
	assert.Contains(t, w.Body.String(), `"request_id":"req-123"`)

	entry := findEntry(recorded, "Panic recovered")
	require.NotNil(t, entry)
	assert.Equal(t, "boom", entry.ContextMap()["error"])
}

func TestGetGinLogger_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))
}
