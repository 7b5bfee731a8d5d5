package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-parts-gateway/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func setupRequestRouter(logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(logger))
	r.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(middleware.RequestIDHeader))
	})
	r.GET("/fail", func(c *gin.Context) {
		c.Status(http.StatusBadGateway)
	})
	return r
}

func TestRequestID(t *testing.T) {
	r := setupRequestRouter(zap.NewNop())

	t.Run("generated_when_missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

		id := w.Header().Get(middleware.RequestIDHeader)
		assert.NotEmpty(t, id)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("caller_id_is_kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-42")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-42", w.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, "req-42", w.Body.String())
	})
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := setupRequestRouter(zap.New(core))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
		assert.Equal(t, "/fail", entries[1].ContextMap()["path"])
	}
}
