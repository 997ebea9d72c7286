package logging

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func TestNewLevelFallback(t *testing.T) {
	if got := New("debug", "text").GetLevel(); got != logrus.DebugLevel {
		t.Errorf("level = %s, want debug", got)
	}
	if got := New("loud", "text").GetLevel(); got != logrus.InfoLevel {
		t.Errorf("level = %s, want info", got)
	}
	if _, ok := New("info", "json").Formatter.(*logrus.JSONFormatter); !ok {
		t.Error("json format did not select JSONFormatter")
	}
}

func TestGinLoggerRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := New("info", "text")
	logger.SetOutput(&buf)

	r := gin.New()
	r.Use(GinLogger(Component(logger, "http")))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "req-1" {
		t.Errorf("X-Request-ID = %q, want req-1", got)
	}
	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("log output missing request id: %s", buf.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("generated request id missing")
	}
}
