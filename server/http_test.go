package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tutorial-service/config"
	"tutorial-service/handler"
	"tutorial-service/service"
)

func testRouter(t *testing.T, origins []string) (*gin.Engine, *bytes.Buffer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var logs bytes.Buffer
	ctx := zerolog.New(&logs).WithContext(context.Background())
	cfg := &config.Config{Server: config.Server{CORSOrigins: origins}}
	// nil repository: these tests never reach the store
	tutorials := handler.NewTutorialHandler(service.NewService(nil, nil))
	return newRouter(ctx, cfg, tutorials), &logs
}

func TestHealth(t *testing.T) {
	r, logs := testRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Contains(t, logs.String(), `"path":"/health"`)
	assert.Contains(t, logs.String(), `"status":200`)
}

func TestRequestIDIsPropagated(t *testing.T) {
	r, logs := testRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Contains(t, logs.String(), `"request_id":"abc-123"`)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r, _ := testRouter(t, []string{"http://localhost:8081"})

	req := httptest.NewRequest(http.MethodOptions, "/api/tutorials", nil)
	req.Header.Set("Origin", "http://localhost:8081")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:8081", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/tutorials", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMalformedIdIsBadRequest(t *testing.T) {
	r, logs := testRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tutorials/not-a-number", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, logs.String(), `"level":"warn"`)
}
