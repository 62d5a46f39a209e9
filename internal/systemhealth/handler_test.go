package systemhealth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexusq/pkg/health"
)

func setupRouter(registry *health.CheckerRegistry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(registry).RegisterRoutes(router)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLiveness(t *testing.T) {
	registry := health.NewCheckerRegistry()
	registry.Register(health.NewFuncChecker("postgres", func(context.Context) error { return errors.New("down") }))

	w := get(setupRouter(registry), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReport(t *testing.T) {
	registry := health.NewCheckerRegistry()
	registry.Register(health.NewFuncChecker("postgres", func(context.Context) error { return nil }))
	registry.RegisterOptional(health.NewFuncChecker("redis", func(context.Context) error { return errors.New("timeout") }))

	w := get(setupRouter(registry), "/api/v1/system/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Len(t, body["services"], 4)
	assert.Len(t, body["logs"], 5)

	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "healthy", checks["postgres"].(map[string]interface{})["status"])
}

func TestReport_Unhealthy(t *testing.T) {
	registry := health.NewCheckerRegistry()
	registry.Register(health.NewFuncChecker("postgres", func(context.Context) error { return errors.New("refused") }))

	w := get(setupRouter(registry), "/api/v1/system/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
