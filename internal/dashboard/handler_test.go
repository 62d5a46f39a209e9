package dashboard

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexusq/internal/config"
	"nexusq/internal/leads"
	"nexusq/internal/logger"
)

func setupRouter(h *Hook) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(h, logger.NopLogger()).RegisterRoutes(router)
	return router
}

func TestHandler_SnapshotAndReload(t *testing.T) {
	l := &fakeLeads{err: errors.New("relation leads does not exist")}
	hook := NewHook(l, &fakeEvents{}, &fakePipeline{}, config.DashboardConfig{}, nil, logger.NopLogger())
	router := setupRouter(hook)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/snapshot/reload", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var snap map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "relation leads does not exist", snap["error"])
	assert.Equal(t, false, snap["loading"])
	assert.Equal(t, []interface{}{}, snap["leads"])

	l.mu.Lock()
	l.err = nil
	l.rows = []leads.Lead{{ID: "lead-1"}}
	l.mu.Unlock()

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/snapshot/reload", nil))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Nil(t, snap["error"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/snapshot", nil))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Len(t, snap["leads"], 1)
}

func TestHandler_Overview(t *testing.T) {
	hook := NewHook(&fakeLeads{rows: []leads.Lead{{ID: "lead-1", CreatedAt: time.Now()}}},
		&fakeEvents{}, &fakePipeline{}, config.DashboardConfig{}, nil, logger.NopLogger())
	hook.Load(context.Background(), false)

	w := httptest.NewRecorder()
	setupRouter(hook).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var ov Overview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ov))
	assert.Equal(t, "1", ov.Stats[0].Value)
	assert.Len(t, ov.Trend, 7)
	assert.Equal(t, 1, ov.Trend[6].Leads)
}

func TestHandler_Stream(t *testing.T) {
	hook := NewHook(&fakeLeads{}, &fakeEvents{}, &fakePipeline{}, config.DashboardConfig{}, nil, logger.NopLogger())
	srv := httptest.NewServer(setupRouter(hook))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/stream", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "event:") {
				return strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			}
		}
	}

	assert.Equal(t, "snapshot", readEvent())

	hook.Load(context.Background(), true)
	assert.Equal(t, "snapshot", readEvent())
}

func TestHandler_ReloadSurvivesClientDisconnect(t *testing.T) {
	hook := NewHook(&ctxLeads{rows: []leads.Lead{{ID: "lead-1"}}}, &fakeEvents{}, &fakePipeline{},
		config.DashboardConfig{}, nil, logger.NopLogger())
	router := setupRouter(hook)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/snapshot/reload", nil).WithContext(ctx)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	snap := hook.Snapshot()
	assert.Nil(t, snap.Error)
	assert.Len(t, snap.Leads, 1)
}
