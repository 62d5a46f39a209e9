package pipeline

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexusq/internal/leads"
	"nexusq/internal/logger"
	pkgerrors "nexusq/pkg/errors"
)

func setupRouter(wf *fakeWorkflow) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	svc := NewService(&fakeRows{}, &fakeLeads{rows: []leads.Lead{{ID: "lead-1"}}}, wf, logger.NopLogger())
	NewHandler(svc, logger.NopLogger()).RegisterRoutes(router)
	return router
}

func postStage(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipeline/stage", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_UpdateStage(t *testing.T) {
	wf := &fakeWorkflow{}
	w := postStage(setupRouter(wf), `{"lead_id":"lead-1","stage":"booked","value":"$1,000"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	require.Len(t, wf.updates, 1)
	assert.Equal(t, 1000.0, *wf.updates[0].Value)
}

func TestHandler_UpdateStageInvalid(t *testing.T) {
	w := postStage(setupRouter(&fakeWorkflow{}), `{"lead_id":"lead-1","stage":"lost"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp pkgerrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.ErrorCode)
}

func TestHandler_UpdateStageWorkflowFailure(t *testing.T) {
	wf := &fakeWorkflow{err: pkgerrors.ErrBadGateway.WithMessage("Workflow update failed (503)")}
	w := postStage(setupRouter(wf), `{"lead_id":"lead-1","stage":"new"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var resp pkgerrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Workflow update failed (503)", resp.Error)
}

func TestHandler_GetBoard(t *testing.T) {
	router := setupRouter(&fakeWorkflow{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pipeline/board", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var board Board
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	assert.Equal(t, 1, board.Columns[0].Count)
}
