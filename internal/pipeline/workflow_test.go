package pipeline

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "nexusq/pkg/errors"
)

func TestHTTPWorkflowClient_UpdateStage(t *testing.T) {
	var received map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	v := 1500.0
	c := NewHTTPWorkflowClient(srv.URL, srv.Client(), nil)
	require.NoError(t, c.UpdateStage(t.Context(), StageUpdate{LeadID: "lead-1", Stage: StageQuoted, Status: StageQuoted, Value: &v}))

	assert.Equal(t, "lead-1", received["lead_id"])
	assert.Equal(t, "quoted", received["stage"])
	assert.Equal(t, "quoted", received["status"])
	assert.Equal(t, 1500.0, received["value"])
}

func TestHTTPWorkflowClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"ok false with error", http.StatusOK, `{"ok":false,"error":"missing client_key"}`, "missing client_key"},
		{"2xx without ok", http.StatusOK, `{}`, "Workflow update failed (200)"},
		{"server error no body", http.StatusInternalServerError, ``, "Workflow update failed (500)"},
		{"not json", http.StatusBadGateway, `<html>`, "Workflow update failed (502)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewHTTPWorkflowClient(srv.URL, srv.Client(), nil).
				UpdateStage(t.Context(), StageUpdate{LeadID: "lead-1", Stage: StageNew, Status: StageNew})
			require.Error(t, err)
			assert.True(t, pkgerrors.IsBadGateway(err))
			assert.Equal(t, tt.wantMsg, pkgerrors.ToErrorResponse(err).Error)
		})
	}
}

func TestHTTPWorkflowClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewHTTPWorkflowClient(url, nil, nil).UpdateStage(t.Context(), StageUpdate{LeadID: "x"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, pkgerrors.ToHTTPStatus(err))
}
