package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexusq/pkg/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRequireRouter(reached *string) *gin.Engine {
	r := gin.New()
	r.POST("/api/leads", RequireFields("email", "source"), func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		*reached = string(body)
		c.Status(http.StatusCreated)
	})
	return r
}

func TestRequireFields(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantBody string
	}{
		{"all present", `{"email":"a@b.com","source":"web"}`, http.StatusCreated, ""},
		{"missing email", `{"source":"web"}`, http.StatusBadRequest, `{"error":"Missing required field: email"}`},
		{"null email", `{"email":null,"source":"web"}`, http.StatusBadRequest, `{"error":"Missing required field: email"}`},
		{"empty source", `{"email":"a@b.com","source":""}`, http.StatusBadRequest, `{"error":"Missing required field: source"}`},
		{"both missing reports email first", `{}`, http.StatusBadRequest, `{"error":"Missing required field: email"}`},
		{"empty body", ``, http.StatusBadRequest, `{"error":"Missing required field: email"}`},
		{"non object body", `[1,2]`, http.StatusBadRequest, `{"error":"Missing required field: email"}`},
		{"zero value counts as present", `{"email":0,"source":false}`, http.StatusCreated, ""},
		{"malformed", `{"email":`, http.StatusBadRequest, `{"error":"Invalid JSON body"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reached string
			r := newRequireRouter(&reached)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
				assert.Empty(t, reached)
			} else {
				assert.Equal(t, tt.body, reached, "body must be restored for the handler")
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = logging.GetRequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), seen)
}

func TestRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryMiddleware(nopLogger{}))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error","error_code":"INTERNAL_ERROR"}`, w.Body.String())
}

type nopLogger struct{}

func (nopLogger) Errorw(string, ...interface{}) {}
