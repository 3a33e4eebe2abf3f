package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandlerHandle(t *testing.T) {
	handler := HealthHandler{}

	rec := httptest.NewRecorder()
	handler.Handle(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	handler.Handle(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthHandlerReportsConfiguration(t *testing.T) {
	handler := HealthHandler{Configured: func() bool { return false }}

	rec := httptest.NewRecorder()
	handler.Handle(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var body struct {
		Status     string `json:"status"`
		Configured bool   `json:"configured"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.False(t, body.Configured)
}
