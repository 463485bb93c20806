package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCount int

func (f fixedCount) Len() int { return int(f) }

func healthy(name string) HealthChecker {
	return NewCheckFunc(name, func(context.Context) error { return nil })
}

func failing(name string) HealthChecker {
	return NewCheckFunc(name, func(context.Context) error { return errors.New("connection refused") })
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler("1.2.3", nil, failing("redis"))
	w := httptest.NewRecorder()

	h.Liveness(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp LivenessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alive", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name     string
		checkers []HealthChecker
		status   int
		body     string
	}{
		{"no backends", nil, http.StatusOK, "ready"},
		{"all healthy", []HealthChecker{healthy("redis"), healthy("minio")}, http.StatusOK, "ready"},
		{"one failing", []HealthChecker{healthy("redis"), failing("minio")}, http.StatusServiceUnavailable, "not_ready"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("dev", nil, tt.checkers...)
			w := httptest.NewRecorder()

			h.Readiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.status, w.Code)
			var resp ReadinessResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.body, resp.Status)
			assert.Len(t, resp.Components, len(tt.checkers))
		})
	}
}

func TestHealthHandler_Detailed(t *testing.T) {
	h := NewHealthHandler("dev", fixedCount(3), healthy("redis"), failing("minio"))
	w := httptest.NewRecorder()

	h.Detailed(w, httptest.NewRequest(http.MethodGet, "/healthz/detail", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp DetailedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, 3, resp.Sessions)
	assert.Equal(t, "healthy", resp.Components["redis"].Status)
	assert.Equal(t, "connection refused", resp.Components["minio"].Error)
}

//Personal.AI order the ending
