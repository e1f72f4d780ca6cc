package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"salestracker/internal/services"
)

func setupHealthRouter(t *testing.T) (chi.Router, *MockHealthService) {
	svc := &MockHealthService{}
	handler := NewHealthHandler(svc, testLogger(t))

	r := chi.NewRouter()
	r.Route("/api", handler.Routes)
	return r, svc
}

func TestHealthHandler_Endpoints(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		method     string
		status     services.HealthStatus
		wantStatus int
	}{
		{
			name:       "health",
			path:       "/api/health",
			method:     "HealthCheck",
			status:     services.HealthStatus{Status: "ok", Version: "1.0.0"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "ready",
			path:       "/api/health/ready",
			method:     "ReadinessCheck",
			status:     services.HealthStatus{Status: "ready"},
			wantStatus: http.StatusOK,
		},
		{
			name:   "not ready",
			path:   "/api/health/ready",
			method: "ReadinessCheck",
			status: services.HealthStatus{
				Status: "not_ready",
				Services: map[string]interface{}{
					"enriched": services.ServiceHealth{Status: "not_ready", Message: "enriched table not loaded"},
				},
			},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "live",
			path:       "/api/health/live",
			method:     "LivenessCheck",
			status:     services.HealthStatus{Status: "alive"},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, svc := setupHealthRouter(t)
			tt.status.Timestamp = time.Now()
			svc.On(tt.method, mock.Anything).Return(tt.status)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, tt.wantStatus, w.Code)
			var got services.HealthStatus
			require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
			assert.Equal(t, tt.status.Status, got.Status)
			svc.AssertExpectations(t)
		})
	}
}

func TestHealthHandler_Version(t *testing.T) {
	r, svc := setupHealthRouter(t)
	svc.On("Version").Return(map[string]interface{}{"version": "1.0.0", "api_version": "v1"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "1.0.0", got["version"])
	assert.Equal(t, "v1", got["api_version"])
}
