package http

import (
	"context"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	apierrors "salestracker/internal/errors"
	"salestracker/internal/exporter"
	"salestracker/internal/middleware"
	"salestracker/internal/sales"
	"salestracker/internal/services"
	"salestracker/internal/shared/testutil"
	"salestracker/pkg/contracts/domain"
)

// MockDashboardService is a mock implementation of the dashboard service
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) DefaultParams() sales.Params {
	args := m.Called()
	return args.Get(0).(sales.Params)
}

func (m *MockDashboardService) Views(p sales.Params) []domain.ViewInfo {
	args := m.Called(p)
	return args.Get(0).([]domain.ViewInfo)
}

func (m *MockDashboardService) Pages(p sales.Params) []domain.PageInfo {
	args := m.Called(p)
	return args.Get(0).([]domain.PageInfo)
}

func (m *MockDashboardService) RunView(ctx context.Context, id string, p sales.Params) (domain.ViewResult, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(domain.ViewResult), args.Error(1)
}

func (m *MockDashboardService) RunPage(ctx context.Context, pageID string, p sales.Params) (domain.PageResult, error) {
	args := m.Called(ctx, pageID, p)
	return args.Get(0).(domain.PageResult), args.Error(1)
}

// MockHealthService is a mock implementation of the health service
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	args := m.Called(ctx)
	return args.Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	args := m.Called(ctx)
	return args.Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	args := m.Called(ctx)
	return args.Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() map[string]interface{} {
	args := m.Called()
	return args.Get(0).(map[string]interface{})
}

func testLogger(t *testing.T) *slog.Logger {
	logger, _ := testutil.NewTestLogger(t)
	return logger
}

// setupDashboardRouter mounts the JSON and HTML handlers the way the app does.
func setupDashboardRouter(t *testing.T) (chi.Router, *MockDashboardService) {
	t.Helper()

	svc := &MockDashboardService{}
	svc.On("DefaultParams").Return(sales.DefaultParams()).Maybe()

	logger := testLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	validator := middleware.NewValidator()

	api := NewDashboardHandler(svc, validator, exporter.NewCSVWriter(false), logger, errorHandler)
	html := NewHTMLHandler(svc, validator, logger, errorHandler)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Mount("/api", api.Routes())
	html.Routes(r)
	return r, svc
}
