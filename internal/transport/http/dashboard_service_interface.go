package http

import (
	"context"

	"salestracker/internal/sales"
	"salestracker/internal/services"
	"salestracker/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations the handlers use
type DashboardServiceInterface interface {
	DefaultParams() sales.Params
	Views(p sales.Params) []domain.ViewInfo
	Pages(p sales.Params) []domain.PageInfo
	RunView(ctx context.Context, id string, p sales.Params) (domain.ViewResult, error)
	RunPage(ctx context.Context, pageID string, p sales.Params) (domain.PageResult, error)
}

// HealthServiceInterface defines the health operations the handlers use
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}
