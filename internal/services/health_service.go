package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"salestracker/pkg/contracts"
	"salestracker/pkg/contracts/domain"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	tables    TableSource
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health. UnparseableColumns
// lists source columns with cells that failed to parse; views reading them
// fail while the source stays ready.
type ServiceHealth struct {
	Status             string   `json:"status"`
	Message            string   `json:"message,omitempty"`
	Rows               int      `json:"rows,omitempty"`
	UnparseableColumns []string `json:"unparseable_columns,omitempty"`
}

// Ready reports whether the health status is ready.
func (s ServiceHealth) Ready() bool {
	return s.Status == "ready"
}

// NewHealthService creates a health service. tables may be nil before the
// sources are loaded.
func NewHealthService(version string, tables TableSource, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized", slog.String("version", version))

	return &HealthService{
		version:   version,
		tables:    tables,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready once both source tables are loaded.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	allReady := true
	for _, src := range []domain.Source{domain.SourceSales, domain.SourceEnriched} {
		sh := hs.checkSource(src)
		status.Services[string(src)] = sh
		if !sh.Ready() {
			allReady = false
		}
	}

	if !allReady {
		status.Status = "not_ready"
		hs.logger.WarnContext(ctx, "ReadinessCheck: not ready")
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":     hs.version,
		"api_version": info.APIVersion,
		"build_time":  info.BuildTime,
		"git_commit":  info.GitCommit,
		"go_version":  info.GoVersion,
		"os":          info.OS,
		"arch":        info.Architecture,
		"uptime":      time.Since(hs.startTime).Seconds(),
		"start_time":  hs.startTime.Format(time.RFC3339),
	}
}

func (hs *HealthService) checkSource(src domain.Source) ServiceHealth {
	if hs.tables == nil {
		return ServiceHealth{Status: "not_ready", Message: "sources not loaded"}
	}
	t := hs.tables.Table(src)
	if t == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("%s table not loaded", src),
		}
	}
	h := ServiceHealth{
		Status:  "ready",
		Message: t.Name,
		Rows:    t.Len(),
	}
	for _, pe := range t.ParseErrors() {
		h.UnparseableColumns = append(h.UnparseableColumns, pe.Column)
	}
	return h
}
