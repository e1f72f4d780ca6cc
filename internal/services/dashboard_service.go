package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"salestracker/internal/infrastructure"
	"salestracker/internal/sales"
	"salestracker/pkg/contracts/domain"
)

// TableSource resolves a source name to its loaded table.
type TableSource interface {
	Table(src domain.Source) *sales.Table
}

// DashboardService runs dashboard views against the loaded source tables.
type DashboardService struct {
	tables   TableSource
	defaults sales.Params
	views    map[string]View
	order    []string
	pages    []Page
	tracer   trace.Tracer
	metrics  *infrastructure.Metrics
	logger   *slog.Logger
}

// NewDashboardService creates a dashboard service over tables. tracer and
// metrics may be nil.
func NewDashboardService(tables TableSource, defaults sales.Params, tracer trace.Tracer, metrics *infrastructure.Metrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.MeterName)
	}

	s := &DashboardService{
		tables:   tables,
		defaults: defaults,
		views:    make(map[string]View),
		pages:    defaultPages(),
		tracer:   tracer,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "dashboard_service")),
	}
	for _, v := range defaultViews() {
		s.views[v.ID] = v
		s.order = append(s.order, v.ID)
	}
	return s
}

// DefaultParams returns the configured focus parameters.
func (s *DashboardService) DefaultParams() sales.Params {
	return s.defaults
}

// Views describes every registered view in catalogue order.
func (s *DashboardService) Views(p sales.Params) []domain.ViewInfo {
	out := make([]domain.ViewInfo, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.views[id].info(p))
	}
	return out
}

// Pages describes the navigation pages and their views.
func (s *DashboardService) Pages(p sales.Params) []domain.PageInfo {
	out := make([]domain.PageInfo, 0, len(s.pages))
	for _, page := range s.pages {
		info := domain.PageInfo{ID: page.ID, Title: page.Title}
		for _, id := range page.Views {
			info.Views = append(info.Views, s.views[id].info(p))
		}
		out = append(out, info)
	}
	return out
}

// RunView computes one view. Pipeline failures and panics are captured into
// the result's Error; the returned error is only ErrViewNotFound.
func (s *DashboardService) RunView(ctx context.Context, id string, p sales.Params) (domain.ViewResult, error) {
	v, ok := s.views[id]
	if !ok {
		return domain.ViewResult{}, fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	return s.run(ctx, v, p), nil
}

// RunPage computes the views of a page in order.
func (s *DashboardService) RunPage(ctx context.Context, pageID string, p sales.Params) (domain.PageResult, error) {
	page, ok := s.page(pageID)
	if !ok {
		return domain.PageResult{}, fmt.Errorf("%w: %s", ErrPageNotFound, pageID)
	}

	ctx, span := s.tracer.Start(ctx, "dashboard.page",
		trace.WithAttributes(attribute.String("page.id", page.ID)))
	defer span.End()

	result := domain.PageResult{
		ID:          page.ID,
		Title:       page.Title,
		Views:       make([]domain.ViewResult, 0, len(page.Views)),
		GeneratedAt: time.Now(),
	}
	for _, id := range page.Views {
		result.Views = append(result.Views, s.run(ctx, s.views[id], p))
	}

	span.SetAttributes(attribute.Int("page.failed_views", result.FailedViews()))
	return result, nil
}

func (s *DashboardService) page(id string) (Page, bool) {
	for _, p := range s.pages {
		if p.ID == id {
			return p, true
		}
	}
	return Page{}, false
}

func (s *DashboardService) run(ctx context.Context, v View, p sales.Params) domain.ViewResult {
	ctx, span := s.tracer.Start(ctx, "dashboard.view",
		trace.WithAttributes(
			attribute.String("view.id", v.ID),
			attribute.String("view.source", string(v.Source)),
		))
	defer span.End()

	info := v.info(p)
	result := domain.ViewResult{
		ID:          info.ID,
		Title:       info.Title,
		Description: info.Description,
		Source:      info.Source,
		Chart:       info.Chart,
	}

	start := time.Now()
	data, table, err := s.compute(v, p)
	elapsed := time.Since(start)
	result.DurationMS = float64(elapsed.Microseconds()) / 1000

	if err != nil {
		kind := sales.Kind(err)
		result.Error = &domain.ViewError{Kind: string(kind), Message: err.Error()}

		infrastructure.RecordError(ctx, err)
		s.metrics.RecordView(ctx, v.ID, elapsed, string(kind))

		level := slog.LevelWarn
		if kind == sales.KindInternal {
			level = slog.LevelError
		}
		s.logger.Log(ctx, level, "view failed",
			slog.String("view", v.ID),
			slog.String("error_kind", string(kind)),
			slog.String("error", err.Error()))
		return result
	}

	result.Data = data
	result.Table = table
	infrastructure.AddSpanEvent(ctx, "view.computed", map[string]interface{}{
		"rows":     len(table.Rows),
		"columns":  len(table.Columns),
		"duration": elapsed.String(),
	})
	s.metrics.RecordView(ctx, v.ID, elapsed, "")
	s.logger.DebugContext(ctx, "view computed",
		slog.String("view", v.ID),
		slog.Int("rows", len(table.Rows)),
		slog.Duration("duration", elapsed))
	return result
}

// compute runs the view's operation, converting a panic into an error.
func (s *DashboardService) compute(v View, p sales.Params) (data any, table *domain.SummaryTable, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, table = nil, nil
			err = fmt.Errorf("view %s panicked: %v", v.ID, r)
		}
	}()

	t := s.tables.Table(v.Source)
	if t == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrSourceNotLoaded, v.Source)
	}

	data, table, err = v.compute(t, p)
	if err != nil {
		return nil, nil, err
	}
	if err := table.Validate(); err != nil {
		return nil, nil, fmt.Errorf("view %s: %w", v.ID, err)
	}
	return data, table, nil
}
