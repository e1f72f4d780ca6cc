package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "salestracker/internal/errors"
	"salestracker/internal/exporter"
	"salestracker/internal/infrastructure"
	"salestracker/internal/middleware"
	"salestracker/internal/sales"
	"salestracker/internal/services"
	"salestracker/pkg/contracts/domain"
)

// DashboardHandler serves the JSON API and CSV export of dashboard views
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    *middleware.Validator
	csv          *exporter.CSVWriter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, validator *middleware.Validator, csv *exporter.CSVWriter, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		csv:          csv,
		logger:       infrastructure.WithComponent(logger, "dashboard_handler"),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard API routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/pages", h.ListPages)
	r.Get("/pages/{page}", h.GetPage)
	r.Get("/views", h.ListViews)
	r.Route("/views/{view}", func(r chi.Router) {
		r.Get("/", h.GetView)
		r.Get("/export.csv", h.ExportView)
	})

	return r
}

// pageList is the response of GET /api/pages
type pageList struct {
	Pages  []domain.PageInfo `json:"pages"`
	Params sales.Params      `json:"params"`
}

// ListPages handles GET /api/pages
func (h *DashboardHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	p, err := parseParams(r, h.validator, h.service.DefaultParams())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, pageList{Pages: h.service.Pages(p), Params: p})
}

// ListViews handles GET /api/views
func (h *DashboardHandler) ListViews(w http.ResponseWriter, r *http.Request) {
	p, err := parseParams(r, h.validator, h.service.DefaultParams())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	views := h.service.Views(p)
	render.JSON(w, r, map[string]interface{}{
		"views": views,
		"count": len(views),
	})
}

// GetPage handles GET /api/pages/{page}. Failed views are embedded in the
// page result rather than failing the request.
func (h *DashboardHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "page")

	p, err := parseParams(r, h.validator, h.service.DefaultParams())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	page, err := h.service.RunPage(r.Context(), pageID, p)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err, pageID))
		return
	}

	h.logger.InfoContext(r.Context(), "page computed",
		slog.String("page", pageID),
		slog.Int("views", len(page.Views)),
		slog.Int("failed_views", page.FailedViews()))
	render.JSON(w, r, page)
}

// GetView handles GET /api/views/{view}
func (h *DashboardHandler) GetView(w http.ResponseWriter, r *http.Request) {
	res, ok := h.runView(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, res)
}

// ExportView handles GET /api/views/{view}/export.csv
func (h *DashboardHandler) ExportView(w http.ResponseWriter, r *http.Request) {
	res, ok := h.runView(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporter.FileName(res.ID)))
	if err := h.csv.WriteTable(w, res.Table); err != nil {
		// Headers are already sent; all we can do is log.
		h.logger.ErrorContext(r.Context(), "csv export failed",
			slog.String("view", res.ID),
			slog.String("error", err.Error()))
	}
}

// runView resolves params, runs the view and writes an error response when
// the view is unknown or failed. ok is false when a response was written.
func (h *DashboardHandler) runView(w http.ResponseWriter, r *http.Request) (domain.ViewResult, bool) {
	viewID := chi.URLParam(r, "view")

	p, err := parseParams(r, h.validator, h.service.DefaultParams())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return domain.ViewResult{}, false
	}

	res, err := h.service.RunView(r.Context(), viewID, p)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err, viewID))
		return domain.ViewResult{}, false
	}

	if res.Error != nil {
		if res.Error.Kind == string(sales.KindInternal) {
			h.errorHandler.HandleError(w, r, apierrors.ErrInternalServer)
		} else {
			h.errorHandler.HandleError(w, r, apierrors.ViewFailed(viewID, res.Error.Kind, res.Error.Message))
		}
		return domain.ViewResult{}, false
	}
	return res, true
}

func (h *DashboardHandler) mapServiceError(err error, id string) error {
	switch {
	case errors.Is(err, services.ErrViewNotFound):
		return apierrors.ViewNotFound(id)
	case errors.Is(err, services.ErrPageNotFound):
		return apierrors.PageNotFound(id)
	default:
		return err
	}
}
