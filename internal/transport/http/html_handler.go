package http

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	apierrors "salestracker/internal/errors"
	"salestracker/internal/infrastructure"
	"salestracker/internal/middleware"
	"salestracker/internal/sales"
	"salestracker/internal/services"
	"salestracker/pkg/contracts/domain"
)

// AppName is shown in the sidebar and page titles.
const AppName = "Phoenix"

//go:embed templates/*.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"chartJSON": chartJSON,
	"since":     humanize.Time,
}).ParseFS(templateFS, "templates/dashboard.html"))

func chartJSON(c *domain.ChartSpec) (string, error) {
	b, err := json.Marshal(c)
	return string(b), err
}

type navLink struct {
	Title  string
	Href   string
	Active bool
}

type headline struct {
	Revenue     string
	Orders      string
	TopLocation string
	TopRevenue  string
}

type viewSection struct {
	domain.ViewResult
	ExportURL template.URL
}

type pageSection struct {
	Title       string
	Views       []viewSection
	GeneratedAt time.Time
}

type dashboardPage struct {
	AppName  string
	Nav      []navLink
	Page     pageSection
	Headline *headline
	Failed   int
}

// HTMLHandler renders the dashboard pages
type HTMLHandler struct {
	service      DashboardServiceInterface
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewHTMLHandler creates a new HTML dashboard handler
func NewHTMLHandler(service DashboardServiceInterface, validator *middleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *HTMLHandler {
	return &HTMLHandler{
		service:      service,
		validator:    validator,
		logger:       infrastructure.WithComponent(logger, "html_handler"),
		errorHandler: errorHandler,
	}
}

// Routes registers the HTML routes on r
func (h *HTMLHandler) Routes(r chi.Router) {
	r.Get("/", h.ServeHome)
	r.Get("/pages/{page}", h.ServePage)
}

// ServeHome handles GET /. A page query parameter selects another page.
func (h *HTMLHandler) ServeHome(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, middleware.QueryString(r, "page", services.PageHome))
}

// ServePage handles GET /pages/{page}
func (h *HTMLHandler) ServePage(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, chi.URLParam(r, "page"))
}

func (h *HTMLHandler) serve(w http.ResponseWriter, r *http.Request, pageID string) {
	p, err := parseParams(r, h.validator, h.service.DefaultParams())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.RunPage(r.Context(), pageID, p)
	if err != nil {
		if errors.Is(err, services.ErrPageNotFound) {
			err = apierrors.PageNotFound(pageID)
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	data := dashboardPage{
		AppName: AppName,
		Nav:     h.nav(p, pageID, r.URL.Query()),
		Page: pageSection{
			Title:       result.Title,
			GeneratedAt: result.GeneratedAt,
		},
		Failed: result.FailedViews(),
	}
	for _, v := range result.Views {
		data.Page.Views = append(data.Page.Views, viewSection{
			ViewResult: v,
			ExportURL:  withQuery("/api/views/"+url.PathEscape(v.ID)+"/export.csv", r.URL.Query()),
		})
		if v.ID == services.ViewOverview && v.Error == nil {
			data.Headline = newHeadline(v.Data)
		}
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(r.Context(), "template execution failed",
			slog.String("page", pageID),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *HTMLHandler) nav(p sales.Params, current string, query url.Values) []navLink {
	q := url.Values{}
	for k, v := range query {
		if k != "page" {
			q[k] = v
		}
	}

	pages := h.service.Pages(p)
	links := make([]navLink, 0, len(pages))
	for _, page := range pages {
		href := "/pages/" + url.PathEscape(page.ID)
		if page.ID == services.PageHome {
			href = "/"
		}
		links = append(links, navLink{
			Title:  page.Title,
			Href:   string(withQuery(href, q)),
			Active: page.ID == current,
		})
	}
	return links
}

func withQuery(path string, q url.Values) template.URL {
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	return template.URL(path)
}

func newHeadline(data any) *headline {
	stats, ok := data.(sales.OverviewStats)
	if !ok {
		return nil
	}

	hl := &headline{
		Revenue: humanize.CommafWithDigits(stats.TotalRevenue.Round(2).InexactFloat64(), 2),
		Orders:  humanize.Comma(int64(stats.TotalOrders)),
	}
	for _, l := range stats.Locations {
		if l.StoreLocation == stats.TopLocation {
			hl.TopLocation = l.StoreLocation
			hl.TopRevenue = humanize.CommafWithDigits(l.Revenue.Round(2).InexactFloat64(), 2)
		}
	}
	return hl
}
