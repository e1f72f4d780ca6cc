package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"salestracker/internal/sales"
	"salestracker/internal/services"
	"salestracker/pkg/contracts/domain"
)

func overviewResult() domain.ViewResult {
	return domain.ViewResult{
		ID:     services.ViewOverview,
		Title:  "Sales Overview",
		Source: domain.SourceSales,
		Chart:  &domain.ChartSpec{Kind: domain.ChartPie, Title: "Revenue by location"},
		Table: &domain.SummaryTable{
			Columns: []string{"store_location", "revenue", "share"},
			Rows: [][]string{
				{"Astoria", "14.75", "36.33"},
				{"Hell's Kitchen", "10.25", "25.25"},
			},
		},
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestDashboardHandler_ListViews(t *testing.T) {
	r, svc := setupDashboardRouter(t)
	svc.On("Views", sales.DefaultParams()).Return([]domain.ViewInfo{
		{ID: services.ViewOverview, Title: "Sales Overview", Source: domain.SourceSales},
		{ID: services.ViewPriceTiers, Title: "Price Tiers", Source: domain.SourceEnriched},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/views", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 2, body["count"])
	svc.AssertExpectations(t)
}

func TestDashboardHandler_ListPages(t *testing.T) {
	r, svc := setupDashboardRouter(t)
	svc.On("Pages", sales.DefaultParams()).Return([]domain.PageInfo{
		{ID: services.PageHome, Title: "Home"},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pages", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body pageList
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body.Pages, 1)
	assert.Equal(t, "Home", body.Pages[0].Title)
	assert.Equal(t, sales.DefaultParams(), body.Params)
}

func TestDashboardHandler_GetView(t *testing.T) {
	r, svc := setupDashboardRouter(t)
	svc.On("RunView", mock.Anything, services.ViewOverview, sales.DefaultParams()).Return(overviewResult(), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/views/overview", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var res domain.ViewResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.Equal(t, services.ViewOverview, res.ID)
	require.NotNil(t, res.Table)
	assert.Equal(t, []string{"Astoria", "14.75", "36.33"}, res.Table.Rows[0])
	assert.Nil(t, res.Error)
}

func TestDashboardHandler_QueryParams(t *testing.T) {
	r, svc := setupDashboardRouter(t)
	want := sales.Params{
		FocusLocation:  "Astoria",
		FocusProduct:   "Latte",
		TrailingMonths: 3,
		HourlyQtyCap:   5,
	}
	svc.On("RunView", mock.Anything, services.ViewNamedProductRevenue, want).Return(domain.ViewResult{ID: services.ViewNamedProductRevenue}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/api/views/named-product-revenue?location=Astoria&product=Latte&months=3&qty_cap=5", nil))

	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestDashboardHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		setup      func(svc *MockDashboardService)
		wantStatus int
		wantCode   string
		wantKind   string
	}{
		{
			name: "unknown view",
			path: "/api/views/nope",
			setup: func(svc *MockDashboardService) {
				svc.On("RunView", mock.Anything, "nope", mock.Anything).
					Return(domain.ViewResult{}, fmt.Errorf("%w: %s", services.ErrViewNotFound, "nope"))
			},
			wantStatus: http.StatusNotFound,
			wantCode:   "VIEW_NOT_FOUND",
		},
		{
			name: "unknown page",
			path: "/api/pages/nope",
			setup: func(svc *MockDashboardService) {
				svc.On("RunPage", mock.Anything, "nope", mock.Anything).
					Return(domain.PageResult{}, fmt.Errorf("%w: %s", services.ErrPageNotFound, "nope"))
			},
			wantStatus: http.StatusNotFound,
			wantCode:   "PAGE_NOT_FOUND",
		},
		{
			name:       "months below range",
			path:       "/api/views/overview?months=0",
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "months not a number",
			path:       "/api/views/overview?months=abc",
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "qty cap above range",
			path:       "/api/views/lowest-seller?qty_cap=5000",
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name: "view failed on data",
			path: "/api/views/lowest-seller",
			setup: func(svc *MockDashboardService) {
				svc.On("RunView", mock.Anything, services.ViewLowestSeller, mock.Anything).Return(domain.ViewResult{
					ID:    services.ViewLowestSeller,
					Error: &domain.ViewError{Kind: string(sales.KindEmptyInput), Message: "LowestSeller: no rows"},
				}, nil)
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VIEW_FAILED",
			wantKind:   string(sales.KindEmptyInput),
		},
		{
			name: "view failed internally",
			path: "/api/views/overview",
			setup: func(svc *MockDashboardService) {
				svc.On("RunView", mock.Anything, services.ViewOverview, mock.Anything).Return(domain.ViewResult{
					ID:    services.ViewOverview,
					Error: &domain.ViewError{Kind: string(sales.KindInternal), Message: "view overview panicked: boom"},
				}, nil)
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, svc := setupDashboardRouter(t)
			if tt.setup != nil {
				tt.setup(svc)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, tt.wantStatus, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, tt.wantCode, body["error_code"])
			assert.NotEmpty(t, body["trace_id"])
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, body["error_kind"])
			}
			if tt.setup == nil {
				svc.AssertNotCalled(t, "RunView", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestDashboardHandler_GetPage(t *testing.T) {
	r, svc := setupDashboardRouter(t)
	failed := domain.ViewResult{
		ID:    services.ViewLowestSeller,
		Error: &domain.ViewError{Kind: string(sales.KindEmptyInput), Message: "no rows"},
	}
	svc.On("RunPage", mock.Anything, services.PagePricingStrategy, sales.DefaultParams()).Return(domain.PageResult{
		ID:          services.PagePricingStrategy,
		Title:       "Pricing Strategy",
		Views:       []domain.ViewResult{overviewResult(), failed},
		GeneratedAt: time.Now(),
	}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pages/pricing-strategy", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var page domain.PageResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&page))
	require.Len(t, page.Views, 2)
	assert.Equal(t, 1, page.FailedViews())
	assert.Equal(t, "empty_input", page.Views[1].Error.Kind)
}

func TestDashboardHandler_ExportView(t *testing.T) {
	r, svc := setupDashboardRouter(t)
	svc.On("RunView", mock.Anything, services.ViewOverview, sales.DefaultParams()).Return(overviewResult(), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/views/overview/export.csv", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="overview.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "store_location,revenue,share\nAstoria,14.75,36.33\nHell's Kitchen,10.25,25.25\n", w.Body.String())
}

func TestDashboardHandler_ExportFailedView(t *testing.T) {
	r, svc := setupDashboardRouter(t)
	svc.On("RunView", mock.Anything, services.ViewCategorySales, sales.DefaultParams()).Return(domain.ViewResult{
		ID:    services.ViewCategorySales,
		Error: &domain.ViewError{Kind: string(sales.KindMissingColumn), Message: "missing column product_category"},
	}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/views/category-sales/export.csv", nil))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NotContains(t, w.Header().Get("Content-Type"), "text/csv")
}
