package app

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salestracker/internal/config"
	"salestracker/internal/exporter"
	"salestracker/internal/services"
	"salestracker/internal/shared/testutil"
	"salestracker/internal/validation"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	workbook, enriched := testutil.WriteSampleData(t, t.TempDir())

	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Data.WorkbookPath = workbook
	cfg.Data.CSVPath = enriched
	cfg.Telemetry.EnableTracing = false
	cfg.Telemetry.EnableMetrics = true
	cfg.Telemetry.MetricExporter = "prometheus"
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	app, err := New(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.OTelProviders.Shutdown(context.Background())
	})
	return app
}

func get(t *testing.T, app *Application, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNew_LoadsSources(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	require.NotNil(t, app.Sources)
	assert.Equal(t, len(testutil.SampleSales()), app.Sources.Sales.Len())
	assert.Equal(t, len(testutil.SampleSales()), app.Sources.Enriched.Len())
	assert.NotNil(t, app.Services.Dashboard)
	assert.NotNil(t, app.Services.Health)
	assert.Equal(t, "127.0.0.1:8501", app.Server.Addr)
}

func TestNew_MissingWorkbook(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.WorkbookPath = filepath.Join(t.TempDir(), "missing.xlsx")
	logger, _ := testutil.NewTestLogger(t)

	_, err := New(context.Background(), cfg, logger)
	require.Error(t, err)
	assert.ErrorIs(t, err, validation.ErrNotExist)
	assert.Contains(t, err.Error(), "missing.xlsx")
}

func TestNew_UnparseableCellFailsOnlyAffectedViews(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.CSVPath = filepath.Join(t.TempDir(), "broken.csv")
	body := "transaction_id,transaction_date,transaction_time,transaction_qty,unit_price,store_location,product_category,product_detail,hour\n" +
		"1,2023-01-01,07:06:11,2,3.00,Astoria,Coffee,Latte,7\n" +
		"2,2023-01-01,08:10:00,-4,3.00,Astoria,Coffee,Latte,8\n"
	require.NoError(t, os.WriteFile(cfg.Data.CSVPath, []byte(body), 0o644))

	app := newTestApp(t, cfg)
	assert.Equal(t, 2, app.Sources.Enriched.Len())

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/views/price-tiers", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"error_kind":"parse"`)
	assert.Contains(t, w.Body.String(), "broken.csv row 3 column transaction_qty")

	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/views/hourly-transactions", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/views/overview", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	tests := []struct {
		name        string
		method      string
		path        string
		wantStatus  int
		wantContain string
	}{
		{"health", http.MethodGet, "/api/health", http.StatusOK, `"status":"ok"`},
		{"ready", http.MethodGet, "/api/health/ready", http.StatusOK, `"status":"ready"`},
		{"live", http.MethodGet, "/api/health/live", http.StatusOK, `"status":"alive"`},
		{"version", http.MethodGet, "/api/version", http.StatusOK, `"api_version":"v1"`},
		{"views", http.MethodGet, "/api/views", http.StatusOK, `"count":12`},
		{"pages", http.MethodGet, "/api/pages", http.StatusOK, `"customer-behaviour"`},
		{"view", http.MethodGet, "/api/views/overview", http.StatusOK, `"id":"overview"`},
		{"page", http.MethodGet, "/api/pages/future-demand", http.StatusOK, `"category-sales"`},
		{"export", http.MethodGet, "/api/views/overview/export.csv", http.StatusOK, "store_location,revenue,share"},
		{"unknown view", http.MethodGet, "/api/views/nope", http.StatusNotFound, "VIEW_NOT_FOUND"},
		{"bad months", http.MethodGet, "/api/views/category-sales?months=0", http.StatusBadRequest, "months"},
		{"home page", http.MethodGet, "/", http.StatusOK, `<section id="top-products"`},
		{"html page", http.MethodGet, "/pages/pricing-strategy", http.StatusOK, `<section id="price-tiers"`},
		{"unknown route", http.MethodGet, "/nope", http.StatusNotFound, "/errors/not-found"},
		{"wrong method", http.MethodPost, "/api/health", http.StatusMethodNotAllowed, "/errors/method-not-allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, app, tt.method, tt.path)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantContain)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestRouter_SecurityHeaders(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	w := get(t, app, http.MethodGet, "/api/health")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestRouter_ReadinessReportsRows(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	w := get(t, app, http.MethodGet, "/api/health/ready")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Services map[string]services.ServiceHealth `json:"services"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, len(testutil.SampleSales()), body.Services["sales"].Rows)
	assert.Equal(t, len(testutil.SampleSales()), body.Services["enriched"].Rows)
}

func TestRouter_Metrics(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	require.Equal(t, http.StatusOK, get(t, app, http.MethodGet, "/api/views/overview").Code)

	w := get(t, app, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "view_executions_total")
	assert.Contains(t, body, "http_requests_total")
}

func TestRouter_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.EnableMetrics = false
	app := newTestApp(t, cfg)

	assert.Nil(t, app.OTelProviders.PrometheusHTTP)
	assert.Equal(t, http.StatusNotFound, get(t, app, http.MethodGet, "/metrics").Code)
	assert.Equal(t, http.StatusOK, get(t, app, http.MethodGet, "/api/views/overview").Code)
}

func TestExport(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	dir := filepath.Join(t.TempDir(), "out")

	n, err := app.Export(context.Background(), dir, false)
	require.NoError(t, err)

	views := app.Services.Dashboard.Views(app.Services.Dashboard.DefaultParams())
	assert.Equal(t, len(views), n)

	data, err := os.ReadFile(filepath.Join(dir, exporter.FileName(services.ViewOverview)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "store_location,revenue,share\n"))
}

func TestStartStop(t *testing.T) {
	cfg := testConfig(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	cfg.Server.Port = l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	app := newTestApp(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))

	url := "http://" + app.Server.Addr + "/api/health/live"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, app.Stop(context.Background()))
	assert.NoError(t, ctx.Err())
}
