package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"salestracker/internal/infrastructure"
	"salestracker/internal/sales"
	"salestracker/internal/shared/testutil"
	"salestracker/pkg/contracts/domain"
)

type tableMap map[domain.Source]*sales.Table

func (m tableMap) Table(src domain.Source) *sales.Table {
	return m[src]
}

func sampleTables() tableMap {
	return tableMap{
		domain.SourceSales:    sales.NewTable("sales.xlsx", sales.NewSchema(testutil.WorkbookColumns...), testutil.SampleSales()),
		domain.SourceEnriched: testutil.SampleTable("enriched.csv"),
	}
}

func newTestService(t *testing.T, tables TableSource) (*DashboardService, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	return NewDashboardService(tables, sales.DefaultParams(), nil, nil, logger), logs
}

func TestDashboardService_AllViewsSucceedOnSample(t *testing.T) {
	s, logs := newTestService(t, sampleTables())
	ctx := context.Background()

	views := s.Views(s.DefaultParams())
	require.Len(t, views, 12)

	for _, info := range views {
		t.Run(info.ID, func(t *testing.T) {
			res, err := s.RunView(ctx, info.ID, s.DefaultParams())
			require.NoError(t, err)
			require.Nil(t, res.Error, "unexpected failure: %+v", res.Error)

			assert.Equal(t, info.ID, res.ID)
			assert.Equal(t, info.Source, res.Source)
			assert.NotNil(t, res.Data)
			require.NotNil(t, res.Table)
			assert.NoError(t, res.Table.Validate())
			assert.NotEmpty(t, res.Table.Rows)
		})
	}
	testutil.AssertNoErrors(t, logs)
}

func TestDashboardService_Overview(t *testing.T) {
	s, _ := newTestService(t, sampleTables())

	res, err := s.RunView(context.Background(), ViewOverview, s.DefaultParams())
	require.NoError(t, err)
	require.Nil(t, res.Error)

	stats, ok := res.Data.(sales.OverviewStats)
	require.True(t, ok)
	assert.Equal(t, "40.6", stats.TotalRevenue.String())
	assert.Equal(t, 8, stats.TotalOrders)
	assert.Equal(t, "Lower Manhattan", stats.TopLocation)

	assert.Equal(t, []string{"store_location", "revenue", "share"}, res.Table.Columns)
	assert.Equal(t, [][]string{
		{"Astoria", "14.75", "36.33"},
		{"Hell's Kitchen", "10.25", "25.25"},
		{"Lower Manhattan", "15.60", "38.42"},
	}, res.Table.Rows)

	require.NotNil(t, res.Chart)
	assert.Equal(t, domain.ChartPie, res.Chart.Kind)
}

func TestDashboardService_ParamsFlowIntoViews(t *testing.T) {
	s, _ := newTestService(t, sampleTables())
	ctx := context.Background()

	p := s.DefaultParams()
	p.FocusProduct = "Latte"
	p.HourlyQtyCap = 5

	res, err := s.RunView(ctx, ViewNamedProductRevenue, p)
	require.NoError(t, err)
	require.Nil(t, res.Error)
	assert.Equal(t, "Total Revenue from Latte by Location", res.Title)
	assert.Len(t, res.Table.Rows, 2)

	res, err = s.RunView(ctx, ViewLowestSeller, p)
	require.NoError(t, err)
	require.NotNil(t, res.Chart)
	require.NotNil(t, res.Chart.YMax)
	assert.Equal(t, 5.0, *res.Chart.YMax)

	res, err = s.RunView(ctx, ViewTimeOfDayRevenue, s.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, "Lower Manhattan Revenue by Time of Day", res.Title)
	assert.Equal(t, [][]string{
		{"Morning", "9.10"},
		{"Afternoon", "3.50"},
		{"Evening", "3.00"},
	}, res.Table.Rows)
}

func TestDashboardService_MonthlyDescriptionFlagsYearCollapse(t *testing.T) {
	s, _ := newTestService(t, sampleTables())
	for _, v := range s.Views(s.DefaultParams()) {
		if v.ID == ViewMonthlyRevenue {
			assert.Contains(t, v.Description, "different years")
			return
		}
	}
	t.Fatal("monthly revenue view not registered")
}

func TestDashboardService_CapturesFailures(t *testing.T) {
	rows := testutil.SampleSales()
	noPrice := sales.NewTable("noprice.csv",
		sales.NewSchema(sales.ColTransactionID, sales.ColTransactionQty, sales.ColStoreLocation, sales.ColProductDetail, sales.ColHour),
		rows)
	empty := sales.NewTable("empty.csv", sales.NewSchema(testutil.EnrichedColumns...), nil)

	tests := []struct {
		name     string
		tables   tableMap
		view     string
		wantKind sales.ErrorKind
		wantMsg  string
	}{
		{
			name:     "missing column",
			tables:   tableMap{domain.SourceEnriched: noPrice},
			view:     ViewPriceTiers,
			wantKind: sales.KindMissingColumn,
			wantMsg:  "unit_price",
		},
		{
			name:     "empty input",
			tables:   tableMap{domain.SourceEnriched: empty},
			view:     ViewLowestSeller,
			wantKind: sales.KindEmptyInput,
			wantMsg:  "empty input",
		},
		{
			name:     "unparseable cell",
			tables:   tableMap{domain.SourceSales: badDateTable()},
			view:     ViewMonthlyRevenue,
			wantKind: sales.KindParse,
			wantMsg:  `column transaction_date: cannot parse "not-a-date"`,
		},
		{
			name:     "source not loaded",
			tables:   tableMap{domain.SourceSales: noPrice},
			view:     ViewCategorySales,
			wantKind: sales.KindInternal,
			wantMsg:  "source table not loaded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, logs := newTestService(t, tt.tables)

			res, err := s.RunView(context.Background(), tt.view, s.DefaultParams())
			require.NoError(t, err)
			require.NotNil(t, res.Error)
			assert.Equal(t, string(tt.wantKind), res.Error.Kind)
			assert.Contains(t, res.Error.Message, tt.wantMsg)
			assert.Nil(t, res.Data)
			assert.Nil(t, res.Table)
			assert.NotEmpty(t, res.Title)

			assert.True(t, logs.ContainsMessage("view failed"))
			testutil.AssertLogAttr(t, logs, "error_kind", string(tt.wantKind))
		})
	}
}

func TestDashboardService_RecoversPanics(t *testing.T) {
	s, logs := newTestService(t, sampleTables())
	s.views["boom"] = View{
		ID:     "boom",
		Title:  "Boom",
		Source: domain.SourceSales,
		compute: func(*sales.Table, sales.Params) (any, *domain.SummaryTable, error) {
			panic("kaboom")
		},
	}

	res, err := s.RunView(context.Background(), "boom", s.DefaultParams())
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, string(sales.KindInternal), res.Error.Kind)
	assert.Contains(t, res.Error.Message, "kaboom")
	testutil.AssertLogContains(t, logs, slog.LevelError, "view failed")
}

func TestDashboardService_RejectsMisalignedTables(t *testing.T) {
	s, _ := newTestService(t, sampleTables())
	s.views["ragged"] = View{
		ID:     "ragged",
		Source: domain.SourceSales,
		compute: func(*sales.Table, sales.Params) (any, *domain.SummaryTable, error) {
			return 1, &domain.SummaryTable{Columns: []string{"a", "b"}, Rows: [][]string{{"1"}}}, nil
		},
	}

	res, err := s.RunView(context.Background(), "ragged", s.DefaultParams())
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, string(sales.KindInternal), res.Error.Kind)
}

func TestDashboardService_NotFound(t *testing.T) {
	s, _ := newTestService(t, sampleTables())

	_, err := s.RunView(context.Background(), "nope", s.DefaultParams())
	assert.ErrorIs(t, err, ErrViewNotFound)

	_, err = s.RunPage(context.Background(), "nope", s.DefaultParams())
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestDashboardService_RunPage(t *testing.T) {
	s, _ := newTestService(t, sampleTables())

	for _, page := range s.Pages(s.DefaultParams()) {
		t.Run(page.ID, func(t *testing.T) {
			res, err := s.RunPage(context.Background(), page.ID, s.DefaultParams())
			require.NoError(t, err)

			assert.Equal(t, page.Title, res.Title)
			require.Len(t, res.Views, len(page.Views))
			for i, v := range page.Views {
				assert.Equal(t, v.ID, res.Views[i].ID)
			}
			assert.Zero(t, res.FailedViews())
			assert.False(t, res.GeneratedAt.IsZero())
		})
	}
}

func TestDashboardService_RunPageIsolatesFailures(t *testing.T) {
	tables := sampleTables()
	tables[domain.SourceEnriched] = sales.NewTable("enriched.csv", sales.NewSchema(testutil.EnrichedColumns...), nil)
	s, _ := newTestService(t, tables)

	res, err := s.RunPage(context.Background(), PagePricingStrategy, s.DefaultParams())
	require.NoError(t, err)
	require.Len(t, res.Views, 2)

	assert.Nil(t, res.Views[0].Error, "price tiers tolerate empty input")
	require.NotNil(t, res.Views[1].Error)
	assert.Equal(t, string(sales.KindEmptyInput), res.Views[1].Error.Kind)
	assert.Equal(t, 1, res.FailedViews())
}

// badDateTable is the sample data with a transaction_date cell that failed to
// parse at row 3.
func badDateTable() *sales.Table {
	return sales.NewTable("mixed.csv", sales.NewSchema(testutil.EnrichedColumns...), testutil.SampleSales(),
		&sales.ParseError{Source: "mixed.csv", Row: 3, Column: sales.ColTransactionDate, Value: "not-a-date"})
}

func TestDashboardService_ParseErrorFailsOnlyViewsReadingColumn(t *testing.T) {
	bad := badDateTable()
	s, _ := newTestService(t, tableMap{domain.SourceSales: bad, domain.SourceEnriched: bad})
	ctx := context.Background()

	readsDate := map[string]bool{
		ViewDailyAverage:     true,
		ViewMonthlyRevenue:   true,
		ViewCategoryExtremes: true,
		ViewCategorySales:    true,
	}

	for _, info := range s.Views(s.DefaultParams()) {
		t.Run(info.ID, func(t *testing.T) {
			res, err := s.RunView(ctx, info.ID, s.DefaultParams())
			require.NoError(t, err)

			if !readsDate[info.ID] {
				assert.Nil(t, res.Error, "unexpected failure: %+v", res.Error)
				assert.NotNil(t, res.Table)
				return
			}
			require.NotNil(t, res.Error)
			assert.Equal(t, string(sales.KindParse), res.Error.Kind)
			assert.Contains(t, res.Error.Message, "mixed.csv row 3")
		})
	}

	page, err := s.RunPage(ctx, PageCustomerBehaviour, s.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 2, page.FailedViews())

	tiers, err := s.RunView(ctx, ViewPriceTiers, s.DefaultParams())
	require.NoError(t, err)
	assert.Nil(t, tiers.Error)
}

func TestDashboardService_PagesCoverEveryViewOnce(t *testing.T) {
	s, _ := newTestService(t, sampleTables())

	pages := s.Pages(s.DefaultParams())
	require.Len(t, pages, 4)
	assert.Equal(t, []string{PageHome, PageCustomerBehaviour, PagePricingStrategy, PageFutureDemand},
		[]string{pages[0].ID, pages[1].ID, pages[2].ID, pages[3].ID})

	seen := make(map[string]int)
	for _, p := range pages {
		for _, v := range p.Views {
			seen[v.ID]++
		}
	}
	assert.Len(t, seen, 12)
	for id, n := range seen {
		assert.Equal(t, 1, n, id)
	}
}

func TestDashboardService_RepeatedRunsAreEqual(t *testing.T) {
	tables := sampleTables()
	s, _ := newTestService(t, tables)
	ctx := context.Background()

	for _, info := range s.Views(s.DefaultParams()) {
		first, err := s.RunView(ctx, info.ID, s.DefaultParams())
		require.NoError(t, err)
		second, err := s.RunView(ctx, info.ID, s.DefaultParams())
		require.NoError(t, err)

		assert.Equal(t, first.Data, second.Data, info.ID)
		assert.Equal(t, first.Table, second.Table, info.ID)
	}
	assert.Equal(t, testutil.SampleSales(), rowsOf(tables[domain.SourceEnriched]))
}

func rowsOf(t *sales.Table) []sales.Transaction {
	out := make([]sales.Transaction, 0, t.Len())
	t.Each(func(_ int, tx sales.Transaction) { out = append(out, tx) })
	return out
}

func TestDashboardService_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := infrastructure.CreateMetrics(provider.Meter("test"))
	require.NoError(t, err)

	tables := sampleTables()
	tables[domain.SourceEnriched] = sales.NewTable("enriched.csv", sales.NewSchema(testutil.EnrichedColumns...), nil)
	logger, _ := testutil.NewTestLogger(t)
	s := NewDashboardService(tables, sales.DefaultParams(), nil, metrics, logger)

	ctx := context.Background()
	_, err = s.RunView(ctx, ViewOverview, s.DefaultParams())
	require.NoError(t, err)
	_, err = s.RunView(ctx, ViewLowestSeller, s.DefaultParams())
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	assert.EqualValues(t, 2, sumCounter(t, rm, "view_executions_total"))
	assert.EqualValues(t, 1, sumCounter(t, rm, "view_errors_total"))
}

func sumCounter(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	t.Fatalf("metric %s not collected", name)
	return 0
}
