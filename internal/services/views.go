package services

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"salestracker/internal/sales"
	"salestracker/pkg/contracts/domain"
)

// View ids.
const (
	ViewOverview            = "overview"
	ViewTopProducts         = "top-products"
	ViewHourlyTransactions  = "hourly-transactions"
	ViewDailyAverage        = "daily-average"
	ViewMonthlyRevenue      = "monthly-revenue"
	ViewNamedProductRevenue = "named-product-revenue"
	ViewTimeOfDayRevenue    = "time-of-day-revenue"
	ViewPriceTiers          = "price-tiers"
	ViewLowestSeller        = "lowest-seller"
	ViewCategoryProducts    = "category-products"
	ViewCategoryExtremes    = "category-extremes"
	ViewCategorySales       = "category-sales"
)

// Page ids.
const (
	PageHome              = "home"
	PageCustomerBehaviour = "customer-behaviour"
	PagePricingStrategy   = "pricing-strategy"
	PageFutureDemand      = "future-demand"
)

// computeFunc runs one pipeline operation and flattens its result.
type computeFunc func(t *sales.Table, p sales.Params) (any, *domain.SummaryTable, error)

// View binds a pipeline operation to its source table and presentation.
// Title and Description may hold {location}, {product} and {months}
// placeholders that are filled from the run's Params.
type View struct {
	ID          string
	Title       string
	Description string
	Source      domain.Source
	Chart       domain.ChartSpec

	// CapsY sets Chart.YMax from Params.HourlyQtyCap.
	CapsY bool

	compute computeFunc
}

// Page is an ordered group of views shown together.
type Page struct {
	ID    string
	Title string
	Views []string
}

func expand(s string, p sales.Params) string {
	return strings.NewReplacer(
		"{location}", p.FocusLocation,
		"{product}", p.FocusProduct,
		"{months}", strconv.Itoa(p.TrailingMonths),
	).Replace(s)
}

func (v View) info(p sales.Params) domain.ViewInfo {
	return domain.ViewInfo{
		ID:          v.ID,
		Title:       expand(v.Title, p),
		Description: expand(v.Description, p),
		Source:      v.Source,
		Chart:       v.chart(p),
	}
}

func (v View) chart(p sales.Params) *domain.ChartSpec {
	if v.Chart.Kind == "" || v.Chart.Kind == domain.ChartNone {
		return nil
	}
	c := v.Chart
	c.Title = expand(c.Title, p)
	if v.CapsY {
		ymax := float64(p.HourlyQtyCap)
		c.YMax = &ymax
	}
	return &c
}

// defaultViews is the dashboard's view registry in catalogue order.
func defaultViews() []View {
	return []View{
		{
			ID:          ViewOverview,
			Title:       "Performance Benchmarks",
			Description: "Total sales revenue, total orders and each location's share of revenue.",
			Source:      domain.SourceSales,
			Chart:       domain.ChartSpec{Kind: domain.ChartPie, Title: "Top Sales Locations", X: "store_location", Y: "share"},
			compute:     computeOverview,
		},
		{
			ID:          ViewTopProducts,
			Title:       "Top Product by Store Location",
			Description: "The best-selling product and price combination at each location.",
			Source:      domain.SourceSales,
			Chart:       domain.ChartSpec{Kind: domain.ChartBar, X: "store_location", Y: "transaction_qty", Series: "product_detail"},
			compute:     computeTopProducts,
		},
		{
			ID:          ViewHourlyTransactions,
			Title:       "Transactions by Hour of the Day for Each Location",
			Description: "Number of sale lines per hour at each location.",
			Source:      domain.SourceEnriched,
			Chart:       domain.ChartSpec{Kind: domain.ChartGroupedBar, X: "hour", Y: "transactions", Series: "store_location"},
			compute:     computeHourlyTransactions,
		},
		{
			ID:          ViewDailyAverage,
			Title:       "Average Transaction Amount per Day by Store Location",
			Description: "This chart shows the daily average transaction amount for each store location.",
			Source:      domain.SourceSales,
			Chart:       domain.ChartSpec{Kind: domain.ChartLine, X: "transaction_day", Y: "mean_revenue", Series: "store_location"},
			compute:     computeDailyAverage,
		},
		{
			ID:    ViewMonthlyRevenue,
			Title: "Monthly Revenue Statistics",
			Description: "Sum, mean and standard deviation of line revenue per calendar month. " +
				"Months are grouped by number only, so the same month of different years is combined.",
			Source:  domain.SourceSales,
			Chart:   domain.ChartSpec{Kind: domain.ChartLine, Title: "Monthly Revenue", X: "month", Y: "sum"},
			compute: computeMonthlyRevenue,
		},
		{
			ID:          ViewNamedProductRevenue,
			Title:       "Total Revenue from {product} by Location",
			Description: "Quantity, first listed price and revenue of {product} at each location, highest revenue first.",
			Source:      domain.SourceEnriched,
			Chart:       domain.ChartSpec{Kind: domain.ChartBar, X: "store_location", Y: "total_revenue"},
			compute:     computeNamedProductRevenue,
		},
		{
			ID:          ViewTimeOfDayRevenue,
			Title:       "{location} Revenue by Time of Day",
			Description: "Morning is before noon, afternoon runs to 5 PM, evening is the rest of the day.",
			Source:      domain.SourceSales,
			Chart:       domain.ChartSpec{Kind: domain.ChartBar, X: "time_of_day", Y: "revenue"},
			compute:     computeTimeOfDayRevenue,
		},
		{
			ID:          ViewPriceTiers,
			Title:       "Sales Below and Above the Average Unit Price",
			Description: "Quantity sold at each location below the overall average unit price and at or above it.",
			Source:      domain.SourceEnriched,
			Chart:       domain.ChartSpec{Kind: domain.ChartGroupedBar, X: "store_location", Y: "transaction_qty", Series: "tier"},
			compute:     computePriceTiers,
		},
		{
			ID:          ViewLowestSeller,
			Title:       "Product with the Lowest Sales",
			Description: "When and where the product with the smallest total quantity sells.",
			Source:      domain.SourceEnriched,
			Chart:       domain.ChartSpec{Kind: domain.ChartGroupedBar, Title: "Hourly Sales Distribution by Location", X: "hour", Y: "mean_qty", Series: "store_location"},
			CapsY:       true,
			compute:     computeLowestSeller,
		},
		{
			ID:          ViewCategoryProducts,
			Title:       "Product Sales within Each Category",
			Description: "Products of every category ranked by total quantity.",
			Source:      domain.SourceEnriched,
			Chart:       domain.ChartSpec{Kind: domain.ChartBar, X: "product_detail", Y: "transaction_qty", Series: "product_category"},
			compute:     computeCategoryProducts,
		},
		{
			ID:          ViewCategoryExtremes,
			Title:       "Highest and Lowest Average Sales by Store Location",
			Description: "Categories with the highest and lowest mean quantity per sale line over the last {months} months.",
			Source:      domain.SourceEnriched,
			Chart:       domain.ChartSpec{Kind: domain.ChartNone},
			compute:     computeCategoryExtremes,
		},
		{
			ID:          ViewCategorySales,
			Title:       "Category Sales by Store Location",
			Description: "Quantity sold per category at each location over the last {months} months.",
			Source:      domain.SourceEnriched,
			Chart:       domain.ChartSpec{Kind: domain.ChartStackedBar, X: "store_location", Y: "transaction_qty", Series: "product_category"},
			compute:     computeCategorySales,
		},
	}
}

// defaultPages is the sidebar navigation in display order.
func defaultPages() []Page {
	return []Page{
		{ID: PageHome, Title: "Home", Views: []string{ViewOverview, ViewTopProducts}},
		{ID: PageCustomerBehaviour, Title: "Customer Behaviour", Views: []string{
			ViewHourlyTransactions, ViewDailyAverage, ViewMonthlyRevenue, ViewNamedProductRevenue, ViewTimeOfDayRevenue,
		}},
		{ID: PagePricingStrategy, Title: "Pricing Strategy", Views: []string{ViewPriceTiers, ViewLowestSeller}},
		{ID: PageFutureDemand, Title: "Future Demand Analysis", Views: []string{
			ViewCategoryProducts, ViewCategoryExtremes, ViewCategorySales,
		}},
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func price(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func mean(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func qty(n int64) string {
	return strconv.FormatInt(n, 10)
}

func computeOverview(t *sales.Table, _ sales.Params) (any, *domain.SummaryTable, error) {
	stats, err := sales.Overview(t)
	if err != nil {
		return nil, nil, err
	}
	table := &domain.SummaryTable{Columns: []string{"store_location", "revenue", "share"}}
	for _, l := range stats.Locations {
		table.Rows = append(table.Rows, []string{l.StoreLocation, money(l.Revenue), money(l.Share)})
	}
	return stats, table, nil
}

func computeTopProducts(t *sales.Table, _ sales.Params) (any, *domain.SummaryTable, error) {
	top, err := sales.TopProductByLocation(t)
	if err != nil {
		return nil, nil, err
	}
	table := &domain.SummaryTable{Columns: []string{"store_location", "product_detail", "unit_price", "transaction_qty"}}
	for _, p := range top {
		table.Rows = append(table.Rows, []string{p.StoreLocation, p.ProductDetail, price(p.UnitPrice), qty(p.Qty)})
	}
	return top, table, nil
}

func computeHourlyTransactions(t *sales.Table, _ sales.Params) (any, *domain.SummaryTable, error) {
	m, err := sales.TransactionsByHourAndLocation(t)
	if err != nil {
		return nil, nil, err
	}
	table := &domain.SummaryTable{Columns: []string{"store_location", "hour", "transactions"}}
	for i, loc := range m.Rows {
		for j, hour := range m.Columns {
			table.Rows = append(table.Rows, []string{loc, strconv.Itoa(hour), strconv.Itoa(m.Cells[i][j])})
		}
	}
	return m, table, nil
}

func computeDailyAverage(t *sales.Table, _ sales.Params) (any, *domain.SummaryTable, error) {
	days, err := sales.AvgTransactionPerDayByLocation(t)
	if err != nil {
		return nil, nil, err
	}
	table := &domain.SummaryTable{Columns: []string{"transaction_day", "store_location", "lines", "mean_revenue"}}
	for _, d := range days {
		table.Rows = append(table.Rows, []string{
			d.Day.Format("2006-01-02"), d.StoreLocation, strconv.Itoa(d.Lines), money(d.MeanRevenue),
		})
	}
	return days, table, nil
}

func computeMonthlyRevenue(t *sales.Table, _ sales.Params) (any, *domain.SummaryTable, error) {
	months, err := sales.MonthlyRevenueStats(t)
	if err != nil {
		return nil, nil, err
	}
	table := &domain.SummaryTable{Columns: []string{"month", "lines", "sum", "mean", "std"}}
	for _, m := range months {
		std := ""
		if m.StdDev.Valid {
			std = money(m.StdDev.Decimal)
		}
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(m.Month), strconv.Itoa(m.Lines), money(m.Sum), money(m.Mean), std,
		})
	}
	return months, table, nil
}

func computeNamedProductRevenue(t *sales.Table, p sales.Params) (any, *domain.SummaryTable, error) {
	rev, err := sales.RevenueForNamedProduct(t, p)
	if err != nil {
		return nil, nil, err
	}
	table := &domain.SummaryTable{Columns: []string{"store_location", "transaction_qty", "unit_price", "total_revenue"}}
	for _, l := range rev.Locations {
		table.Rows = append(table.Rows, []string{l.StoreLocation, qty(l.Qty), price(l.UnitPrice), money(l.Revenue)})
	}
	return rev, table, nil
}

func computeTimeOfDayRevenue(t *sales.Table, p sales.Params) (any, *domain.SummaryTable, error) {
	rev, err := sales.RevenueByTimeOfDay(t, p)
	if err != nil {
		return nil, nil, err
	}
	table := &domain.SummaryTable{Columns: []string{"time_of_day", "revenue"}}
	for _, b := range rev.Buckets {
		table.Rows = append(table.Rows, []string{string(b.TimeOfDay), money(b.Revenue)})
	}
	return rev, table, nil
}

func computePriceTiers(t *sales.Table, _ sales.Params) (any, *domain.SummaryTable, error) {
	tiers, err := sales.PriceTierSalesByLocation(t)
	if err != nil {
		return nil, nil, err
	}
	table := &domain.SummaryTable{Columns: []string{"store_location", "tier", "transaction_qty"}}
	for _, l := range tiers.Locations {
		table.Rows = append(table.Rows,
			[]string{l.StoreLocation, "lower", qty(l.LowerQty)},
			[]string{l.StoreLocation, "higher", qty(l.HigherQty)},
		)
	}
	return tiers, table, nil
}

func computeLowestSeller(t *sales.Table, p sales.Params) (any, *domain.SummaryTable, error) {
	profile, err := sales.LowestSellingProductProfile(t, p)
	if err != nil {
		return nil, nil, err
	}
	table := &domain.SummaryTable{Columns: []string{"hour", "store_location", "lines", "total_qty", "mean_qty"}}
	for _, d := range profile.Distribution {
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(d.Hour), d.StoreLocation, strconv.Itoa(d.Lines), qty(d.TotalQty), mean(d.MeanQty),
		})
	}
	return profile, table, nil
}

func computeCategoryProducts(t *sales.Table, _ sales.Params) (any, *domain.SummaryTable, error) {
	cats, err := sales.ProductSalesWithinCategory(t)
	if err != nil {
		return nil, nil, err
	}
	table := &domain.SummaryTable{Columns: []string{"product_category", "product_detail", "transaction_qty"}}
	for _, c := range cats {
		for _, prod := range c.Products {
			table.Rows = append(table.Rows, []string{c.ProductCategory, prod.ProductDetail, qty(prod.Qty)})
		}
	}
	return cats, table, nil
}

func computeCategoryExtremes(t *sales.Table, p sales.Params) (any, *domain.SummaryTable, error) {
	res, err := sales.MinMaxCategoryByLocation(t, p)
	if err != nil {
		return nil, nil, err
	}
	table := &domain.SummaryTable{Columns: []string{
		"store_location", "highest_category", "highest_mean_qty", "lowest_category", "lowest_mean_qty",
	}}
	for _, l := range res.Locations {
		table.Rows = append(table.Rows, []string{
			l.StoreLocation, l.Highest.ProductCategory, mean(l.Highest.MeanQty), l.Lowest.ProductCategory, mean(l.Lowest.MeanQty),
		})
	}
	return res, table, nil
}

func computeCategorySales(t *sales.Table, p sales.Params) (any, *domain.SummaryTable, error) {
	res, err := sales.CategorySalesByLocation(t, p)
	if err != nil {
		return nil, nil, err
	}
	m := res.Matrix
	table := &domain.SummaryTable{Columns: []string{"store_location", "product_category", "transaction_qty"}}
	for i, loc := range m.Rows {
		for j, cat := range m.Columns {
			table.Rows = append(table.Rows, []string{loc, cat, qty(m.Cells[i][j])})
		}
	}
	return res, table, nil
}
