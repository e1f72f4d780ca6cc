package sales

import (
	"math"

	"github.com/shopspring/decimal"
)

// MonthStats summarises line revenue within one calendar month.
type MonthStats struct {
	Month  int                 `json:"month"`
	Lines  int                 `json:"lines"`
	Sum    decimal.Decimal     `json:"sum"`
	Mean   decimal.Decimal     `json:"mean"`
	StdDev decimal.NullDecimal `json:"std"` // null with fewer than two lines
}

// MonthlyRevenueStats reports sum, mean and sample standard deviation of line
// revenue per calendar month (1-12), rounded to two decimals. Months of
// different years fall into the same group.
func MonthlyRevenueStats(t *Table) ([]MonthStats, error) {
	const op = "MonthlyRevenueStats"
	if err := t.require(op, ColTransactionDate, ColTransactionQty, ColUnitPrice); err != nil {
		return nil, err
	}

	revenues := make(map[int][]decimal.Decimal)
	t.Each(func(_ int, tx Transaction) {
		m := int(tx.Date.Month())
		revenues[m] = append(revenues[m], Revenue(tx))
	})

	out := make([]MonthStats, 0, len(revenues))
	for _, m := range sortedKeys(revenues) {
		vals := revenues[m]
		sum := decimal.Sum(decimal.Zero, vals...)
		mean := sum.Div(decimal.NewFromInt(int64(len(vals))))
		stats := MonthStats{
			Month: m,
			Lines: len(vals),
			Sum:   sum.Round(2),
			Mean:  mean.Round(2),
		}
		if len(vals) > 1 {
			stats.StdDev = decimal.NewNullDecimal(decimal.NewFromFloat(sampleStdDev(vals)).Round(2))
		}
		out = append(out, stats)
	}
	return out, nil
}

func sampleStdDev(vals []decimal.Decimal) float64 {
	n := float64(len(vals))
	var mean float64
	for _, v := range vals {
		mean += v.InexactFloat64()
	}
	mean /= n
	var ss float64
	for _, v := range vals {
		d := v.InexactFloat64() - mean
		ss += d * d
	}
	return math.Sqrt(ss / (n - 1))
}

// LocationShare is a location's revenue and its share of the total, in
// percent.
type LocationShare struct {
	StoreLocation string          `json:"store_location"`
	Revenue       decimal.Decimal `json:"revenue"`
	Share         decimal.Decimal `json:"share"`
}

// OverviewStats are the headline figures of a table.
type OverviewStats struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalOrders  int             `json:"total_orders"`
	Locations    []LocationShare `json:"locations"`
	TopLocation  string          `json:"top_location,omitempty"`
}

// Overview totals revenue and sale lines and ranks locations by revenue
// share. An empty table yields zero totals and no top location.
func Overview(t *Table) (OverviewStats, error) {
	const op = "Overview"
	if err := t.require(op, ColStoreLocation, ColTransactionQty, ColUnitPrice); err != nil {
		return OverviewStats{}, err
	}

	byLocation := make(map[string]decimal.Decimal)
	out := OverviewStats{Locations: []LocationShare{}}
	t.Each(func(_ int, tx Transaction) {
		r := Revenue(tx)
		byLocation[tx.StoreLocation] = byLocation[tx.StoreLocation].Add(r)
		out.TotalRevenue = out.TotalRevenue.Add(r)
		out.TotalOrders++
	})

	hundred := decimal.NewFromInt(100)
	var (
		top   decimal.Decimal
		found bool
	)
	for _, loc := range sortedKeys(byLocation) {
		rev := byLocation[loc]
		share := decimal.Zero
		if !out.TotalRevenue.IsZero() {
			share = rev.Mul(hundred).Div(out.TotalRevenue).Round(2)
		}
		out.Locations = append(out.Locations, LocationShare{StoreLocation: loc, Revenue: rev, Share: share})
		if !found || rev.GreaterThan(top) {
			out.TopLocation, top, found = loc, rev, true
		}
	}
	return out, nil
}
