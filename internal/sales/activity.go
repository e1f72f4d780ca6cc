package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionsByHourAndLocation counts transaction ids per location and hour.
// Lines with a blank transaction_id are not counted. Only hours that occur
// among counted lines become columns; missing cells are zero.
func TransactionsByHourAndLocation(t *Table) (Matrix[string, int, int], error) {
	const op = "TransactionsByHourAndLocation"
	if err := t.require(op, ColStoreLocation, ColTransactionID); err != nil {
		return Matrix[string, int, int]{}, err
	}
	if err := t.requireHour(op); err != nil {
		return Matrix[string, int, int]{}, err
	}

	hourOf := hourResolver(t)
	counts := make(map[pair[string, int]]int)
	t.Each(func(_ int, tx Transaction) {
		if tx.ID == "" {
			return
		}
		counts[pair[string, int]{tx.StoreLocation, hourOf(tx)}]++
	})
	return buildMatrix(counts), nil
}

// DailyLocationRevenue is the average line revenue at a location on one day.
type DailyLocationRevenue struct {
	Day           time.Time       `json:"transaction_day"`
	StoreLocation string          `json:"store_location"`
	Lines         int             `json:"lines"`
	MeanRevenue   decimal.Decimal `json:"mean_revenue"`
}

// AvgTransactionPerDayByLocation averages line revenue per (day, location),
// ordered by day and then location.
func AvgTransactionPerDayByLocation(t *Table) ([]DailyLocationRevenue, error) {
	const op = "AvgTransactionPerDayByLocation"
	if err := t.require(op, ColTransactionDate, ColStoreLocation, ColTransactionQty, ColUnitPrice); err != nil {
		return nil, err
	}

	type acc struct {
		n   int
		sum decimal.Decimal
	}
	groups := make(map[pair[time.Time, string]]*acc)
	t.Each(func(_ int, tx Transaction) {
		k := pair[time.Time, string]{TruncateDay(tx.Date), tx.StoreLocation}
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.n++
		a.sum = a.sum.Add(Revenue(tx))
	})

	out := make([]DailyLocationRevenue, 0, len(groups))
	for _, k := range sortedPairs(groups) {
		a := groups[k]
		out = append(out, DailyLocationRevenue{
			Day:           k.A,
			StoreLocation: k.B,
			Lines:         a.n,
			MeanRevenue:   a.sum.Div(decimal.NewFromInt(int64(a.n))),
		})
	}
	return out, nil
}

// TimeOfDayRevenue is the revenue earned during one part of the day.
type TimeOfDayRevenue struct {
	TimeOfDay TimeOfDay       `json:"time_of_day"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// LocationTimeOfDayRevenue splits one location's revenue by time of day.
type LocationTimeOfDayRevenue struct {
	StoreLocation string             `json:"store_location"`
	Buckets       []TimeOfDayRevenue `json:"buckets"`
}

// RevenueByTimeOfDay splits revenue at p.FocusLocation into Morning,
// Afternoon and Evening. All three buckets are always reported.
func RevenueByTimeOfDay(t *Table, p Params) (LocationTimeOfDayRevenue, error) {
	const op = "RevenueByTimeOfDay"
	if err := t.require(op, ColTransactionQty, ColUnitPrice, ColStoreLocation); err != nil {
		return LocationTimeOfDayRevenue{}, err
	}
	if err := t.requireHour(op); err != nil {
		return LocationTimeOfDayRevenue{}, err
	}

	hourOf := hourResolver(t)
	sums := make(map[TimeOfDay]decimal.Decimal, len(TimesOfDay))
	t.Each(func(_ int, tx Transaction) {
		if tx.StoreLocation != p.FocusLocation {
			return
		}
		b := BucketHour(hourOf(tx))
		sums[b] = sums[b].Add(Revenue(tx))
	})

	out := LocationTimeOfDayRevenue{StoreLocation: p.FocusLocation}
	for _, b := range TimesOfDay {
		out.Buckets = append(out.Buckets, TimeOfDayRevenue{TimeOfDay: b, Revenue: sums[b]})
	}
	return out, nil
}
