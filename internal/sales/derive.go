package sales

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// TimeOfDay buckets an hour of the day.
type TimeOfDay string

const (
	Morning   TimeOfDay = "Morning"   // 0-11
	Afternoon TimeOfDay = "Afternoon" // 12-16
	Evening   TimeOfDay = "Evening"   // 17-23
)

// TimesOfDay lists the buckets in display order.
var TimesOfDay = []TimeOfDay{Morning, Afternoon, Evening}

// BucketHour places an hour in its time-of-day bucket.
func BucketHour(hour int) TimeOfDay {
	switch {
	case hour < 12:
		return Morning
	case hour < 17:
		return Afternoon
	default:
		return Evening
	}
}

// Revenue returns qty × unit price.
func Revenue(tx Transaction) decimal.Decimal {
	return decimal.NewFromFloat(tx.UnitPrice).Mul(decimal.NewFromInt(tx.Qty))
}

// TruncateDay drops the time-of-day component, keeping the date's location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// hourResolver returns a function yielding each row's hour: the explicit hour
// column when the table has one, otherwise the hour of transaction_time.
func hourResolver(t *Table) func(tx Transaction) int {
	if t.Has(ColHour) {
		return func(tx Transaction) int { return tx.Hour }
	}
	return func(tx Transaction) int { return int(tx.Time / time.Hour) }
}

// GroupKey enumerates the types rows may be grouped by.
type GroupKey interface {
	string | int | time.Time
}

// compareKeys orders group keys naturally.
func compareKeys[K GroupKey](a, b K) int {
	switch av := any(a).(type) {
	case string:
		return cmp.Compare(av, any(b).(string))
	case int:
		return cmp.Compare(av, any(b).(int))
	case time.Time:
		return av.Compare(any(b).(time.Time))
	default:
		panic(fmt.Sprintf("unsupported group key %T", a))
	}
}

// sortedKeys returns map keys in natural order.
func sortedKeys[K GroupKey, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys[K])
	return keys
}

// pair is a two-level grouping key.
type pair[A, B GroupKey] struct {
	A A
	B B
}

func comparePairs[A, B GroupKey](x, y pair[A, B]) int {
	if c := compareKeys(x.A, y.A); c != 0 {
		return c
	}
	return compareKeys(x.B, y.B)
}

func sortedPairs[A, B GroupKey, V any](m map[pair[A, B]]V) []pair[A, B] {
	keys := make([]pair[A, B], 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, comparePairs[A, B])
	return keys
}

// firstSeen keeps distinct values in order of first appearance.
type firstSeen[K GroupKey] struct {
	seen  map[K]struct{}
	order []K
}

func newFirstSeen[K GroupKey]() *firstSeen[K] {
	return &firstSeen[K]{seen: make(map[K]struct{})}
}

func (f *firstSeen[K]) add(k K) {
	if _, ok := f.seen[k]; ok {
		return
	}
	f.seen[k] = struct{}{}
	f.order = append(f.order, k)
}

// Matrix is a zero-filled two-dimensional summary (an unstacked group-by).
type Matrix[R, C GroupKey, V any] struct {
	Rows    []R   `json:"rows"`
	Columns []C   `json:"columns"`
	Cells   [][]V `json:"cells"` // Cells[row][column]
}

// buildMatrix lays out pair-keyed values in natural key order, filling gaps
// with the zero value.
func buildMatrix[R, C GroupKey, V any](values map[pair[R, C]]V) Matrix[R, C, V] {
	rowSet := make(map[R]struct{})
	colSet := make(map[C]struct{})
	for k := range values {
		rowSet[k.A] = struct{}{}
		colSet[k.B] = struct{}{}
	}
	m := Matrix[R, C, V]{
		Rows:    sortedKeys(rowSet),
		Columns: sortedKeys(colSet),
	}
	m.Cells = make([][]V, len(m.Rows))
	for i, r := range m.Rows {
		m.Cells[i] = make([]V, len(m.Columns))
		for j, c := range m.Columns {
			m.Cells[i][j] = values[pair[R, C]{r, c}]
		}
	}
	return m
}
