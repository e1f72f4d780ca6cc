package sales

import (
	"fmt"
	"slices"
	"time"
)

// Column names as they appear in the source files.
const (
	ColTransactionID   = "transaction_id"
	ColTransactionDate = "transaction_date"
	ColTransactionTime = "transaction_time"
	ColTransactionQty  = "transaction_qty"
	ColUnitPrice       = "unit_price"
	ColStoreLocation   = "store_location"
	ColProductCategory = "product_category"
	ColProductDetail   = "product_detail"
	ColHour            = "hour"
)

// KnownColumns lists every column the pipeline understands.
var KnownColumns = []string{
	ColTransactionID,
	ColTransactionDate,
	ColTransactionTime,
	ColTransactionQty,
	ColUnitPrice,
	ColStoreLocation,
	ColProductCategory,
	ColProductDetail,
	ColHour,
}

// Transaction is one sale line. Fields whose column is absent from the
// owning table's schema hold zero values and must not be read.
type Transaction struct {
	ID              string        `json:"transaction_id"`
	Date            time.Time     `json:"transaction_date"`
	Time            time.Duration `json:"transaction_time"` // offset since midnight
	Qty             int64         `json:"transaction_qty"`
	UnitPrice       float64       `json:"unit_price"`
	StoreLocation   string        `json:"store_location"`
	ProductCategory string        `json:"product_category"`
	ProductDetail   string        `json:"product_detail"`
	Hour            int           `json:"hour"`
}

// Schema is the set of columns present in a source table.
type Schema map[string]struct{}

// NewSchema builds a schema from column names.
func NewSchema(columns ...string) Schema {
	s := make(Schema, len(columns))
	for _, c := range columns {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether the column is present.
func (s Schema) Has(column string) bool {
	_, ok := s[column]
	return ok
}

// Columns returns the present columns in KnownColumns order.
func (s Schema) Columns() []string {
	cols := make([]string, 0, len(s))
	for _, c := range KnownColumns {
		if s.Has(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

// Table is an immutable, in-memory transaction table. Pipeline operations
// only read from it; anything derived lives in operation-local state.
//
// A column with an unparseable cell stays in the schema but is poisoned:
// operations requiring it fail with the recorded *ParseError, while
// operations on other columns are unaffected.
type Table struct {
	Name      string
	schema    Schema
	rows      []Transaction
	parseErrs map[string]*ParseError
}

// NewTable copies rows and schema into a new table. parseErrs records cells
// that failed to convert; only the first error per column is kept.
func NewTable(name string, schema Schema, rows []Transaction, parseErrs ...*ParseError) *Table {
	s := make(Schema, len(schema))
	for c := range schema {
		s[c] = struct{}{}
	}
	t := &Table{
		Name:   name,
		schema: s,
		rows:   slices.Clone(rows),
	}
	for _, pe := range parseErrs {
		if pe == nil {
			continue
		}
		if t.parseErrs == nil {
			t.parseErrs = make(map[string]*ParseError)
		}
		if _, seen := t.parseErrs[pe.Column]; !seen {
			t.parseErrs[pe.Column] = pe
		}
	}
	return t
}

// ParseErrors returns the first parse failure of each poisoned column, in
// KnownColumns order.
func (t *Table) ParseErrors() []*ParseError {
	var out []*ParseError
	for _, c := range KnownColumns {
		if pe, ok := t.parseErrs[c]; ok {
			out = append(out, pe)
		}
	}
	return out
}

// Schema returns a copy of the table's schema.
func (t *Table) Schema() Schema {
	s := make(Schema, len(t.schema))
	for c := range t.schema {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether the table carries the column.
func (t *Table) Has(column string) bool {
	return t.schema.Has(column)
}

// Len returns the row count.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns a copy of the i-th row.
func (t *Table) Row(i int) Transaction {
	return t.rows[i]
}

// Each calls fn for every row in source order.
func (t *Table) Each(fn func(i int, tx Transaction)) {
	for i, tx := range t.rows {
		fn(i, tx)
	}
}

// require checks the listed columns and reports all that are missing.
func (t *Table) require(op string, columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.schema.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Operation: op, Table: t.Name, Columns: missing}
	}
	for _, c := range columns {
		if pe, ok := t.parseErrs[c]; ok {
			return fmt.Errorf("%s: %w", op, pe)
		}
	}
	return nil
}

// requireHour checks that an hour can be resolved, either from the explicit
// hour column or from transaction_time.
func (t *Table) requireHour(op string) error {
	switch {
	case t.schema.Has(ColHour):
		return t.require(op, ColHour)
	case t.schema.Has(ColTransactionTime):
		return t.require(op, ColTransactionTime)
	}
	return &MissingColumnError{Operation: op, Table: t.Name, Columns: []string{ColTransactionTime}}
}

// Params tunes the views that focus on a single location or product.
type Params struct {
	FocusLocation  string `json:"focus_location" yaml:"focus_location" validate:"required"`
	FocusProduct   string `json:"focus_product" yaml:"focus_product" validate:"required"`
	TrailingMonths int    `json:"trailing_months" yaml:"trailing_months" validate:"min=1,max=36"`
	HourlyQtyCap   int    `json:"hourly_qty_cap" yaml:"hourly_qty_cap" validate:"min=1,max=1000"`
}

// DefaultParams returns the dashboard's stock focus.
func DefaultParams() Params {
	return Params{
		FocusLocation:  "Lower Manhattan",
		FocusProduct:   "Ouro Brasileiro shot",
		TrailingMonths: 6,
		HourlyQtyCap:   2,
	}
}
