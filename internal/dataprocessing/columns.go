package dataprocessing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"salestracker/internal/sales"
)

var (
	errNegative    = errors.New("value must not be negative")
	errFractional  = errors.New("quantity must be a whole number")
	errHourRange   = errors.New("hour must be between 0 and 23")
	errUnknownDate = errors.New("unrecognised date format")
	errUnknownTime = errors.New("unrecognised time format")
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
	"01/02/2006",
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
}

// columnMap maps known column names to their position in a source row.
type columnMap map[string]int

// mapHeader matches header cells against the known columns. Names are
// compared exactly after trimming whitespace and a byte-order mark; unknown
// columns are ignored.
func mapHeader(header []string) (sales.Schema, columnMap) {
	known := sales.NewSchema(sales.KnownColumns...)
	schema := sales.NewSchema()
	cols := make(columnMap)
	for i, cell := range header {
		name := strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
		if !known.Has(name) {
			continue
		}
		if _, dup := cols[name]; dup {
			continue
		}
		cols[name] = i
		schema[name] = struct{}{}
	}
	return schema, cols
}

// rowDecoder converts raw cells into transactions for one source.
type rowDecoder struct {
	source string
	cols   columnMap
}

func (d *rowDecoder) cell(row []string, column string) (string, bool) {
	i, ok := d.cols[column]
	if !ok {
		return "", false
	}
	if i >= len(row) {
		return "", true
	}
	return strings.TrimSpace(row[i]), true
}

// decode converts one data row. rowNum is the 1-based row in the source,
// counting the header as row 1. A cell that fails to convert leaves its field
// at the zero value and is reported; the other cells are still decoded.
func (d *rowDecoder) decode(rowNum int, row []string) (sales.Transaction, []*sales.ParseError) {
	var (
		tx   sales.Transaction
		errs []*sales.ParseError
	)
	check := func(column, value string, err error) {
		if err != nil {
			errs = append(errs, &sales.ParseError{Source: d.source, Row: rowNum, Column: column, Value: value, Err: err})
		}
	}

	var err error
	if v, ok := d.cell(row, sales.ColTransactionID); ok {
		tx.ID = v
	}
	if v, ok := d.cell(row, sales.ColTransactionDate); ok {
		tx.Date, err = parseDate(v)
		check(sales.ColTransactionDate, v, err)
	}
	if v, ok := d.cell(row, sales.ColTransactionTime); ok {
		tx.Time, err = parseTimeOfDay(v)
		check(sales.ColTransactionTime, v, err)
	}
	if v, ok := d.cell(row, sales.ColTransactionQty); ok {
		tx.Qty, err = parseQty(v)
		check(sales.ColTransactionQty, v, err)
	}
	if v, ok := d.cell(row, sales.ColUnitPrice); ok {
		tx.UnitPrice, err = parsePrice(v)
		check(sales.ColUnitPrice, v, err)
	}
	if v, ok := d.cell(row, sales.ColStoreLocation); ok {
		tx.StoreLocation = v
	}
	if v, ok := d.cell(row, sales.ColProductCategory); ok {
		tx.ProductCategory = v
	}
	if v, ok := d.cell(row, sales.ColProductDetail); ok {
		tx.ProductDetail = v
	}
	if v, ok := d.cell(row, sales.ColHour); ok {
		tx.Hour, err = parseHour(v)
		check(sales.ColHour, v, err)
	}
	return tx, errs
}

// isBlank reports whether every cell in the row is empty.
func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseDate accepts ISO and US layouts as well as Excel serial day numbers.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return sales.TruncateDay(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return sales.TruncateDay(t), nil
	}
	return time.Time{}, errUnknownDate
}

// parseTimeOfDay returns the offset since midnight. Excel stores times as a
// fraction of a day.
func parseTimeOfDay(s string) (time.Duration, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			h, m, sec := t.Clock()
			return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
		}
	}
	if frac, err := strconv.ParseFloat(s, 64); err == nil && frac >= 0 && frac < 1 {
		return time.Duration(math.Round(frac*86400)) * time.Second, nil
	}
	return 0, errUnknownTime
}

func parseQty(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, err
		}
		if f != math.Trunc(f) {
			return 0, errFractional
		}
		n = int64(f)
	}
	if n < 0 {
		return 0, errNegative
	}
	return n, nil
}

func parsePrice(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, errNegative
	}
	return f, nil
}

func parseHour(s string) (int, error) {
	n, err := parseQty(s)
	if err != nil {
		return 0, err
	}
	if n > 23 {
		return 0, fmt.Errorf("%w: got %d", errHourRange, n)
	}
	return int(n), nil
}
