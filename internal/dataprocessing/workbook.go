package dataprocessing

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"salestracker/internal/sales"
)

// LoadWorkbook reads a sales table from an Excel workbook. The named sheet is
// used when given, otherwise the first sheet. Row 1 is the header; blank rows
// are skipped.
func LoadWorkbook(path, sheet string) (*sales.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	// Raw values keep dates and times as Excel serials instead of the
	// cell's display format.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q in %s is empty", sheet, path)
	}

	source := filepath.Base(path)
	table := buildTable(source, rows[0], rows[1:])

	slog.Info("Loaded workbook",
		slog.String("path", path),
		slog.String("sheet", sheet),
		slog.Int("rows", table.Len()),
		slog.Int("poisoned_columns", len(table.ParseErrors())),
		slog.Any("columns", table.Schema().Columns()))
	return table, nil
}

// buildTable decodes data rows against a header. Row numbers in errors are
// 1-based with the header as row 1. Unparseable cells do not fail the load;
// they are recorded on the table and each is logged once per column.
func buildTable(source string, header []string, rows [][]string) *sales.Table {
	schema, cols := mapHeader(header)
	dec := &rowDecoder{source: source, cols: cols}

	txs := make([]sales.Transaction, 0, len(rows))
	var parseErrs []*sales.ParseError
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		tx, errs := dec.decode(i+2, row)
		parseErrs = append(parseErrs, errs...)
		txs = append(txs, tx)
	}

	table := sales.NewTable(source, schema, txs, parseErrs...)
	for _, pe := range table.ParseErrors() {
		slog.Warn("Column has unparseable cells; views using it will fail",
			slog.String("source", source),
			slog.String("column", pe.Column),
			slog.Int("first_row", pe.Row),
			slog.String("value", pe.Value))
	}
	return table
}
