package testutil

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"salestracker/internal/sales"
)

// WorkbookColumns is the header of the plain sales workbook.
var WorkbookColumns = []string{
	sales.ColTransactionID,
	sales.ColTransactionDate,
	sales.ColTransactionTime,
	sales.ColTransactionQty,
	sales.ColStoreLocation,
	sales.ColUnitPrice,
	sales.ColProductCategory,
	sales.ColProductDetail,
}

// EnrichedColumns is the header of the enriched CSV export, which adds hour.
var EnrichedColumns = append(append([]string(nil), WorkbookColumns...), sales.ColHour)

// Sale builds a transaction for fixtures. Hour is taken from clock.
func Sale(id, date, clock string, qty int64, location, category, product string, price float64) sales.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	c, err := time.Parse("15:04:05", clock)
	if err != nil {
		panic(err)
	}
	h, m, s := c.Clock()
	return sales.Transaction{
		ID:              id,
		Date:            d,
		Time:            time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second,
		Qty:             qty,
		UnitPrice:       price,
		StoreLocation:   location,
		ProductCategory: category,
		ProductDetail:   product,
		Hour:            h,
	}
}

// SampleSales is a small trading history across three stores and two months.
func SampleSales() []sales.Transaction {
	return []sales.Transaction{
		Sale("1", "2023-01-01", "07:06:11", 2, "Lower Manhattan", "Coffee", "Ouro Brasileiro shot", 3),
		Sale("2", "2023-01-01", "07:08:56", 1, "Lower Manhattan", "Tea", "Spicy Eye Opener Chai", 3.1),
		Sale("3", "2023-01-01", "13:20:00", 1, "Hell's Kitchen", "Coffee", "Latte", 4.25),
		Sale("4", "2023-01-02", "18:45:10", 3, "Astoria", "Bakery", "Scone", 3.5),
		Sale("5", "2023-02-03", "09:15:00", 1, "Astoria", "Coffee", "Latte", 4.25),
		Sale("6", "2023-02-03", "10:02:30", 2, "Hell's Kitchen", "Coffee", "Ouro Brasileiro shot", 3),
		Sale("7", "2023-02-04", "15:30:00", 1, "Lower Manhattan", "Bakery", "Scone", 3.5),
		Sale("8", "2023-02-05", "20:10:00", 1, "Lower Manhattan", "Coffee", "Ouro Brasileiro shot", 3),
	}
}

// SampleTable wraps SampleSales in a table carrying the enriched schema.
func SampleTable(name string) *sales.Table {
	return sales.NewTable(name, sales.NewSchema(EnrichedColumns...), SampleSales())
}

// Cells renders a transaction as source cells in column order.
func Cells(tx sales.Transaction, columns []string) []string {
	cells := make([]string, len(columns))
	for i, c := range columns {
		switch c {
		case sales.ColTransactionID:
			cells[i] = tx.ID
		case sales.ColTransactionDate:
			cells[i] = tx.Date.Format("2006-01-02")
		case sales.ColTransactionTime:
			cells[i] = time.Time{}.Add(tx.Time).Format("15:04:05")
		case sales.ColTransactionQty:
			cells[i] = strconv.FormatInt(tx.Qty, 10)
		case sales.ColUnitPrice:
			cells[i] = strconv.FormatFloat(tx.UnitPrice, 'f', -1, 64)
		case sales.ColStoreLocation:
			cells[i] = tx.StoreLocation
		case sales.ColProductCategory:
			cells[i] = tx.ProductCategory
		case sales.ColProductDetail:
			cells[i] = tx.ProductDetail
		case sales.ColHour:
			cells[i] = strconv.Itoa(tx.Hour)
		}
	}
	return cells
}

// WriteWorkbook writes rows as a single-sheet workbook under dir and returns
// its path.
func WriteWorkbook(t testing.TB, dir, name, sheet string, columns []string, rows []sales.Transaction) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "" && sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
	} else {
		sheet = "Sheet1"
	}

	for c, header := range columns {
		setCell(t, f, sheet, c+1, 1, header)
	}
	for r, tx := range rows {
		for c, value := range Cells(tx, columns) {
			setCell(t, f, sheet, c+1, r+2, value)
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func setCell(t testing.TB, f *excelize.File, sheet string, col, row int, value string) {
	t.Helper()
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		t.Fatalf("cell name: %v", err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		t.Fatalf("set %s: %v", cell, err)
	}
}

// WriteCSV writes rows as UTF-8 CSV under dir and returns its path.
func WriteCSV(t testing.TB, dir, name string, columns []string, rows []sales.Transaction) string {
	t.Helper()

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create csv: %v", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	records := make([][]string, 0, len(rows)+1)
	records = append(records, columns)
	for _, tx := range rows {
		records = append(records, Cells(tx, columns))
	}
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

// WriteSampleData writes the sample workbook and enriched CSV to dir.
func WriteSampleData(t testing.TB, dir string) (workbook, enriched string) {
	t.Helper()
	rows := SampleSales()
	workbook = WriteWorkbook(t, dir, "coffee_shop_sales.xlsx", "Transactions", WorkbookColumns, rows)
	enriched = WriteCSV(t, dir, "coffee_shop_sales_enriched.csv", EnrichedColumns, rows)
	return workbook, enriched
}

// MustParseDate is a fixture helper for expected values.
func MustParseDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(fmt.Sprintf("bad fixture date %q: %v", s, err))
	}
	return d
}
