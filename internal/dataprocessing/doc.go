// Package dataprocessing loads sales tables from disk.
//
// Two sources feed the dashboard: the sales workbook (.xlsx, read with
// excelize) and the enriched CSV export, which carries an extra hour column.
// Both are decoded against the same header rules:
//
//   - column names match exactly after trimming whitespace and a UTF-8 BOM
//   - unknown columns are ignored; missing ones are left out of the schema
//   - blank rows are skipped
//   - a cell that cannot be converted is recorded on the table as a
//     *sales.ParseError naming the source, row and column; the load still
//     succeeds and only operations reading that column fail
//
// Dates accept ISO and US layouts as well as Excel serial day numbers; times
// accept clock strings and Excel day fractions.
//
// LoadSources reads both files concurrently.
package dataprocessing
