package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"salestracker/internal/infrastructure"
	"salestracker/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrNoTable is returned when there is no summary table to write.
var ErrNoTable = errors.New("no summary table")

// CSVWriter writes summary tables as CSV
type CSVWriter struct {
	// BOMPrefix adds a UTF-8 BOM so Excel recognises the encoding
	BOMPrefix bool
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(bomPrefix bool) *CSVWriter {
	return &CSVWriter{BOMPrefix: bomPrefix}
}

// WriteTable writes the header row and every data row of table to w.
func (cw *CSVWriter) WriteTable(w io.Writer, table *domain.SummaryTable) error {
	if table == nil {
		return ErrNoTable
	}
	if err := table.Validate(); err != nil {
		return err
	}

	if cw.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range table.Rows {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFile writes table to path, creating parent directories.
func (cw *CSVWriter) WriteFile(path string, table *domain.SummaryTable) (err error) {
	if table == nil {
		return ErrNoTable
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	infrastructure.GetLogger().Debug("Writing CSV file",
		slog.String("path", path),
		slog.Int("record_count", len(table.Rows)))
	return cw.WriteTable(file, table)
}

// FileName returns the export file name for a view id.
func FileName(viewID string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, viewID)
	if name == "" {
		name = "view"
	}
	return name + ".csv"
}
