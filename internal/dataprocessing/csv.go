package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"salestracker/internal/sales"
)

// LoadCSV reads a sales table from a delimited text file in the given
// encoding ("utf-8" when empty). A UTF-8 byte-order mark is dropped.
func LoadCSV(path, encoding string) (*sales.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer file.Close()

	table, err := ReadCSV(filepath.Base(path), file, encoding)
	if err != nil {
		return nil, err
	}

	slog.Info("Loaded csv",
		slog.String("path", path),
		slog.String("encoding", encoding),
		slog.Int("rows", table.Len()),
		slog.Int("poisoned_columns", len(table.ParseErrors())),
		slog.Any("columns", table.Schema().Columns()))
	return table, nil
}

// ReadCSV decodes a table from r. source names the table in errors.
func ReadCSV(source string, r io.Reader, encoding string) (*sales.Table, error) {
	dec, err := decoderFor(encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(transform.NewReader(r, dec))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv %s is empty", source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv %s: %w", source, err)
	}
	return buildTable(source, header, rows), nil
}

func decoderFor(name string) (transform.Transformer, error) {
	if name == "" {
		name = "utf-8"
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	if canonical, _ := htmlindex.Name(enc); canonical == "utf-8" {
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	}
	return enc.NewDecoder(), nil
}
