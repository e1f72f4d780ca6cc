package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"salestracker/internal/config"
	"salestracker/internal/sales"
	"salestracker/pkg/contracts/domain"
)

// Sources holds the two loaded tables.
type Sources struct {
	Sales    *sales.Table
	Enriched *sales.Table
	LoadedAt time.Time
}

// Table returns the table for a source name, or nil if unknown.
func (s *Sources) Table(src domain.Source) *sales.Table {
	switch src {
	case domain.SourceSales:
		return s.Sales
	case domain.SourceEnriched:
		return s.Enriched
	default:
		return nil
	}
}

// LoadSources reads the workbook and the enriched CSV in parallel. Either
// failure cancels the load.
func LoadSources(ctx context.Context, cfg config.DataConfig) (*Sources, error) {
	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)

	var out Sources
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, err := LoadWorkbook(cfg.WorkbookPath, cfg.WorkbookSheet)
		if err != nil {
			return fmt.Errorf("sales workbook: %w", err)
		}
		out.Sales = t
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, err := LoadCSV(cfg.CSVPath, cfg.CSVEncoding)
		if err != nil {
			return fmt.Errorf("enriched csv: %w", err)
		}
		out.Enriched = t
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.LoadedAt = time.Now()
	slog.InfoContext(ctx, "Sources loaded",
		slog.Int("sales_rows", out.Sales.Len()),
		slog.Int("enriched_rows", out.Enriched.Len()),
		slog.Duration("duration", time.Since(start)))
	return &out, nil
}
