package domain

import (
	"fmt"
	"time"
)

// ChartKind names how a view's data is plotted.
type ChartKind string

const (
	ChartBar        ChartKind = "bar"
	ChartGroupedBar ChartKind = "grouped_bar"
	ChartStackedBar ChartKind = "stacked_bar"
	ChartLine       ChartKind = "line"
	ChartPie        ChartKind = "pie"
	ChartNone       ChartKind = "none"
)

// Source identifies the input table a view reads.
type Source string

const (
	SourceSales    Source = "sales"
	SourceEnriched Source = "enriched"
)

// ChartSpec tells the rendering collaborator how to draw a summary table.
// X, Y and Series name columns of the view's SummaryTable.
type ChartSpec struct {
	Kind   ChartKind `json:"kind"`
	Title  string    `json:"title,omitempty"`
	X      string    `json:"x,omitempty"`
	Y      string    `json:"y,omitempty"`
	Series string    `json:"series,omitempty"`
	YMax   *float64  `json:"y_max,omitempty"`
}

// SummaryTable is the flat, display-ready form of a view result.
type SummaryTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Validate checks that every row has one cell per column.
func (t *SummaryTable) Validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("summary row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}

// ViewError is a failure captured in place of a view's data.
type ViewError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ViewResult is the outcome of running one dashboard view. Exactly one of
// Data and Error is set.
type ViewResult struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Source      Source        `json:"source"`
	Chart       *ChartSpec    `json:"chart,omitempty"`
	Data        any           `json:"data,omitempty"`
	Table       *SummaryTable `json:"table,omitempty"`
	Error       *ViewError    `json:"error,omitempty"`
	DurationMS  float64       `json:"duration_ms"`
}

// Failed reports whether the view captured an error.
func (r ViewResult) Failed() bool {
	return r.Error != nil
}

// PageResult holds the results of a page's views in display order.
type PageResult struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Views       []ViewResult `json:"views"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// FailedViews counts views that captured an error.
func (p PageResult) FailedViews() int {
	n := 0
	for _, v := range p.Views {
		if v.Failed() {
			n++
		}
	}
	return n
}

// ViewInfo describes a registered view without running it.
type ViewInfo struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Source      Source     `json:"source"`
	Chart       *ChartSpec `json:"chart,omitempty"`
}

// PageInfo is a navigation entry of the dashboard.
type PageInfo struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Views []ViewInfo `json:"views"`
}
