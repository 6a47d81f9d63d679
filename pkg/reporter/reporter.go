// Package reporter serializes tally reports in the published formats:
// the TSV contract file, a Markdown table for the README, JSON, and a
// styled terminal table.
package reporter

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dholab/gitmilk/pkg/detection"
	"github.com/dholab/gitmilk/pkg/tally"
)

// Column headers shared by the TSV and Markdown writers, in output order.
const (
	HeaderState    = detection.StateLabel
	HeaderTotal    = "Total Cartons"
	HeaderNegative = "Negative Cartons"
	HeaderPositive = "Positive Cartons"
	HeaderLatest   = "Latest Date Sampled"
)

// Header returns the report column headers in output order.
func Header() []string {
	return []string{HeaderState, HeaderTotal, HeaderNegative, HeaderPositive, HeaderLatest}
}

// Reporter formats and writes a tally report.
type Reporter interface {
	// Report writes formatted output for report.
	Report(ctx context.Context, report *tally.Report) error
}

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}

	format := opts.Format
	if format == "" {
		format = FormatTSV
	}

	switch format {
	case FormatTSV:
		return NewTSVReporter(opts), nil
	case FormatMarkdown:
		return NewMarkdownReporter(opts), nil
	case FormatJSON:
		return NewJSONReporter(opts), nil
	case FormatTable:
		return NewTableReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// cells renders one row as strings in header order. A missing date is empty.
func cells(row tally.Row) []string {
	latest := ""
	if row.LatestDate != nil {
		latest = row.LatestDate.Format(detection.DateLayout)
	}
	return []string{
		row.State,
		strconv.Itoa(row.Total),
		strconv.Itoa(row.Negative),
		strconv.Itoa(row.Positive),
		latest,
	}
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
		return nil
	}
}
