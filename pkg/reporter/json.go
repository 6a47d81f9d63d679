package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dholab/gitmilk/pkg/detection"
	"github.com/dholab/gitmilk/pkg/tally"
)

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	RunID        uuid.UUID `json:"run_id"`
	GeneratedAt  time.Time `json:"generated_at"`
	CountPolicy  string    `json:"count_policy"`
	JoinAnchor   string    `json:"join_anchor"`
	DaysPrevious *int      `json:"days_previous"`
	Cutoff       *string   `json:"cutoff"`
	Records      int       `json:"records"`
	Filtered     int       `json:"filtered"`
	Rows         []JSONRow `json:"rows"`
	Totals       JSONRow   `json:"totals"`
}

// JSONRow is one state's counts.
type JSONRow struct {
	State           string          `json:"state"`
	Total           int             `json:"total_cartons"`
	Negative        int             `json:"negative_cartons"`
	Positive        int             `json:"positive_cartons"`
	PercentPositive decimal.Decimal `json:"percent_positive"`
	LatestDate      *string         `json:"latest_date_sampled"`
}

// JSONReporter formats reports as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	if opts.RunID == uuid.Nil {
		opts.RunID = uuid.New()
	}
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(ctx context.Context, report *tally.Report) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil && flushErr != nil {
			err = fmt.Errorf("flush: %w", flushErr)
		}
	}()

	if err := checkContext(ctx); err != nil {
		return err
	}

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(r.buildOutput(report)); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func (r *JSONReporter) buildOutput(report *tally.Report) *JSONOutput {
	output := &JSONOutput{
		RunID:        r.opts.RunID,
		GeneratedAt:  report.GeneratedAt.UTC(),
		CountPolicy:  report.Policy.String(),
		JoinAnchor:   report.Anchor.String(),
		DaysPrevious: report.DaysPrevious,
		Records:      report.Records,
		Filtered:     report.Filtered,
		Rows:         make([]JSONRow, 0, len(report.Rows)),
		Totals:       toJSONRow(report.Totals()),
	}

	if report.Cutoff != nil {
		cutoff := report.Cutoff.UTC().Format(time.RFC3339)
		output.Cutoff = &cutoff
	}

	for _, row := range report.Rows {
		output.Rows = append(output.Rows, toJSONRow(row))
	}

	return output
}

func toJSONRow(row tally.Row) JSONRow {
	out := JSONRow{
		State:           row.State,
		Total:           row.Total,
		Negative:        row.Negative,
		Positive:        row.Positive,
		PercentPositive: row.PercentPositive(),
	}
	if row.LatestDate != nil {
		latest := row.LatestDate.Format(detection.DateLayout)
		out.LatestDate = &latest
	}
	return out
}
