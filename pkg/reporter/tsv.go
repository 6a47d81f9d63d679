package reporter

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/dholab/gitmilk/pkg/tally"
)

// TSVReporter writes the tab-separated tally file.
type TSVReporter struct {
	bw *bufio.Writer
}

// NewTSVReporter creates a new TSV reporter.
func NewTSVReporter(opts Options) *TSVReporter {
	return &TSVReporter{bw: bufio.NewWriterSize(opts.Writer, bufWriterSize)}
}

// Report implements Reporter.
func (r *TSVReporter) Report(ctx context.Context, report *tally.Report) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil && flushErr != nil {
			err = fmt.Errorf("flush: %w", flushErr)
		}
	}()

	if err := checkContext(ctx); err != nil {
		return err
	}

	w := csv.NewWriter(r.bw)
	w.Comma = '\t'

	if err := w.Write(Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range report.Rows {
		if err := w.Write(cells(row)); err != nil {
			return fmt.Errorf("write row %s: %w", row.State, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write tsv: %w", err)
	}
	return nil
}
