package reporter

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"golang.org/x/term"

	"github.com/dholab/gitmilk/internal/ui/pretty"
	"github.com/dholab/gitmilk/pkg/tally"
)

// defaultTermWidth is used when terminal width cannot be determined.
const defaultTermWidth = 100

// TableReporter formats reports as a styled terminal table.
type TableReporter struct {
	formatter *pretty.TableFormatter
	bw        *bufio.Writer
}

// NewTableReporter creates a new table reporter.
func NewTableReporter(opts Options) *TableReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	styles := pretty.NewStyles(colorEnabled)

	termWidth := opts.TermWidth
	if termWidth <= 0 {
		termWidth = getTerminalWidth(opts.Writer)
	}

	return &TableReporter{
		formatter: pretty.NewTableFormatter(styles, colorEnabled, termWidth),
		bw:        bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TableReporter) Report(ctx context.Context, report *tally.Report) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil && flushErr != nil {
			err = fmt.Errorf("flush: %w", flushErr)
		}
	}()

	if err := checkContext(ctx); err != nil {
		return err
	}

	fmt.Fprint(r.bw, r.formatter.FormatTable(report))
	if report != nil {
		fmt.Fprintln(r.bw, r.formatter.FormatCaption(report))
	}
	return nil
}

// getTerminalWidth attempts to get the terminal width from the writer.
func getTerminalWidth(writer io.Writer) int {
	if f, ok := writer.(interface{ Fd() uintptr }); ok {
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}
