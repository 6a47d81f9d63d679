package reporter

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dholab/gitmilk/pkg/tally"
)

// markdownAlign right-aligns the count columns.
const markdownAlign = "|:---|---:|---:|---:|:---|"

// MarkdownReporter writes a GitHub-flavored Markdown table suitable for
// splicing into the README.
type MarkdownReporter struct {
	bw *bufio.Writer
}

// NewMarkdownReporter creates a new Markdown reporter.
func NewMarkdownReporter(opts Options) *MarkdownReporter {
	return &MarkdownReporter{bw: bufio.NewWriterSize(opts.Writer, bufWriterSize)}
}

// Report implements Reporter.
func (r *MarkdownReporter) Report(ctx context.Context, report *tally.Report) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil && flushErr != nil {
			err = fmt.Errorf("flush: %w", flushErr)
		}
	}()

	if err := checkContext(ctx); err != nil {
		return err
	}

	r.writeLine(Header())
	r.bw.WriteString(markdownAlign + "\n")
	for _, row := range report.Rows {
		r.writeLine(cells(row))
	}
	return nil
}

func (r *MarkdownReporter) writeLine(values []string) {
	r.bw.WriteString("|")
	for _, v := range values {
		r.bw.WriteString(" ")
		r.bw.WriteString(escapeCell(v))
		r.bw.WriteString(" |")
	}
	r.bw.WriteString("\n")
}

// escapeCell keeps a value inside its table cell.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderMarkdown returns report as a Markdown table string.
func RenderMarkdown(ctx context.Context, report *tally.Report) (string, error) {
	var sb strings.Builder
	if err := NewMarkdownReporter(Options{Writer: &sb}).Report(ctx, report); err != nil {
		return "", err
	}
	return sb.String(), nil
}
