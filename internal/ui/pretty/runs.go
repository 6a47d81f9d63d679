package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dholab/gitmilk/pkg/history"
)

// Run listing column widths.
const (
	runIDWidth     = 36
	generatedWidth = 16
	policyWidth    = 16
	windowWidth    = 6
	generatedFmt   = "2006-01-02 15:04"
)

// FormatRuns formats stored tally runs, newest first, one per line.
func (t *TableFormatter) FormatRuns(runs []history.Run) string {
	if len(runs) == 0 {
		return t.styles.TableCaption.Render(" No runs recorded.") + "\n"
	}

	var builder strings.Builder

	header := fmt.Sprintf(" %-*s  %-*s  %-*s  %*s  %*s  %*s  %*s  %s ",
		runIDWidth, "RUN",
		generatedWidth, "GENERATED",
		policyWidth, "POLICY",
		windowWidth, "DAYS",
		numberWidth, "STATES",
		numberWidth, "TOTAL",
		numberWidth, "POSITIVE",
		"OUTPUT",
	)
	builder.WriteString(t.styles.TableHeader.Render(header))
	builder.WriteString("\n")

	for _, run := range runs {
		window := "all"
		if run.DaysPrevious != nil {
			window = strconv.Itoa(*run.DaysPrevious)
		}

		builder.WriteString(fmt.Sprintf(" %-*s  %s  %-*s  %*s  %*d  %s  %s  %s ",
			runIDWidth, run.ID.String(),
			t.styles.Dim.Render(run.GeneratedAt.UTC().Format(generatedFmt)),
			policyWidth, run.Policy,
			windowWidth, window,
			numberWidth, run.States,
			t.number(run.Totals.Total, t.styles.TableState),
			t.number(run.Totals.Positive, t.styles.TablePositive),
			run.Output,
		))
		builder.WriteString("\n")
	}

	return builder.String()
}
