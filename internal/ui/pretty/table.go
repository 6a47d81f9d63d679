package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dholab/gitmilk/pkg/tally"
)

// Table formatting constants.
const (
	tablePadding     = 2
	tableColumnCount = 6 // STATE, TOTAL, NEGATIVE, POSITIVE, % POSITIVE, LATEST
	minStateWidth    = 5
	numberWidth      = 8
	percentWidth     = 10
	dateWidth        = 11
	heavySeparator   = "="
	lightSeparator   = "-"
	defaultTermWidth = 100
	emptyDate        = "-"
)

// TableFormatter formats a tally report as a styled terminal table.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
		termWidth:    termWidth,
	}
}

// FormatTable formats the report rows followed by a totals row.
// An empty report yields a single caption line.
func (t *TableFormatter) FormatTable(report *tally.Report) string {
	if report == nil || len(report.Rows) == 0 {
		return t.styles.TableCaption.Render(" No states in the reporting window.") + "\n"
	}

	stateWidth := t.stateWidth(report.Rows)

	var builder strings.Builder

	builder.WriteString(t.formatHeader(stateWidth))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(stateWidth, heavySeparator))
	builder.WriteString("\n")

	for _, row := range report.Rows {
		builder.WriteString(t.formatRow(row, stateWidth, t.styles.TableState))
		builder.WriteString("\n")
	}

	builder.WriteString(t.formatSeparator(stateWidth, lightSeparator))
	builder.WriteString("\n")
	builder.WriteString(t.formatRow(report.Totals(), stateWidth, t.styles.TableTotals))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(stateWidth, heavySeparator))
	builder.WriteString("\n")

	return builder.String()
}

// FormatCaption describes the window and policy a report was computed with.
func (t *TableFormatter) FormatCaption(report *tally.Report) string {
	parts := []string{
		fmt.Sprintf("%d states", len(report.Rows)),
		fmt.Sprintf("%d of %d records", report.Filtered, report.Records),
		"policy " + report.Policy.String(),
		"anchor " + report.Anchor.String(),
	}
	if report.DaysPrevious != nil && report.Cutoff != nil {
		parts = append(parts, fmt.Sprintf("last %d days (after %s)",
			*report.DaysPrevious, report.Cutoff.Format("2006-01-02")))
	}
	return " " + t.styles.TableCaption.Render(strings.Join(parts, " | "))
}

// stateWidth sizes the state column to its longest value, then shrinks it
// to fit the terminal.
func (t *TableFormatter) stateWidth(rows []tally.Row) int {
	width := minStateWidth
	for _, row := range rows {
		width = max(width, lipgloss.Width(row.State))
	}

	fixed := 3*numberWidth + percentWidth + dateWidth + tablePadding*tableColumnCount
	if width+fixed > t.termWidth {
		width = max(minStateWidth, t.termWidth-fixed)
	}
	return width
}

func (t *TableFormatter) totalWidth(stateWidth int) int {
	return stateWidth + 3*numberWidth + percentWidth + dateWidth + tablePadding*tableColumnCount
}

func (t *TableFormatter) formatHeader(stateWidth int) string {
	header := fmt.Sprintf(" %-*s  %*s  %*s  %*s  %*s  %-*s ",
		stateWidth, "STATE",
		numberWidth, "TOTAL",
		numberWidth, "NEGATIVE",
		numberWidth, "POSITIVE",
		percentWidth, "% POSITIVE",
		dateWidth, "LATEST",
	)
	return t.styles.TableHeader.Render(header)
}

func (t *TableFormatter) formatSeparator(stateWidth int, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, t.totalWidth(stateWidth)))
}

func (t *TableFormatter) formatRow(row tally.Row, stateWidth int, stateStyle lipgloss.Style) string {
	state := fmt.Sprintf("%-*s", stateWidth, truncateString(row.State, stateWidth))

	latest := emptyDate
	if row.LatestDate != nil {
		latest = row.LatestDate.Format("2006-01-02")
	}

	return fmt.Sprintf(" %s  %s  %s  %s  %s  %-*s ",
		stateStyle.Render(state),
		t.number(row.Total, t.styles.TableState),
		t.number(row.Negative, lipgloss.NewStyle()),
		t.number(row.Positive, t.styles.TablePositive),
		fmt.Sprintf("%*s", percentWidth, row.PercentPositive().StringFixed(1)+"%"),
		dateWidth, latest,
	)
}

// number right-aligns n, dimming zeros and styling the rest with style.
func (t *TableFormatter) number(n int, style lipgloss.Style) string {
	cell := fmt.Sprintf("%*s", numberWidth, strconv.Itoa(n))
	if n == 0 {
		return t.styles.TableZero.Render(cell)
	}
	return style.Render(cell)
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}
