package tally

import (
	"time"

	"github.com/shopspring/decimal"
)

// percentPlaces is the number of decimal places kept for percentages.
const percentPlaces = 1

// Row is one state's line in the positivity tally.
type Row struct {
	State    string
	Total    int
	Negative int
	Positive int

	// LatestDate is nil when no sample date is known for the state.
	LatestDate *time.Time
}

// PercentPositive returns Positive/Total as a percentage rounded to one
// decimal place, or zero when Total is zero.
func (r Row) PercentPositive() decimal.Decimal {
	if r.Total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(r.Positive)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(r.Total))).
		Round(percentPlaces)
}

// Report is the result of one tally run.
type Report struct {
	// Rows are sorted by state.
	Rows []Row

	Policy CountPolicy
	Anchor JoinAnchor

	// DaysPrevious is nil when the report covers the full submission.
	DaysPrevious *int

	// Cutoff is set only when DaysPrevious is set.
	Cutoff *time.Time

	GeneratedAt time.Time

	// Records is the number of loaded records; Filtered the number inside the window.
	Records  int
	Filtered int
}

// Totals sums the per-state counts and keeps the latest date across states.
// States are disjoint, so the sums are meaningful under either policy.
func (r *Report) Totals() Row {
	totals := Row{State: "Total"}
	for _, row := range r.Rows {
		totals.Total += row.Total
		totals.Negative += row.Negative
		totals.Positive += row.Positive
		if row.LatestDate != nil && (totals.LatestDate == nil || row.LatestDate.After(*totals.LatestDate)) {
			latest := *row.LatestDate
			totals.LatestDate = &latest
		}
	}
	return totals
}
