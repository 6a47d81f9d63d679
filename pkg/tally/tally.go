// Package tally turns per-carton detection records into the per-state
// positivity summary published with the monitoring data.
//
// A run filters the records once by the optional cutoff window, computes four
// independent partial aggregates over that same filtered slice (total,
// positive, negative, latest date), and joins them into sorted report rows.
package tally

import (
	"fmt"

	"github.com/dholab/gitmilk/pkg/detection"
)

// Options configures a tally run.
type Options struct {
	Policy CountPolicy
	Anchor JoinAnchor

	// DaysPrevious restricts the report to records purchased within the
	// last N days. Nil means no filtering.
	DaysPrevious *int

	// Clock supplies "now" for the cutoff. Defaults to SystemClock.
	Clock Clock
}

// Run computes the positivity report for records.
func Run(records []detection.Record, opts Options) (*Report, error) {
	policy, err := ParseCountPolicy(string(opts.Policy))
	if err != nil {
		return nil, err
	}
	anchor, err := ParseJoinAnchor(string(opts.Anchor))
	if err != nil {
		return nil, err
	}

	clock := opts.Clock
	if clock == nil {
		clock = SystemClock
	}
	now := clock.Now()

	report := &Report{
		Policy:      policy,
		Anchor:      anchor,
		GeneratedAt: now,
		Records:     len(records),
	}

	window := records
	if opts.DaysPrevious != nil {
		days := *opts.DaysPrevious
		cutoff, err := Cutoff(now, days)
		if err != nil {
			return nil, err
		}
		window = FilterAfter(records, cutoff)
		report.DaysPrevious = &days
		report.Cutoff = &cutoff
	}
	report.Filtered = len(window)

	in := JoinInput{Latest: LatestDates(window)}
	if in.Total, err = CountTotal(window, policy); err != nil {
		return nil, err
	}
	if in.Positive, err = CountPositive(window, policy); err != nil {
		return nil, err
	}
	if in.Negative, err = CountNegative(window, policy); err != nil {
		return nil, err
	}

	rows, err := Join(in, anchor)
	if err != nil {
		return nil, fmt.Errorf("join partial aggregates: %w", err)
	}
	report.Rows = rows

	return report, nil
}
