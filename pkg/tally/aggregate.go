package tally

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dholab/gitmilk/pkg/detection"
)

// Entry is one state's value in a partial aggregate.
type Entry[V any] struct {
	State string
	Value V
}

// Counts is a partial aggregate of per-state cardinalities, sorted by state.
type Counts []Entry[int]

// Dates is a partial aggregate of per-state dates, sorted by state.
type Dates []Entry[time.Time]

// CountTotal counts cartons per state over all records.
func CountTotal(records []detection.Record, policy CountPolicy) (Counts, error) {
	return count(records, policy, func(detection.Record) bool { return true })
}

// CountPositive counts cartons per state over records that tested positive.
// States with no positive records are absent.
func CountPositive(records []detection.Record, policy CountPolicy) (Counts, error) {
	return count(records, policy, func(r detection.Record) bool { return r.Positive })
}

// CountNegative counts cartons per state over records that tested negative.
// States with no negative records are absent.
func CountNegative(records []detection.Record, policy CountPolicy) (Counts, error) {
	return count(records, policy, func(r detection.Record) bool { return !r.Positive })
}

// LatestDates returns the most recent purchase date per state.
func LatestDates(records []detection.Record) Dates {
	latest := make(map[string]time.Time)
	for _, r := range records {
		if current, ok := latest[r.State]; !ok || r.DatePurchased.After(current) {
			latest[r.State] = r.DatePurchased
		}
	}
	return sortedEntries(latest)
}

// count groups the records that pass keep by state and applies policy.
func count(records []detection.Record, policy CountPolicy, keep func(detection.Record) bool) (Counts, error) {
	counts := make(map[string]int)

	switch policy {
	case PolicyRows:
		for _, r := range records {
			if keep(r) {
				counts[r.State]++
			}
		}
	case PolicyDistinctCartons:
		seen := make(map[string]map[string]struct{})
		for _, r := range records {
			if !keep(r) {
				continue
			}
			cartons, ok := seen[r.State]
			if !ok {
				cartons = make(map[string]struct{})
				seen[r.State] = cartons
			}
			if _, dup := cartons[r.Carton]; !dup {
				cartons[r.Carton] = struct{}{}
				counts[r.State]++
			}
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownPolicy, policy)
	}

	return sortedEntries(counts), nil
}

func sortedEntries[V any](values map[string]V) []Entry[V] {
	entries := make([]Entry[V], 0, len(values))
	for state, value := range values {
		entries = append(entries, Entry[V]{State: state, Value: value})
	}
	slices.SortFunc(entries, func(a, b Entry[V]) int {
		return strings.Compare(a.State, b.State)
	})
	return entries
}
