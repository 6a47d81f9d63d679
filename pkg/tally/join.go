package tally

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ErrJoinCardinality is returned when a partial aggregate repeats a state.
// Aggregators group by state, so this always indicates a bug upstream.
var ErrJoinCardinality = errors.New("join cardinality violated")

// JoinInput carries the four partial aggregates for one report run.
type JoinInput struct {
	Total    Counts
	Positive Counts
	Negative Counts
	Latest   Dates
}

// Join combines the partial aggregates into report rows.
//
// With AnchorTotal the result is Total LEFT JOIN Positive LEFT JOIN Negative
// LEFT JOIN Latest on state; with AnchorUnion every state from any partial
// gets a row. Missing counts are zero, a missing date stays nil, and rows are
// sorted by state.
func Join(in JoinInput, anchor JoinAnchor) ([]Row, error) {
	total, err := index("total", in.Total)
	if err != nil {
		return nil, err
	}
	positive, err := index("positive", in.Positive)
	if err != nil {
		return nil, err
	}
	negative, err := index("negative", in.Negative)
	if err != nil {
		return nil, err
	}
	latest, err := index("latest date", in.Latest)
	if err != nil {
		return nil, err
	}

	var states []string
	switch anchor {
	case AnchorUnion:
		states = unionKeys(total, positive, negative, latest)
	case AnchorTotal, "":
		states = keys(total)
	default:
		return nil, fmt.Errorf("unknown join anchor %q", anchor)
	}

	slices.SortFunc(states, strings.Compare)

	rows := make([]Row, 0, len(states))
	for _, state := range states {
		row := Row{
			State:    state,
			Total:    total[state],
			Positive: positive[state],
			Negative: negative[state],
		}
		if date, ok := latest[state]; ok {
			row.LatestDate = &date
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// index builds a state lookup for one partial, rejecting repeated states.
func index[V any](name string, entries []Entry[V]) (map[string]V, error) {
	out := make(map[string]V, len(entries))
	for _, e := range entries {
		if _, dup := out[e.State]; dup {
			return nil, fmt.Errorf("%w: %s aggregate has state %q more than once", ErrJoinCardinality, name, e.State)
		}
		out[e.State] = e.Value
	}
	return out, nil
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func unionKeys(total, positive, negative map[string]int, latest map[string]time.Time) []string {
	seen := make(map[string]struct{}, len(total))
	for _, m := range []map[string]int{total, positive, negative} {
		for k := range m {
			seen[k] = struct{}{}
		}
	}
	for k := range latest {
		seen[k] = struct{}{}
	}
	return keys(seen)
}
