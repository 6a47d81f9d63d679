package tally_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dholab/gitmilk/pkg/detection"
	"github.com/dholab/gitmilk/pkg/tally"
)

func TestCountAggregators(t *testing.T) {
	t.Parallel()

	records := resampledRecords()

	tests := []struct {
		name   string
		count  func([]detection.Record, tally.CountPolicy) (tally.Counts, error)
		policy tally.CountPolicy
		want   tally.Counts
	}{
		{"total rows", tally.CountTotal, tally.PolicyRows, tally.Counts{{State: "CO", Value: 1}, {State: "MI", Value: 4}}},
		{"total distinct", tally.CountTotal, tally.PolicyDistinctCartons, tally.Counts{{State: "CO", Value: 1}, {State: "MI", Value: 2}}},
		{"positive rows", tally.CountPositive, tally.PolicyRows, tally.Counts{{State: "CO", Value: 1}, {State: "MI", Value: 1}}},
		{"negative rows", tally.CountNegative, tally.PolicyRows, tally.Counts{{State: "MI", Value: 3}}},
		{"negative distinct", tally.CountNegative, tally.PolicyDistinctCartons, tally.Counts{{State: "MI", Value: 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.count(records, tt.policy)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("counts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCountAggregators_AbsentNotZero(t *testing.T) {
	t.Parallel()

	records := []detection.Record{rec(day(2024, time.May, 1), "NY", "N1", false)}

	positive, err := tally.CountPositive(records, tally.PolicyRows)
	require.NoError(t, err)
	assert.Empty(t, positive)

	negative, err := tally.CountNegative(records, tally.PolicyRows)
	require.NoError(t, err)
	assert.Len(t, negative, 1)
}

func TestCountAggregators_UnknownPolicy(t *testing.T) {
	t.Parallel()

	records := resampledRecords()

	for _, policy := range []tally.CountPolicy{"", "cartons"} {
		_, err := tally.CountTotal(records, policy)
		assert.ErrorIs(t, err, tally.ErrUnknownPolicy, policy)

		_, err = tally.CountPositive(records, policy)
		assert.ErrorIs(t, err, tally.ErrUnknownPolicy, policy)

		_, err = tally.CountNegative(records, policy)
		assert.ErrorIs(t, err, tally.ErrUnknownPolicy, policy)
	}
}

func TestCountAggregators_EmptyInput(t *testing.T) {
	t.Parallel()

	total, err := tally.CountTotal(nil, tally.PolicyDistinctCartons)
	require.NoError(t, err)
	assert.Empty(t, total)

	positive, err := tally.CountPositive(nil, tally.PolicyRows)
	require.NoError(t, err)
	assert.Empty(t, positive)

	assert.Empty(t, tally.LatestDates(nil))
}

func TestLatestDates(t *testing.T) {
	t.Parallel()

	want := tally.Dates{
		{State: "CO", Value: day(2024, time.March, 3)},
		{State: "MI", Value: day(2024, time.March, 4)},
	}
	if diff := cmp.Diff(want, tally.LatestDates(resampledRecords())); diff != "" {
		t.Errorf("dates mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterAfter(t *testing.T) {
	t.Parallel()

	records := exampleRecords()
	kept := tally.FilterAfter(records, day(2024, time.January, 1))

	assert.Len(t, kept, 2)
	assert.Len(t, records, 3, "input must not be modified")
}

func TestCutoff(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.June, 10, 8, 30, 0, 0, time.UTC)

	got, err := tally.Cutoff(now, 7)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.June, 3, 8, 30, 0, 0, time.UTC), got)

	got, err = tally.Cutoff(now, 0)
	assert.NoError(t, err)
	assert.Equal(t, now, got)

	_, err = tally.Cutoff(now, -3)
	assert.ErrorIs(t, err, tally.ErrNegativeWindow)
}

func TestCutoff_UsesLocalWallClock(t *testing.T) {
	t.Parallel()

	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	// 20:00 CST is already 02:00 the next day in UTC.
	now := time.Date(2024, time.January, 10, 20, 0, 0, 0, chicago)

	got, err := tally.Cutoff(now, 1)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 9, 20, 0, 0, 0, time.UTC), got)

	kept := tally.FilterAfter([]detection.Record{
		rec(day(2024, time.January, 9), "WI", "W0", false),
		rec(day(2024, time.January, 10), "WI", "W1", true),
	}, got)
	require.Len(t, kept, 1)
	assert.Equal(t, "W1", kept[0].Carton)
}

func TestParsePolicyAndAnchor(t *testing.T) {
	t.Parallel()

	policy, err := tally.ParseCountPolicy("")
	assert.NoError(t, err)
	assert.Equal(t, tally.DefaultCountPolicy, policy)

	policy, err = tally.ParseCountPolicy("rows")
	assert.NoError(t, err)
	assert.Equal(t, tally.PolicyRows, policy)

	_, err = tally.ParseCountPolicy("unique")
	assert.ErrorIs(t, err, tally.ErrUnknownPolicy)

	anchor, err := tally.ParseJoinAnchor("")
	assert.NoError(t, err)
	assert.Equal(t, tally.AnchorTotal, anchor)

	anchor, err = tally.ParseJoinAnchor("union")
	assert.NoError(t, err)
	assert.Equal(t, tally.AnchorUnion, anchor)

	_, err = tally.ParseJoinAnchor("outer")
	assert.Error(t, err)
}
