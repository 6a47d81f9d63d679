package detection_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dholab/gitmilk/pkg/detection"
)

const sampleTSV = "date_purchased\tprocessing_plant_state\tcarton\tpositive_for_HPAI\tnotes\n" +
	"2024-01-01\tWI\tC1\tTrue\t\n" +
	"2024-01-02\tWI\tC2\tFalse\tresampled\n" +
	"2024-01-03\tCA\tC3\tTrue\t\n"

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestRead(t *testing.T) {
	t.Parallel()

	dataset, err := detection.Read(strings.NewReader(sampleTSV), detection.Options{})
	require.NoError(t, err)

	want := []detection.Record{
		{State: "WI", Carton: "C1", Positive: true, DatePurchased: date(2024, time.January, 1)},
		{State: "WI", Carton: "C2", Positive: false, DatePurchased: date(2024, time.January, 2)},
		{State: "CA", Carton: "C3", Positive: true, DatePurchased: date(2024, time.January, 3)},
	}
	assert.Equal(t, want, dataset.Records)
	assert.Equal(t, 3, dataset.Len())
	assert.Contains(t, dataset.Header, "notes")
}

func TestRead_Errors(t *testing.T) {
	t.Parallel()

	header := "date_purchased\tprocessing_plant_state\tcarton\tpositive_for_HPAI\n"

	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg string
	}{
		{
			name:    "empty input",
			input:   "",
			wantErr: detection.ErrSchema,
		},
		{
			name:    "missing columns",
			input:   "date_purchased\tcarton\n2024-01-01\tC1\n",
			wantErr: detection.ErrSchema,
			wantMsg: "processing_plant_state, positive_for_HPAI",
		},
		{
			name:    "bad date",
			input:   header + "2024-01-01\tWI\tC1\tTrue\nyesterday\tWI\tC2\tFalse\n",
			wantErr: detection.ErrDateParse,
			wantMsg: "line 3",
		},
		{
			name:    "bad outcome",
			input:   header + "2024-01-01\tWI\tC1\tmaybe\n",
			wantErr: detection.ErrOutcomeParse,
		},
		{
			name:    "empty state",
			input:   header + "2024-01-01\t \tC1\tTrue\n",
			wantErr: detection.ErrEmptyField,
		},
		{
			name:    "empty carton",
			input:   header + "2024-01-01\tWI\t\tTrue\n",
			wantErr: detection.ErrEmptyField,
		},
		{
			name:    "ragged row",
			input:   header + "2024-01-01\tWI\tC1\n",
			wantErr: detection.ErrSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := detection.Read(strings.NewReader(tt.input), detection.Options{})
			require.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestRead_RowErrorLocation(t *testing.T) {
	t.Parallel()

	input := "date_purchased\tprocessing_plant_state\tcarton\tpositive_for_HPAI\n" +
		"2024-01-01\tWI\tC1\tTrue\n" +
		"2024-13-45\tWI\tC2\tFalse\n"

	_, err := detection.Read(strings.NewReader(input), detection.Options{})

	var rowErr *detection.RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 3, rowErr.Line)
	assert.Equal(t, detection.ColumnDate, rowErr.Column)
	assert.Equal(t, "2024-13-45", rowErr.Value)
}

func TestRead_HeaderWithBOMAndReorderedColumns(t *testing.T) {
	t.Parallel()

	input := "\uFEFFcarton\tpositive_for_HPAI\tprocessing_plant_state\tdate_purchased\n" +
		"C9\tfalse\tMN\t2024-05-06\n"

	dataset, err := detection.Read(strings.NewReader(input), detection.Options{})
	require.NoError(t, err)
	require.Len(t, dataset.Records, 1)
	assert.Equal(t, detection.Record{
		State: "MN", Carton: "C9", Positive: false, DatePurchased: date(2024, time.May, 6),
	}, dataset.Records[0])
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-04-10", date(2024, time.April, 10), true},
		{" 2024-04-10 ", date(2024, time.April, 10), true},
		{"2024-04-10 13:45:00", date(2024, time.April, 10), true},
		{"2024-04-10T13:45:00", date(2024, time.April, 10), true},
		{"2024-04-10T13:45:00-05:00", date(2024, time.April, 10), true},
		{"4/10/2024", date(2024, time.April, 10), true},
		{"", time.Time{}, false},
		{"April 10", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, ok := detection.ParseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestParseOutcome(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]bool{"True": true, "TRUE": true, "1": true, "False": false, "false": false, "0": false} {
		got, ok := detection.ParseOutcome(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := detection.ParseOutcome("Inconclusive")
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("tsv file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "DETECTION_RESULTS.tsv")
		require.NoError(t, os.WriteFile(path, []byte(sampleTSV), 0644))

		dataset, err := detection.Load(ctx, path, detection.Options{})
		require.NoError(t, err)
		assert.Equal(t, path, dataset.Path)
		assert.Len(t, dataset.Records, 3)
	})

	t.Run("explicit delimiter", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "results.txt")
		content := strings.ReplaceAll(sampleTSV, "\t", ";")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		dataset, err := detection.Load(ctx, path, detection.Options{Delimiter: ';'})
		require.NoError(t, err)
		assert.Len(t, dataset.Records, 3)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := detection.Load(ctx, filepath.Join(t.TempDir(), "absent.tsv"), detection.Options{})
		require.ErrorIs(t, err, detection.ErrInputNotFound)
	})

	t.Run("error names the file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.tsv")
		require.NoError(t, os.WriteFile(path, []byte("carton\nC1\n"), 0644))

		_, err := detection.Load(ctx, path, detection.Options{})
		require.ErrorIs(t, err, detection.ErrSchema)
		assert.Contains(t, err.Error(), path)
	})
}

func TestDelimiterFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, '\t', detection.DelimiterFor("DETECTION_RESULTS.tsv"))
	assert.Equal(t, '\t', detection.DelimiterFor("no_extension"))
}
