package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dholab/gitmilk/pkg/history"
	"github.com/dholab/gitmilk/pkg/tally"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func sampleReport() *tally.Report {
	days := 2
	return &tally.Report{
		Rows: []tally.Row{
			{State: "CA", Total: 1, Negative: 0, Positive: 1, LatestDate: date("2024-01-03")},
			{State: "WI", Total: 2, Negative: 1, Positive: 1, LatestDate: date("2024-01-02")},
		},
		Policy:       tally.PolicyDistinctCartons,
		Anchor:       tally.AnchorTotal,
		DaysPrevious: &days,
		Cutoff:       date("2024-01-01"),
		GeneratedAt:  time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC),
		Records:      3,
		Filtered:     3,
	}
}

func TestParseDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dsn        string
		wantDriver string
		wantSource string
		wantErr    bool
	}{
		{dsn: "sqlite:history.db", wantDriver: history.DriverSQLite, wantSource: "history.db"},
		{dsn: "file:history.db?cache=shared", wantDriver: history.DriverSQLite, wantSource: "file:history.db?cache=shared"},
		{dsn: "postgres://u@localhost/db", wantDriver: history.DriverPostgres, wantSource: "postgres://u@localhost/db"},
		{dsn: "postgresql://u@localhost/db", wantDriver: history.DriverPostgres, wantSource: "postgresql://u@localhost/db"},
		{dsn: "sqlite:", wantErr: true},
		{dsn: "mysql://localhost/db", wantErr: true},
		{dsn: "history.db", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			t.Parallel()

			driver, source, err := history.ParseDSN(tt.dsn)
			if tt.wantErr {
				require.ErrorIs(t, err, history.ErrUnsupportedDSN)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDriver, driver)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

func TestSaveRun_SQLMock(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := history.New(db, history.DriverSQLite)
	id := uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tally_runs").
		WithArgs(id.String(), "2024-01-03T12:00:00.000000000Z", "in.tsv", "out.tsv", "distinct-cartons", "total",
			int64(2), "2024-01-01T00:00:00Z", 3, 3, 2, 3, 1, 2).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO tally_rows").
		WithArgs(id.String(), "CA", 1, 0, 1, "2024-01-03").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO tally_rows").
		WithArgs(id.String(), "WI", 2, 1, 1, "2024-01-02").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, store.SaveRun(context.Background(), id, "in.tsv", "out.tsv", sampleReport()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRun_RollsBackOnRowFailure(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := history.New(db, history.DriverSQLite)
	errInsert := errors.New("disk full")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tally_runs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO tally_rows").WillReturnError(errInsert)
	mock.ExpectRollback()

	err = store.SaveRun(context.Background(), uuid.New(), "in.tsv", "out.tsv", sampleReport())
	require.ErrorIs(t, err, errInsert)
	assert.Contains(t, err.Error(), "insert row CA")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRuns_PostgresPlaceholders(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := history.New(db, history.DriverPostgres)
	id := uuid.New()

	columns := []string{
		"id", "generated_at", "input_path", "output_path", "count_policy", "join_anchor",
		"days_previous", "cutoff", "records", "filtered", "states",
		"total_cartons", "negative_cartons", "positive_cartons",
	}
	mock.ExpectQuery(`FROM tally_runs ORDER BY generated_at DESC, id LIMIT \$1`).
		WithArgs(history.DefaultLimit).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(id.String(), "2024-01-03T12:00:00Z", "in.tsv", "-", "rows", "union",
				nil, nil, 5, 5, 2, 5, 3, 2))

	runs, err := store.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, id, run.ID)
	assert.Equal(t, "rows", run.Policy)
	assert.Nil(t, run.DaysPrevious)
	assert.Nil(t, run.Cutoff)
	assert.Equal(t, tally.Row{State: "Total", Total: 5, Negative: 3, Positive: 2}, run.Totals)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := "sqlite:" + filepath.Join(t.TempDir(), "history.db")

	store, err := history.Open(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	// Init is idempotent.
	require.NoError(t, store.Init(ctx))

	report := sampleReport()
	first := uuid.New()
	require.NoError(t, store.SaveRun(ctx, first, "in.tsv", "out.tsv", report))

	later := *report
	later.GeneratedAt = report.GeneratedAt.Add(24 * time.Hour)
	later.DaysPrevious = nil
	later.Cutoff = nil
	second := uuid.New()
	require.NoError(t, store.SaveRun(ctx, second, "in.tsv", "-", &later))

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Nil(t, runs[0].DaysPrevious)
	assert.Equal(t, first, runs[1].ID)
	require.NotNil(t, runs[1].DaysPrevious)
	assert.Equal(t, 2, *runs[1].DaysPrevious)
	assert.Equal(t, 2, runs[1].States)

	rows, err := store.RunRows(ctx, first)
	require.NoError(t, err)
	if diff := cmp.Diff(report.Rows, rows); diff != "" {
		t.Errorf("RunRows() mismatch (-want +got):\n%s", diff)
	}

	limited, err := store.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStore_ListRunsOrdersWithinOneSecond(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := history.Open(ctx, "sqlite:"+filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for _, offset := range []time.Duration{0, 250 * time.Millisecond, 900 * time.Millisecond} {
		report := sampleReport()
		report.GeneratedAt = base.Add(offset)
		id := uuid.New()
		require.NoError(t, store.SaveRun(ctx, id, "in.tsv", "out.tsv", report))
		ids = append(ids, id)
	}

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []uuid.UUID{ids[2], ids[1], ids[0]}, []uuid.UUID{runs[0].ID, runs[1].ID, runs[2].ID})
	assert.Equal(t, base.Add(900*time.Millisecond), runs[0].GeneratedAt)
}

func TestStore_DuplicateRunRejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := history.Open(ctx, "sqlite:"+filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	defer store.Close()

	id := uuid.New()
	require.NoError(t, store.SaveRun(ctx, id, "in.tsv", "out.tsv", sampleReport()))
	require.Error(t, store.SaveRun(ctx, id, "in.tsv", "out.tsv", sampleReport()))

	rows, err := store.RunRows(ctx, id)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestStore_GetRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := history.Open(ctx, "sqlite:"+filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	defer store.Close()

	report := sampleReport()
	id := uuid.New()
	require.NoError(t, store.SaveRun(ctx, id, "in.tsv", "out.tsv", report))

	run, err := store.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "in.tsv", run.Input)
	assert.Equal(t, tally.Row{State: "Total", Total: 3, Negative: 1, Positive: 2}, run.Totals)

	rows, err := store.RunRows(ctx, id)
	require.NoError(t, err)

	rebuilt := run.Report(rows)
	if diff := cmp.Diff(report, rebuilt); diff != "" {
		t.Errorf("Report() mismatch (-want +got):\n%s", diff)
	}

	_, err = store.GetRun(ctx, uuid.New())
	require.ErrorIs(t, err, history.ErrRunNotFound)
}
