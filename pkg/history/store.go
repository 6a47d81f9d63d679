// Package history records tally runs in a SQL database so published
// tallies can be compared over time. SQLite (modernc.org/sqlite) and
// PostgreSQL (jackc/pgx) are supported through database/sql.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	// Register database/sql drivers.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/dholab/gitmilk/pkg/detection"
	"github.com/dholab/gitmilk/pkg/tally"
)

// DefaultLimit is the number of runs listed when no limit is given.
const DefaultLimit = 20

// generatedAtLayout is RFC 3339 with fixed nanosecond precision, so that the
// stored text sorts in time order and runs within one second stay ordered.
const generatedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when a run id is not in the store.
var ErrRunNotFound = errors.New("run not found")

// Run is one stored tally run.
type Run struct {
	ID          uuid.UUID
	GeneratedAt time.Time
	Input       string
	Output      string
	Policy      string
	Anchor      string

	// DaysPrevious and Cutoff are nil for unfiltered runs.
	DaysPrevious *int
	Cutoff       *time.Time

	Records  int
	Filtered int
	States   int

	// Totals holds the summed counts; its State is "Total".
	Totals tally.Row
}

// Store persists tally runs.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the store named by dsn and bootstraps its schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	driver, source, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	store := New(db, driver)
	if err := store.Init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// New wraps an open database. driver selects the placeholder style and must
// be DriverSQLite or DriverPostgres.
func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Init creates the history tables if they do not exist.
func (s *Store) Init(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap history schema: %w", err)
		}
	}
	return nil
}

// SaveRun stores report and its rows under id in a single transaction.
func (s *Store) SaveRun(ctx context.Context, id uuid.UUID, input, output string, report *tally.Report) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	totals := report.Totals()
	_, err = tx.ExecContext(ctx, s.q(insertRunSQL),
		id.String(),
		report.GeneratedAt.UTC().Format(generatedAtLayout),
		input,
		output,
		report.Policy.String(),
		report.Anchor.String(),
		nullInt(report.DaysPrevious),
		nullTime(report.Cutoff, time.RFC3339),
		report.Records,
		report.Filtered,
		len(report.Rows),
		totals.Total,
		totals.Negative,
		totals.Positive,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	insertRow := s.q(insertRowSQL)
	for _, row := range report.Rows {
		_, err = tx.ExecContext(ctx, insertRow,
			id.String(),
			row.State,
			row.Total,
			row.Negative,
			row.Positive,
			nullTime(row.LatestDate, detection.DateLayout),
		)
		if err != nil {
			return fmt.Errorf("insert row %s: %w", row.State, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx, s.q(listRunsSQL), limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	return runs, nil
}

// GetRun returns the run with the given id, or ErrRunNotFound.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, s.q(getRunSQL), id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// Report rebuilds the tally report of a stored run from its rows.
func (r *Run) Report(rows []tally.Row) *tally.Report {
	policy, _ := tally.ParseCountPolicy(r.Policy)
	anchor, _ := tally.ParseJoinAnchor(r.Anchor)
	return &tally.Report{
		Rows:         rows,
		Policy:       policy,
		Anchor:       anchor,
		DaysPrevious: r.DaysPrevious,
		Cutoff:       r.Cutoff,
		GeneratedAt:  r.GeneratedAt,
		Records:      r.Records,
		Filtered:     r.Filtered,
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(scanner rowScanner) (*Run, error) {
	var (
		run          Run
		id           string
		generatedAt  string
		daysPrevious sql.NullInt64
		cutoff       sql.NullString
	)
	err := scanner.Scan(
		&id, &generatedAt, &run.Input, &run.Output, &run.Policy, &run.Anchor,
		&daysPrevious, &cutoff, &run.Records, &run.Filtered, &run.States,
		&run.Totals.Total, &run.Totals.Negative, &run.Totals.Positive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("run id %q: %w", id, err)
	}
	if run.GeneratedAt, err = time.Parse(time.RFC3339, generatedAt); err != nil {
		return nil, fmt.Errorf("run %s generated_at: %w", id, err)
	}
	if daysPrevious.Valid {
		days := int(daysPrevious.Int64)
		run.DaysPrevious = &days
	}
	if run.Cutoff, err = parseNullTime(cutoff, time.RFC3339); err != nil {
		return nil, fmt.Errorf("run %s cutoff: %w", id, err)
	}
	run.Totals.State = "Total"

	return &run, nil
}

// RunRows returns the stored rows of one run, sorted by state.
func (s *Store) RunRows(ctx context.Context, id uuid.UUID) ([]tally.Row, error) {
	rows, err := s.db.QueryContext(ctx, s.q(runRowsSQL), id.String())
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", id, err)
	}
	defer rows.Close()

	var result []tally.Row
	for rows.Next() {
		var (
			row    tally.Row
			latest sql.NullString
		)
		if err := rows.Scan(&row.State, &row.Total, &row.Negative, &row.Positive, &latest); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if row.LatestDate, err = parseNullTime(latest, detection.DateLayout); err != nil {
			return nil, fmt.Errorf("row %s latest date: %w", row.State, err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query run %s: %w", id, err)
	}

	return result, nil
}

func (s *Store) q(query string) string {
	return rebind(s.driver, query)
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullTime(t *time.Time, layout string) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(layout), Valid: true}
}

func parseNullTime(s sql.NullString, layout string) (*time.Time, error) {
	if !s.Valid {
		return nil, nil //nolint:nilnil // NULL column
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
