package history

import (
	"strconv"
	"strings"
)

// schemaStatements bootstrap the history tables. Timestamps and dates are
// stored as ISO 8601 text so both backends share one schema.
//
//nolint:gochecknoglobals // Read-only DDL.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS tally_runs (
		id TEXT PRIMARY KEY,
		generated_at TEXT NOT NULL,
		input_path TEXT NOT NULL,
		output_path TEXT NOT NULL,
		count_policy TEXT NOT NULL,
		join_anchor TEXT NOT NULL,
		days_previous INTEGER,
		cutoff TEXT,
		records INTEGER NOT NULL,
		filtered INTEGER NOT NULL,
		states INTEGER NOT NULL,
		total_cartons INTEGER NOT NULL,
		negative_cartons INTEGER NOT NULL,
		positive_cartons INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tally_rows (
		run_id TEXT NOT NULL REFERENCES tally_runs(id),
		state TEXT NOT NULL,
		total_cartons INTEGER NOT NULL,
		negative_cartons INTEGER NOT NULL,
		positive_cartons INTEGER NOT NULL,
		latest_date TEXT,
		PRIMARY KEY (run_id, state)
	)`,
}

const (
	insertRunSQL = `INSERT INTO tally_runs (
		id, generated_at, input_path, output_path, count_policy, join_anchor,
		days_previous, cutoff, records, filtered, states,
		total_cartons, negative_cartons, positive_cartons
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insertRowSQL = `INSERT INTO tally_rows (
		run_id, state, total_cartons, negative_cartons, positive_cartons, latest_date
	) VALUES (?, ?, ?, ?, ?, ?)`

	listRunsSQL = `SELECT
		id, generated_at, input_path, output_path, count_policy, join_anchor,
		days_previous, cutoff, records, filtered, states,
		total_cartons, negative_cartons, positive_cartons
	FROM tally_runs ORDER BY generated_at DESC, id LIMIT ?`

	getRunSQL = `SELECT
		id, generated_at, input_path, output_path, count_policy, join_anchor,
		days_previous, cutoff, records, filtered, states,
		total_cartons, negative_cartons, positive_cartons
	FROM tally_runs WHERE id = ?`

	runRowsSQL = `SELECT state, total_cartons, negative_cartons, positive_cartons, latest_date
	FROM tally_rows WHERE run_id = ? ORDER BY state`
)

// rebind rewrites ? placeholders as $1, $2, ... for postgres.
func rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
