// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldInput      = "input"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"

	// Configuration fields.
	FieldPolicy       = "count_policy"
	FieldAnchor       = "join_anchor"
	FieldDaysPrevious = "days_previous"
	FieldFormat       = "format"
	FieldFiles        = "files"

	// Tally fields.
	FieldRecords  = "records"
	FieldFiltered = "filtered"
	FieldStates   = "states"
	FieldCutoff   = "cutoff"
	FieldRunID    = "run_id"

	// Normalize fields.
	FieldRowsIn      = "rows_in"
	FieldRowsOut     = "rows_out"
	FieldAssetsDir   = "assets_dir"
	FieldMissing     = "missing"
	FieldDuplicates  = "duplicates"
	FieldStartMarker = "start_heading"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
