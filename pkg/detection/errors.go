package detection

import (
	"errors"
	"fmt"
)

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrInputNotFound indicates the input path does not exist.
	ErrInputNotFound = errors.New("input not found")

	// ErrSchema indicates a required column is absent or a row is malformed.
	ErrSchema = errors.New("schema error")

	// ErrDateParse indicates a date_purchased value could not be parsed.
	ErrDateParse = errors.New("unparseable date")

	// ErrOutcomeParse indicates a positive_for_HPAI value is not a boolean.
	ErrOutcomeParse = errors.New("unparseable test outcome")

	// ErrEmptyField indicates a required identifier is blank.
	ErrEmptyField = errors.New("empty required field")
)

// RowError locates a failure to a single cell of the input.
type RowError struct {
	// Line is the 1-based line number in the input file.
	Line   int
	Column string
	Value  string
	Err    error
}

// Error implements the error interface.
func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: column %s: %v: %q", e.Line, e.Column, e.Err, e.Value)
}

// Unwrap returns the underlying sentinel.
func (e *RowError) Unwrap() error {
	return e.Err
}
