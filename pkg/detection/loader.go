package detection

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dholab/gitmilk/pkg/fsutil"
)

// utf8BOM is stripped from the first header cell when present.
const utf8BOM = "\uFEFF"

// dateLayouts are the date_purchased formats accepted, tried in order.
//
//nolint:gochecknoglobals // Read-only lookup table.
var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"1/2/2006",
}

// Options controls how a submission is read.
type Options struct {
	// Delimiter overrides the field delimiter. If 0, Load derives it from
	// the file name and Read uses a tab.
	Delimiter rune
}

// Load reads the submission at path.
// A missing path yields ErrInputNotFound before any parsing happens.
func Load(ctx context.Context, path string, opts Options) (*Dataset, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load: %w", ctx.Err())
	default:
	}

	if _, err := fsutil.Stat(path); err != nil {
		if errors.Is(err, fsutil.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if opts.Delimiter == 0 {
		opts.Delimiter = DelimiterFor(path)
	}

	dataset, err := Read(file, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dataset.Path = path

	return dataset, nil
}

// Read parses a submission from r. Every row must parse; the first bad
// row aborts the read with a *RowError.
func Read(r io.Reader, opts Options) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	if reader.Comma == 0 {
		reader.Comma = delimiterTab
	}
	// Free-text columns in submissions carry stray quotes.
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header row", ErrSchema)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	header = normalizeHeader(header)

	index, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	dataset := &Dataset{Header: header}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
				return nil, fmt.Errorf("%w: %w", ErrSchema, err)
			}
			return nil, fmt.Errorf("read row: %w", err)
		}

		line, _ := reader.FieldPos(0)

		record, err := parseRecord(row, index, line)
		if err != nil {
			return nil, err
		}

		dataset.Records = append(dataset.Records, record)
	}

	return dataset, nil
}

// columnIndex holds the positions of the required columns.
type columnIndex struct {
	date, state, carton, positive int
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		out[i] = strings.TrimSpace(name)
	}
	return out
}

func indexColumns(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := positions[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return columnIndex{}, fmt.Errorf("%w: missing required columns: %s", ErrSchema, strings.Join(missing, ", "))
	}

	return columnIndex{
		date:     positions[ColumnDate],
		state:    positions[ColumnState],
		carton:   positions[ColumnCarton],
		positive: positions[ColumnPositive],
	}, nil
}

func parseRecord(row []string, index columnIndex, line int) (Record, error) {
	state := strings.TrimSpace(row[index.state])
	if state == "" {
		return Record{}, &RowError{Line: line, Column: ColumnState, Value: row[index.state], Err: ErrEmptyField}
	}

	carton := strings.TrimSpace(row[index.carton])
	if carton == "" {
		return Record{}, &RowError{Line: line, Column: ColumnCarton, Value: row[index.carton], Err: ErrEmptyField}
	}

	date, ok := ParseDate(row[index.date])
	if !ok {
		return Record{}, &RowError{Line: line, Column: ColumnDate, Value: row[index.date], Err: ErrDateParse}
	}

	positive, ok := ParseOutcome(row[index.positive])
	if !ok {
		return Record{}, &RowError{Line: line, Column: ColumnPositive, Value: row[index.positive], Err: ErrOutcomeParse}
	}

	return Record{
		State:         state,
		Carton:        carton,
		Positive:      positive,
		DatePurchased: date,
	}, nil
}

// ParseDate parses a date_purchased cell into a UTC calendar date.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		year, month, day := parsed.Date()
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
	}

	return time.Time{}, false
}

// ParseOutcome parses a positive_for_HPAI cell. True/False are matched
// case-insensitively; 1/0 are also accepted.
func ParseOutcome(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	default:
		return false, false
	}
}
