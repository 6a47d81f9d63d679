package normalize

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/dholab/gitmilk/pkg/detection"
	"github.com/dholab/gitmilk/pkg/fsutil"
)

// Table is a submission kept as raw strings, so normalization writes back
// exactly the values it read.
type Table struct {
	Header []string
	Rows   [][]string

	// Delimiter is the field separator the table was read with.
	Delimiter rune
}

// Column returns the index of name in the header, or -1.
func (t *Table) Column(name string) int {
	return slices.Index(t.Header, name)
}

// ReadTable reads the delimited file at path. The delimiter is derived
// from the file name.
func ReadTable(ctx context.Context, path string) (*Table, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("read table: %w", ctx.Err())
	default:
	}

	if _, err := fsutil.Stat(path); err != nil {
		if errors.Is(err, fsutil.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", detection.ErrInputNotFound, path)
		}
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	table, err := DecodeTable(file, detection.DelimiterFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// DecodeTable parses a delimited table from r.
func DecodeTable(r io.Reader, delimiter rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header row", detection.ErrSchema)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")

	table := &Table{Header: header, Delimiter: delimiter}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
				return nil, fmt.Errorf("%w: %w", detection.ErrSchema, err)
			}
			return nil, fmt.Errorf("read row: %w", err)
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// Encode writes the table with its delimiter.
func (t *Table) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)
	cw.Comma = t.Delimiter
	if cw.Comma == 0 {
		cw.Comma = '\t'
	}

	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
