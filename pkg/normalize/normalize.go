// Package normalize checks a proposed detection submission before it is
// merged: every referenced primer and probe asset must exist, and exact
// duplicate rows are dropped.
package normalize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/dholab/gitmilk/pkg/detection"
	"github.com/dholab/gitmilk/pkg/fsutil"
)

// Asset columns and the placeholder used for withheld asset names.
const (
	ColumnPrimerAsset = "primer_asset_file"
	ColumnProbeAsset  = "probe_asset_file"
	Redacted          = "REDACTED"
)

// ErrMissingAssets is returned when referenced asset files are absent.
var ErrMissingAssets = errors.New("asset files missing")

// MissingAssetsError lists the referenced asset files that were not found.
type MissingAssetsError struct {
	Dir   string
	Files []string
}

func (e *MissingAssetsError) Error() string {
	return fmt.Sprintf("%d asset files referenced in the submission are missing from %s: %s",
		len(e.Files), e.Dir, strings.Join(e.Files, ", "))
}

func (e *MissingAssetsError) Unwrap() error {
	return ErrMissingAssets
}

// AssetCheck summarizes a successful asset validation.
type AssetCheck struct {
	Primers int
	Probes  int
}

// ValidateAssetFiles checks that every primer and probe asset named in
// table exists in dir. REDACTED entries are skipped. The primer and probe
// columns are checked independently and all missing files are reported
// together, in table order without repeats.
func ValidateAssetFiles(ctx context.Context, table *Table, dir string) (*AssetCheck, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("validate assets: %w", ctx.Err())
	default:
	}

	if err := fsutil.StatDir(dir); err != nil {
		return nil, fmt.Errorf("assets directory: %w", err)
	}

	primerCol, probeCol := table.Column(ColumnPrimerAsset), table.Column(ColumnProbeAsset)
	var missingCols []string
	if primerCol < 0 {
		missingCols = append(missingCols, ColumnPrimerAsset)
	}
	if probeCol < 0 {
		missingCols = append(missingCols, ColumnProbeAsset)
	}
	if len(missingCols) > 0 {
		return nil, fmt.Errorf("%w: missing columns: %s", detection.ErrSchema, strings.Join(missingCols, ", "))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list assets directory: %w", err)
	}
	present := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		present[entry.Name()] = struct{}{}
	}

	primers := expectedAssets(table, primerCol)
	probes := expectedAssets(table, probeCol)

	var missing []string
	for _, name := range slices.Concat(primers, probes) {
		if _, ok := present[name]; !ok && !slices.Contains(missing, name) {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return nil, &MissingAssetsError{Dir: dir, Files: missing}
	}

	return &AssetCheck{Primers: len(primers), Probes: len(probes)}, nil
}

// expectedAssets returns the non-redacted, non-empty values of column col.
func expectedAssets(table *Table, col int) []string {
	var names []string
	for _, row := range table.Rows {
		name := strings.TrimSpace(row[col])
		if name == "" || name == Redacted {
			continue
		}
		names = append(names, name)
	}
	return names
}

// RemoveDuplicateRows returns a copy of table without exact duplicate rows,
// keeping the first occurrence of each, and the number of rows removed.
func RemoveDuplicateRows(table *Table) (*Table, int) {
	out := &Table{
		Header:    table.Header,
		Delimiter: table.Delimiter,
		Rows:      make([][]string, 0, len(table.Rows)),
	}

	seen := make(map[string]struct{}, len(table.Rows))
	for _, row := range table.Rows {
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out.Rows = append(out.Rows, row)
	}

	return out, len(table.Rows) - len(out.Rows)
}

// rowKey joins fields with a separator that cannot occur in parsed fields.
func rowKey(row []string) string {
	return strings.Join(row, "\x00")
}
