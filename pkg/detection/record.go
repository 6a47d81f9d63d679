// Package detection loads per-carton HPAI detection results from delimited
// submission files into typed records.
package detection

import "time"

// Raw column names in DETECTION_RESULTS.tsv.
const (
	ColumnDate     = "date_purchased"
	ColumnState    = "processing_plant_state"
	ColumnCarton   = "carton"
	ColumnPositive = "positive_for_HPAI"
)

// StateLabel is the display label the raw state column is renamed to.
// Every report header uses it as the first column.
const StateLabel = "Processing Plant State"

// DateLayout is the calendar date format used for output.
const DateLayout = "2006-01-02"

// RequiredColumns lists the raw columns a submission must carry.
//
//nolint:gochecknoglobals // Read-only lookup table.
var RequiredColumns = []string{ColumnDate, ColumnState, ColumnCarton, ColumnPositive}

// Record is one tested carton sample.
type Record struct {
	// State is the processing-plant state, never empty after loading.
	State string

	// Carton identifies the unit of testing. A carton can appear in several
	// records when it is resampled.
	Carton string

	// Positive is the HPAI RNA test outcome.
	Positive bool

	// DatePurchased is a calendar date at midnight UTC.
	DatePurchased time.Time
}

// Dataset is a fully loaded submission. Records is read-only once returned
// and may be scanned any number of times.
type Dataset struct {
	Path    string
	Header  []string
	Records []Record
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}
