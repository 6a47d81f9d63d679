package reporter

import "fmt"

// Format represents an output format.
type Format string

// Output formats supported by the reporter.
const (
	FormatTSV      Format = "tsv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatTable    Format = "table"
)

// ParseFormat parses a format string, returning an error for unknown formats.
func ParseFormat(formatStr string) (Format, error) {
	switch formatStr {
	case "tsv", "":
		return FormatTSV, nil
	case "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "table":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format %q; valid formats: tsv, markdown, json, table", formatStr)
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsValid returns true if the format is a known valid format.
func (f Format) IsValid() bool {
	switch f {
	case FormatTSV, FormatMarkdown, FormatJSON, FormatTable:
		return true
	default:
		return false
	}
}
