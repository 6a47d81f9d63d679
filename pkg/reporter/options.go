package reporter

import (
	"io"
	"os"

	"github.com/google/uuid"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// Options configures reporter behavior.
type Options struct {
	// Writer is the destination for output (typically the output file).
	Writer io.Writer

	// Format specifies the output format.
	Format Format

	// Color controls colorized table output.
	// Values: "auto" (default), "always", "never"
	Color string

	// RunID identifies the run in JSON output. A zero value is replaced
	// with a fresh random id.
	RunID uuid.UUID

	// Compact uses minified JSON output.
	Compact bool

	// TermWidth overrides terminal width detection for table output.
	TermWidth int
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Writer: os.Stdout,
		Format: FormatTSV,
		Color:  "auto",
	}
}
