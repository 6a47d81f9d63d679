package cli

import (
	"errors"
	"io/fs"

	"github.com/dholab/gitmilk/internal/configloader"
	"github.com/dholab/gitmilk/pkg/detection"
	"github.com/dholab/gitmilk/pkg/fsutil"
	"github.com/dholab/gitmilk/pkg/normalize"
	"github.com/dholab/gitmilk/pkg/splice"
	"github.com/dholab/gitmilk/pkg/tally"
)

// Exit codes for gitmilk, following sysexits(3).
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitFailure indicates an unclassified failure.
	ExitFailure = 1

	// ExitUsage indicates invalid command-line usage.
	ExitUsage = 64

	// ExitDataError indicates malformed input data.
	ExitDataError = 65

	// ExitNoInput indicates a missing input file.
	ExitNoInput = 66

	// ExitInternal indicates an internal error, such as a broken join.
	ExitInternal = 70

	// ExitIOError indicates a failure writing output or history.
	ExitIOError = 74

	// ExitConfigError indicates configuration errors.
	ExitConfigError = 78
)

// Sentinel errors raised by the commands themselves.
var (
	// ErrUsage marks bad flags or positional arguments.
	ErrUsage = errors.New("invalid usage")

	// ErrOutput marks a failure writing a result file.
	ErrOutput = errors.New("write output")

	// ErrHistory marks a failure reading or writing the run history.
	ErrHistory = errors.New("run history")

	// ErrConcurrentEdit is returned when a file changes while a command
	// is rewriting it in place.
	ErrConcurrentEdit = errors.New("file modified during processing")
)

// dataErrors are the sentinels reported as ExitDataError.
//
//nolint:gochecknoglobals // Read-only lookup table.
var dataErrors = []error{
	detection.ErrSchema,
	detection.ErrDateParse,
	detection.ErrOutcomeParse,
	detection.ErrEmptyField,
	normalize.ErrMissingAssets,
	splice.ErrSectionUnterminated,
	tally.ErrNegativeWindow,
}

// ExitCodeFromError maps a command error to a process exit code.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, configloader.ErrConfig):
		return ExitConfigError
	case errors.Is(err, ErrUsage):
		return ExitUsage
	case errors.Is(err, detection.ErrInputNotFound), errors.Is(err, fsutil.ErrNotFound):
		return ExitNoInput
	case isDataError(err):
		return ExitDataError
	case errors.Is(err, tally.ErrJoinCardinality):
		return ExitInternal
	case errors.Is(err, ErrOutput), errors.Is(err, ErrHistory), errors.Is(err, ErrConcurrentEdit),
		errors.Is(err, fs.ErrPermission), errors.Is(err, fsutil.ErrPermissionDenied):
		return ExitIOError
	default:
		return ExitFailure
	}
}

func isDataError(err error) bool {
	for _, sentinel := range dataErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
