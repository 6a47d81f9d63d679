package history

import (
	"errors"
	"fmt"
	"strings"
)

// Driver names registered by the imported database/sql drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// ErrUnsupportedDSN is returned for DSNs that name no known backend.
var ErrUnsupportedDSN = errors.New("unsupported history DSN")

// ParseDSN maps a history DSN to a database/sql driver name and data source.
//
//	sqlite:PATH           -> sqlite, PATH
//	file:PATH             -> sqlite, file:PATH
//	postgres://...        -> pgx, postgres://...
//	postgresql://...      -> pgx, postgresql://...
func ParseDSN(dsn string) (string, string, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DriverPostgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite:"):
		source := strings.TrimPrefix(dsn, "sqlite:")
		if source == "" {
			return "", "", fmt.Errorf("%w: %q has no path", ErrUnsupportedDSN, dsn)
		}
		return DriverSQLite, source, nil
	case strings.HasPrefix(dsn, "file:"):
		if dsn == "file:" {
			return "", "", fmt.Errorf("%w: %q has no path", ErrUnsupportedDSN, dsn)
		}
		return DriverSQLite, dsn, nil
	default:
		return "", "", fmt.Errorf("%w: %q; use sqlite:PATH, file:PATH, or postgres://", ErrUnsupportedDSN, dsn)
	}
}
