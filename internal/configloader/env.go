package configloader

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dholab/gitmilk/pkg/config"
)

// envVarPrefix is the prefix for all gitmilk environment variables.
const envVarPrefix = "GITMILK_"

type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
)

type envMapping struct {
	field string
	typ   envFieldType
	help  string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"COUNT_POLICY":  {field: "count_policy", typ: envTypeString, help: "Count policy: rows or distinct-cartons"},
	"JOIN_ANCHOR":   {field: "join_anchor", typ: envTypeString, help: "Join anchor: total or union"},
	"DAYS_PREVIOUS": {field: "days_previous", typ: envTypeInt, help: "Trailing window in days"},
	"FORMAT":        {field: "format", typ: envTypeString, help: "Output format: tsv, markdown, json, or table"},
	"ASSETS_DIR":    {field: "assets_dir", typ: envTypeString, help: "Directory holding primer and probe assets"},
	"LOG_LEVEL":     {field: "log_level", typ: envTypeString, help: "Log level: debug, info, warn, error"},
	"HISTORY_DSN":   {field: "history.dsn", typ: envTypeString, help: "History store DSN"},
	"BACKUP":        {field: "splice.backup", typ: envTypeBool, help: "Keep a backup when splicing in place: true or false"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with GITMILK_ (e.g., GITMILK_COUNT_POLICY).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: invalid boolean for %s: %q (expected true/false/1/0)", ErrConfig, envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: invalid integer for %s: %q", ErrConfig, envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "count_policy":
		cfg.CountPolicy = value
	case "join_anchor":
		cfg.JoinAnchor = value
	case "format":
		cfg.Format = config.OutputFormat(value)
	case "assets_dir":
		cfg.AssetsDir = value
	case "log_level":
		cfg.LogLevel = value
	case "history.dsn":
		cfg.History.DSN = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "splice.backup":
		cfg.Splice.Backup = &value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "days_previous":
		cfg.DaysPrevious = &value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// ListEnvVars returns all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	vars := make(map[string]string, len(envMappings))
	for suffix, mapping := range envMappings {
		vars[envVarPrefix+suffix] = mapping.help
	}
	return vars
}
