// Package config defines core configuration types for gitmilk.
// These types are pure data structures; loading and merging live in
// internal/configloader.
package config

import "github.com/dholab/gitmilk/pkg/splice"

// OutputFormat specifies how a tally report is serialized.
type OutputFormat string

const (
	FormatTSV      OutputFormat = "tsv"
	FormatMarkdown OutputFormat = "markdown"
	FormatJSON     OutputFormat = "json"
	FormatTable    OutputFormat = "table"
)

// Default values used by NewConfig.
const (
	DefaultCountPolicy  = "distinct-cartons"
	DefaultJoinAnchor   = "total"
	DefaultAssetsDir    = "assets"
	DefaultLogLevel     = "info"
	DefaultStartHeading = splice.DefaultStartHeading
	DefaultEndHeading   = splice.DefaultEndHeading
)

// HistoryConfig controls persistence of report runs.
type HistoryConfig struct {
	// DSN selects the store: "sqlite:PATH", "file:PATH", or "postgres://...".
	// Empty disables history.
	DSN string `yaml:"dsn"`
}

// SpliceConfig controls how the tally table is spliced into the README.
type SpliceConfig struct {
	// StartHeading is the heading line that opens the replaced section.
	StartHeading string `yaml:"start_heading"`

	// EndHeading is the heading line that closes it. It is kept.
	EndHeading string `yaml:"end_heading"`

	// Backup writes a sidecar copy before rewriting in place.
	Backup *bool `yaml:"backup"`
}

// Config is the root configuration structure for gitmilk.
type Config struct {
	// CountPolicy is "rows" or "distinct-cartons".
	CountPolicy string `yaml:"count_policy"`

	// JoinAnchor is "total" or "union".
	JoinAnchor string `yaml:"join_anchor"`

	// DaysPrevious restricts reports to the trailing window. Nil disables it.
	DaysPrevious *int `yaml:"days_previous"`

	// Format is the report output format.
	Format OutputFormat `yaml:"format"`

	// AssetsDir is where primer and probe asset files live.
	AssetsDir string `yaml:"assets_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	History HistoryConfig `yaml:"history"`
	Splice  SpliceConfig  `yaml:"splice"`

	// CLI-level options (not persisted to config files).

	// Preview renders the markdown tally in the terminal after writing.
	Preview bool `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	backup := true
	return &Config{
		CountPolicy: DefaultCountPolicy,
		JoinAnchor:  DefaultJoinAnchor,
		Format:      FormatTSV,
		AssetsDir:   DefaultAssetsDir,
		LogLevel:    DefaultLogLevel,
		Splice: SpliceConfig{
			StartHeading: DefaultStartHeading,
			EndHeading:   DefaultEndHeading,
			Backup:       &backup,
		},
	}
}

// BackupEnabled reports whether in-place splices keep a sidecar backup.
func (s SpliceConfig) BackupEnabled() bool {
	return s.Backup == nil || *s.Backup
}

// IsValid returns true if the format is a known output format.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatTSV, FormatMarkdown, FormatJSON, FormatTable:
		return true
	default:
		return false
	}
}
