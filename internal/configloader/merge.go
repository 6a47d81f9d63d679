package configloader

import "github.com/dholab/gitmilk/pkg/config"

// merge combines two configurations, with override taking precedence over base.
//   - Strings: override overwrites base if non-empty
//   - Pointers: override overwrites base if non-nil, so an explicit 0 or false wins
//   - Nil/unset values in override do not override values in base
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	if override.CountPolicy != "" {
		result.CountPolicy = override.CountPolicy
	}
	if override.JoinAnchor != "" {
		result.JoinAnchor = override.JoinAnchor
	}
	if override.DaysPrevious != nil {
		days := *override.DaysPrevious
		result.DaysPrevious = &days
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.AssetsDir != "" {
		result.AssetsDir = override.AssetsDir
	}
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.History.DSN != "" {
		result.History.DSN = override.History.DSN
	}
	if override.Splice.StartHeading != "" {
		result.Splice.StartHeading = override.Splice.StartHeading
	}
	if override.Splice.EndHeading != "" {
		result.Splice.EndHeading = override.Splice.EndHeading
	}
	if override.Splice.Backup != nil {
		backup := *override.Splice.Backup
		result.Splice.Backup = &backup
	}

	// CLI-only options only ever come from the CLI layer.
	if override.Preview {
		result.Preview = true
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
