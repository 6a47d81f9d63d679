package config

// Template is the commented starter configuration written by `gitmilk init`.
// Every key is shown with its default value.
const Template = `# gitmilk configuration
# See: https://github.com/dholab/dairy-hpai-monitoring

# How cartons are counted per state: distinct-cartons or rows.
# distinct-cartons counts a resampled carton once; rows counts every result.
count_policy: distinct-cartons

# Which states appear in the tally: total (states with any sample in the
# window) or union (states present in any partial count).
join_anchor: total

# Only count cartons purchased within the last N days. Omit for all data.
# days_previous: 90

# Report format: tsv, markdown, json, or table
format: tsv

# Directory holding primer and probe asset files referenced by submissions
assets_dir: assets

# Log level: debug, info, warn, error
log_level: info

# Record every tally run in a database (sqlite:PATH or postgres://...)
# history:
#   dsn: sqlite:.gitmilk/history.db

# README splicing
splice:
  start_heading: "## Positivity Tally by State"
  end_heading: "## Sampling Dairy Products for HPAI RNA"
  backup: true
`
