// Package cli provides the Cobra command structure for gitmilk.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dholab/gitmilk/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root gitmilk command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "gitmilk",
		Short: "Tally HPAI detections in retail dairy samples by state",
		Long: `gitmilk maintains the per-state positivity tally published with the
dairy HPAI monitoring data.

It counts tested cartons per processing-plant state, splits them into
positive and negative results, records the latest purchase date seen, and
writes the summary as TSV, Markdown, JSON, or a terminal table. Supporting
commands check proposed submissions against the asset directory and splice
the Markdown tally into the project README.`,
		Args: usageArgs(cobra.NoArgs),
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	})

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	// Add subcommands.
	rootCmd.AddCommand(newTallyCommand())
	rootCmd.AddCommand(newNormalizeCommand())
	rootCmd.AddCommand(newSpliceCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	installHelp(rootCmd)

	return rootCmd
}

// usageArgs tags positional-argument failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		return nil
	}
}
