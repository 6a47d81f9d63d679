package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dholab/gitmilk/internal/logging"
	"github.com/dholab/gitmilk/pkg/config"
	"github.com/dholab/gitmilk/pkg/fsutil"
)

// defaultConfigFile is the project config written by init.
const defaultConfigFile = ".gitmilk.yml"

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a gitmilk configuration file",
		Long: `Create a commented .gitmilk.yml in the current directory showing every
setting with its default value.

Examples:
  gitmilk init                      Create .gitmilk.yml
  gitmilk init --output ci.yml      Write to a custom file path
  gitmilk init --force              Overwrite an existing file`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", defaultConfigFile, "Output file path")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := interactiveLogger(cmd)

	absPath, err := filepath.Abs(flags.output)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := fsutil.Stat(absPath); err == nil {
		if !flags.force {
			return fmt.Errorf("%w: file %q already exists; use --force to overwrite", ErrUsage, flags.output)
		}
		logger.Warn("overwriting existing file", logging.FieldPath, flags.output)
	}

	if err := fsutil.WriteAtomic(cmd.Context(), absPath, []byte(config.Template), fsutil.DefaultFileMode); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutput, flags.output, err)
	}

	logger.Info("created configuration file", logging.FieldPath, flags.output)
	logger.Info("customize your configuration by editing the file")

	return nil
}
