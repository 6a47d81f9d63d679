package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dholab/gitmilk/internal/logging"
	"github.com/dholab/gitmilk/pkg/fsutil"
	"github.com/dholab/gitmilk/pkg/splice"
)

// Default paths for the splice command.
const (
	defaultReadme     = "README.md"
	defaultTallyFile  = "assets/positivity_tally.md"
	defaultNewReadme  = "new_readme.md"
	startHeadingField = "start_heading"
)

// spliceFlags holds the flags for the splice command.
type spliceFlags struct {
	readme    string
	tallyFile string
	output    string
	inPlace   bool
	noBackup  bool
}

func newSpliceCommand() *cobra.Command {
	flags := &spliceFlags{}

	cmd := &cobra.Command{
		Use:   "splice",
		Short: "Replace the README tally section with a rendered Markdown tally",
		Long: `Replace the body of the README's positivity tally section with the
contents of a Markdown tally file. The section runs from the start heading
up to the next configured end heading; both headings are kept.

If the start heading is not found, the README is left as it is.

Examples:
  gitmilk splice
  gitmilk splice -r README.md -f assets/positivity_tally.md -o new_readme.md
  gitmilk splice --in-place`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSplice(cmd, flags)
		},
		Annotations: readsConfig(),
	}

	cmd.Flags().StringVarP(&flags.readme, "readme", "r", defaultReadme, "README to update")
	cmd.Flags().StringVarP(&flags.tallyFile, "tally_file", "f", defaultTallyFile,
		"Markdown tally to insert")
	cmd.Flags().StringVarP(&flags.output, "output", "o", defaultNewReadme, "where to write the updated README")
	cmd.Flags().BoolVar(&flags.inPlace, "in-place", false, "rewrite the README itself instead of --output")
	cmd.Flags().BoolVar(&flags.noBackup, "no-backup", false, "skip the backup when rewriting in place")

	return cmd
}

func runSplice(cmd *cobra.Command, flags *spliceFlags) error {
	if flags.inPlace && cmd.Flags().Changed("output") {
		return fmt.Errorf("%w: --in-place and --output cannot be used together", ErrUsage)
	}

	ctx, cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	logger := logging.FromContext(ctx)

	readme, readmeInfo, err := fsutil.ReadFile(ctx, flags.readme)
	if err != nil {
		return err
	}

	table, _, err := fsutil.ReadFile(ctx, flags.tallyFile)
	if err != nil {
		return err
	}

	result, err := splice.Splice(readme, table, splice.Options{
		StartHeading: cfg.Splice.StartHeading,
		EndHeading:   cfg.Splice.EndHeading,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", flags.readme, err)
	}

	if !result.Replaced {
		logger.Warn("start heading not found; README left unchanged",
			logging.FieldPath, flags.readme,
			startHeadingField, cfg.Splice.StartHeading,
		)
	} else {
		logger.Debug("tally section located",
			logging.FieldPath, flags.readme,
			"start_line", result.StartLine,
			"end_line", result.EndLine,
		)
	}

	if !flags.inPlace {
		if err := fsutil.WriteAtomic(ctx, flags.output, result.Content, readmeInfo.Mode.Perm()); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrOutput, flags.output, err)
		}
		logger.Info("README written", logging.FieldInput, flags.readme, logging.FieldOutput, flags.output)
		return nil
	}

	if !result.Replaced {
		return nil
	}

	modified, err := fsutil.CheckModified(ctx, readmeInfo)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOutput, err)
	}
	if modified {
		return fmt.Errorf("%w: %s", ErrConcurrentEdit, flags.readme)
	}

	if cfg.Splice.BackupEnabled() && !flags.noBackup {
		if _, err := fsutil.CreateBackup(ctx, flags.readme); err != nil {
			return fmt.Errorf("%w: %w", ErrOutput, err)
		}
		logger.Debug("backup written", logging.FieldPath, fsutil.BackupPath(flags.readme))
	}

	written, err := fsutil.WriteAtomicIfChanged(ctx, flags.readme, result.Content, readmeInfo.Mode.Perm())
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutput, flags.readme, err)
	}
	if written {
		logger.Info("README updated", logging.FieldPath, flags.readme)
	} else {
		logger.Info("README already up to date", logging.FieldPath, flags.readme)
	}

	return nil
}
