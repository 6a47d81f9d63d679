package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dholab/gitmilk/internal/logging"
	"github.com/dholab/gitmilk/internal/ui/pretty"
	"github.com/dholab/gitmilk/pkg/config"
	"github.com/dholab/gitmilk/pkg/fsutil"
	"github.com/dholab/gitmilk/pkg/normalize"
)

// defaultNormalizedTable is where normalize writes when --output is unset.
const defaultNormalizedTable = "normalized_table.tsv"

// normalizeFlags holds the flags for the normalize command.
type normalizeFlags struct {
	inputTable string
	assetsDir  string
	output     string
}

func newNormalizeCommand() *cobra.Command {
	flags := &normalizeFlags{}

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Check a proposed submission and drop duplicate rows",
		Long: `Check that every primer and probe asset file named in a proposed
submission exists in the assets directory, then remove exact duplicate rows
and write the cleaned table. REDACTED asset names are not checked.

Examples:
  gitmilk normalize -i submission.tsv
  gitmilk normalize -i submission.tsv -a assets -o normalized_table.tsv`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNormalize(cmd, flags)
		},
		Annotations: readsConfig(),
	}

	cmd.Flags().StringVarP(&flags.inputTable, "input_table", "i", "",
		"proposed submission table to check (required)")
	cmd.Flags().StringVarP(&flags.assetsDir, "assets_dir", "a", "",
		"directory holding primer and probe asset files (default: config assets_dir)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", defaultNormalizedTable,
		"where to write the normalized table")

	return cmd
}

func runNormalize(cmd *cobra.Command, flags *normalizeFlags) error {
	if flags.inputTable == "" {
		return fmt.Errorf("%w: required flag \"input_table\" not set", ErrUsage)
	}

	ctx, cfg, err := loadConfig(cmd, &config.Config{AssetsDir: flags.assetsDir})
	if err != nil {
		return err
	}
	logger := logging.FromContext(ctx)

	printBanner(cmd.ErrOrStderr(), colorMode(cmd))

	table, err := normalize.ReadTable(ctx, flags.inputTable)
	if err != nil {
		return err
	}

	check, err := normalize.ValidateAssetFiles(ctx, table, cfg.AssetsDir)
	if err != nil {
		var missing *normalize.MissingAssetsError
		if errors.As(err, &missing) {
			for _, file := range missing.Files {
				logger.Error("asset file not found",
					logging.FieldAssetsDir, missing.Dir,
					logging.FieldPath, file,
				)
			}
		}
		return err
	}
	logger.Info("asset files present",
		logging.FieldAssetsDir, cfg.AssetsDir,
		"primers", check.Primers,
		"probes", check.Probes,
	)

	deduped, removed := normalize.RemoveDuplicateRows(table)
	if removed > 0 {
		logger.Warn("removed duplicate rows", logging.FieldDuplicates, removed)
	}

	err = fsutil.WriteAtomicFunc(ctx, flags.output, fsutil.DefaultFileMode, deduped.Encode)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutput, flags.output, err)
	}

	logger.Info("normalized table written",
		logging.FieldInput, flags.inputTable,
		logging.FieldOutput, flags.output,
		logging.FieldRowsIn, len(table.Rows),
		logging.FieldRowsOut, len(deduped.Rows),
	)

	return nil
}

func printBanner(w io.Writer, color string) {
	styles := pretty.NewStyles(pretty.IsColorEnabled(color, w))
	_, _ = fmt.Fprintln(w, styles.Banner.Render(normalize.Banner))
}
