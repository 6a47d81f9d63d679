package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dholab/gitmilk/internal/logging"
	"github.com/dholab/gitmilk/internal/ui/pretty"
	"github.com/dholab/gitmilk/pkg/config"
	"github.com/dholab/gitmilk/pkg/history"
	"github.com/dholab/gitmilk/pkg/reporter"
)

// historyFlags holds the flags for the history command.
type historyFlags struct {
	db     string
	limit  int
	run    string
	format string
}

func newHistoryCommand() *cobra.Command {
	flags := &historyFlags{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded tally runs",
		Long: `List the tally runs recorded with --history, newest first, or print the
rows of a single run.

Examples:
  gitmilk history --db sqlite:.gitmilk/history.db
  gitmilk history --db sqlite:.gitmilk/history.db --limit 5
  gitmilk history --run 5b0c6d3e-9f1a-4c2b-8d7e-1a2b3c4d5e6f --format tsv`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, flags)
		},
		Annotations: readsConfig(),
	}

	cmd.Flags().StringVar(&flags.db, "db", "", "history database (default: config history.dsn)")
	cmd.Flags().IntVarP(&flags.limit, "limit", "n", history.DefaultLimit, "number of runs to list")
	cmd.Flags().StringVar(&flags.run, "run", "", "print the rows of the run with this id")
	cmd.Flags().StringVar(&flags.format, "format", "table",
		"format for --run output: tsv, markdown, json, table")

	return cmd
}

func runHistory(cmd *cobra.Command, flags *historyFlags) (err error) {
	ctx, cfg, err := loadConfig(cmd, &config.Config{History: config.HistoryConfig{DSN: flags.db}})
	if err != nil {
		return err
	}
	logger := logging.FromContext(ctx)

	if cfg.History.DSN == "" {
		return fmt.Errorf("%w: no history database; pass --db or set history.dsn", ErrUsage)
	}

	var runID uuid.UUID
	if flags.run != "" {
		if runID, err = uuid.Parse(flags.run); err != nil {
			return fmt.Errorf("%w: invalid run id %q: %w", ErrUsage, flags.run, err)
		}
	}

	format, err := reporter.ParseFormat(flags.format)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	store, err := history.Open(ctx, cfg.History.DSN)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHistory, err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("%w: close: %w", ErrHistory, closeErr))
		}
	}()

	out := cmd.OutOrStdout()

	if flags.run == "" {
		runs, err := store.ListRuns(ctx, flags.limit)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrHistory, err)
		}
		logger.Debug("listed runs", "runs", len(runs))
		return writeRuns(out, colorMode(cmd), runs)
	}

	run, err := store.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, history.ErrRunNotFound) {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		return fmt.Errorf("%w: %w", ErrHistory, err)
	}

	rows, err := store.RunRows(ctx, runID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHistory, err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer: out,
		Format: format,
		Color:  colorMode(cmd),
		RunID:  run.ID,
	})
	if err != nil {
		return err
	}
	return rep.Report(ctx, run.Report(rows))
}

func writeRuns(w io.Writer, color string, runs []history.Run) error {
	colorEnabled := pretty.IsColorEnabled(color, w)
	formatter := pretty.NewTableFormatter(pretty.NewStyles(colorEnabled), colorEnabled, 0)
	_, err := io.WriteString(w, formatter.FormatRuns(runs))
	return err
}
