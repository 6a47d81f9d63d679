package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dholab/gitmilk/internal/logging"
	"github.com/dholab/gitmilk/pkg/config"
	"github.com/dholab/gitmilk/pkg/detection"
	"github.com/dholab/gitmilk/pkg/fsutil"
	"github.com/dholab/gitmilk/pkg/history"
	"github.com/dholab/gitmilk/pkg/reporter"
	"github.com/dholab/gitmilk/pkg/tally"
)

// stdoutPath is the OUTPUT argument that selects standard output.
const stdoutPath = "-"

// tallyFlags holds the flags for the tally command.
type tallyFlags struct {
	daysPrevious int
	all          bool
	countPolicy  string
	joinAnchor   string
	format       string
	history      string
	preview      bool
	compact      bool
	now          string
}

func newTallyCommand() *cobra.Command {
	flags := &tallyFlags{}

	cmd := &cobra.Command{
		Use:   "tally INPUT OUTPUT",
		Short: "Summarize detections per processing-plant state",
		Long: `Read a tab-separated detection table and write the per-state positivity
tally: total, negative, and positive cartons plus the latest purchase date.

OUTPUT of "-" writes to standard output. The file is written atomically, so
a failed run never leaves a partial tally behind.

Without --days_previous every record is counted, unless days_previous is set
in a config file or GITMILK_DAYS_PREVIOUS. --all ignores those and counts
every record regardless.

Output columns (TSV):
  Processing Plant State   two-letter state of the processing plant
  Total Cartons            cartons tested, per --count-policy
  Negative Cartons         cartons with a negative result
  Positive Cartons         cartons with a positive HPAI result
  Latest Date Sampled      most recent purchase date, YYYY-MM-DD

Examples:
  gitmilk tally data/all_detections.tsv assets/positivity_tally.tsv
  gitmilk tally --days_previous 90 data/all_detections.tsv recent.tsv
  gitmilk tally --format markdown data/all_detections.tsv assets/positivity_tally.md
  gitmilk tally --format table data/all_detections.tsv -`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTally(cmd, flags, args[0], args[1])
		},
		Annotations: readsConfig(),
	}

	cmd.Flags().IntVarP(&flags.daysPrevious, "days_previous", "d", 0,
		"only count cartons purchased within the last N days (default: all data)")
	cmd.Flags().BoolVar(&flags.all, "all", false,
		"count every record, ignoring a configured days_previous")
	cmd.Flags().StringVar(&flags.countPolicy, "count-policy", "",
		"how cartons are counted: distinct-cartons or rows")
	cmd.Flags().StringVar(&flags.joinAnchor, "join-anchor", "",
		"which states are reported: total or union")
	cmd.Flags().StringVar(&flags.format, "format", "",
		"output format: tsv, markdown, json, table")
	cmd.Flags().StringVar(&flags.history, "history", "",
		"record the run in a history database (sqlite:PATH or postgres://...)")
	cmd.Flags().BoolVar(&flags.preview, "preview", false,
		"render the tally as Markdown in the terminal after writing")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "minify JSON output")
	cmd.Flags().StringVar(&flags.now, "now", "",
		"evaluate the reporting window as of this date (YYYY-MM-DD or RFC3339)")
	_ = cmd.Flags().MarkHidden("now")

	return cmd
}

func runTally(cmd *cobra.Command, flags *tallyFlags, input, output string) error {
	if flags.all && cmd.Flags().Changed("days_previous") {
		return fmt.Errorf("%w: --all and --days_previous cannot be used together", ErrUsage)
	}

	cliCfg := &config.Config{
		CountPolicy: flags.countPolicy,
		JoinAnchor:  flags.joinAnchor,
		Format:      config.OutputFormat(flags.format),
		History:     config.HistoryConfig{DSN: flags.history},
		Preview:     flags.preview,
	}
	if cmd.Flags().Changed("days_previous") {
		days := flags.daysPrevious
		cliCfg.DaysPrevious = &days
	}

	ctx, cfg, err := loadConfig(cmd, cliCfg)
	if err != nil {
		return err
	}
	logger := logging.FromContext(ctx)
	if flags.all {
		cfg.DaysPrevious = nil
	}

	clock, err := parseClock(flags.now)
	if err != nil {
		return err
	}

	format, err := reporter.ParseFormat(string(cfg.Format))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	dataset, err := detection.Load(ctx, input, detection.Options{})
	if err != nil {
		return err
	}
	logger.Debug("loaded detections",
		logging.FieldInput, input,
		logging.FieldRecords, dataset.Len(),
	)

	report, err := tally.Run(dataset.Records, tally.Options{
		Policy:       tally.CountPolicy(cfg.CountPolicy),
		Anchor:       tally.JoinAnchor(cfg.JoinAnchor),
		DaysPrevious: cfg.DaysPrevious,
		Clock:        clock,
	})
	if err != nil {
		return err
	}

	runID := uuid.New()
	opts := reporter.Options{
		Format:  format,
		Color:   colorMode(cmd),
		RunID:   runID,
		Compact: flags.compact,
	}

	if err := writeReport(ctx, cmd.OutOrStdout(), output, opts, report); err != nil {
		return err
	}

	fields := []any{
		logging.FieldRunID, runID.String(),
		logging.FieldInput, input,
		logging.FieldOutput, output,
		logging.FieldPolicy, report.Policy,
		logging.FieldAnchor, report.Anchor,
		logging.FieldRecords, report.Records,
		logging.FieldFiltered, report.Filtered,
		logging.FieldStates, len(report.Rows),
	}
	if report.Cutoff != nil {
		fields = append(fields,
			logging.FieldDaysPrevious, *report.DaysPrevious,
			logging.FieldCutoff, report.Cutoff.Format(detection.DateLayout),
		)
	}
	logger.Info("tally written", fields...)

	if cfg.History.DSN != "" {
		if err := recordRun(ctx, cfg.History.DSN, runID, input, output, report); err != nil {
			return err
		}
	}

	if cfg.Preview {
		return previewReport(ctx, cmd.OutOrStdout(), colorMode(cmd), report)
	}

	return nil
}

// writeReport writes report to output, or to stdout when output is "-".
func writeReport(ctx context.Context, stdout io.Writer, output string, opts reporter.Options, report *tally.Report) error {
	if output == stdoutPath {
		opts.Writer = stdout
		rep, err := reporter.New(opts)
		if err != nil {
			return err
		}
		if err := rep.Report(ctx, report); err != nil {
			return fmt.Errorf("%w: %w", ErrOutput, err)
		}
		return nil
	}

	err := fsutil.WriteAtomicFunc(ctx, output, fsutil.DefaultFileMode, func(w io.Writer) error {
		opts.Writer = w
		rep, err := reporter.New(opts)
		if err != nil {
			return err
		}
		return rep.Report(ctx, report)
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutput, output, err)
	}
	return nil
}

// recordRun appends the run to the history store. The report file has
// already been written; a history failure is still reported as an error.
func recordRun(ctx context.Context, dsn string, id uuid.UUID, input, output string, report *tally.Report) (err error) {
	store, err := history.Open(ctx, dsn)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHistory, err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("%w: close: %w", ErrHistory, closeErr))
		}
	}()

	if err := store.SaveRun(ctx, id, input, output, report); err != nil {
		return fmt.Errorf("%w: %w", ErrHistory, err)
	}

	logging.FromContext(ctx).Debug("run recorded", logging.FieldRunID, id.String())
	return nil
}

func previewReport(ctx context.Context, w io.Writer, color string, report *tally.Report) error {
	markdown, err := reporter.RenderMarkdown(ctx, report)
	if err != nil {
		return err
	}

	rendered, err := reporter.Preview(markdown, color)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, rendered)
	return err
}

// parseClock returns the clock for a run. An empty value uses the wall clock.
func parseClock(value string) (tally.Clock, error) {
	if value == "" {
		return tally.SystemClock, nil
	}

	for _, layout := range []string{time.RFC3339, detection.DateLayout} {
		if now, err := time.Parse(layout, value); err == nil {
			return tally.FixedClock(now), nil
		}
	}

	return nil, fmt.Errorf("%w: invalid --now value %q", ErrUsage, value)
}
