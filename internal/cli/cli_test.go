package cli_test

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dholab/gitmilk/internal/cli"
	"github.com/dholab/gitmilk/internal/configloader"
	"github.com/dholab/gitmilk/pkg/detection"
	"github.com/dholab/gitmilk/pkg/fsutil"
	"github.com/dholab/gitmilk/pkg/normalize"
	"github.com/dholab/gitmilk/pkg/splice"
	"github.com/dholab/gitmilk/pkg/tally"
)

func testInfo() cli.BuildInfo {
	return cli.BuildInfo{Version: "test", Commit: "test", Date: "test"}
}

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	require.NotNil(t, cmd)

	assert.Equal(t, "gitmilk", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}

func TestRootCommandHasSubcommands(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())

	for _, name := range []string{"tally", "normalize", "splice", "history", "init", "version"} {
		subCmd, _, err := cmd.Find([]string{name})
		if !assert.NoError(t, err, name) {
			continue
		}
		assert.Equal(t, name, subCmd.Name())
	}
}

func TestCommandFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		command string
		flags   []string
	}{
		{"tally", []string{"days_previous", "all", "count-policy", "join-anchor", "format", "history", "preview", "compact"}},
		{"normalize", []string{"input_table", "assets_dir", "output"}},
		{"splice", []string{"readme", "tally_file", "output", "in-place", "no-backup"}},
		{"history", []string{"db", "limit", "run", "format"}},
		{"init", []string{"force", "output"}},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			t.Parallel()

			cmd := cli.NewRootCommand(testInfo())
			subCmd, _, err := cmd.Find([]string{tt.command})
			require.NoError(t, err)

			for _, name := range tt.flags {
				assert.NotNil(t, subCmd.Flags().Lookup(name), "flag %q on %s", name, tt.command)
			}
		})
	}
}

func TestShortFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())

	normalizeCmd, _, err := cmd.Find([]string{"normalize"})
	require.NoError(t, err)
	for short, long := range map[string]string{"i": "input_table", "a": "assets_dir", "o": "output"} {
		flag := normalizeCmd.Flags().ShorthandLookup(short)
		require.NotNil(t, flag, short)
		assert.Equal(t, long, flag.Name)
	}

	spliceCmd, _, err := cmd.Find([]string{"splice"})
	require.NoError(t, err)
	for short, long := range map[string]string{"r": "readme", "f": "tally_file", "o": "output"} {
		flag := spliceCmd.Flags().ShorthandLookup(short)
		require.NotNil(t, flag, short)
		assert.Equal(t, long, flag.Name)
	}
}

func TestGlobalFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())

	for _, name := range []string{"debug", "config", "color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestTallyRequiresTwoArgs(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	tallyCmd, _, err := cmd.Find([]string{"tally"})
	require.NoError(t, err)

	require.NoError(t, tallyCmd.Args(tallyCmd, []string{"in.tsv", "out.tsv"}))

	err = tallyCmd.Args(tallyCmd, []string{"in.tsv"})
	require.ErrorIs(t, err, cli.ErrUsage)
	assert.Equal(t, cli.ExitUsage, cli.ExitCodeFromError(err))
}

func TestExitCodeFromError(t *testing.T) {
	t.Parallel()

	wrap := func(err error) error { return fmt.Errorf("context: %w", err) }

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, cli.ExitSuccess},
		{"generic", errors.New("boom"), cli.ExitFailure},
		{"config", wrap(configloader.ErrConfig), cli.ExitConfigError},
		{"validation", &configloader.ValidationError{Field: "format", Message: "bad"}, cli.ExitConfigError},
		{"usage", wrap(cli.ErrUsage), cli.ExitUsage},
		{"input not found", wrap(detection.ErrInputNotFound), cli.ExitNoInput},
		{"file not found", wrap(fsutil.ErrNotFound), cli.ExitNoInput},
		{"schema", wrap(detection.ErrSchema), cli.ExitDataError},
		{"date", &detection.RowError{Line: 2, Column: detection.ColumnDate, Err: detection.ErrDateParse}, cli.ExitDataError},
		{"outcome", wrap(detection.ErrOutcomeParse), cli.ExitDataError},
		{"empty field", wrap(detection.ErrEmptyField), cli.ExitDataError},
		{"missing assets", &normalize.MissingAssetsError{Dir: "assets", Files: []string{"a.fa"}}, cli.ExitDataError},
		{"unterminated section", wrap(splice.ErrSectionUnterminated), cli.ExitDataError},
		{"negative window", wrap(tally.ErrNegativeWindow), cli.ExitDataError},
		{"join cardinality", wrap(tally.ErrJoinCardinality), cli.ExitInternal},
		{"output", wrap(cli.ErrOutput), cli.ExitIOError},
		{"history", wrap(cli.ErrHistory), cli.ExitIOError},
		{"concurrent edit", wrap(cli.ErrConcurrentEdit), cli.ExitIOError},
		{"permission", wrap(fs.ErrPermission), cli.ExitIOError},
		{"permission denied", wrap(fsutil.ErrPermissionDenied), cli.ExitIOError},
		{"config wins over usage", errors.Join(cli.ErrUsage, configloader.ErrConfig), cli.ExitConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, cli.ExitCodeFromError(tt.err))
		})
	}
}

func TestHelpOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "root lists environment and exit codes",
			args: []string{"--help"},
			want: []string{
				"Usage:\n  gitmilk [flags]\n  gitmilk [command]",
				"Commands:",
				"Environment:",
				"GITMILK_DAYS_PREVIOUS",
				"GITMILK_HISTORY_DSN",
				"Exit Codes:",
				"64  invalid arguments or flags",
				"78  invalid configuration",
			},
		},
		{
			name: "tally documents columns and window precedence",
			args: []string{"tally", "--help"},
			want: []string{
				"gitmilk tally INPUT OUTPUT [flags]",
				"Latest Date Sampled      most recent purchase date",
				"--all ignores those",
				"-d, --days_previous int",
				"Global Flags:",
				"GITMILK_COUNT_POLICY",
			},
			notWant: []string{"--now", "Exit Codes:"},
		},
		{
			name:    "init reads no configuration",
			args:    []string{"init", "--help"},
			want:    []string{"-f, --force"},
			notWant: []string{"Environment:"},
		},
		{
			name: "bare root prints help",
			args: nil,
			want: []string{"gitmilk maintains the per-state positivity tally"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := runCLI(t, tt.args...)
			require.NoError(t, result.err)

			for _, want := range tt.want {
				assert.Contains(t, result.stdout, want)
			}
			for _, notWant := range tt.notWant {
				assert.NotContains(t, result.stdout, notWant)
			}
			assert.NotContains(t, result.stdout, "\x1b[", "--color never must not emit escapes")
		})
	}
}

func TestHelpEnvironmentSorted(t *testing.T) {
	t.Parallel()

	result := runCLI(t, "--help")
	require.NoError(t, result.err)

	_, env, ok := strings.Cut(result.stdout, "Environment:\n")
	require.True(t, ok)
	env, _, _ = strings.Cut(env, "\n\n")

	var names []string
	for _, line := range strings.Split(env, "\n") {
		if fields := strings.Fields(line); len(fields) > 0 {
			names = append(names, fields[0])
		}
	}
	assert.Len(t, names, len(configloader.ListEnvVars()))
	assert.IsNonDecreasing(t, names)
}
