package cli

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dholab/gitmilk/internal/configloader"
	"github.com/dholab/gitmilk/internal/ui/pretty"
)

// annotationReadsConfig marks commands that resolve the layered
// configuration. Their help lists the GITMILK_* environment variables.
const annotationReadsConfig = "gitmilk/reads-config"

func readsConfig() map[string]string {
	return map[string]string{annotationReadsConfig: "true"}
}

// exitCodeHelp is the exit code table shown in root help.
//
//nolint:gochecknoglobals // Read-only help text.
var exitCodeHelp = []struct {
	code    int
	meaning string
}{
	{ExitSuccess, "success"},
	{ExitFailure, "unexpected failure"},
	{ExitUsage, "invalid arguments or flags"},
	{ExitDataError, "malformed detection table or README section, missing assets"},
	{ExitNoInput, "input file not found"},
	{ExitInternal, "partial aggregates disagree on state keys"},
	{ExitIOError, "a file or the history database could not be written"},
	{ExitConfigError, "invalid configuration"},
}

// helpStyles holds the styles used to render command help.
type helpStyles struct {
	heading lipgloss.Style
	command lipgloss.Style
	flag    lipgloss.Style
	dim     lipgloss.Style
}

// newHelpStyles derives help styles from the tally table palette.
func newHelpStyles(colorEnabled bool) helpStyles {
	palette := pretty.NewStyles(colorEnabled)
	flag := lipgloss.NewStyle()
	if colorEnabled {
		flag = flag.Foreground(lipgloss.Color("12"))
	}
	return helpStyles{
		heading: palette.Warning,
		command: palette.Banner,
		flag:    flag,
		dim:     palette.Dim,
	}
}

// installHelp replaces cobra's help and usage output for root and every
// subcommand. Colors follow the --color flag of the described command.
func installHelp(root *cobra.Command) {
	root.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		if err := writeHelp(cmd.OutOrStdout(), cmd, colorMode(cmd)); err != nil {
			cmd.PrintErrln(err)
		}
	})
	root.SetUsageFunc(func(cmd *cobra.Command) error {
		return writeUsage(cmd.OutOrStderr(), cmd, colorMode(cmd))
	})
}

func writeHelp(w io.Writer, cmd *cobra.Command, mode string) error {
	styles := newHelpStyles(pretty.IsColorEnabled(mode, w))

	var b strings.Builder
	b.WriteString(styles.command.Render(cmd.CommandPath()))
	b.WriteString("\n\n")
	if text := strings.TrimSpace(cmp.Or(cmd.Long, cmd.Short)); text != "" {
		b.WriteString(trimTrailingWhitespaces(text))
		b.WriteString("\n\n")
	}
	renderUsage(&b, cmd, styles)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeUsage(w io.Writer, cmd *cobra.Command, mode string) error {
	var b strings.Builder
	renderUsage(&b, cmd, newHelpStyles(pretty.IsColorEnabled(mode, w)))
	_, err := io.WriteString(w, b.String())
	return err
}

func renderUsage(b *strings.Builder, cmd *cobra.Command, styles helpStyles) {
	heading := func(title string) {
		b.WriteString(styles.heading.Render(title))
		b.WriteString("\n")
	}

	heading("Usage:")
	if cmd.Runnable() {
		fmt.Fprintf(b, "  %s\n", styles.command.Render(cmd.UseLine()))
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(b, "  %s [command]\n", styles.command.Render(cmd.CommandPath()))

		b.WriteString("\n")
		heading("Commands:")
		for _, sub := range cmd.Commands() {
			if !sub.IsAvailableCommand() && sub.Name() != "help" {
				continue
			}
			fmt.Fprintf(b, "  %s %s\n", rpadStyled(styles.command, sub.Name(), sub.NamePadding()), sub.Short)
		}
	}

	if cmd.HasAvailableLocalFlags() {
		b.WriteString("\n")
		heading("Flags:")
		b.WriteString(styleFlagUsages(cmd.LocalFlags().FlagUsages(), styles))
	}
	if cmd.HasAvailableInheritedFlags() {
		b.WriteString("\n")
		heading("Global Flags:")
		b.WriteString(styleFlagUsages(cmd.InheritedFlags().FlagUsages(), styles))
	}

	if !cmd.HasParent() || cmd.Annotations[annotationReadsConfig] != "" {
		b.WriteString("\n")
		heading("Environment:")
		b.WriteString(environmentHelp(styles))
	}

	if !cmd.HasParent() {
		b.WriteString("\n")
		heading("Exit Codes:")
		for _, entry := range exitCodeHelp {
			fmt.Fprintf(b, "  %s  %s\n", styles.flag.Render(fmt.Sprintf("%2d", entry.code)), entry.meaning)
		}
		fmt.Fprintf(b, "\nUse \"%s [command] --help\" for more information about a command.\n", cmd.CommandPath())
	}
}

// environmentHelp lists the GITMILK_* variables, sorted by name.
func environmentHelp(styles helpStyles) string {
	vars := configloader.ListEnvVars()
	names := slices.Sorted(maps.Keys(vars))

	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "  %s  %s\n", rpadStyled(styles.flag, name, width), vars[name])
	}
	return b.String()
}

// styleFlagUsages colors the flag names of pflag usage text and dims the
// value type, leaving column alignment intact.
func styleFlagUsages(usages string, styles helpStyles) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimSuffix(usages, "\n"), "\n") {
		trimmed := strings.TrimLeft(line, " ")
		gap := strings.Index(trimmed, "  ")
		if !strings.HasPrefix(trimmed, "-") || gap < 0 {
			b.WriteString(line)
			b.WriteString("\n")
			continue
		}

		tokens := strings.Fields(trimmed[:gap])
		for i, token := range tokens {
			if name, ok := strings.CutSuffix(token, ","); strings.HasPrefix(token, "-") {
				tokens[i] = styles.flag.Render(name)
				if ok {
					tokens[i] += ","
				}
				continue
			}
			tokens[i] = styles.dim.Render(token)
		}

		b.WriteString(line[:len(line)-len(trimmed)])
		b.WriteString(strings.Join(tokens, " "))
		b.WriteString(trimmed[gap:])
		b.WriteString("\n")
	}
	return b.String()
}

// rpadStyled renders s and pads it to width visible columns.
func rpadStyled(style lipgloss.Style, s string, width int) string {
	return style.Render(s) + strings.Repeat(" ", max(0, width-len(s)))
}

// trimTrailingWhitespaces removes trailing whitespace from lines.
func trimTrailingWhitespaces(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
