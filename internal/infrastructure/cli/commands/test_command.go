package commands

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/benwelker/terse/internal/app"
)

// NewTestCommand creates the 'test' command: run a command through the
// optimizer and show the before/after token estimates without recording
// anything in the analytics log.
func NewTestCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "test <command...>",
		Short: "Preview optimization for a command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.Join(args, " ")

			// A shallow copy with the log detached keeps previews out of
			// the stats.
			svc := *container.Router
			svc.CommandLog = nil

			result := svc.ExecuteRun(cmd.Context(), raw)
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "command:   %s\n", raw)
			fmt.Fprintf(out, "path:      %s", result.Path)
			if result.OptimizerName != "" {
				fmt.Fprintf(out, " (%s)", result.OptimizerName)
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "tokens:    %s -> %s (%.1f%% saved)\n",
				humanize.Comma(int64(result.OriginalTokens)),
				humanize.Comma(int64(result.OptimizedTokens)),
				result.SavingsPct())
			fmt.Fprintf(out, "latency:   %dms\n", result.LatencyMS)
			fmt.Fprintf(out, "exit code: %d\n\n", result.ExitCode)

			fmt.Fprintln(out, "--- optimized output ---")
			fmt.Fprint(out, ensureTrailingNewline(result.Output))
			if result.Stderr != "" {
				fmt.Fprintln(out, "--- stderr ---")
				fmt.Fprint(out, ensureTrailingNewline(result.Stderr))
			}
			return nil
		},
	}
}
