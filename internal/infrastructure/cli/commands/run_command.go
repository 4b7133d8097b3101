package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benwelker/terse/internal/app"
)

// NewRunCommand creates the 'run' command, the target of hook rewrites.
// It executes the wrapped command, prints the optimized output, and exits
// with the wrapped command's own exit code.
func NewRunCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "run <command...>",
		Short: "Execute a command and print its optimized output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.Join(args, " ")
			result := container.Router.ExecuteRun(cmd.Context(), raw)

			if result.Output != "" {
				fmt.Fprint(cmd.OutOrStdout(), ensureTrailingNewline(result.Output))
			}
			if result.Stderr != "" {
				fmt.Fprint(cmd.ErrOrStderr(), ensureTrailingNewline(result.Stderr))
			}
			if result.ExitCode != 0 {
				return &ExitCodeError{Code: result.ExitCode}
			}
			return nil
		},
	}
}

func ensureTrailingNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
