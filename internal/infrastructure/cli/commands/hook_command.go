package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benwelker/terse/internal/app"
)

// NewHookCommand creates the 'hook' command. It reads one PreToolUse event
// from stdin and answers on stdout. It builds its own container so logs go
// to the rotating hook.log instead of stderr, and it always exits zero: a
// broken hook must never block the host agent.
func NewHookCommand(verbose bool) *cobra.Command {
	return &cobra.Command{
		Use:   "hook",
		Short: "Handle a PreToolUse event on stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := app.BuildContainer(cmd.Context(), app.Options{Verbose: verbose, HookMode: true})
			if err != nil {
				// No working config still means a valid empty answer.
				fmt.Fprintln(cmd.OutOrStdout(), "{}")
				return nil
			}
			if err := container.Hook.Handle(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				container.Logger.Error("hook response write failed", map[string]interface{}{"error": err.Error()})
			}
			return nil
		},
	}
}
