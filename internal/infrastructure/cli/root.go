// Package cli wires the cobra command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/benwelker/terse/internal/app"
	"github.com/benwelker/terse/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, app.Options{Verbose: opts.Verbose})
	if err != nil {
		return nil, err
	}

	root := &cobra.Command{
		Use:   "terse",
		Short: "terse - compact command output for AI coding agents",
		Long:  "terse intercepts agent shell commands and returns the same information in a fraction of the tokens.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(commands.NewRunCommand(container))
	root.AddCommand(commands.NewHookCommand(opts.Verbose))
	root.AddCommand(commands.NewStatsCommand(container))
	root.AddCommand(commands.NewAnalyzeCommand(container))
	root.AddCommand(commands.NewHealthCommand(container))
	root.AddCommand(commands.NewTestCommand(container))
	root.AddCommand(commands.NewConfigCommand(container))
	return root, nil
}

// ExitCodeError carries a target command's exit code up to main.
type ExitCodeError = commands.ExitCodeError
