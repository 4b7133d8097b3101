package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/benwelker/terse/internal/app"
	"github.com/benwelker/terse/internal/ports"
)

// NewAnalyzeCommand creates the 'analyze' command: the command shapes that
// burn the most tokens, so users can see what to optimize next.
func NewAnalyzeCommand(container *app.Container) *cobra.Command {
	var days int
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Show the top token-burning commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openImportedStore(container)
			if err != nil {
				return err
			}
			defer store.Close()

			top, err := store.TopCommands(days, limit)
			if err != nil {
				return fmt.Errorf("aggregating commands: %w", err)
			}
			if format == formatJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(top)
			}
			renderTopCommands(cmd.OutOrStdout(), days, top)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", DefaultStatsDays, "Reporting window in days")
	cmd.Flags().IntVar(&limit, "limit", DefaultAnalyzeLimit, "Max commands to show")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")
	return cmd
}

func renderTopCommands(out io.Writer, days int, top []ports.CommandAggregate) {
	if len(top) == 0 {
		fmt.Fprintf(out, "No optimized invocations in the last %d day(s).\n", days)
		return
	}
	fmt.Fprintf(out, "Top commands by original tokens, last %d day(s):\n", days)
	for i, c := range top {
		fmt.Fprintf(out, "%2d. %-40s %4d run(s)  %s -> %s tokens (%.1f%%)\n",
			i+1, truncateCommand(c.Command, 40), c.Invocations,
			humanize.Comma(int64(c.OriginalTokens)), humanize.Comma(int64(c.OptimizedTokens)),
			savingsPct(c.OriginalTokens, c.OptimizedTokens))
	}
}

func truncateCommand(cmd string, max int) string {
	if len(cmd) <= max {
		return cmd
	}
	return cmd[:max-3] + "..."
}
