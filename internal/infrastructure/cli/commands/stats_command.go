package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/benwelker/terse/internal/app"
	"github.com/benwelker/terse/internal/infrastructure/analytics"
	"github.com/benwelker/terse/internal/ports"
)

// NewStatsCommand creates the 'stats' command: token savings over a window.
func NewStatsCommand(container *app.Container) *cobra.Command {
	var days int
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show token savings over the recent window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openImportedStore(container)
			if err != nil {
				return err
			}
			defer store.Close()

			summary, err := store.Summary(days)
			if err != nil {
				return fmt.Errorf("aggregating stats: %w", err)
			}
			if format == formatJSON {
				return writeStatsJSON(cmd.OutOrStdout(), days, summary)
			}
			renderStatsTable(cmd.OutOrStdout(), days, summary)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", DefaultStatsDays, "Reporting window in days")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")
	return cmd
}

// openImportedStore opens the SQLite mirror and imports any JSONL entries
// written since the last report.
func openImportedStore(container *app.Container) (*analytics.SQLiteStore, error) {
	store, err := analytics.NewSQLiteStore()
	if err != nil {
		return nil, fmt.Errorf("opening analytics store: %w", err)
	}
	entries, err := analytics.ReadCommandLog(container.Analytics.CommandLogPath())
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("reading command log: %w", err)
	}
	if err := store.Import(entries); err != nil {
		store.Close()
		return nil, fmt.Errorf("importing command log: %w", err)
	}
	return store, nil
}

func renderStatsTable(out io.Writer, days int, s ports.AnalyticsSummary) {
	if s.Invocations == 0 {
		fmt.Fprintf(out, "No optimized invocations in the last %d day(s).\n", days)
		return
	}
	saved := s.OriginalTokens - s.OptimizedTokens
	if saved < 0 {
		saved = 0
	}
	fmt.Fprintf(out, "Last %d day(s): %s invocation(s)\n", days, humanize.Comma(int64(s.Invocations)))
	fmt.Fprintf(out, "  original tokens:  %s\n", humanize.Comma(int64(s.OriginalTokens)))
	fmt.Fprintf(out, "  optimized tokens: %s\n", humanize.Comma(int64(s.OptimizedTokens)))
	fmt.Fprintf(out, "  saved:            %s (%.1f%%)\n", humanize.Comma(int64(saved)), savingsPct(s.OriginalTokens, s.OptimizedTokens))
	if len(s.ByOptimizer) == 0 {
		return
	}
	fmt.Fprintln(out, "\nBy optimizer:")
	for _, o := range s.ByOptimizer {
		fmt.Fprintf(out, "  %-12s %6d invocation(s)  %s -> %s tokens (%.1f%%)\n",
			o.Name, o.Invocations,
			humanize.Comma(int64(o.OriginalTokens)), humanize.Comma(int64(o.OptimizedTokens)),
			savingsPct(o.OriginalTokens, o.OptimizedTokens))
	}
}

func writeStatsJSON(out io.Writer, days int, s ports.AnalyticsSummary) error {
	payload := map[string]interface{}{
		"days":             days,
		"invocations":      s.Invocations,
		"original_tokens":  s.OriginalTokens,
		"optimized_tokens": s.OptimizedTokens,
		"savings_pct":      savingsPct(s.OriginalTokens, s.OptimizedTokens),
		"by_optimizer":     s.ByOptimizer,
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func savingsPct(original, optimized int) float64 {
	if original == 0 {
		return 0
	}
	saved := original - optimized
	if saved < 0 {
		saved = 0
	}
	return float64(saved) / float64(original) * 100
}
