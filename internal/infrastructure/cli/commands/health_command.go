package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/benwelker/terse/internal/app"
	"github.com/benwelker/terse/internal/domain"
)

// NewHealthCommand creates the 'health' command: a quick readout of the
// pieces the router depends on.
func NewHealthCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check configuration, Ollama, and circuit breakers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg := container.Config

			fmt.Fprintf(out, "config:  enabled=%v mode=%s profile=%s\n",
				cfg.General.Enabled, cfg.General.Mode, cfg.General.Profile)
			fmt.Fprintf(out, "paths:   fast=%v smart=%v\n",
				cfg.FastPath.Enabled, cfg.SmartPath.Enabled)

			reportOllama(cmd, container)
			reportBreakers(out, container.Breaker.State())
			return nil
		},
	}
}

func reportOllama(cmd *cobra.Command, container *app.Container) {
	out := cmd.OutOrStdout()
	if !container.Ollama.Healthy(cmd.Context()) {
		fmt.Fprintf(out, "ollama:  unreachable at %s\n", container.Config.SmartPath.OllamaURL)
		return
	}
	model := container.Ollama.Model()
	names, err := container.Ollama.Models(cmd.Context())
	if err != nil {
		fmt.Fprintf(out, "ollama:  reachable (model list failed: %v)\n", err)
		return
	}
	if hasModel(names, model) {
		fmt.Fprintf(out, "ollama:  reachable, model %s present\n", model)
	} else {
		fmt.Fprintf(out, "ollama:  reachable, model %s NOT present (run: ollama pull %s)\n", model, model)
	}
}

// hasModel matches exactly or ignoring a missing ":latest" tag.
func hasModel(names []string, model string) bool {
	for _, n := range names {
		if n == model || strings.TrimSuffix(n, ":latest") == model {
			return true
		}
	}
	return false
}

func reportBreakers(out io.Writer, state domain.BreakerState) {
	now := time.Now()
	for _, path := range []domain.BreakerPath{domain.BreakerFast, domain.BreakerSmart} {
		p := state.Get(path)
		status := "closed"
		if p.Open(now) {
			status = fmt.Sprintf("open until %s", p.TrippedUntil.Format(time.Kitchen))
		}
		failures := 0
		for _, ok := range p.Results {
			if !ok {
				failures++
			}
		}
		fmt.Fprintf(out, "breaker: %-10s %s (%d/%d recent failures)\n", path, status, failures, len(p.Results))
	}
}
