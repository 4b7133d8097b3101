package optimizers

import (
	"context"
	"fmt"
	"strings"

	"github.com/benwelker/terse/internal/domain"
	"github.com/benwelker/terse/internal/ports"
)

// Generic is the universal fallback: it matches every command and applies
// only whitespace cleanup and a line cap. Output below its size floor is
// returned untouched.
type Generic struct {
	cfg domain.GenericOptimizerSettings
	ws  domain.WhitespaceSettings
}

// NewGeneric builds the fallback optimizer.
func NewGeneric(cfg domain.GenericOptimizerSettings, ws domain.WhitespaceSettings) *Generic {
	return &Generic{cfg: cfg, ws: ws}
}

func (g *Generic) Name() string { return "generic" }

// CanHandle always matches; the registry relies on this to terminate the
// selection scan.
func (g *Generic) CanHandle(domain.CommandContext) bool { return true }

func (g *Generic) Optimize(_ context.Context, _ domain.CommandContext, raw ports.ExecResult) (domain.OptimizedResult, error) {
	out := combinedOutput(raw)
	if len(out) >= g.cfg.MinSizeBytes {
		out = g.cleanup(out)
	}
	// Output already carries both streams merged; echoing stderr again
	// would double it on display.
	return domain.OptimizedResult{
		Output:        out,
		ExitCode:      raw.ExitCode,
		OptimizerName: g.Name(),
	}, nil
}

func (g *Generic) cleanup(out string) string {
	maxBlanks := g.ws.MaxConsecutiveNewlines
	if !g.ws.Enabled || maxBlanks <= 0 {
		maxBlanks = 2
	}
	lines := strings.Split(out, "\n")
	var kept []string
	blanks := 0
	for _, line := range lines {
		if g.ws.TrimTrailing || !g.ws.Enabled {
			line = strings.TrimRight(line, " \t")
		}
		if g.ws.NormalizeTabs {
			line = strings.ReplaceAll(line, "\t", "    ")
		}
		if line == "" {
			blanks++
			if blanks > maxBlanks {
				continue
			}
		} else {
			blanks = 0
		}
		kept = append(kept, line)
		if len(kept) >= g.cfg.MaxLines {
			kept = append(kept, fmt.Sprintf("[... output truncated at %d lines]", g.cfg.MaxLines))
			break
		}
	}
	return strings.Join(kept, "\n")
}

var _ ports.Optimizer = (*Generic)(nil)
