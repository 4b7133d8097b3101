// Package optimizers holds the fast-path output compactors. Selection is
// first-match over an ordered list whose final entry always matches.
package optimizers

import (
	"strings"

	"github.com/benwelker/terse/internal/domain"
	"github.com/benwelker/terse/internal/ports"
)

// Registry is the ordered optimizer list. The generic fallback is always
// present and always last, so First never scans past the end.
type Registry struct {
	entries []ports.Optimizer
}

// NewRegistry wires the standard family, honoring per-family enable flags.
func NewRegistry(cfg domain.Config) *Registry {
	var entries []ports.Optimizer
	if cfg.FastPath.Optimizers.Git {
		entries = append(entries, NewGit(cfg.Optimizers.Git))
	}
	if cfg.FastPath.Optimizers.File {
		entries = append(entries, NewFile(cfg.Optimizers.File))
	}
	if cfg.FastPath.Optimizers.Build {
		entries = append(entries, NewBuild(cfg.Optimizers.Build))
	}
	if cfg.FastPath.Optimizers.Docker {
		entries = append(entries, NewDocker(cfg.Optimizers.Docker))
	}
	entries = append(entries, NewGeneric(cfg.Optimizers.Generic, cfg.Whitespace))
	return &Registry{entries: entries}
}

// First returns the first optimizer that recognizes cmd. The generic
// fallback guarantees a non-nil result.
func (r *Registry) First(cmd domain.CommandContext) ports.Optimizer {
	for _, o := range r.entries {
		if o.CanHandle(cmd) {
			return o
		}
	}
	return r.entries[len(r.entries)-1]
}

// FirstSpecific returns the first non-fallback optimizer matching cmd, or
// nil. The hook's pre-execution decision uses this: the fallback matching
// everything would make every command look rewritable.
func (r *Registry) FirstSpecific(cmd domain.CommandContext) ports.Optimizer {
	for _, o := range r.entries[:len(r.entries)-1] {
		if o.CanHandle(cmd) {
			return o
		}
	}
	return nil
}

// Names lists registered optimizers in selection order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, o := range r.entries {
		names[i] = o.Name()
	}
	return names
}

// firstToken returns the lowercased first word of core.
func firstToken(core string) string {
	fields := strings.Fields(core)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// hasFlag reports whether any of flags appears as a standalone argument.
func hasFlag(core string, flags ...string) bool {
	for _, f := range strings.Fields(core) {
		for _, want := range flags {
			if f == want || strings.HasPrefix(f, want+"=") {
				return true
			}
		}
	}
	return false
}

// combinedOutput merges both streams the way a terminal user sees them.
func combinedOutput(res ports.ExecResult) string {
	if res.Stderr == "" {
		return res.Stdout
	}
	if res.Stdout == "" {
		return res.Stderr
	}
	return res.Stdout + "\n" + res.Stderr
}

// truncateLine caps a single line, marking the cut.
func truncateLine(line string, max int) string {
	if max <= 0 || len(line) <= max {
		return line
	}
	return line[:max] + "..."
}
