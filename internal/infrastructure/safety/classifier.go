// Package safety holds the pre-execution classifier and the per-path
// circuit breaker.
package safety

import (
	"strings"

	"github.com/benwelker/terse/internal/domain"
	"github.com/benwelker/terse/internal/ports"
)

// builtinPassthrough lists programs whose invocations are never rewritten:
// destructive file operations and interactive editors, across Unix and
// Windows spellings.
var builtinPassthrough = []string{
	"rm", "rmdir", "mv", "del", "erase", "rd", "ren", "move",
	"copy", "xcopy", "robocopy",
	"remove-item", "move-item", "rename-item", "ri", "mi",
	"set-content", "out-file", "add-content",
	"vim", "vi", "nano", "emacs", "code", "subl", "notepad", "notepad++",
}

// Classifier labels commands before execution. Pure: it never runs the
// command or looks at output.
type Classifier struct {
	deny map[string]struct{}
}

// NewClassifier merges the built-in deny-list with configured extras.
func NewClassifier(extra []string) *Classifier {
	deny := make(map[string]struct{}, len(builtinPassthrough)+len(extra))
	for _, name := range builtinPassthrough {
		deny[name] = struct{}{}
	}
	for _, name := range extra {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			deny[name] = struct{}{}
		}
	}
	return &Classifier{deny: deny}
}

// Classify applies the precedence order: loop guard, deny-list, output
// redirection or heredoc, else optimizable.
func (c *Classifier) Classify(cmd domain.CommandContext) domain.Classification {
	if domain.IsSelfInvocation(cmd.Original) {
		return domain.NeverOptimizeBecause(domain.ReasonLoopGuard)
	}
	if c.denied(cmd.Core) {
		return domain.NeverOptimizeBecause(domain.ReasonDenyListed)
	}
	if domain.HasFileRedirect(cmd.Original) {
		return domain.NeverOptimizeBecause(domain.ReasonFileRedirect)
	}
	if domain.ContainsHeredoc(cmd.Original) {
		return domain.NeverOptimizeBecause(domain.ReasonHeredoc)
	}
	return domain.Optimizable
}

func (c *Classifier) denied(core string) bool {
	fields := strings.Fields(core)
	if len(fields) == 0 {
		return false
	}
	_, ok := c.deny[strings.ToLower(fields[0])]
	return ok
}

var _ ports.Classifier = (*Classifier)(nil)
