// Package preprocess implements the deterministic text pipeline applied to
// captured command output before any path-specific optimization. Stages run
// in a fixed order, are individually toggleable, and are idempotent: running
// the pipeline on its own output changes nothing.
package preprocess

import (
	"strings"

	"github.com/benwelker/terse/internal/domain"
)

type stage struct {
	name    string
	enabled func(domain.PreprocessSettings) bool
	apply   func(string, domain.PreprocessSettings) string
}

var stages = []stage{
	{
		name:    "noise_removal",
		enabled: func(s domain.PreprocessSettings) bool { return s.NoiseRemoval },
		apply:   removeNoise,
	},
	{
		name:    "path_filtering",
		enabled: func(s domain.PreprocessSettings) bool { return s.PathFiltering },
		apply:   filterPaths,
	},
	{
		name:    "deduplication",
		enabled: func(s domain.PreprocessSettings) bool { return s.Deduplication },
		apply:   deduplicate,
	},
	{
		name:    "truncation",
		enabled: func(s domain.PreprocessSettings) bool { return s.Truncation },
		apply:   truncate,
	},
	{
		name:    "whitespace_trim",
		enabled: func(domain.PreprocessSettings) bool { return true },
		apply:   trimWhitespace,
	},
}

// Run applies the enabled stages in order and reports which ones changed
// the text.
func Run(text string, settings domain.PreprocessSettings) domain.PreprocessedOutput {
	out := domain.PreprocessedOutput{
		Text:          text,
		OriginalBytes: len(text),
	}
	if !settings.Enabled {
		out.ProcessedBytes = len(text)
		return out
	}
	for _, s := range stages {
		if !s.enabled(settings) {
			continue
		}
		next := s.apply(out.Text, settings)
		if next != out.Text {
			out.StagesApplied = append(out.StagesApplied, s.name)
			out.Text = next
		}
	}
	out.ProcessedBytes = len(out.Text)
	return out
}

// hasFailureSignal reports whether a line carries error or failure
// information that must never be dropped or folded.
func hasFailureSignal(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range []string{"error", "fail", "fatal", "panic", "exception", "traceback", "warning", "✗", "⨯"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
