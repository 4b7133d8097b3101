package preprocess

import (
	"fmt"
	"strings"

	"github.com/benwelker/terse/internal/domain"
)

const (
	// minRunLength is the smallest run worth collapsing.
	minRunLength = 3
	// representativeLines is how many lines of a similar-pattern run are
	// kept verbatim before the summary marker.
	representativeLines = 2
	// patternPrefixChars bounds the prefix quoted in a summary marker.
	patternPrefixChars = 30
)

// deduplicate collapses runs of identical lines and runs of lines that
// differ only in numeric or hex content. Lines carrying failure signal are
// never folded into a summary.
func deduplicate(text string, _ domain.PreprocessSettings) string {
	lines := strings.Split(text, "\n")
	var out []string

	for i := 0; i < len(lines); {
		line := lines[i]

		// Identical run.
		j := i + 1
		for j < len(lines) && lines[j] == line {
			j++
		}
		if count := j - i; count >= minRunLength && strings.TrimSpace(line) != "" && !hasFailureSignal(line) {
			out = append(out, line, fmt.Sprintf("[repeated %d times]", count))
			i = j
			continue
		}

		// Similar-pattern run: same shape once digit and hex runs are
		// masked out.
		key := patternKey(line)
		j = i + 1
		for j < len(lines) && !hasFailureSignal(lines[j]) && lines[j] != lines[j-1] && patternKey(lines[j]) == key {
			j++
		}
		if count := j - i; count >= minRunLength && key != "" && !hasFailureSignal(line) {
			out = append(out, lines[i:i+representativeLines]...)
			out = append(out, fmt.Sprintf("[... %d more similar line(s) matching %q]", count-representativeLines, runPrefix(line)))
			i = j
			continue
		}

		out = append(out, line)
		i++
	}
	return strings.Join(out, "\n")
}

// patternKey masks digit runs (and any hex tail they introduce) with '#'
// so "test 12ab3f passed" and "test 99cd00 passed" share a key. Returns
// "" for lines with no numeric content, which never form pattern runs.
func patternKey(line string) string {
	var b strings.Builder
	masked := false
	i := 0
	for i < len(line) {
		c := line[i]
		if c >= '0' && c <= '9' {
			masked = true
			b.WriteByte('#')
			for i < len(line) && isHexByte(line[i]) {
				i++
			}
			continue
		}
		b.WriteByte(c)
		i++
	}
	if !masked {
		return ""
	}
	return b.String()
}

func isHexByte(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// runPrefix yields the quoted sample for a summary marker.
func runPrefix(line string) string {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) > patternPrefixChars {
		return trimmed[:patternPrefixChars] + "..."
	}
	return trimmed
}
