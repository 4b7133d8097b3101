package preprocess

import (
	"fmt"
	"strings"

	"github.com/benwelker/terse/internal/domain"
)

const (
	headRatio = 0.4
	tailRatio = 0.4
	// rescuedFailureLines caps how many failure lines are pulled back out
	// of a truncated middle section.
	rescuedFailureLines = 20
)

// truncate enforces the byte ceiling by keeping a head and tail segment
// around a single marker line. Failure lines from the dropped middle are
// rescued after the marker, up to a small cap.
func truncate(text string, settings domain.PreprocessSettings) string {
	max := settings.MaxOutputBytes
	if max <= 0 || len(text) <= max {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) <= 6 {
		return byteTruncate(text, max)
	}

	headBudget := int(float64(max) * headRatio)
	tailBudget := int(float64(max) * tailRatio)

	headEnd := 0
	headBytes := 0
	for headEnd < len(lines) && headBytes+len(lines[headEnd])+1 <= headBudget {
		headBytes += len(lines[headEnd]) + 1
		headEnd++
	}

	tailStart := len(lines)
	tailBytes := 0
	for tailStart > headEnd && tailBytes+len(lines[tailStart-1])+1 <= tailBudget {
		tailBytes += len(lines[tailStart-1]) + 1
		tailStart--
	}

	if headEnd >= tailStart {
		return text
	}

	droppedLines := tailStart - headEnd
	droppedBytes := 0
	var candidates []string
	for _, line := range lines[headEnd:tailStart] {
		droppedBytes += len(line) + 1
		if hasFailureSignal(line) && len(candidates) < rescuedFailureLines {
			candidates = append(candidates, line)
		}
	}
	marker := fmt.Sprintf("[... %d lines (%d bytes) truncated ...]", droppedLines, droppedBytes)

	// Rescued lines are charged against the slack the head/tail ratios
	// leave under the ceiling, so the result stays within MaxOutputBytes
	// and a second pass is a no-op.
	rescueBudget := max - headBytes - tailBytes - (len(marker) + 1)
	var rescued []string
	for _, line := range candidates {
		if rescueBudget < len(line)+1 {
			break
		}
		rescueBudget -= len(line) + 1
		rescued = append(rescued, line)
	}

	out := make([]string, 0, headEnd+len(rescued)+1+(len(lines)-tailStart))
	out = append(out, lines[:headEnd]...)
	out = append(out, marker)
	out = append(out, rescued...)
	out = append(out, lines[tailStart:]...)
	return strings.Join(out, "\n")
}

// byteTruncate handles pathological single-line or few-line inputs where
// line accounting cannot help.
func byteTruncate(text string, max int) string {
	head := int(float64(max) * headRatio)
	tail := int(float64(max) * tailRatio)
	if head+tail >= len(text) {
		return text
	}
	dropped := len(text) - head - tail
	return text[:head] + fmt.Sprintf("\n[... %d bytes truncated ...]\n", dropped) + text[len(text)-tail:]
}
