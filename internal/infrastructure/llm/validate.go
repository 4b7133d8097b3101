package llm

import (
	"fmt"
	"strings"

	"github.com/benwelker/terse/internal/domain"
)

// maxLengthRatio allows a candidate a small margin over its input before
// it counts as "not shorter". Formatting overhead on small inputs makes a
// strict comparison too brittle.
const maxLengthRatio = 1.10

// refusalMarkers flag a model that answered instead of compressing.
var refusalMarkers = []string{
	"I apologize",
	"I'm sorry",
	"As an AI",
	"I cannot",
	"I can't fulfill",
	"I can't help",
	"I don't have access",
}

// fabricationMarkers flag content small local models are prone to invent
// in this task. Each is only fatal when absent from the input.
var fabricationMarkers = []string{
	"this command will",
	"you should run",
	"the output shows that",
	"--rules=",
	"--remove-verbose",
}

// preamblePrefixes are chatter lines models prepend before the actual
// compressed text.
var preamblePrefixes = []string{
	"here is",
	"here's",
	"sure,",
	"sure!",
	"certainly",
	"the compressed output",
	"compressed output:",
	"output:",
	"summary:",
}

// Validate gates a model candidate against its input. On acceptance it
// returns the cleaned candidate; on rejection it returns an error naming
// the failed check so the caller can fall back to the preprocessed text.
func Validate(input, candidate string, category domain.Category) (string, error) {
	cleaned := stripPreamble(candidate)
	cleaned = stripCommandEcho(cleaned)
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return "", fmt.Errorf("llm validation: empty candidate")
	}
	if float64(len(cleaned)) > float64(len(input))*maxLengthRatio {
		return "", fmt.Errorf("llm validation: candidate not shorter than input (%d > %d)", len(cleaned), len(input))
	}
	lower := strings.ToLower(cleaned)
	for _, marker := range refusalMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return "", fmt.Errorf("llm validation: refusal marker %q", marker)
		}
	}
	lowerInput := strings.ToLower(input)
	for _, marker := range fabricationMarkers {
		if strings.Contains(lower, marker) && !strings.Contains(lowerInput, marker) {
			return "", fmt.Errorf("llm validation: fabrication marker %q", marker)
		}
	}
	if example := exampleOutput(category); example != "" {
		if strings.Contains(cleaned, example) && !strings.Contains(input, example) {
			return "", fmt.Errorf("llm validation: candidate echoes the prompt example")
		}
	}
	return cleaned, nil
}

// stripPreamble removes leading chatter lines and unwraps a single fenced
// code block.
func stripPreamble(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for len(lines) > 0 {
		trimmed := strings.ToLower(strings.TrimSpace(lines[0]))
		matched := false
		for _, p := range preamblePrefixes {
			if strings.HasPrefix(trimmed, p) {
				matched = true
				break
			}
		}
		if !matched {
			break
		}
		lines = lines[1:]
	}
	out := strings.TrimSpace(strings.Join(lines, "\n"))

	if strings.HasPrefix(out, "```") {
		if end := strings.LastIndex(out, "```"); end > 0 {
			inner := out[strings.IndexByte(out, '\n')+1 : end]
			return strings.TrimSpace(inner)
		}
	}
	return out
}

// stripCommandEcho drops lines that merely restate a shell invocation
// ("$ git status") instead of carrying output.
func stripCommandEcho(s string) string {
	lines := strings.Split(s, "\n")
	var kept []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "$ ") || strings.HasPrefix(trimmed, "> ") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
