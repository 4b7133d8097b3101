package preprocess

import (
	"strings"

	"github.com/benwelker/terse/internal/domain"
)

// trimWhitespace normalizes line endings, strips trailing per-line
// whitespace, caps blank-line runs at two, and trims leading and trailing
// blank lines.
func trimWhitespace(text string, _ domain.PreprocessSettings) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	out := make([]string, 0, len(lines))
	blanks := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blanks++
			if blanks > 2 {
				continue
			}
		} else {
			blanks = 0
		}
		out = append(out, line)
	}

	start := 0
	for start < len(out) && out[start] == "" {
		start++
	}
	end := len(out)
	for end > start && out[end-1] == "" {
		end--
	}
	return strings.Join(out[start:end], "\n")
}
