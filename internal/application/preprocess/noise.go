package preprocess

import (
	"regexp"
	"strings"

	"github.com/benwelker/terse/internal/domain"
)

// ansiPattern matches CSI sequences, OSC sequences (terminated by BEL or
// ST), and charset selection escapes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)|\x1b[()][A-B0-2]`)

// boilerplatePrefixes marks informational lines from common toolchains
// that carry no signal for a coding assistant.
var boilerplatePrefixes = []string{
	"Compiling ",
	"Downloading ",
	"Downloaded ",
	"Installing ",
	"Fetching ",
	"Resolving ",
	"Unpacking ",
	"Extracting ",
	"Updating crates.io",
	"npm warn",
	"npm notice",
	"added ",
	"audited ",
	"up to date in",
	"Already up to date",
	"remote: ",
	"Receiving objects:",
	"Resolving deltas:",
	"Collecting ",
	"Requirement already satisfied",
	"Preparing metadata",
}

// removeNoise strips terminal control sequences, progress redraw lines,
// decoration rules, and configured boilerplate, then collapses blank-line
// runs of three or more into one.
func removeNoise(text string, settings domain.PreprocessSettings) string {
	text = ansiPattern.ReplaceAllString(text, "")

	prefixes := boilerplatePrefixes
	if len(settings.ExtraBoilerplate) > 0 {
		prefixes = append(append([]string{}, boilerplatePrefixes...), settings.ExtraBoilerplate...)
	}

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	blanks := 0
	flushBlanks := func() {
		// A run of three or more collapses to a single blank line.
		if blanks >= 3 {
			blanks = 1
		}
		for ; blanks > 0; blanks-- {
			kept = append(kept, "")
		}
	}
	for _, line := range lines {
		line = collapseCarriageReturns(line)
		if isBoilerplate(line, prefixes) || isDecorationLine(line) || isProgressLine(line) {
			continue
		}
		if strings.TrimSpace(line) == "" {
			blanks++
			continue
		}
		flushBlanks()
		kept = append(kept, line)
	}
	flushBlanks()
	return strings.Join(kept, "\n")
}

// collapseCarriageReturns keeps only the final overwrite of a
// progress-style line redrawn with bare carriage returns.
func collapseCarriageReturns(line string) string {
	if idx := strings.LastIndexByte(line, '\r'); idx >= 0 {
		return line[idx+1:]
	}
	return line
}

func isBoilerplate(line string, prefixes []string) bool {
	trimmed := strings.TrimSpace(line)
	for _, p := range prefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

// isDecorationLine matches horizontal rules: three or more repeated
// punctuation characters and nothing else.
func isDecorationLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return false
	}
	first := rune(trimmed[0])
	if !strings.ContainsRune(`-=_*~#+.`, first) {
		return false
	}
	for _, r := range trimmed {
		if r != first {
			return false
		}
	}
	return true
}

// isProgressLine drops bar-style progress output: short lines that are
// almost entirely bar characters, digits, and percentages.
func isProgressLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(trimmed) >= 120 {
		return false
	}
	if !strings.ContainsAny(trimmed, "%#=>[]") {
		return false
	}
	residue := strings.Map(func(r rune) rune {
		if strings.ContainsRune("#=>-[]%/.|⣿▉▊█ \t0123456789", r) {
			return -1
		}
		return r
	}, trimmed)
	residue = strings.TrimSpace(residue)
	// Allow unit suffixes like "KiB/s" or "eta" around the bar.
	return len(residue) < 10 && len(residue) < len(trimmed)/2
}
