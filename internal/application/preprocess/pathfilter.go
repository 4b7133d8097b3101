package preprocess

import (
	"fmt"
	"strings"

	"github.com/benwelker/terse/internal/domain"
)

// noiseDirSegments are path fragments pointing into build artifacts and
// dependency caches. Lines referencing them are overwhelmingly noise in
// find/ls/build output.
var noiseDirSegments = []string{
	"node_modules/",
	".git/objects/",
	".git/refs/",
	"target/debug/",
	"target/release/",
	"target/.fingerprint/",
	"__pycache__/",
	".pytest_cache/",
	".mypy_cache/",
	".venv/",
	"venv/lib/",
	"site-packages/",
	"dist/assets/",
	"build/cache/",
	".next/cache/",
	".nuxt/",
	".gradle/",
	"vendor/bundle/",
	".terraform/providers/",
	"coverage/lcov-report/",
}

// filterMarker is the summary emitted in place of a filtered run.
const filterMarker = "[%d path(s) in noise directories filtered]"

// filterPaths removes or summarizes lines referencing noisy directories.
// Lines carrying failure signal always survive, even inside a noisy path.
func filterPaths(text string, settings domain.PreprocessSettings) string {
	segments := noiseDirSegments
	if len(settings.ExtraFilteredDirs) > 0 {
		segments = append(append([]string{}, noiseDirSegments...), settings.ExtraFilteredDirs...)
	}
	summarize := settings.PathFilterMode != "remove"

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	run := 0
	flush := func() {
		if run == 0 {
			return
		}
		if summarize {
			kept = append(kept, fmt.Sprintf(filterMarker, run))
		}
		run = 0
	}
	for _, line := range lines {
		if isNoisyPathLine(line, segments) && !hasFailureSignal(line) {
			run++
			continue
		}
		flush()
		kept = append(kept, line)
	}
	flush()
	return strings.Join(kept, "\n")
}

func isNoisyPathLine(line string, segments []string) bool {
	if strings.HasPrefix(strings.TrimSpace(line), "[") {
		// Never re-filter our own summary markers.
		return false
	}
	normalized := normalizeForPathMatch(line)
	for _, seg := range segments {
		if strings.Contains(normalized, seg) {
			return true
		}
	}
	return false
}

// normalizeForPathMatch strips tree-drawing characters and converts
// backslashes so Windows and `tree` output match the segment list.
func normalizeForPathMatch(line string) string {
	line = strings.Map(func(r rune) rune {
		switch r {
		case '│', '├', '└', '─', '┬', '┤':
			return -1
		}
		return r
	}, line)
	return strings.ReplaceAll(line, "\\", "/")
}
