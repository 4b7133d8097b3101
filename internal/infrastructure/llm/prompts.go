package llm

import (
	"strings"

	"github.com/benwelker/terse/internal/domain"
)

// maxPromptChars bounds how much preprocessed text is handed to the model.
const maxPromptChars = 6000

// promptTemplate shapes the system message for one command category. The
// before/after example doubles as validation vocabulary: a candidate that
// echoes the example verbatim is hallucinating.
type promptTemplate struct {
	preamble      string
	rules         []string
	exampleBefore string
	exampleAfter  string
}

const sharedPreamble = "You compress shell command output for an AI coding assistant. " +
	"Output ONLY the compressed text. Never explain, never add commentary, " +
	"never invent information that is not in the input."

var sharedRules = []string{
	"Preserve every error, failure, and warning message verbatim.",
	"Preserve file paths, line numbers, and exit status information.",
	"Drop decorative lines, progress output, and repeated boilerplate.",
	"Never fabricate counts, flags, or file names.",
}

var templates = map[domain.Category]promptTemplate{
	domain.CategoryVersionControl: {
		preamble: sharedPreamble,
		rules: append([]string{
			"Summarize clean status as a single line.",
			"Keep branch names, commit hashes, and conflict markers.",
			"Collapse per-file diff noise into counts per file.",
		}, sharedRules...),
		exampleBefore: "On branch main\nYour branch is up to date with 'origin/main'.\n\nChanges not staged for commit:\n  (use \"git add <file>...\" to update what will be committed)\n\tmodified:   src/app.ts\n\nno changes added to commit",
		exampleAfter:  "branch: main (up to date)\nmodified (1): src/app.ts",
	},
	domain.CategoryFileOperations: {
		preamble: sharedPreamble,
		rules: append([]string{
			"Group similar entries and report counts instead of full listings.",
			"Keep unusual entries (broken links, permission errors) verbatim.",
		}, sharedRules...),
		exampleBefore: "app.js\nindex.js\nutil.js\nhelper.js\ntest1.js\ntest2.js\ntest3.js",
		exampleAfter:  "7 .js files: app, index, util, helper, test1-3",
	},
	domain.CategoryBuildTest: {
		preamble: sharedPreamble,
		rules: append([]string{
			"Keep every failing test name and its assertion message.",
			"Collapse passing tests into a single count.",
			"Always keep the final summary line.",
		}, sharedRules...),
		exampleBefore: "PASS test_alpha\nPASS test_beta\nFAIL test_gamma: expected 3 got 4\nPASS test_delta\n4 tests, 1 failure",
		exampleAfter:  "3 passed\nFAIL test_gamma: expected 3 got 4\n4 tests, 1 failure",
	},
	domain.CategoryContainerTools: {
		preamble: sharedPreamble,
		rules: append([]string{
			"Keep container/pod names, states, and ports; drop IDs and created-at noise.",
			"Keep restart counts and unhealthy states verbatim.",
		}, sharedRules...),
		exampleBefore: "CONTAINER ID   IMAGE          STATUS         PORTS      NAMES\nabc123def456   nginx:latest   Up 2 hours     80/tcp     web\n789ghi012jkl   redis:7        Up 2 hours     6379/tcp   cache",
		exampleAfter:  "web (nginx:latest) Up 2h :80\ncache (redis:7) Up 2h :6379",
	},
	domain.CategoryLogs: {
		preamble: sharedPreamble,
		rules: append([]string{
			"Keep error and warning entries with their timestamps.",
			"Collapse repeated entries into one line with a count.",
			"Keep the most recent lines over older ones.",
		}, sharedRules...),
		exampleBefore: "10:00:01 INFO ready\n10:00:02 INFO ready\n10:00:03 INFO ready\n10:00:04 ERROR connection refused",
		exampleAfter:  "10:00:01-03 INFO ready (x3)\n10:00:04 ERROR connection refused",
	},
	domain.CategoryGeneric: {
		preamble:      sharedPreamble,
		rules:         sharedRules,
		exampleBefore: "",
		exampleAfter:  "",
	},
}

// BuildPrompt renders the system message for category and the bounded user
// message for text.
func BuildPrompt(category domain.Category, text string) (system, user string) {
	tpl, ok := templates[category]
	if !ok {
		tpl = templates[domain.CategoryGeneric]
	}
	var b strings.Builder
	b.WriteString(tpl.preamble)
	b.WriteString("\n\nRules:\n")
	for _, r := range tpl.rules {
		b.WriteString("- ")
		b.WriteString(r)
		b.WriteByte('\n')
	}
	if tpl.exampleBefore != "" {
		b.WriteString("\nExample input:\n")
		b.WriteString(tpl.exampleBefore)
		b.WriteString("\n\nExample output:\n")
		b.WriteString(tpl.exampleAfter)
		b.WriteByte('\n')
	}
	return b.String(), truncateForPrompt(text)
}

// exampleOutput exposes a category's example for the echo check.
func exampleOutput(category domain.Category) string {
	return templates[category].exampleAfter
}

func truncateForPrompt(text string) string {
	if len(text) <= maxPromptChars {
		return text
	}
	cut := text[:maxPromptChars]
	// Cut on a line boundary when one is near.
	if idx := strings.LastIndexByte(cut, '\n'); idx > maxPromptChars-200 {
		cut = cut[:idx]
	}
	return cut + "\n[... input truncated for model]"
}
