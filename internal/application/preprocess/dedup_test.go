package preprocess

import (
	"strings"
	"testing"

	"github.com/benwelker/terse/internal/domain"
)

func TestDeduplicateIdenticalRun(t *testing.T) {
	in := "warming cache\nwarming cache\nwarming cache\nwarming cache\ndone"
	got := deduplicate(in, domain.PreprocessSettings{})
	want := "warming cache\n[repeated 4 times]\ndone"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDeduplicateShortRunUntouched(t *testing.T) {
	in := "a\na\nb"
	if got := deduplicate(in, domain.PreprocessSettings{}); got != in {
		t.Fatalf("2-run collapsed: %q", got)
	}
}

func TestDeduplicateSimilarPatternRun(t *testing.T) {
	in := strings.Join([]string{
		"test case 101 ... ok",
		"test case 102 ... ok",
		"test case 103 ... ok",
		"test case 104 ... ok",
		"test case 105 ... ok",
	}, "\n")
	got := deduplicate(in, domain.PreprocessSettings{})
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 2 representatives + marker, got %d lines:\n%s", len(lines), got)
	}
	if lines[0] != "test case 101 ... ok" || lines[1] != "test case 102 ... ok" {
		t.Fatalf("representatives wrong:\n%s", got)
	}
	if !strings.Contains(lines[2], "3 more similar line(s)") {
		t.Fatalf("marker wrong: %q", lines[2])
	}
}

// A failing test line inside a run of passing ones must survive verbatim.
func TestDeduplicatePreservesFailureInsideRun(t *testing.T) {
	in := strings.Join([]string{
		"test case 101 ... ok",
		"test case 102 ... ok",
		"test case 103 ... ok",
		"test case 104 ... FAILED",
		"test case 105 ... ok",
		"test case 106 ... ok",
	}, "\n")
	got := deduplicate(in, domain.PreprocessSettings{})
	if !strings.Contains(got, "test case 104 ... FAILED") {
		t.Fatalf("failure line folded away:\n%s", got)
	}
}

func TestDeduplicateBlankRunsNotCollapsed(t *testing.T) {
	in := "\n\n\n\n"
	if got := deduplicate(in, domain.PreprocessSettings{}); strings.Contains(got, "repeated") {
		t.Fatalf("blank lines summarized: %q", got)
	}
}

func TestDeduplicateNoNumericContentNoPatternRun(t *testing.T) {
	in := "alpha beta\ngamma delta\nepsilon zeta"
	if got := deduplicate(in, domain.PreprocessSettings{}); got != in {
		t.Fatalf("non-numeric lines folded: %q", got)
	}
}
