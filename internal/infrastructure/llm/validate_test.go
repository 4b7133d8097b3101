package llm

import (
	"strings"
	"testing"

	"github.com/benwelker/terse/internal/domain"
)

const sampleInput = "modified: src/app.ts\nmodified: src/db.ts\nuntracked: notes.md\n" +
	"modified: src/api.ts\nmodified: src/log.ts\nmodified: src/cfg.ts\n"

func TestValidateAcceptsCleanCandidate(t *testing.T) {
	got, err := Validate(sampleInput, "5 modified, 1 untracked", domain.CategoryVersionControl)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if got != "5 modified, 1 untracked" {
		t.Fatalf("got %q", got)
	}
}

func TestValidateRejectsEmpty(t *testing.T) {
	if _, err := Validate(sampleInput, "   \n  ", domain.CategoryGeneric); err == nil {
		t.Fatal("empty candidate accepted")
	}
}

func TestValidateRejectsLongerThanInput(t *testing.T) {
	candidate := strings.Repeat("padding ", 100)
	if _, err := Validate("short input", candidate, domain.CategoryGeneric); err == nil {
		t.Fatal("oversized candidate accepted")
	}
}

func TestValidateAllowsSmallMargin(t *testing.T) {
	input := strings.Repeat("x", 100)
	candidate := strings.Repeat("y", 105) // within 110%
	if _, err := Validate(input, candidate, domain.CategoryGeneric); err != nil {
		t.Fatalf("candidate within margin rejected: %v", err)
	}
}

func TestValidateRejectsRefusals(t *testing.T) {
	for _, candidate := range []string{
		"I'm sorry, I can't compress this output.",
		"As an AI language model, I cannot run commands.",
		"I apologize, but this looks sensitive.",
	} {
		if _, err := Validate(sampleInput, candidate, domain.CategoryGeneric); err == nil {
			t.Fatalf("refusal accepted: %q", candidate)
		}
	}
}

func TestValidateRejectsFabrication(t *testing.T) {
	candidate := "5 files changed. You should run git add next."
	if _, err := Validate(sampleInput, candidate, domain.CategoryVersionControl); err == nil {
		t.Fatal("fabricated advice accepted")
	}
}

func TestValidateFabricationMarkerPresentInInputAllowed(t *testing.T) {
	input := "build log: this command will be removed in v2\nwarning: deprecated"
	candidate := "this command will be removed in v2; 1 warning"
	if _, err := Validate(input, candidate, domain.CategoryGeneric); err != nil {
		t.Fatalf("marker present in input rejected: %v", err)
	}
}

func TestValidateRejectsExampleEcho(t *testing.T) {
	candidate := "branch: main (up to date)\nmodified (1): src/app.ts"
	if _, err := Validate(sampleInput, candidate, domain.CategoryVersionControl); err == nil {
		t.Fatal("prompt example echoed back and accepted")
	}
}

func TestValidateStripsPreambleAndFences(t *testing.T) {
	candidate := "Here is the compressed output:\n```\n5 modified, 1 untracked\n```"
	got, err := Validate(sampleInput, candidate, domain.CategoryVersionControl)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if got != "5 modified, 1 untracked" {
		t.Fatalf("got %q", got)
	}
}

func TestValidateStripsCommandEcho(t *testing.T) {
	candidate := "$ git status\n5 modified, 1 untracked"
	got, err := Validate(sampleInput, candidate, domain.CategoryVersionControl)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if got != "5 modified, 1 untracked" {
		t.Fatalf("got %q", got)
	}
}
