package optimizers

import (
	"testing"

	"github.com/benwelker/terse/internal/domain"
	"github.com/benwelker/terse/internal/ports"
)

func newTestRegistry() *Registry {
	return NewRegistry(domain.DefaultConfig())
}

func TestRegistryOrder(t *testing.T) {
	r := newTestRegistry()
	want := []string{"git", "file", "build", "docker", "generic"}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRegistryFirstMatchesFamily(t *testing.T) {
	r := newTestRegistry()
	tests := []struct {
		core string
		want string
	}{
		{"git status", "git"},
		{"ls -la", "file"},
		{"cargo build", "build"},
		{"docker ps", "docker"},
		{"echo hi", "generic"},
	}
	for _, tt := range tests {
		cmd := domain.CommandContext{Original: tt.core, Core: tt.core}
		if got := r.First(cmd).Name(); got != tt.want {
			t.Fatalf("First(%q) = %s, want %s", tt.core, got, tt.want)
		}
	}
}

func TestRegistryFirstSpecificExcludesFallback(t *testing.T) {
	r := newTestRegistry()
	cmd := domain.CommandContext{Original: "echo hi", Core: "echo hi"}
	if got := r.FirstSpecific(cmd); got != nil {
		t.Fatalf("FirstSpecific for unmatched command = %s, want nil", got.Name())
	}
	cmd = domain.CommandContext{Original: "git diff", Core: "git diff"}
	if got := r.FirstSpecific(cmd); got == nil || got.Name() != "git" {
		t.Fatal("FirstSpecific missed the git optimizer")
	}
}

func TestRegistryHonorsDisableFlags(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.FastPath.Optimizers.Git = false
	cfg.FastPath.Optimizers.Docker = false
	r := NewRegistry(cfg)

	cmd := domain.CommandContext{Original: "git status", Core: "git status"}
	if got := r.FirstSpecific(cmd); got != nil {
		t.Fatalf("disabled git family still matched: %s", got.Name())
	}
	// Fallback still catches everything.
	if got := r.First(cmd).Name(); got != "generic" {
		t.Fatalf("First = %s, want generic", got)
	}
}

func TestHasFlag(t *testing.T) {
	tests := []struct {
		core string
		flag string
		want bool
	}{
		{"git status --short", "--short", true},
		{"git log --format=oneline", "--format", true},
		{"git status", "--short", false},
		{"git log --shortstat", "--short", false},
	}
	for _, tt := range tests {
		if got := hasFlag(tt.core, tt.flag); got != tt.want {
			t.Fatalf("hasFlag(%q, %q) = %v, want %v", tt.core, tt.flag, got, tt.want)
		}
	}
}

func TestCombinedOutput(t *testing.T) {
	if got := combinedOutput(ports.ExecResult{Stdout: "out", Stderr: "err"}); got != "out\nerr" {
		t.Fatalf("got %q", got)
	}
	if got := combinedOutput(ports.ExecResult{Stdout: "out"}); got != "out" {
		t.Fatalf("got %q", got)
	}
	if got := combinedOutput(ports.ExecResult{Stderr: "err"}); got != "err" {
		t.Fatalf("got %q", got)
	}
}
