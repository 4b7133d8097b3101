package optimizers

import (
	"context"
	"fmt"
	"strings"

	"github.com/benwelker/terse/internal/domain"
	"github.com/benwelker/terse/internal/ports"
)

var testPrefixes = []string{
	"cargo test", "npm test", "npm run test", "npx jest", "npx vitest",
	"dotnet test", "pytest", "python -m pytest", "go test", "mvn test",
	"gradle test", "make test", "nmake test",
}

var buildPrefixes = []string{
	"cargo build", "cargo install", "npm install", "npm ci", "npm run build",
	"npx tsc", "yarn install", "yarn build", "pnpm install", "pnpm build",
	"dotnet build", "dotnet restore", "dotnet publish", "go build",
	"mvn compile", "mvn package", "gradle build", "make", "cmake", "msbuild",
	"nmake", "nuget restore", "pip install", "pip3 install", "python -m pip",
}

var lintPrefixes = []string{
	"cargo clippy", "cargo fmt", "npx eslint", "npm run lint",
	"dotnet format", "pylint", "flake8", "ruff check", "golint", "go vet",
}

// Build compacts compiler, test-runner, and linter output: failures,
// errors, and warnings survive up to their caps, passing noise is dropped,
// and summary lines are always kept.
type Build struct {
	cfg domain.BuildOptimizerSettings
}

// NewBuild builds the build-tool optimizer.
func NewBuild(cfg domain.BuildOptimizerSettings) *Build {
	return &Build{cfg: cfg}
}

func (b *Build) Name() string { return "build" }

func (b *Build) CanHandle(cmd domain.CommandContext) bool {
	return buildKind(cmd.Core) != ""
}

func (b *Build) Optimize(_ context.Context, cmd domain.CommandContext, raw ports.ExecResult) (domain.OptimizedResult, error) {
	out := combinedOutput(raw)
	var compacted string
	switch buildKind(cmd.Core) {
	case "test":
		compacted = b.compactTestOutput(out)
	case "lint":
		compacted = b.compactLintOutput(out)
	default:
		compacted = b.compactBuildOutput(out)
	}
	return domain.OptimizedResult{
		Output:        compacted,
		ExitCode:      raw.ExitCode,
		OptimizerName: b.Name(),
	}, nil
}

// buildKind classifies the invocation into test, build, or lint flavors
// since their signal lines differ. Unrecognized invocations (go run,
// npm start) get "" and fall through to the generic optimizer.
func buildKind(core string) string {
	lower := strings.ToLower(core)
	switch {
	case hasAnyPrefix(lower, testPrefixes):
		return "test"
	case hasAnyPrefix(lower, lintPrefixes):
		return "lint"
	case hasAnyPrefix(lower, buildPrefixes):
		return "build"
	}
	return ""
}

// hasAnyPrefix matches on word boundaries so "make" does not claim
// "makepkg".
func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if s == p || strings.HasPrefix(s, p+" ") {
			return true
		}
	}
	return false
}

func (b *Build) compactTestOutput(out string) string {
	var failures, errors, warnings, summaries []string
	for _, line := range strings.Split(out, "\n") {
		switch {
		case isTestSummaryLine(line):
			summaries = append(summaries, line)
		case isFailureLine(line):
			failures = append(failures, line)
		case isErrorLine(line):
			errors = append(errors, line)
		case isWarningLine(line):
			warnings = append(warnings, line)
		}
	}
	var parts []string
	parts = appendCapped(parts, failures, b.cfg.TestMaxFailureLines, "failure lines")
	parts = appendCapped(parts, errors, b.cfg.TestMaxErrorLines, "error lines")
	parts = appendCapped(parts, warnings, b.cfg.TestMaxWarnings, "warnings")
	parts = append(parts, summaries...)
	if len(parts) == 0 {
		// Nothing notable: everything passed quietly.
		if s := lastNonEmptyLine(out); s != "" {
			return s
		}
		return out
	}
	return strings.Join(parts, "\n")
}

func (b *Build) compactBuildOutput(out string) string {
	var errors, warnings, summaries []string
	for _, line := range strings.Split(out, "\n") {
		switch {
		case isBuildSummaryLine(line):
			summaries = append(summaries, line)
		case isErrorLine(line) || isFailureLine(line):
			errors = append(errors, line)
		case isWarningLine(line):
			warnings = append(warnings, line)
		}
	}
	var parts []string
	parts = appendCapped(parts, errors, b.cfg.BuildMaxErrorLines, "error lines")
	parts = appendCapped(parts, warnings, b.cfg.BuildMaxWarnings, "warnings")
	parts = append(parts, summaries...)
	if len(parts) == 0 {
		if s := lastNonEmptyLine(out); s != "" {
			return s
		}
		return out
	}
	return strings.Join(parts, "\n")
}

func (b *Build) compactLintOutput(out string) string {
	var issues, summaries []string
	for _, line := range strings.Split(out, "\n") {
		switch {
		case isBuildSummaryLine(line) || isTestSummaryLine(line):
			summaries = append(summaries, line)
		case isErrorLine(line) || isWarningLine(line) || isFailureLine(line):
			issues = append(issues, line)
		}
	}
	var parts []string
	parts = appendCapped(parts, issues, b.cfg.LintMaxIssueLines, "issue lines")
	parts = append(parts, summaries...)
	if len(parts) == 0 {
		if s := lastNonEmptyLine(out); s != "" {
			return s
		}
		return out
	}
	return strings.Join(parts, "\n")
}

func appendCapped(parts, lines []string, max int, label string) []string {
	if len(lines) == 0 {
		return parts
	}
	if len(lines) > max {
		parts = append(parts, lines[:max]...)
		return append(parts, fmt.Sprintf("[... %d more %s]", len(lines)-max, label))
	}
	return append(parts, lines...)
}

func isFailureLine(line string) bool {
	lower := strings.ToLower(line)
	return containsAny(lower, "fail", "panic", "✗", "⨯", "assert")
}

func isErrorLine(line string) bool {
	lower := strings.ToLower(line)
	return containsAny(lower, "error", "fatal", "exception", "traceback", "cannot find", "undefined reference")
}

func isWarningLine(line string) bool {
	return strings.Contains(strings.ToLower(line), "warn")
}

// isTestSummaryLine matches the result rollups of common test runners.
func isTestSummaryLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "test result:"): // cargo
		return true
	case strings.HasPrefix(trimmed, "Tests:") || strings.HasPrefix(trimmed, "Test Suites:"): // jest
		return true
	case strings.HasPrefix(trimmed, "ok ") || strings.HasPrefix(trimmed, "FAIL\t") || strings.HasPrefix(trimmed, "--- FAIL"): // go test
		return true
	case strings.Contains(lower, "passed") && (strings.Contains(lower, "failed") || strings.Contains(lower, "warning") || strings.Contains(lower, "====")): // pytest
		return true
	}
	return false
}

func isBuildSummaryLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "build succeeded") || strings.HasPrefix(lower, "build failed"):
		return true
	case strings.HasPrefix(trimmed, "Finished ") || strings.HasPrefix(lower, "compiling finished"):
		return true
	case strings.HasPrefix(lower, "error[e") || strings.HasPrefix(lower, "warning: build"):
		return true
	case strings.Contains(lower, "compiled successfully"):
		return true
	}
	return false
}

func lastNonEmptyLine(out string) string {
	lines := strings.Split(out, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return strings.TrimSpace(lines[i])
		}
	}
	return ""
}

var _ ports.Optimizer = (*Build)(nil)
