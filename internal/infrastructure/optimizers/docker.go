package optimizers

import (
	"context"
	"fmt"
	"strings"

	"github.com/benwelker/terse/internal/domain"
	"github.com/benwelker/terse/internal/ports"
)

// dockerKinds maps recognized invocation prefixes to their compaction
// flavor. Order matters: the longer compose prefixes must win over
// "docker ps"-style matches. Unlisted subcommands (run, exec, rm) fall
// through untouched.
var dockerKinds = []struct {
	prefix string
	kind   string
}{
	{"docker compose ps", "compose"},
	{"docker-compose ps", "compose"},
	{"docker compose build", "build"},
	{"docker-compose build", "build"},
	{"docker ps", "ps"},
	{"docker images", "images"},
	{"docker image ls", "images"},
	{"docker logs", "logs"},
	{"docker inspect", "inspect"},
	{"docker build", "build"},
	{"docker pull", "pullpush"},
	{"docker push", "pullpush"},
	{"docker network ls", "resource"},
	{"docker network list", "resource"},
	{"docker volume ls", "resource"},
	{"docker volume list", "resource"},
	{"podman ps", "ps"},
	{"podman images", "images"},
	{"podman logs", "logs"},
	{"podman inspect", "inspect"},
	{"podman build", "build"},
	{"podman pull", "pullpush"},
	{"podman push", "pullpush"},
	{"kubectl get", "ps"},
	{"kubectl logs", "logs"},
	{"kubectl describe", "inspect"},
}

// Docker compacts container tooling output: tabular listings get column
// extraction and row caps, logs keep a tail plus error lines, inspect and
// build output gets line caps.
type Docker struct {
	cfg domain.DockerOptimizerSettings
}

// NewDocker builds the container-tools optimizer.
func NewDocker(cfg domain.DockerOptimizerSettings) *Docker {
	return &Docker{cfg: cfg}
}

func (d *Docker) Name() string { return "docker" }

func (d *Docker) CanHandle(cmd domain.CommandContext) bool {
	if dockerKind(cmd.Core) == "" {
		return false
	}
	// A user-specified format already is the compact form they asked for.
	return !hasFlag(cmd.Core, "--format", "-o", "--output")
}

func (d *Docker) Optimize(_ context.Context, cmd domain.CommandContext, raw ports.ExecResult) (domain.OptimizedResult, error) {
	out := combinedOutput(raw)
	var compacted string
	switch dockerKind(cmd.Core) {
	case "ps":
		compacted = d.compactTable(out, d.cfg.PsMaxRows)
	case "images":
		compacted = d.compactTable(out, d.cfg.ImagesMaxRows)
	case "logs":
		compacted = d.compactLogs(out)
	case "inspect":
		compacted = truncateLines(out, d.cfg.InspectMaxLines, "[... inspect output truncated]")
	case "pullpush":
		compacted = d.compactPullPush(cmd.Core, raw)
	case "compose":
		compacted = d.compactTable(out, d.cfg.ComposeMaxRows)
	case "build":
		compacted = d.compactBuild(out)
	default:
		compacted = truncateLines(out, d.cfg.ResourceMaxRows, "[... rows truncated]")
	}
	return domain.OptimizedResult{
		Output:        compacted,
		ExitCode:      raw.ExitCode,
		OptimizerName: d.Name(),
	}, nil
}

func dockerKind(core string) string {
	lower := strings.ToLower(core)
	for _, k := range dockerKinds {
		if lower == k.prefix || strings.HasPrefix(lower, k.prefix+" ") {
			return k.kind
		}
	}
	return ""
}

// compactBuild keeps a step count, every error line, and the result lines;
// passing step output is dropped.
func (d *Docker) compactBuild(out string) string {
	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		return "Build completed (no output)"
	}

	var errors, results []string
	steps := 0
	for _, line := range strings.Split(trimmed, "\n") {
		l := strings.TrimSpace(line)
		lower := strings.ToLower(l)
		switch {
		case strings.HasPrefix(lower, "step ") || (strings.HasPrefix(lower, "#") && strings.Contains(lower, "[")):
			steps++
		case strings.Contains(lower, "error") || strings.Contains(lower, "failed"):
			errors = append(errors, l)
		case strings.HasPrefix(lower, "successfully") || strings.HasPrefix(lower, "writing image") ||
			strings.HasPrefix(lower, "naming to") || strings.Contains(lower, "built"):
			results = append(results, l)
		}
	}

	var parts []string
	if steps > 0 {
		parts = append(parts, fmt.Sprintf("[%d build steps]", steps))
	}
	if len(errors) > 0 {
		parts = append(parts, "ERRORS:")
		parts = appendCapped(parts, errors, d.cfg.LogsMaxErrors, "error lines")
	}
	parts = append(parts, results...)
	if len(parts) == 0 {
		return truncateLines(out, d.cfg.ResourceMaxRows, "[... rows truncated]")
	}
	return strings.Join(parts, "\n")
}

// compactTable keeps the header row and the first maxRows body rows.
func (d *Docker) compactTable(out string, maxRows int) string {
	lines := nonEmptyLines(out)
	if len(lines) <= maxRows+1 {
		return strings.Join(lines, "\n")
	}
	kept := lines[:maxRows+1]
	return strings.Join(kept, "\n") + fmt.Sprintf("\n[... %d more rows]", len(lines)-maxRows-1)
}

// compactLogs keeps error lines plus the newest tail.
func (d *Docker) compactLogs(out string) string {
	lines := strings.Split(out, "\n")
	var errors []string
	for _, line := range lines {
		if isErrorLine(line) || isFailureLine(line) {
			errors = append(errors, line)
			if len(errors) >= d.cfg.LogsMaxErrors {
				break
			}
		}
	}
	tailStart := len(lines) - d.cfg.LogsMaxTail
	if tailStart < 0 {
		tailStart = 0
	}
	tail := lines[tailStart:]

	var parts []string
	if len(errors) > 0 && tailStart > 0 {
		parts = append(parts, "[earlier error lines]")
		for _, e := range errors {
			if !sliceContains(tail, e) {
				parts = append(parts, e)
			}
		}
	}
	if tailStart > 0 {
		parts = append(parts, fmt.Sprintf("[... %d earlier lines omitted, last %d shown]", tailStart, len(tail)))
	}
	parts = append(parts, tail...)
	return strings.Join(parts, "\n")
}

func (d *Docker) compactPullPush(core string, raw ports.ExecResult) string {
	fields := strings.Fields(core)
	op := strings.Join(fields[:min(len(fields), 3)], " ")
	if raw.ExitCode == 0 {
		if digest := firstMatchingLine(combinedOutput(raw), "digest:"); digest != "" {
			return op + ": ok (" + digest + ")"
		}
		return op + ": ok"
	}
	reason := firstMatchingLine(combinedOutput(raw), "error", "denied", "manifest unknown")
	if reason == "" {
		reason = firstNonEmptyLine(combinedOutput(raw))
	}
	return op + ": failed - " + reason
}

func sliceContains(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

var _ ports.Optimizer = (*Docker)(nil)
