package optimizers

import (
	"context"
	"fmt"
	"strings"

	"github.com/benwelker/terse/internal/domain"
	"github.com/benwelker/terse/internal/ports"
)

// gitSubcommand is the recognized family of git invocations.
type gitSubcommand int

const (
	gitUnknown gitSubcommand = iota
	gitStatus
	gitLog
	gitDiff
	gitBranch
	gitShow
	gitStash
	gitShortStatus // push, pull, fetch, add, commit: one-line result
)

var gitShortOps = map[string]bool{
	"push": true, "pull": true, "fetch": true, "add": true, "commit": true,
}

// Git compacts version-control output. It uses both realization
// strategies: status and history substitute a cheaper invocation that the
// router runs in place of the original, diff and branch rewrite the
// captured text, and simple mutating operations reduce to a single
// success or failure line.
type Git struct {
	cfg domain.GitOptimizerSettings
}

// NewGit builds the git optimizer.
func NewGit(cfg domain.GitOptimizerSettings) *Git {
	return &Git{cfg: cfg}
}

func (g *Git) Name() string { return "git" }

// CanHandle recognizes git invocations whose output benefits from
// compaction. Invocations already requesting a compact format are left
// alone.
func (g *Git) CanHandle(cmd domain.CommandContext) bool {
	return g.classify(cmd.Core) != gitUnknown
}

func (g *Git) classify(core string) gitSubcommand {
	fields := strings.Fields(core)
	if len(fields) < 2 || strings.ToLower(fields[0]) != "git" {
		return gitUnknown
	}
	sub := fields[1]
	rest := strings.Join(fields[2:], " ")
	switch sub {
	case "status":
		if hasFlag(rest, "--short", "-s", "--porcelain", "-v") {
			return gitUnknown
		}
		return gitStatus
	case "log":
		return gitLog
	case "diff":
		if hasFlag(rest, "--stat", "--numstat", "--shortstat") {
			return gitUnknown
		}
		return gitDiff
	case "branch":
		if hasFlag(rest, "-d", "-D", "-m", "-M", "-c", "-C") {
			return gitUnknown
		}
		return gitBranch
	case "show":
		if hasFlag(rest, "--stat", "--format", "--pretty") {
			return gitUnknown
		}
		return gitShow
	case "stash":
		return gitStash
	case "worktree":
		if len(fields) > 2 && fields[2] != "list" {
			return gitUnknown
		}
		return gitBranch // worktree list compaction shares the listing path
	default:
		if gitShortOps[sub] {
			return gitShortStatus
		}
		return gitUnknown
	}
}

// Substitution replaces bare status and log invocations with their
// compact-format equivalents. The full "git status"/"git log" phrase is
// the replace target so a matching word elsewhere in the command line
// stays untouched.
func (g *Git) Substitution(cmd domain.CommandContext) (string, bool) {
	switch g.classify(cmd.Core) {
	case gitStatus:
		return strings.Replace(cmd.Original, "git status", "git status --porcelain -b", 1), true
	case gitLog:
		rest := strings.TrimSpace(strings.TrimPrefix(cmd.Core, "git log"))
		if !hasFlag(rest, "--oneline", "--format", "--pretty", "-n", "--max-count") && !hasNumericLimit(rest) {
			to := fmt.Sprintf("git log --oneline -n %d", g.cfg.LogDefaultLimit)
			return strings.Replace(cmd.Original, "git log", to, 1), true
		}
	}
	return "", false
}

// Optimize dispatches on the recognized subcommand. For status and log the
// raw result already comes from the substituted invocation. Returned
// errors make the caller fall back to the raw captured output.
func (g *Git) Optimize(_ context.Context, cmd domain.CommandContext, raw ports.ExecResult) (domain.OptimizedResult, error) {
	var output string
	switch g.classify(cmd.Core) {
	case gitStatus:
		output = formatPorcelainStatus(combinedOutput(raw))
	case gitLog:
		output = g.filterLog(combinedOutput(raw))
	case gitDiff:
		output = g.optimizeDiff(combinedOutput(raw))
	case gitBranch:
		output = g.optimizeBranch(raw.Stdout)
	case gitShow:
		output = g.optimizeShow(combinedOutput(raw))
	case gitStash:
		output = g.optimizeStash(cmd.Core, raw)
	case gitShortStatus:
		output = g.optimizeShortStatus(cmd.Core, raw)
	default:
		return domain.OptimizedResult{}, fmt.Errorf("git optimizer: unrecognized command %q", cmd.Core)
	}
	return domain.OptimizedResult{
		Output:        output,
		ExitCode:      raw.ExitCode,
		OptimizerName: g.Name(),
	}, nil
}

// formatPorcelainStatus renders `--porcelain -b` output as a handful of
// count lines with short file samples.
func formatPorcelainStatus(out string) string {
	var branch string
	var staged, modified, untracked, conflicts []string
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "## ") {
			branch = strings.TrimPrefix(line, "## ")
			continue
		}
		if len(line) < 3 {
			continue
		}
		x, y, path := line[0], line[1], strings.TrimSpace(line[3:])
		switch {
		case (x == 'U' || y == 'U') || (x == 'A' && y == 'A') || (x == 'D' && y == 'D'):
			conflicts = append(conflicts, path)
		case x == '?' && y == '?':
			untracked = append(untracked, path)
		default:
			if x != ' ' {
				staged = append(staged, path)
			}
			if y != ' ' {
				modified = append(modified, path)
			}
		}
	}

	var b strings.Builder
	if branch != "" {
		fmt.Fprintf(&b, "branch: %s\n", branch)
	}
	writeFileGroup(&b, "staged", staged, 5)
	writeFileGroup(&b, "modified", modified, 5)
	writeFileGroup(&b, "untracked", untracked, 3)
	writeFileGroup(&b, "conflicts", conflicts, len(conflicts))
	if len(staged)+len(modified)+len(untracked)+len(conflicts) == 0 {
		b.WriteString("clean\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeFileGroup(b *strings.Builder, label string, files []string, max int) {
	if len(files) == 0 {
		return
	}
	shown := files
	extra := 0
	if len(shown) > max {
		shown = shown[:max]
		extra = len(files) - max
	}
	fmt.Fprintf(b, "%s (%d): %s", label, len(files), strings.Join(shown, ", "))
	if extra > 0 {
		fmt.Fprintf(b, " +%d more", extra)
	}
	b.WriteByte('\n')
}

// hasNumericLimit matches the -<N> shorthand (`git log -5`).
func hasNumericLimit(rest string) bool {
	for _, f := range strings.Fields(rest) {
		if len(f) > 1 && f[0] == '-' && allDigits(f[1:]) {
			return true
		}
	}
	return false
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// filterLog caps already-formatted log output by entry count and line
// width.
func (g *Git) filterLog(out string) string {
	lines := strings.Split(out, "\n")
	entries := 0
	var kept []string
	for _, line := range lines {
		if strings.HasPrefix(line, "commit ") {
			entries++
			if entries > g.cfg.LogMaxEntries {
				kept = append(kept, fmt.Sprintf("[... log truncated at %d entries]", g.cfg.LogMaxEntries))
				break
			}
		}
		kept = append(kept, truncateLine(line, g.cfg.LogLineMaxChars))
	}
	if entries == 0 && len(lines) > g.cfg.LogMaxEntries {
		// Oneline format: one entry per line.
		kept = append(lines[:g.cfg.LogMaxEntries:g.cfg.LogMaxEntries],
			fmt.Sprintf("[... log truncated at %d entries]", g.cfg.LogMaxEntries))
	}
	return strings.Join(kept, "\n")
}

func (g *Git) optimizeDiff(out string) string {
	stat := diffStat(out)
	hunks := g.compactHunks(out)
	if stat == "" {
		return hunks
	}
	return stat + "\n\n" + hunks
}

// diffStat synthesizes a per-file +/- summary from unified diff text.
func diffStat(out string) string {
	type fileStat struct {
		name        string
		plus, minus int
	}
	var files []fileStat
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			name := line
			if idx := strings.LastIndex(line, " b/"); idx >= 0 {
				name = line[idx+3:]
			}
			files = append(files, fileStat{name: name})
		case len(files) == 0:
			// Preamble before the first file header.
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			files[len(files)-1].plus++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			files[len(files)-1].minus++
		}
	}
	if len(files) == 0 {
		return ""
	}
	var b strings.Builder
	totalPlus, totalMinus := 0, 0
	for _, f := range files {
		fmt.Fprintf(&b, "%s | +%d -%d\n", f.name, f.plus, f.minus)
		totalPlus += f.plus
		totalMinus += f.minus
	}
	fmt.Fprintf(&b, "%d file(s) changed, +%d -%d", len(files), totalPlus, totalMinus)
	return b.String()
}

// compactHunks keeps diff structure while capping hunk bodies and total
// size.
func (g *Git) compactHunks(out string) string {
	var kept []string
	hunkLines := 0
	total := 0
	hunkTruncated := false
	for _, line := range strings.Split(out, "\n") {
		structural := strings.HasPrefix(line, "diff --git") ||
			strings.HasPrefix(line, "index ") ||
			strings.HasPrefix(line, "--- ") ||
			strings.HasPrefix(line, "+++ ") ||
			strings.HasPrefix(line, "@@")
		if strings.HasPrefix(line, "@@") || strings.HasPrefix(line, "diff --git") {
			hunkLines = 0
			hunkTruncated = false
		}
		if !structural {
			hunkLines++
			if hunkLines > g.cfg.DiffMaxHunkLines {
				if !hunkTruncated {
					kept = append(kept, "...(hunk truncated)")
					total++
					hunkTruncated = true
				}
				continue
			}
		}
		kept = append(kept, line)
		total++
		if total >= g.cfg.DiffMaxTotalLines {
			kept = append(kept, "...(diff truncated)")
			break
		}
	}
	return strings.Join(kept, "\n")
}

func (g *Git) optimizeBranch(out string) string {
	var current string
	var local, remote []string
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "* "):
			current = strings.TrimSpace(line[2:])
			local = append(local, current)
		case strings.HasPrefix(trimmed, "remotes/"):
			remote = append(remote, strings.TrimPrefix(trimmed, "remotes/"))
		default:
			local = append(local, trimmed)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d local, %d remote branch(es)\n", len(local), len(remote))
	if current != "" {
		fmt.Fprintf(&b, "* %s\n", current)
	}
	writeBranchList(&b, "local", local, current, g.cfg.BranchMaxLocal)
	writeBranchList(&b, "remote", remote, "", g.cfg.BranchMaxRemote)
	return strings.TrimRight(b.String(), "\n")
}

func writeBranchList(b *strings.Builder, label string, branches []string, skip string, max int) {
	var shown []string
	for _, br := range branches {
		if br != skip {
			shown = append(shown, br)
		}
	}
	if len(shown) == 0 {
		return
	}
	extra := 0
	if len(shown) > max {
		extra = len(shown) - max
		shown = shown[:max]
	}
	fmt.Fprintf(b, "%s: %s", label, strings.Join(shown, ", "))
	if extra > 0 {
		fmt.Fprintf(b, " +%d more", extra)
	}
	b.WriteByte('\n')
}

// optimizeShow keeps commit metadata verbatim and compacts the diff body.
func (g *Git) optimizeShow(out string) string {
	idx := strings.Index(out, "diff --git")
	if idx < 0 {
		return truncateLines(out, g.cfg.DiffMaxTotalLines, "...(output truncated)")
	}
	meta := strings.TrimRight(out[:idx], "\n")
	body := out[idx:]
	return meta + "\n\n" + diffStat(body) + "\n\n" + g.compactHunks(body)
}

func (g *Git) optimizeStash(core string, raw ports.ExecResult) string {
	fields := strings.Fields(core)
	if len(fields) > 2 && fields[2] == "show" {
		return g.optimizeDiff(combinedOutput(raw))
	}
	if len(fields) > 2 && fields[2] == "list" {
		return truncateLines(combinedOutput(raw), g.cfg.LogDefaultLimit, "[... stash list truncated]")
	}
	return g.optimizeShortStatus(core, raw)
}

// optimizeShortStatus reduces mutating operations to one line.
func (g *Git) optimizeShortStatus(core string, raw ports.ExecResult) string {
	fields := strings.Fields(core)
	op := "git"
	if len(fields) > 1 {
		op = "git " + fields[1]
	}
	combined := combinedOutput(raw)
	if raw.ExitCode == 0 && !containsAny(strings.ToLower(combined), "error", "fatal", "rejected") {
		return op + ": ok"
	}
	reason := firstMatchingLine(combined, "error", "fatal", "rejected")
	if reason == "" {
		reason = firstNonEmptyLine(combined)
	}
	return op + ": failed - " + reason
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func firstMatchingLine(out string, subs ...string) string {
	for _, line := range strings.Split(out, "\n") {
		lower := strings.ToLower(line)
		for _, sub := range subs {
			if strings.Contains(lower, sub) {
				return strings.TrimSpace(line)
			}
		}
	}
	return ""
}

func firstNonEmptyLine(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

func truncateLines(out string, max int, marker string) string {
	lines := strings.Split(out, "\n")
	if len(lines) <= max {
		return out
	}
	return strings.Join(append(lines[:max:max], marker), "\n")
}

var (
	_ ports.Optimizer   = (*Git)(nil)
	_ ports.Substituter = (*Git)(nil)
)
