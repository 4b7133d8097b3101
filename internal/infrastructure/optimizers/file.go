package optimizers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/benwelker/terse/internal/domain"
	"github.com/benwelker/terse/internal/ports"
)

var fileListingCommands = map[string]bool{
	"ls": true, "dir": true, "find": true, "cat": true, "type": true,
	"head": true, "tail": true, "wc": true, "tree": true, "du": true,
	"df": true,
}

// File compacts filesystem listing and file-reading output: row caps for
// listings, head+tail windows for file dumps, noise-directory pruning for
// tree.
type File struct {
	cfg domain.FileOptimizerSettings
}

// NewFile builds the file-operations optimizer.
func NewFile(cfg domain.FileOptimizerSettings) *File {
	return &File{cfg: cfg}
}

func (f *File) Name() string { return "file" }

func (f *File) CanHandle(cmd domain.CommandContext) bool {
	first := firstToken(cmd.Core)
	if !fileListingCommands[first] {
		return false
	}
	// A follow of a log stream has no bounded output to compact.
	if first == "tail" && hasFlag(cmd.Core, "-f", "--follow") {
		return false
	}
	return true
}

func (f *File) Optimize(_ context.Context, cmd domain.CommandContext, raw ports.ExecResult) (domain.OptimizedResult, error) {
	out := combinedOutput(raw)
	var compacted string
	switch firstToken(cmd.Core) {
	case "ls", "dir":
		compacted = f.compactListing(out)
	case "find":
		compacted = f.compactFind(out)
	case "cat", "type", "head", "tail":
		compacted = f.compactFileDump(out)
	case "wc":
		compacted = truncateLines(out, f.cfg.WcMaxLines, "[... wc output truncated]")
	case "tree":
		compacted = f.compactTree(out)
	case "du", "df":
		compacted = truncateLines(out, f.cfg.LsMaxEntries, "[... rows truncated]")
	default:
		return domain.OptimizedResult{}, fmt.Errorf("file optimizer: unrecognized command %q", cmd.Core)
	}
	return domain.OptimizedResult{
		Output:        compacted,
		ExitCode:      raw.ExitCode,
		OptimizerName: f.Name(),
	}, nil
}

// compactListing handles both long and simple ls formats. Long format
// keeps name and a humanized size; simple format reflows names onto a few
// comma-joined lines.
func (f *File) compactListing(out string) string {
	lines := nonEmptyLines(out)
	if len(lines) == 0 {
		return out
	}
	if isLongListing(lines) {
		return f.compactLongListing(lines)
	}
	return f.compactSimpleListing(lines)
}

// isLongListing detects `ls -l` style rows by their permission column.
func isLongListing(lines []string) bool {
	checked := 0
	matched := 0
	for _, line := range lines {
		if strings.HasPrefix(line, "total ") {
			continue
		}
		checked++
		fields := strings.Fields(line)
		if len(fields) >= 8 && len(fields[0]) >= 10 && strings.ContainsAny(fields[0][:1], "-dlbcsp") {
			matched++
		}
		if checked >= 5 {
			break
		}
	}
	return checked > 0 && matched == checked
}

func (f *File) compactLongListing(lines []string) string {
	var out []string
	entries := 0
	for _, line := range lines {
		if strings.HasPrefix(line, "total ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 9 {
			out = append(out, line)
			continue
		}
		entries++
		if entries > f.cfg.LsMaxEntries {
			out = append(out, fmt.Sprintf("[... %d more entries]", countListingEntries(lines)-f.cfg.LsMaxEntries))
			break
		}
		name := strings.Join(fields[8:], " ")
		size := fields[4]
		if n, err := strconv.ParseUint(size, 10, 64); err == nil {
			size = humanize.Bytes(n)
		}
		marker := ""
		if fields[0][0] == 'd' {
			marker = "/"
		}
		out = append(out, fmt.Sprintf("%s%s  %s", name, marker, size))
	}
	return strings.Join(out, "\n")
}

func countListingEntries(lines []string) int {
	n := 0
	for _, line := range lines {
		if !strings.HasPrefix(line, "total ") {
			n++
		}
	}
	return n
}

func (f *File) compactSimpleListing(lines []string) string {
	var names []string
	for _, line := range lines {
		names = append(names, strings.Fields(line)...)
	}
	if len(names) <= f.cfg.LsMaxItems {
		return strings.Join(names, "  ")
	}
	shown := names[:f.cfg.LsMaxItems]
	return strings.Join(shown, "  ") + fmt.Sprintf("\n[... %d more items]", len(names)-f.cfg.LsMaxItems)
}

func (f *File) compactFind(out string) string {
	lines := nonEmptyLines(out)
	if len(lines) <= f.cfg.FindMaxResults {
		return strings.Join(lines, "\n")
	}
	kept := lines[:f.cfg.FindMaxResults]
	return strings.Join(kept, "\n") + fmt.Sprintf("\n[... %d more results]", len(lines)-f.cfg.FindMaxResults)
}

// compactFileDump keeps the head and tail of a long file body.
func (f *File) compactFileDump(out string) string {
	lines := strings.Split(out, "\n")
	if len(lines) <= f.cfg.CatMaxLines {
		return out
	}
	head := f.cfg.CatHeadLines
	tail := f.cfg.CatTailLines
	elided := len(lines) - head - tail
	if elided <= 0 {
		return out
	}
	var b []string
	b = append(b, lines[:head]...)
	b = append(b, fmt.Sprintf("[... %d lines elided ...]", elided))
	b = append(b, lines[len(lines)-tail:]...)
	return strings.Join(b, "\n")
}

func (f *File) compactTree(out string) string {
	lines := strings.Split(out, "\n")
	var kept []string
	pruned := 0
	for _, line := range lines {
		if isNoiseTreeLine(line) {
			pruned++
			continue
		}
		kept = append(kept, line)
		if len(kept) >= f.cfg.TreeMaxLines {
			kept = append(kept, fmt.Sprintf("[... tree truncated at %d lines]", f.cfg.TreeMaxLines))
			break
		}
	}
	if pruned > 0 {
		kept = append(kept, fmt.Sprintf("[%d noise director(y/ies) pruned]", pruned))
	}
	return strings.Join(kept, "\n")
}

var treeNoiseDirs = []string{"node_modules", "__pycache__", ".git", "target", ".venv", "dist", ".next"}

func isNoiseTreeLine(line string) bool {
	name := strings.TrimLeft(line, " │├└─\t")
	for _, dir := range treeNoiseDirs {
		if name == dir || strings.HasPrefix(name, dir+"/") {
			return true
		}
	}
	return false
}

func nonEmptyLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

var _ ports.Optimizer = (*File)(nil)
