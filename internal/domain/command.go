package domain

import "strings"

// CommandContext carries the literal invocation text alongside its
// normalized core form. Original is used for loop-guard and redirection
// checks; Core is used for all matching.
type CommandContext struct {
	Original string
	Core     string
}

// NewCommandContext normalizes raw into a CommandContext.
func NewCommandContext(raw string) CommandContext {
	return CommandContext{Original: raw, Core: ExtractCoreCommand(raw)}
}

// maxUnwrapDepth bounds the normalization loop so pathological nesting
// always terminates.
const maxUnwrapDepth = 5

// ExtractCoreCommand reduces an arbitrarily wrapped shell command to the
// form used for matching: shell wrappers and subshells are unwrapped, only
// the last `&&`/`;` chain segment and the first pipe segment survive, and
// leading environment assignments are dropped. Unbalanced quoting fails
// open and returns the trimmed input unchanged.
func ExtractCoreCommand(raw string) string {
	core := strings.TrimSpace(raw)
	if core == "" {
		return ""
	}
	if !quotesBalanced(core) {
		return core
	}
	for i := 0; i < maxUnwrapDepth; i++ {
		next := core
		next = unwrapSubshell(next)
		next = unwrapShellWrapper(next)
		next = unwrapSubshell(next)
		next = lastChainSegment(next)
		next = firstPipeSegment(next)
		next = stripEnvAssignments(next)
		next = strings.TrimSpace(next)
		if next == core || next == "" {
			break
		}
		core = next
	}
	if core == "" {
		return strings.TrimSpace(raw)
	}
	return core
}

// IsSelfInvocation reports whether raw already routes through this tool's
// own run wrapper, so the hook never rewrites its own rewrites.
func IsSelfInvocation(raw string) bool {
	lower := strings.ToLower(raw)
	idx := strings.LastIndex(lower, "terse")
	if idx < 0 {
		return false
	}
	// Token boundary on the left: start of string, whitespace, quote, or a
	// path separator ("/usr/local/bin/terse run ...").
	if idx > 0 {
		prev := lower[idx-1]
		if prev != ' ' && prev != '\t' && prev != '"' && prev != '\'' && prev != '/' && prev != '\\' {
			return false
		}
	}
	rest := lower[idx+len("terse"):]
	rest = strings.TrimPrefix(rest, ".exe")
	rest = strings.TrimLeft(rest, `"'`)
	fields := strings.Fields(rest)
	return len(fields) > 0 && fields[0] == "run"
}

// ContainsHeredoc reports whether raw carries an unquoted heredoc marker.
func ContainsHeredoc(raw string) bool {
	var inSingle, inDouble bool
	for i := 0; i < len(raw); i++ {
		switch c := raw[i]; {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case c == '<' && !inSingle && !inDouble:
			if i+1 < len(raw) && raw[i+1] == '<' {
				// <<< is a herestring, not a heredoc.
				if i+2 < len(raw) && raw[i+2] == '<' {
					i += 2
					continue
				}
				return true
			}
		}
	}
	return false
}

// HasFileRedirect reports whether raw contains an unquoted output
// redirection. Input redirects and fd duplication (2>&1) do not count.
func HasFileRedirect(raw string) bool {
	var inSingle, inDouble bool
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case c == '>' && !inSingle && !inDouble:
			if i+1 < len(raw) && raw[i+1] == '&' {
				// 2>&1 style duplication, not a file redirect.
				i++
				continue
			}
			return true
		}
	}
	return false
}

func quotesBalanced(s string) bool {
	var inSingle, inDouble bool
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && inDouble:
			i++
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		}
	}
	return !inSingle && !inDouble
}

func unwrapSubshell(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return s
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return s
			}
		}
	}
	if depth != 0 {
		return s
	}
	return strings.TrimSpace(s[1 : len(s)-1])
}

// unwrapShellWrapper extracts the inner command from `sh -c '...'` and
// `bash -c "..."` forms.
func unwrapShellWrapper(s string) string {
	trimmed := strings.TrimSpace(s)
	lower := strings.ToLower(trimmed)
	var rest string
	switch {
	case strings.HasPrefix(lower, "bash -c "):
		rest = trimmed[len("bash -c "):]
	case strings.HasPrefix(lower, "sh -c "):
		rest = trimmed[len("sh -c "):]
	case strings.HasPrefix(lower, "zsh -c "):
		rest = trimmed[len("zsh -c "):]
	default:
		return s
	}
	rest = strings.TrimSpace(rest)
	if len(rest) >= 2 {
		if (rest[0] == '\'' && rest[len(rest)-1] == '\'') || (rest[0] == '"' && rest[len(rest)-1] == '"') {
			return rest[1 : len(rest)-1]
		}
	}
	return rest
}

// lastChainSegment keeps only the final command of a `&&` or `;` chain,
// which is the one whose output the caller actually sees.
func lastChainSegment(s string) string {
	if idx := lastIndexOutsideQuotes(s, "&&"); idx >= 0 {
		s = s[idx+2:]
	}
	if idx := lastIndexOutsideQuotes(s, ";"); idx >= 0 {
		s = s[idx+1:]
	}
	return strings.TrimSpace(s)
}

// firstPipeSegment keeps the producer side of a pipeline. `||` is a logical
// or, not a pipe.
func firstPipeSegment(s string) string {
	var inSingle, inDouble bool
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case c == '|' && !inSingle && !inDouble:
			if i+1 < len(s) && s[i+1] == '|' {
				i++
				continue
			}
			return strings.TrimSpace(s[:i])
		}
	}
	return s
}

func stripEnvAssignments(s string) string {
	rest := strings.TrimSpace(s)
	for {
		end := envAssignmentLen(rest)
		if end == 0 {
			return rest
		}
		rest = strings.TrimSpace(rest[end:])
	}
}

// envAssignmentLen returns the length of a leading NAME=value token
// (including a quoted value), or 0 when the input does not start with one.
func envAssignmentLen(s string) int {
	i := 0
	for i < len(s) && (isIdentChar(s[i]) || (i == 0 && s[i] == '_')) {
		i++
	}
	if i == 0 || i >= len(s) || s[i] != '=' {
		return 0
	}
	if s[0] >= '0' && s[0] <= '9' {
		return 0
	}
	i++
	if i < len(s) && (s[i] == '\'' || s[i] == '"') {
		quote := s[i]
		i++
		for i < len(s) && s[i] != quote {
			i++
		}
		if i < len(s) {
			i++
		}
		return i
	}
	for i < len(s) && s[i] != ' ' && s[i] != '\t' {
		i++
	}
	return i
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func lastIndexOutsideQuotes(s, sep string) int {
	var inSingle, inDouble bool
	last := -1
	for i := 0; i+len(sep) <= len(s); i++ {
		switch c := s[i]; {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		default:
			if !inSingle && !inDouble && s[i:i+len(sep)] == sep {
				last = i
			}
		}
	}
	return last
}
