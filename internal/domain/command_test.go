package domain

import "testing"

func TestExtractCoreCommand(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "git status", "git status"},
		{"leading whitespace", "   ls -la  ", "ls -la"},
		{"cd chain keeps last segment", "cd /repo && git status", "git status"},
		{"semicolon chain", "make clean; make build", "make build"},
		{"pipe keeps producer", "git log | head -5", "git log"},
		{"logical or is not a pipe", "make build || echo failed", "make build || echo failed"},
		{"env assignment stripped", "FOO=bar npm test", "npm test"},
		{"quoted env assignment", `CGO_ENABLED="0" go build ./...`, "go build ./..."},
		{"sh wrapper", `sh -c 'git status'`, "git status"},
		{"bash wrapper", `bash -c "cargo test"`, "cargo test"},
		{"subshell", "(git status)", "git status"},
		{"nested wrapper", `bash -c 'cd /x && git diff | head'`, "git diff"},
		{"unbalanced quote fails open", `echo "unterminated`, `echo "unterminated`},
		{"empty", "   ", ""},
		{"quoted chain separator survives", `echo "a && b"`, `echo "a && b"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractCoreCommand(tt.raw); got != tt.want {
				t.Fatalf("ExtractCoreCommand(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestIsSelfInvocation(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`"/usr/local/bin/terse" run "git status"`, true},
		{`terse run "ls"`, true},
		{`terse stats`, false},
		{`git status`, false},
		{`intersect run thing`, false},
	}
	for _, tt := range tests {
		if got := IsSelfInvocation(tt.raw); got != tt.want {
			t.Fatalf("IsSelfInvocation(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestContainsHeredoc(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"cat <<EOF\nhello\nEOF", true},
		{"cat <<'EOF'", true},
		{"grep foo <<< \"bar\"", false},
		{"echo '<<EOF'", false},
		{"sort < input.txt", false},
	}
	for _, tt := range tests {
		if got := ContainsHeredoc(tt.raw); got != tt.want {
			t.Fatalf("ContainsHeredoc(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestHasFileRedirect(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"make build > build.log", true},
		{"ls >> out.txt", true},
		{"make build 2>&1", false},
		{"echo '>' file", false},
		{"git status", false},
	}
	for _, tt := range tests {
		if got := HasFileRedirect(tt.raw); got != tt.want {
			t.Fatalf("HasFileRedirect(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
