package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/benwelker/terse/internal/domain"
)

type fakeDecider struct {
	decision domain.HookDecision
	got      string
}

func (f *fakeDecider) DecideHook(_ context.Context, cmd domain.CommandContext) domain.HookDecision {
	f.got = cmd.Original
	return f.decision
}

type fakeSink struct {
	events []domain.HookEvent
	err    error
}

func (f *fakeSink) RecordEvent(e domain.HookEvent) error {
	f.events = append(f.events, e)
	return f.err
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}

func handle(t *testing.T, svc *Service, in string) string {
	t.Helper()
	var out bytes.Buffer
	if err := svc.Handle(context.Background(), strings.NewReader(in), &out); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	return out.String()
}

func TestHandleMalformedInput(t *testing.T) {
	svc := NewService(&fakeDecider{}, nil, nopLogger{}, "/usr/local/bin/terse")
	if got := handle(t, svc, "not json at all"); got != "{}\n" {
		t.Fatalf("got %q, want empty object", got)
	}
}

func TestHandleNonBashTool(t *testing.T) {
	dec := &fakeDecider{decision: domain.HookDecision{Rewrite: true, Path: domain.PathFast}}
	svc := NewService(dec, nil, nopLogger{}, "/usr/local/bin/terse")
	in := `{"tool_name":"Read","tool_input":{"command":"git status"}}`
	if got := handle(t, svc, in); got != "{}\n" {
		t.Fatalf("got %q", got)
	}
	if dec.got != "" {
		t.Fatalf("decider called for non-Bash tool with %q", dec.got)
	}
}

func TestHandleEmptyCommand(t *testing.T) {
	svc := NewService(&fakeDecider{}, nil, nopLogger{}, "/usr/local/bin/terse")
	in := `{"tool_name":"Bash","tool_input":{"command":"   "}}`
	if got := handle(t, svc, in); got != "{}\n" {
		t.Fatalf("got %q", got)
	}
}

func TestHandlePassthroughDecision(t *testing.T) {
	dec := &fakeDecider{decision: domain.HookDecision{Reason: domain.ReasonDenyListed}}
	sink := &fakeSink{}
	svc := NewService(dec, sink, nopLogger{}, "/usr/local/bin/terse")
	in := `{"tool_name":"Bash","tool_input":{"command":"rm -rf build"}}`
	if got := handle(t, svc, in); got != "{}\n" {
		t.Fatalf("got %q", got)
	}
	if len(sink.events) != 1 {
		t.Fatalf("events: %d", len(sink.events))
	}
	e := sink.events[0]
	if e.Decision != "passthrough" || e.PassthroughReason != "deny_listed" {
		t.Fatalf("event %+v", e)
	}
	if e.ID == "" {
		t.Fatal("event ID not set")
	}
}

func TestHandleRewrite(t *testing.T) {
	dec := &fakeDecider{decision: domain.HookDecision{Rewrite: true, Path: domain.PathFast}}
	sink := &fakeSink{}
	svc := NewService(dec, sink, nopLogger{}, "/usr/local/bin/terse")
	in := `{"tool_name":"Bash","tool_input":{"command":"git status"}}`
	raw := handle(t, svc, in)

	var resp struct {
		HookSpecificOutput struct {
			HookEventName            string `json:"hookEventName"`
			PermissionDecision       string `json:"permissionDecision"`
			PermissionDecisionReason string `json:"permissionDecisionReason"`
			UpdatedInput             struct {
				Command string `json:"command"`
			} `json:"updatedInput"`
		} `json:"hookSpecificOutput"`
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("response not decodable: %v\n%s", err, raw)
	}
	o := resp.HookSpecificOutput
	if o.HookEventName != "PreToolUse" || o.PermissionDecision != "allow" {
		t.Fatalf("envelope %+v", o)
	}
	want := RewriteCommand("/usr/local/bin/terse", "git status")
	if o.UpdatedInput.Command != want {
		t.Fatalf("command %q, want %q", o.UpdatedInput.Command, want)
	}
	if len(sink.events) != 1 || sink.events[0].Decision != "rewrite" {
		t.Fatalf("events: %+v", sink.events)
	}
}

func TestHandleRewriteWithoutExePath(t *testing.T) {
	dec := &fakeDecider{decision: domain.HookDecision{Rewrite: true, Path: domain.PathFast}}
	svc := NewService(dec, nil, nopLogger{}, "")
	in := `{"tool_name":"Bash","tool_input":{"command":"git status"}}`
	if got := handle(t, svc, in); got != "{}\n" {
		t.Fatalf("got %q", got)
	}
}

func TestHandleSinkFailureStillAnswers(t *testing.T) {
	dec := &fakeDecider{decision: domain.HookDecision{Rewrite: true, Path: domain.PathSmart}}
	sink := &fakeSink{err: errors.New("disk full")}
	svc := NewService(dec, sink, nopLogger{}, "/usr/local/bin/terse")
	in := `{"tool_name":"Bash","tool_input":{"command":"python train.py"}}`
	raw := handle(t, svc, in)
	if !strings.Contains(raw, "hookSpecificOutput") {
		t.Fatalf("rewrite lost to sink failure: %q", raw)
	}
}

func TestRewriteCommandQuoting(t *testing.T) {
	cases := []struct {
		exe, original, want string
	}{
		{"/usr/local/bin/terse", "git status", `"/usr/local/bin/terse" run "git status"`},
		{"/opt/terse", `grep "x" file`, `"/opt/terse" run "grep \"x\" file"`},
		{"/opt/terse", "echo $HOME", `"/opt/terse" run "echo \$HOME"`},
		{"/opt/terse", "echo `date`", `"/opt/terse" run "echo \` + "\\`date\\`" + `"`},
		{"/opt/terse", `printf '%s\n' hi`, `"/opt/terse" run "printf '%s\\n' hi"`},
	}
	for _, tc := range cases {
		if got := RewriteCommand(tc.exe, tc.original); got != tc.want {
			t.Errorf("RewriteCommand(%q) = %q, want %q", tc.original, got, tc.want)
		}
	}
}
