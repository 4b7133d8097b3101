// Package hook implements the PreToolUse protocol: read one tool event
// from stdin, decide whether to rewrite the command, and answer on stdout.
// The contract is strict: anything unexpected produces `{}` and exit 0, so
// a broken hook can never block the host agent.
package hook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/benwelker/terse/internal/domain"
	"github.com/benwelker/terse/internal/ports"
)

// Decider is the pre-execution routing decision, satisfied by the router
// service.
type Decider interface {
	DecideHook(ctx context.Context, cmd domain.CommandContext) domain.HookDecision
}

// Service handles one hook invocation.
type Service struct {
	Decider  Decider
	Events   ports.EventSink
	Logger   ports.Logger
	ExePath  string // absolute path to this binary, used in rewrites
	toolName string
}

// NewService wires a hook service. exePath should come from os.Executable;
// an empty path disables rewriting (decisions still run and are logged).
func NewService(decider Decider, events ports.EventSink, log ports.Logger, exePath string) *Service {
	return &Service{
		Decider:  decider,
		Events:   events,
		Logger:   log,
		ExePath:  exePath,
		toolName: "Bash",
	}
}

type hookInput struct {
	ToolName  string `json:"tool_name"`
	SessionID string `json:"session_id"`
	ToolInput struct {
		Command string `json:"command"`
	} `json:"tool_input"`
}

type hookOutput struct {
	HookSpecificOutput hookSpecificOutput `json:"hookSpecificOutput"`
}

type hookSpecificOutput struct {
	HookEventName            string       `json:"hookEventName"`
	PermissionDecision       string       `json:"permissionDecision"`
	PermissionDecisionReason string       `json:"permissionDecisionReason"`
	UpdatedInput             updatedInput `json:"updatedInput"`
}

type updatedInput struct {
	Command string `json:"command"`
}

// Handle reads one event from in and writes the hook response to out.
// It never returns a protocol-level error to the caller; malformed input
// degrades to the empty response.
func (s *Service) Handle(ctx context.Context, in io.Reader, out io.Writer) error {
	var input hookInput
	if err := json.NewDecoder(in).Decode(&input); err != nil {
		s.Logger.Debug("hook input not decodable", map[string]interface{}{"error": err.Error()})
		return writeEmpty(out)
	}
	if input.ToolName != s.toolName || strings.TrimSpace(input.ToolInput.Command) == "" {
		return writeEmpty(out)
	}

	cmd := domain.NewCommandContext(input.ToolInput.Command)
	decision := s.Decider.DecideHook(ctx, cmd)
	s.recordEvent(input, decision)

	if !decision.Rewrite || s.ExePath == "" {
		return writeEmpty(out)
	}

	resp := hookOutput{hookSpecificOutput{
		HookEventName:            "PreToolUse",
		PermissionDecision:       "allow",
		PermissionDecisionReason: fmt.Sprintf("routing through %s path", decision.Path),
		UpdatedInput:             updatedInput{Command: RewriteCommand(s.ExePath, input.ToolInput.Command)},
	}}
	return json.NewEncoder(out).Encode(resp)
}

// RewriteCommand builds the replacement invocation. Both the executable
// path and the original command are double-quoted with shell metacharacters
// escaped, so the host shell hands the original through verbatim.
func RewriteCommand(exePath, original string) string {
	return fmt.Sprintf("%s run %s", shellQuote(exePath), shellQuote(original))
}

func shellQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\', '$', '`':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func (s *Service) recordEvent(input hookInput, decision domain.HookDecision) {
	if s.Events == nil {
		return
	}
	event := domain.HookEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		ToolName:  input.ToolName,
		Command:   input.ToolInput.Command,
		Decision:  "passthrough",
	}
	if decision.Rewrite {
		event.Decision = "rewrite"
	} else {
		event.PassthroughReason = string(decision.Reason)
	}
	// Best-effort: the hook must answer even when the sink is broken.
	if err := s.Events.RecordEvent(event); err != nil {
		s.Logger.Debug("event sink write failed", map[string]interface{}{"error": err.Error()})
	}
	s.Logger.Info("hook decision", map[string]interface{}{
		"command":  cmdPreview(input.ToolInput.Command),
		"decision": event.Decision,
		"reason":   decision.Reason.Display(),
	})
}

func cmdPreview(cmd string) string {
	if len(cmd) > 120 {
		return cmd[:120] + "..."
	}
	return cmd
}

func writeEmpty(out io.Writer) error {
	_, err := io.WriteString(out, "{}\n")
	return err
}
