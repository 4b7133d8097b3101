package executor

import (
	"context"
	"strings"
	"testing"
)

func TestExecuteCapturesStdout(t *testing.T) {
	e := NewLocalExecutor("/bin/sh")
	res, err := e.Execute(context.Background(), "echo hello")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "hello" || !res.Success || res.ExitCode != 0 {
		t.Fatalf("result %+v", res)
	}
}

func TestExecuteSeparatesStderr(t *testing.T) {
	e := NewLocalExecutor("/bin/sh")
	res, err := e.Execute(context.Background(), "echo out; echo err 1>&2")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "out" || strings.TrimSpace(res.Stderr) != "err" {
		t.Fatalf("streams %+v", res)
	}
}

func TestExecuteNonZeroExitIsNotAnError(t *testing.T) {
	e := NewLocalExecutor("/bin/sh")
	res, err := e.Execute(context.Background(), "exit 3")
	if err != nil {
		t.Fatalf("nonzero exit surfaced as error: %v", err)
	}
	if res.ExitCode != 3 || res.Success {
		t.Fatalf("result %+v", res)
	}
}

func TestExecuteRespectsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewLocalExecutor("/bin/sh")
	res, err := e.Execute(ctx, "sleep 5")
	if err == nil && res.Success {
		t.Fatalf("cancelled command reported success: %+v", res)
	}
}

func TestDefaultShell(t *testing.T) {
	t.Setenv("SHELL", "")
	e := NewLocalExecutor("")
	if e.shell != "/bin/sh" {
		t.Fatalf("shell %q", e.shell)
	}
}
