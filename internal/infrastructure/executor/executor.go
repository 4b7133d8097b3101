// Package executor runs target commands on the host shell.
package executor

import (
	"bytes"
	"context"
	"os"
	"os/exec"

	"github.com/benwelker/terse/internal/ports"
)

// LocalExecutor runs commands on the host shell.
type LocalExecutor struct {
	shell string
}

// NewLocalExecutor builds a new executor, shell defaults to /bin/sh.
func NewLocalExecutor(shell string) *LocalExecutor {
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}
	return &LocalExecutor{shell: shell}
}

// Execute runs command and captures both streams. A non-zero exit is not an
// error here: the caller needs the output and the code either way. The
// returned error is reserved for failures to start the process at all.
func (e *LocalExecutor) Execute(ctx context.Context, command string) (ports.ExecResult, error) {
	c := exec.CommandContext(ctx, e.shell, "-c", command)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	result := ports.ExecResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		result.ExitCode = -1
		return result, err
	}
	result.Success = true
	return result, nil
}

var _ ports.Executor = (*LocalExecutor)(nil)
