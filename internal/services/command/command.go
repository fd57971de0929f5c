// Package command runs external executables and captures their output.
package command

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Output(ctx context.Context, binary string, args []string) ([]byte, error)
}

// OSExecutor runs commands with os/exec.
type OSExecutor struct{}

// Output runs binary and returns its stdout. A non-zero exit is reported with
// the tail of stderr.
func (OSExecutor) Output(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if detail := tail(stderr.String(), 512); detail != "" {
			return stdout.Bytes(), fmt.Errorf("%s: %w: %s", binary, err, detail)
		}
		return stdout.Bytes(), fmt.Errorf("%s: %w", binary, err)
	}
	return stdout.Bytes(), nil
}

func tail(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return "..." + s[len(s)-limit:]
}
