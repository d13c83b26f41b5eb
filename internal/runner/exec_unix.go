//go:build !windows

package runner

import (
	"context"
	"os/exec"
)

func shellCommand(ctx context.Context, shell, command string) *exec.Cmd {
	if shell == "" {
		shell = "/bin/sh"
	}
	return exec.CommandContext(ctx, shell, "-c", command)
}
