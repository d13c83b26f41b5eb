package runner

import (
	"context"
	"errors"
	"os/exec"
	"time"
)

// Output capture is bounded so a chatty job cannot balloon events and
// run history.
const maxCapturedOutput = 64 << 10

// waitDelay unblocks CombinedOutput when a background child keeps the
// output pipe open after the shell itself has exited.
const waitDelay = 10 * time.Second

// runCommand executes command through the host shell and returns its
// combined output and exit code. A non-zero exit is not an error; err is
// reserved for failing to run at all (bad shell, timeout, cancellation).
func runCommand(ctx context.Context, shell, command string) (string, int, error) {
	cmd := shellCommand(ctx, shell, command)
	cmd.WaitDelay = waitDelay
	out, err := cmd.CombinedOutput()

	exit := 0
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			exit = ee.ExitCode()
			err = nil
		} else {
			exit = -1
		}
	}
	// A timeout kill surfaces as an ExitError; report the real cause.
	if cerr := ctx.Err(); cerr != nil {
		err = cerr
	}
	return truncateOutput(out), exit, err
}

func truncateOutput(b []byte) string {
	if len(b) <= maxCapturedOutput {
		return string(b)
	}
	return string(b[:maxCapturedOutput]) + "... (truncated)"
}
