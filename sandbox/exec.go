package sandbox

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"atakama.com/sdk/plugin"
)

// defaultExecTimeout bounds a subprocess when the caller's context has no
// deadline of its own. Detector decisions sit on the file-event path, so
// a hung child must not hang the host.
const defaultExecTimeout = 30 * time.Second

// ExecFacility runs subprocesses on behalf of a plugin. The SDK version
// marker is exported into the child environment so out-of-process helpers
// can branch on it.
type ExecFacility struct {
	timeout time.Duration
	env     []string
}

func newExecFacility() *ExecFacility {
	return &ExecFacility{
		timeout: defaultExecTimeout,
		env: append(os.Environ(),
			fmt.Sprintf("%s=%d", plugin.EnvSDKVersion, plugin.CurrentSDKVersion)),
	}
}

// Run executes name with args and returns the child's exit code. A
// non-zero exit is not an error; failure to start is.
func (e *ExecFacility) Run(ctx context.Context, name string, args ...string) (int, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = e.env
	return e.wait(cmd)
}

// RunShell executes a full command line through the platform shell,
// mirroring how out-of-repo detector helpers are usually written.
func (e *ExecFacility) RunShell(ctx context.Context, command string) (int, error) {
	if runtime.GOOS == "windows" {
		return e.Run(ctx, "cmd", "/C", command)
	}
	return e.Run(ctx, "/bin/sh", "-c", command)
}

func (e *ExecFacility) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

func (e *ExecFacility) wait(cmd *exec.Cmd) (int, error) {
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("starting subprocess: %w", err)
	}
	return 0, nil
}
