// Package sandbox executes untrusted code for the run_python tool. The
// Docker runner is the intended isolation boundary; the host runner exists
// for development machines without a Docker daemon.
package sandbox

import (
	"context"
	"time"
)

// Result captures the output of one execution.
type Result struct {
	Stdout   string
	Stderr   string
	Code     int
	TimedOut bool
}

// Runner executes a command inside the sandbox with workDir mounted as the
// working directory.
type Runner interface {
	RunCmd(ctx context.Context, workDir, name string, args []string, timeout time.Duration) (Result, error)
}
