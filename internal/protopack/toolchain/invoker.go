// Package toolchain wraps external code-generator invocation as a single
// synchronous operation with a captured result. The invoker never
// interprets generated content; it treats every tool as an opaque file
// transform.
package toolchain

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"protopack/pkg/errors"
	"protopack/pkg/logger"
)

// stderrTailLimit bounds how much captured stderr is attached to a
// ToolchainError. Full output is still available on the result.
const stderrTailLimit = 2048

// pipeWaitDelay bounds how long Wait keeps draining stdout/stderr after
// the child is killed. Tools like npx and python spawn descendants that
// inherit the pipes and would otherwise hold Run open past the timeout.
const pipeWaitDelay = 2 * time.Second

// InvocationResult holds the outcome of one external tool invocation
type InvocationResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner is the minimal invocation surface the pipeline stages depend on.
//
// stages take a Runner so tests can substitute a fake without spawning
// processes.
type Runner interface {
	Invoke(ctx context.Context, tool string, args []string, dir string) (*InvocationResult, error)
}

// Invoker runs external tools synchronously with a bounded duration
type Invoker struct {
	timeout time.Duration
	verbose bool
	logger  *logger.Logger
}

// NewInvoker creates an Invoker. With verbose set, child stdout/stderr is
// streamed to the parent's streams in addition to being captured.
func NewInvoker(timeout time.Duration, verbose bool, log *logger.Logger) *Invoker {
	return &Invoker{
		timeout: timeout,
		verbose: verbose,
		logger:  log.WithField("component", "toolchain"),
	}
}

// Invoke runs tool with args in dir and blocks until it exits or the
// configured timeout elapses. On timeout the child process is terminated
// and the error wraps errors.ErrToolchainTimeout. A non-zero exit yields a
// *errors.ToolchainError carrying the exit code and a stderr tail.
func (i *Invoker) Invoke(ctx context.Context, tool string, args []string, dir string) (*InvocationResult, error) {
	runCtx := ctx
	var cancel context.CancelFunc
	if i.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, tool, args...)
	cmd.Dir = dir
	cmd.WaitDelay = pipeWaitDelay

	var stdout, stderr bytes.Buffer
	if i.verbose {
		cmd.Stdout = io.MultiWriter(&stdout, os.Stdout)
		cmd.Stderr = io.MultiWriter(&stderr, os.Stderr)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	i.logger.Debug("invoking tool", "tool", tool, "args", strings.Join(args, " "), "dir", dir)
	start := time.Now()
	err := cmd.Run()
	result := &InvocationResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err == nil {
		return result, nil
	}

	if runCtx.Err() == context.DeadlineExceeded {
		result.ExitCode = -1
		i.logger.Error("tool timed out", "tool", tool, "timeout", i.timeout)
		return result, errors.WrapToolchainError(tool, -1, tail(result.Stderr), errors.ErrToolchainTimeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		i.logger.Error("tool failed", "tool", tool, "exitCode", result.ExitCode)
		return result, errors.WrapToolchainError(tool, result.ExitCode, tail(result.Stderr), err)
	}

	if errors.Is(err, exec.ErrNotFound) {
		result.ExitCode = -1
		return result, errors.WrapToolchainError(tool, -1, "", errors.ErrToolNotFound)
	}

	result.ExitCode = -1
	return result, errors.WrapToolchainError(tool, -1, tail(result.Stderr), err)
}

// tail returns the last stderrTailLimit bytes of s, trimmed
func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= stderrTailLimit {
		return s
	}
	return s[len(s)-stderrTailLimit:]
}
