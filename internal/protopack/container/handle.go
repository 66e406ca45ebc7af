// Package container provides a single scoped handle over the build
// container used for code generation: acquire, run steps, release. All
// engine interaction goes through the toolchain invoker on the host.
package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"protopack/internal/protopack/toolchain"
	"protopack/pkg/logger"
)

// Workdir is the mount point of the workspace root inside the container
const Workdir = "/work"

// Handle is a scoped build container. It is acquired once before
// generation and released exactly once on every exit path; Release is
// idempotent.
type Handle struct {
	runner toolchain.Runner
	engine string
	name   string
	logger *logger.Logger

	releaseOnce sync.Once
	releaseErr  error
}

// Acquire starts a build container from image with mountDir mounted at
// Workdir and waits a single fixed readiness delay before returning. There
// is no readiness retry loop; a container that is still not ready will
// surface as a failed Exec.
func Acquire(ctx context.Context, runner toolchain.Runner, engine, image, mountDir string, readyDelay time.Duration, log *logger.Logger) (*Handle, error) {
	h := &Handle{
		runner: runner,
		engine: engine,
		name:   fmt.Sprintf("protopack-build-%s", uuid.NewString()[:8]),
		logger: log.WithField("component", "container"),
	}

	args := []string{
		"run", "-d", "--rm",
		"--name", h.name,
		"-v", fmt.Sprintf("%s:%s", mountDir, Workdir),
		"-w", Workdir,
		image,
		"sleep", "infinity",
	}
	if _, err := runner.Invoke(ctx, engine, args, mountDir); err != nil {
		return nil, fmt.Errorf("starting build container %s: %w", h.name, err)
	}

	h.logger.Debug("build container started", "name", h.name, "image", image)
	if readyDelay > 0 {
		select {
		case <-time.After(readyDelay):
		case <-ctx.Done():
			_ = h.Release()
			return nil, ctx.Err()
		}
	}
	return h, nil
}

// Exec runs argv inside the container and returns the captured result
func (h *Handle) Exec(ctx context.Context, argv ...string) (*toolchain.InvocationResult, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("container exec: empty command")
	}
	args := append([]string{"exec", h.name}, argv...)
	return h.runner.Invoke(ctx, h.engine, args, "")
}

// Release stops the container. Safe to call more than once; only the
// first call talks to the engine.
func (h *Handle) Release() error {
	h.releaseOnce.Do(func() {
		// --rm on the run call removes the container once stopped
		_, err := h.runner.Invoke(context.Background(), h.engine, []string{"stop", "--time", "5", h.name}, "")
		if err != nil {
			h.logger.Warn("failed to stop build container", "name", h.name, "error", err)
			h.releaseErr = err
			return
		}
		h.logger.Debug("build container stopped", "name", h.name)
	})
	return h.releaseErr
}

// Name returns the engine-visible container name
func (h *Handle) Name() string {
	return h.name
}
