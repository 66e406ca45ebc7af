package container

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"protopack/internal/protopack/toolchain"
	"protopack/pkg/logger"
)

type engineRunner struct {
	calls [][]string
	err   error
}

func (r *engineRunner) Invoke(ctx context.Context, tool string, args []string, dir string) (*toolchain.InvocationResult, error) {
	r.calls = append(r.calls, append([]string{tool}, args...))
	if r.err != nil {
		return nil, r.err
	}
	return &toolchain.InvocationResult{}, nil
}

func TestAcquireExecRelease(t *testing.T) {
	runner := &engineRunner{}

	h, err := Acquire(context.Background(), runner, "docker", "builder:1", "/tmp/ws", 0, logger.New())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h.Name(), "protopack-build-"))

	run := strings.Join(runner.calls[0], " ")
	assert.Contains(t, run, "docker run -d --rm")
	assert.Contains(t, run, "-v /tmp/ws:"+Workdir)
	assert.Contains(t, run, "builder:1")

	_, err = h.Exec(context.Background(), "python", "-m", "grpc_tools.protoc")
	require.NoError(t, err)
	execCall := strings.Join(runner.calls[1], " ")
	assert.Contains(t, execCall, "docker exec "+h.Name())
	assert.Contains(t, execCall, "grpc_tools.protoc")

	require.NoError(t, h.Release())
	stop := strings.Join(runner.calls[2], " ")
	assert.Contains(t, stop, "docker stop")
	assert.Contains(t, stop, h.Name())

	// idempotent: a second release does not talk to the engine again
	require.NoError(t, h.Release())
	assert.Len(t, runner.calls, 3)
}

func TestAcquire_StartFailure(t *testing.T) {
	runner := &engineRunner{err: fmt.Errorf("daemon not running")}

	_, err := Acquire(context.Background(), runner, "docker", "builder:1", "/tmp/ws", 0, logger.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "starting build container")
}

func TestExec_EmptyCommand(t *testing.T) {
	runner := &engineRunner{}
	h, err := Acquire(context.Background(), runner, "docker", "builder:1", "/tmp/ws", 0, logger.New())
	require.NoError(t, err)

	_, err = h.Exec(context.Background())
	require.Error(t, err)
}
