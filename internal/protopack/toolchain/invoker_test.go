package toolchain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"protopack/pkg/errors"
	"protopack/pkg/logger"
)

func TestInvoker_Success(t *testing.T) {
	inv := NewInvoker(time.Minute, false, logger.New())

	result, err := inv.Invoke(context.Background(), "sh", []string{"-c", "echo out; echo err >&2"}, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "out\n", result.Stdout)
	assert.Equal(t, "err\n", result.Stderr)
	assert.Greater(t, result.Duration, time.Duration(0))
}

func TestInvoker_NonZeroExit(t *testing.T) {
	inv := NewInvoker(time.Minute, false, logger.New())

	result, err := inv.Invoke(context.Background(), "sh", []string{"-c", "echo broken >&2; exit 3"}, t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsToolchainError(err))
	assert.Equal(t, 3, result.ExitCode)

	var te *errors.ToolchainError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "sh", te.Tool)
	assert.Equal(t, 3, te.ExitCode)
	assert.Contains(t, te.StderrTail, "broken")
}

func TestInvoker_Timeout(t *testing.T) {
	inv := NewInvoker(100*time.Millisecond, false, logger.New())

	start := time.Now()
	_, err := inv.Invoke(context.Background(), "sh", []string{"-c", "sleep 5"}, t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsToolchainTimeout(err))
	assert.Less(t, time.Since(start), 3*time.Second, "child should be terminated at the timeout")
}

func TestInvoker_TimeoutWithLingeringDescendant(t *testing.T) {
	inv := NewInvoker(100*time.Millisecond, false, logger.New())

	// The background sleep inherits the output pipes and outlives the
	// killed shell; Wait must give up draining them after pipeWaitDelay.
	start := time.Now()
	_, err := inv.Invoke(context.Background(), "sh", []string{"-c", "sleep 5 & wait"}, t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsToolchainTimeout(err))
	assert.Less(t, time.Since(start), pipeWaitDelay+2*time.Second,
		"descendants holding the pipes must not extend the invocation past the timeout")
}

func TestInvoker_ToolNotFound(t *testing.T) {
	inv := NewInvoker(time.Minute, false, logger.New())

	_, err := inv.Invoke(context.Background(), "definitely-not-a-real-tool-xyz", nil, t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrToolNotFound))
}

func TestInvoker_WorkingDirectory(t *testing.T) {
	inv := NewInvoker(time.Minute, false, logger.New())
	dir := t.TempDir()

	result, err := inv.Invoke(context.Background(), "pwd", nil, dir)
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, dir)
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail("  short \n"))

	long := make([]byte, stderrTailLimit*2)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, tail(string(long)), stderrTailLimit)
}
