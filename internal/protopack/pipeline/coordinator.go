// Package pipeline sequences one end-to-end build for a single language
// target: prepare, generate, relocate, format, manifest, package. The
// coordinator is strictly sequential; parallelism exists only across
// independent per-target pipelines with disjoint workspaces.
package pipeline

import (
	"context"
	"fmt"

	"protopack/internal/protopack/domain"
	"protopack/internal/protopack/packager"
	"protopack/internal/protopack/postprocess"
	"protopack/internal/protopack/protoscan"
	"protopack/internal/protopack/target"
	"protopack/internal/protopack/toolchain"
	"protopack/internal/protopack/workspace"
	"protopack/pkg/config"
	"protopack/pkg/errors"
	"protopack/pkg/logger"
)

// State is the coordinator's position in the linear build state machine
type State int

const (
	StateIdle State = iota
	StatePrepared
	StateGenerated
	StateRelocated
	StateFormatted
	StateManifested
	StatePackaged
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePrepared:
		return "prepared"
	case StateGenerated:
		return "generated"
	case StateRelocated:
		return "relocated"
	case StateFormatted:
		return "formatted"
	case StateManifested:
		return "manifested"
	case StatePackaged:
		return "packaged"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Executor runs generator commands inside the scoped build container.
// Release must be safe to call more than once; the coordinator guarantees
// it is invoked on every exit path.
type Executor interface {
	Exec(ctx context.Context, argv ...string) (*toolchain.InvocationResult, error)
	Release() error
}

// AcquireFunc provisions the build container for a prepared workspace
type AcquireFunc func(ctx context.Context, ws *workspace.Workspace) (Executor, error)

// Coordinator drives one pipeline run. A Coordinator is single-use:
// construct, Run once, inspect State afterwards if needed.
type Coordinator struct {
	cfg        *config.BuildConfig
	tgt        *target.Target
	workspaces *workspace.Manager
	host       toolchain.Runner
	acquire    AcquireFunc
	logger     *logger.Logger

	state State
	torn  bool
}

func NewCoordinator(cfg *config.BuildConfig, tgt *target.Target, workspaces *workspace.Manager, host toolchain.Runner, acquire AcquireFunc, log *logger.Logger) *Coordinator {
	return &Coordinator{
		cfg:        cfg,
		tgt:        tgt,
		workspaces: workspaces,
		host:       host,
		acquire:    acquire,
		logger:     log.WithField("component", "pipeline").WithField("target", cfg.Target),
	}
}

// State returns the coordinator's current state
func (c *Coordinator) State() State {
	return c.state
}

// Run executes the pipeline. Any stage failure transitions to Failed,
// tears the run down unconditionally and propagates the originating
// error with the failing stage identified. The artifact is written only
// after every preceding stage has succeeded.
func (c *Coordinator) Run(ctx context.Context) (*domain.Artifact, error) {
	c.state = StateIdle
	c.logger.Info("pipeline starting", "clean", c.cfg.Clean)

	ws, err := c.workspaces.Prepare(c.cfg, c.tgt.PackageDirName(c.cfg.PackageName))
	if err != nil {
		return nil, c.fail(nil, nil, "prepare", err)
	}
	protoFiles, err := workspace.ListProtoFiles(ws)
	if err != nil {
		return nil, c.fail(ws, nil, "prepare", err)
	}
	if len(protoFiles) == 0 {
		return nil, c.fail(ws, nil, "prepare",
			errors.WrapWorkspaceError(ws.Source, "list", errors.New("no proto sources found")))
	}
	c.state = StatePrepared

	execr, err := c.acquire(ctx, ws)
	if err != nil {
		return nil, c.fail(ws, nil, "generate", err)
	}
	for _, argv := range c.tgt.GeneratorCommands(c.cfg, protoFiles) {
		if _, err := execr.Exec(ctx, argv...); err != nil {
			return nil, c.fail(ws, execr, "generate", err)
		}
	}
	c.state = StateGenerated

	units, err := postprocess.Relocate(ws, c.tgt, c.logger)
	if err != nil {
		return nil, c.fail(ws, execr, "relocate", err)
	}
	idx, err := protoscan.Scan(ws.Source, protoFiles)
	if err != nil {
		return nil, c.fail(ws, execr, "relocate", err)
	}
	if err := postprocess.SynthesizeEntryPoints(ws, c.tgt, units, idx, c.logger); err != nil {
		return nil, c.fail(ws, execr, "relocate", err)
	}
	c.state = StateRelocated

	// formatting is non-fatal: generated code is correct either way
	if err := postprocess.Format(ctx, c.host, ws, c.tgt, c.logger); err != nil {
		c.logger.Warn("formatting incomplete", "error", err)
	}
	c.state = StateFormatted

	if err := packager.WriteManifest(ws, c.tgt, c.cfg, c.logger); err != nil {
		return nil, c.fail(ws, execr, "manifest", err)
	}
	c.state = StateManifested

	artifact, err := packager.Build(ctx, c.host, ws, c.tgt, c.cfg, c.logger)
	if err != nil {
		return nil, c.fail(ws, execr, "package", err)
	}
	c.state = StatePackaged

	c.teardown(ws, execr)
	c.state = StateDone
	c.logger.Info("pipeline done", "artifact", artifact.Path)
	return artifact, nil
}

// fail transitions to Failed, runs the unconditional teardown and wraps
// the originating error with the failing stage.
func (c *Coordinator) fail(ws *workspace.Workspace, execr Executor, stage string, err error) error {
	c.state = StateFailed
	c.teardown(ws, execr)
	c.logger.Error("pipeline failed", "stage", stage, "error", err)
	return fmt.Errorf("stage %s: %w", stage, err)
}

// teardown releases the build container and runs workspace teardown.
// Runs at most once per coordinator; failures are logged, never fatal.
func (c *Coordinator) teardown(ws *workspace.Workspace, execr Executor) {
	if c.torn {
		return
	}
	c.torn = true

	if execr != nil {
		if err := execr.Release(); err != nil {
			c.logger.Warn("build container release failed", "error", err)
		}
	}
	c.workspaces.Teardown(ws)
}
