package packager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"protopack/internal/protopack/domain"
	"protopack/internal/protopack/target"
	"protopack/internal/protopack/toolchain"
	"protopack/internal/protopack/workspace"
	"protopack/pkg/config"
	"protopack/pkg/errors"
	"protopack/pkg/logger"
)

// Build invokes the target ecosystem's native package builder over the
// canonical tree, then installs the product under the artifact directory.
// Stale artifacts for the same language are pruned first so at most one
// artifact per (language, version) remains after the run.
func Build(ctx context.Context, runner toolchain.Runner, ws *workspace.Workspace, tgt *target.Target, cfg *config.BuildConfig, log *logger.Logger) (*domain.Artifact, error) {
	log = log.WithField("component", "packager")

	argv := tgt.BuilderArgv(cfg)
	if _, err := runner.Invoke(ctx, argv[0], argv[1:], ws.Output); err != nil {
		if errors.Is(err, errors.ErrToolNotFound) {
			return nil, errors.WrapPackagerError("build",
				fmt.Errorf("builder %q not installed on host: %w", argv[0], err))
		}
		return nil, errors.WrapPackagerError("build", err)
	}

	produced, err := filepath.Glob(filepath.Join(ws.Dist, tgt.ArtifactGlob))
	if err != nil {
		return nil, errors.WrapPackagerError("collect", err)
	}
	if len(produced) == 0 {
		return nil, errors.WrapPackagerError("collect",
			fmt.Errorf("builder produced no %s file in %s", tgt.ArtifactGlob, ws.Dist))
	}
	// builders emit a single file per invocation; if something odd left
	// several behind, take the lexically last (newest version sorts last)
	sort.Strings(produced)
	source := produced[len(produced)-1]

	if err := pruneStale(ws.Artifacts, tgt.ArtifactGlob, filepath.Base(source)); err != nil {
		return nil, errors.WrapPackagerError("prune", err)
	}

	dest := filepath.Join(ws.Artifacts, filepath.Base(source))
	if err := installArtifact(source, dest); err != nil {
		return nil, errors.WrapPackagerError("install", err)
	}

	log.Info("artifact built", "language", cfg.Target, "path", dest)
	return &domain.Artifact{
		Language: cfg.Target,
		Version:  cfg.PackageVersion,
		Path:     dest,
	}, nil
}

// pruneStale removes previously retained artifacts of this language so a
// prior run's output is never silently mixed in with the new one.
func pruneStale(artifactDir, glob, keep string) error {
	stale, err := filepath.Glob(filepath.Join(artifactDir, glob))
	if err != nil {
		return err
	}
	for _, p := range stale {
		if filepath.Base(p) == keep {
			continue
		}
		if err := os.Remove(p); err != nil {
			return err
		}
	}
	return nil
}

// installArtifact copies the builder's product into the artifact
// directory. A copy rather than a rename keeps dist/ intact for
// inspection. The copy goes through a temp file in the same directory
// and a rename, so an interrupted write never leaves a truncated
// artifact at the final path.
func installArtifact(source, dest string) error {
	data, err := os.ReadFile(source)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
