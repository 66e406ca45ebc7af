// Package workspace manages the lifecycle of the directory roles a
// pipeline run works in: read-only proto sources, the recreatable
// intermediate tree, the canonical output tree and the artifact
// directory.
package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"protopack/pkg/config"
	"protopack/pkg/errors"
	"protopack/pkg/logger"
)

// Workspace holds the resolved absolute paths for one target's run.
// Rel* paths are kept relative to Root for use inside the build
// container, which mounts Root.
type Workspace struct {
	Target string
	Root   string

	Source       string
	Intermediate string
	Output       string
	PackageDir   string
	Dist         string
	Artifacts    string

	RelSource       string
	RelIntermediate string
}

// Manager implements workspace preparation and best-effort teardown
type Manager struct {
	logger *logger.Logger
}

func NewManager(log *logger.Logger) *Manager {
	return &Manager{logger: log.WithField("component", "workspace")}
}

// Prepare resolves and creates the directory tree for one run. With
// cfg.Clean set, pre-existing intermediate and output trees are removed
// first. The source tree must already exist; it is never written to.
func (m *Manager) Prepare(cfg *config.BuildConfig, packageDir string) (*Workspace, error) {
	ws := &Workspace{
		Target:          cfg.Target,
		Root:            cfg.Root,
		Source:          filepath.Join(cfg.Root, cfg.SourceDir),
		Intermediate:    filepath.Join(cfg.Root, cfg.IntermediateDir, cfg.Target),
		Output:          filepath.Join(cfg.Root, cfg.PackagesDir, cfg.Target),
		Artifacts:       filepath.Join(cfg.Root, cfg.ArtifactsDir, cfg.Target),
		RelSource:       cfg.SourceDir,
		RelIntermediate: filepath.Join(cfg.IntermediateDir, cfg.Target),
	}
	ws.PackageDir = filepath.Join(ws.Output, packageDir)
	ws.Dist = filepath.Join(ws.Output, "dist")

	info, err := os.Stat(ws.Source)
	if err != nil {
		return nil, errors.WrapWorkspaceError(ws.Source, "stat", err)
	}
	if !info.IsDir() {
		return nil, errors.WrapWorkspaceError(ws.Source, "stat", errors.ErrNotADirectory)
	}

	if cfg.Clean {
		for _, dir := range []string{ws.Intermediate, ws.Output} {
			m.logger.Debug("cleaning directory", "path", dir)
			if err := os.RemoveAll(dir); err != nil {
				return nil, errors.WrapWorkspaceError(dir, "clean", err)
			}
		}
	}

	for _, dir := range []string{ws.Intermediate, ws.PackageDir, ws.Dist, ws.Artifacts} {
		if err := ensureDir(dir); err != nil {
			return nil, err
		}
	}

	m.logger.Debug("workspace prepared", "target", ws.Target, "root", ws.Root)
	return ws, nil
}

// Teardown removes transient build debris the native builders leave in the
// output tree. Best-effort: failures are logged, never fatal, and the
// intermediate tree is deliberately kept for post-mortem debugging.
func (m *Manager) Teardown(ws *Workspace) {
	if ws == nil {
		return
	}

	var result *multierror.Error
	for _, dir := range []string{
		filepath.Join(ws.Output, "build"),
		filepath.Join(ws.Output, "node_modules"),
	} {
		if err := os.RemoveAll(dir); err != nil {
			result = multierror.Append(result, err)
		}
	}

	entries, err := os.ReadDir(ws.Output)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() && strings.HasSuffix(entry.Name(), ".egg-info") {
				if err := os.RemoveAll(filepath.Join(ws.Output, entry.Name())); err != nil {
					result = multierror.Append(result, err)
				}
			}
		}
	} else if !os.IsNotExist(err) {
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		m.logger.Warn("workspace teardown incomplete", "target", ws.Target, "error", err)
	}
}

// ListProtoFiles walks the source tree and returns all .proto files as
// sorted paths relative to the source root.
func ListProtoFiles(ws *Workspace) ([]string, error) {
	var files []string
	err := filepath.WalkDir(ws.Source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".proto") {
			return nil
		}
		rel, err := filepath.Rel(ws.Source, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.WrapWorkspaceError(ws.Source, "list", err)
	}
	sort.Strings(files)
	return files, nil
}

// ensureDir creates dir if absent and verifies it is a writable directory
func ensureDir(dir string) error {
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return errors.WrapWorkspaceError(dir, "create", errors.ErrNotADirectory)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapWorkspaceError(dir, "create", err)
	}

	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return errors.WrapWorkspaceError(dir, "probe", errors.ErrNotWritable)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}
