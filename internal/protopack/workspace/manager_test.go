package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"protopack/pkg/config"
	"protopack/pkg/errors"
	"protopack/pkg/logger"
)

func testBuildConfig(t *testing.T) *config.BuildConfig {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "proto"), 0o755))
	return &config.BuildConfig{
		Target:          "python",
		Root:            root,
		SourceDir:       "proto",
		IntermediateDir: "generated",
		PackagesDir:     "packages",
		ArtifactsDir:    "artifacts",
		PackageName:     "acme-bindings",
	}
}

func TestManager_Prepare(t *testing.T) {
	m := NewManager(logger.New())
	cfg := testBuildConfig(t)

	ws, err := m.Prepare(cfg, "acme_bindings")
	require.NoError(t, err)

	assert.DirExists(t, ws.Intermediate)
	assert.DirExists(t, ws.PackageDir)
	assert.DirExists(t, ws.Dist)
	assert.DirExists(t, ws.Artifacts)
	assert.Equal(t, filepath.Join(cfg.Root, "generated", "python"), ws.Intermediate)
	assert.Equal(t, filepath.Join(cfg.Root, "packages", "python", "acme_bindings"), ws.PackageDir)
	assert.Equal(t, "proto", ws.RelSource)
	assert.Equal(t, filepath.Join("generated", "python"), ws.RelIntermediate)
}

func TestManager_Prepare_MissingSource(t *testing.T) {
	m := NewManager(logger.New())
	cfg := testBuildConfig(t)
	require.NoError(t, os.RemoveAll(filepath.Join(cfg.Root, "proto")))

	_, err := m.Prepare(cfg, "acme_bindings")
	require.Error(t, err)
	assert.True(t, errors.IsWorkspaceError(err))
}

func TestManager_Prepare_PathIsNotADirectory(t *testing.T) {
	m := NewManager(logger.New())
	cfg := testBuildConfig(t)

	// a file squatting where the intermediate tree must go
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.Root, "generated"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Root, "generated", "python"), []byte("x"), 0o644))

	_, err := m.Prepare(cfg, "acme_bindings")
	require.Error(t, err)
	assert.True(t, errors.IsWorkspaceError(err))
	assert.True(t, errors.Is(err, errors.ErrNotADirectory))
}

func TestManager_Prepare_CleanRemovesPriorState(t *testing.T) {
	m := NewManager(logger.New())
	cfg := testBuildConfig(t)

	stale := filepath.Join(cfg.Root, "generated", "python", "stale_pb2.py")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
	stalePkg := filepath.Join(cfg.Root, "packages", "python", "acme_bindings", "old.py")
	require.NoError(t, os.MkdirAll(filepath.Dir(stalePkg), 0o755))
	require.NoError(t, os.WriteFile(stalePkg, []byte("old"), 0o644))

	cfg.Clean = true
	_, err := m.Prepare(cfg, "acme_bindings")
	require.NoError(t, err)

	assert.NoFileExists(t, stale)
	assert.NoFileExists(t, stalePkg)
}

func TestManager_Prepare_WithoutCleanKeepsPriorState(t *testing.T) {
	m := NewManager(logger.New())
	cfg := testBuildConfig(t)

	stale := filepath.Join(cfg.Root, "generated", "python", "stale_pb2.py")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	_, err := m.Prepare(cfg, "acme_bindings")
	require.NoError(t, err)
	assert.FileExists(t, stale)
}

func TestManager_Teardown(t *testing.T) {
	m := NewManager(logger.New())
	cfg := testBuildConfig(t)

	ws, err := m.Prepare(cfg, "acme_bindings")
	require.NoError(t, err)

	debris := filepath.Join(ws.Output, "acme_bindings.egg-info")
	require.NoError(t, os.MkdirAll(debris, 0o755))
	buildDir := filepath.Join(ws.Output, "build")
	require.NoError(t, os.MkdirAll(buildDir, 0o755))
	kept := filepath.Join(ws.Intermediate, "greeter_pb2.py")
	require.NoError(t, os.WriteFile(kept, []byte("x"), 0o644))

	m.Teardown(ws)

	assert.NoDirExists(t, debris)
	assert.NoDirExists(t, buildDir)
	// the intermediate tree survives for post-mortems
	assert.FileExists(t, kept)

	// teardown of a nil workspace must not panic
	m.Teardown(nil)
}

func TestListProtoFiles(t *testing.T) {
	m := NewManager(logger.New())
	cfg := testBuildConfig(t)

	src := filepath.Join(cfg.Root, "proto")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "api", "v1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "api", "v1", "greeter.proto"), []byte("syntax = \"proto3\";"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "common.proto"), []byte("syntax = \"proto3\";"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "README.md"), []byte("not a proto"), 0o644))

	ws, err := m.Prepare(cfg, "acme_bindings")
	require.NoError(t, err)

	files, err := ListProtoFiles(ws)
	require.NoError(t, err)
	assert.Equal(t, []string{"api/v1/greeter.proto", "common.proto"}, files)
}
