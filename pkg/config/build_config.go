package config

import (
	"path/filepath"
	"time"
)

// BuildConfig is the immutable per-invocation configuration for one
// language pipeline run. It is assembled once from the file config plus
// CLI flag overrides and passed explicitly to every component; components
// never read ambient global or environment state.
type BuildConfig struct {
	// Target language name (e.g. "python", "typescript")
	Target string

	// Toolchain version pins
	ProtocVersion  string
	GRPCVersion    string
	RuntimeVersion string

	// Emitted package identity
	PackageName    string
	PackageVersion string

	// Feature toggles
	GenerateGRPC bool
	GenerateWeb  bool

	// Run behavior
	Clean   bool
	Verbose bool

	// Directory roots (Root absolute, the rest relative to Root)
	Root            string
	SourceDir       string
	IntermediateDir string
	PackagesDir     string
	ArtifactsDir    string

	// Container settings
	ContainerEngine string
	ContainerImage  string
	ReadyDelay      time.Duration

	// External tool invocation bound
	InvokeTimeout time.Duration
}

// NewBuildConfig derives an immutable BuildConfig for one target from the
// loaded file configuration. Flag overrides are applied by the CLI before
// the pipeline ever sees the value.
func NewBuildConfig(cfg *Config, target string) (BuildConfig, error) {
	root, err := filepath.Abs(cfg.Directories.Root)
	if err != nil {
		return BuildConfig{}, err
	}
	return BuildConfig{
		Target:          target,
		ProtocVersion:   cfg.Toolchain.ProtocVersion,
		GRPCVersion:     cfg.Toolchain.GRPCVersion,
		RuntimeVersion:  cfg.Toolchain.RuntimeVersion,
		PackageName:     cfg.Package.Name,
		PackageVersion:  cfg.Package.Version,
		GenerateGRPC:    true,
		Root:            root,
		SourceDir:       cfg.Directories.Source,
		IntermediateDir: cfg.Directories.Intermediate,
		PackagesDir:     cfg.Directories.Packages,
		ArtifactsDir:    cfg.Directories.Artifacts,
		ContainerEngine: cfg.Container.Engine,
		ContainerImage:  cfg.ImageFor(target),
		ReadyDelay:      cfg.Container.ReadyDelay,
		InvokeTimeout:   cfg.Toolchain.InvokeTimeout,
	}, nil
}
