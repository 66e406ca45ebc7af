// Package target defines the per-language build pipelines. A Target
// bundles everything that differs between ecosystems: which generator
// commands run in the build container, which files count as generated
// output, how entry points are synthesized, and how the native package
// builder is driven.
package target

import (
	"fmt"
	"sort"
	"strings"

	"protopack/internal/protopack/domain"
	"protopack/internal/protopack/protoscan"
	"protopack/pkg/config"
	"protopack/pkg/errors"
)

// Target describes one language pipeline
type Target struct {
	// Name is the CLI-visible target name
	Name string

	// Extensions are the generated-file extensions relocation picks up
	Extensions []string

	// DefaultImage is the build container image used when the config
	// does not pin one
	DefaultImage string

	// ManifestFile is the package descriptor filename at the output root
	ManifestFile string

	// ManifestTemplate is the text/template source for ManifestFile
	ManifestTemplate string

	// ArtifactGlob matches the builder's product in the dist directory
	ArtifactGlob string

	// GeneratorCommands returns the argv sequences to run inside the
	// build container, with all paths container-relative
	GeneratorCommands func(cfg *config.BuildConfig, protoFiles []string) [][]string

	// FormatterCommands returns the argv sequences run on the host over
	// the canonical package tree
	FormatterCommands func(packageDir string) [][]string

	// BuilderArgv is the native package builder invocation, run on the
	// host with the output root as working directory
	BuilderArgv func(cfg *config.BuildConfig) []string

	// PackageDirName maps the configured package name to the canonical
	// source directory name
	PackageDirName func(packageName string) string

	// KindOf classifies a generated file by name
	KindOf func(filename string) domain.UnitKind

	// EntryFiles derives the aggregating entry files (path relative to
	// the package dir, mapped to content) from the discovered units
	EntryFiles func(units []domain.GeneratedUnit, idx *protoscan.Index) (map[string]string, error)
}

// Image returns the build image for this target under cfg
func (t *Target) Image(cfg *config.BuildConfig) string {
	if cfg.ContainerImage != "" {
		return cfg.ContainerImage
	}
	return t.DefaultImage
}

// HasExtension reports whether filename carries one of the target's
// generated-file extensions
func (t *Target) HasExtension(filename string) bool {
	for _, ext := range t.Extensions {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}

var registry = map[string]*Target{}

func register(t *Target) {
	registry[t.Name] = t
}

// Lookup resolves a target by name
func Lookup(name string) (*Target, error) {
	t, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known targets: %s)",
			errors.ErrUnknownTarget, name, strings.Join(Names(), ", "))
	}
	return t, nil
}

// Names returns the registered target names, sorted
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
