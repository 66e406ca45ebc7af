package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"protopack/pkg/errors"
	"protopack/pkg/semver"
)

// Config holds the complete application configuration
type Config struct {
	Version     string            `yaml:"version" json:"version"`
	Directories DirectoriesConfig `yaml:"directories" json:"directories"`
	Toolchain   ToolchainConfig   `yaml:"toolchain" json:"toolchain"`
	Package     PackageConfig     `yaml:"package" json:"package"`
	Container   ContainerConfig   `yaml:"container" json:"container"`
	Logging     LoggingConfig     `yaml:"logging" json:"logging"`
}

// DirectoriesConfig holds the workspace directory roots, relative to Root
type DirectoriesConfig struct {
	Root         string `yaml:"root" json:"root"`
	Source       string `yaml:"source" json:"source"`
	Intermediate string `yaml:"intermediate" json:"intermediate"`
	Packages     string `yaml:"packages" json:"packages"`
	Artifacts    string `yaml:"artifacts" json:"artifacts"`
}

// ToolchainConfig holds version pins and invocation limits for the
// external code generators
type ToolchainConfig struct {
	ProtocVersion  string        `yaml:"protocVersion" json:"protocVersion"`
	GRPCVersion    string        `yaml:"grpcVersion" json:"grpcVersion"`
	RuntimeVersion string        `yaml:"runtimeVersion" json:"runtimeVersion"`
	InvokeTimeout  time.Duration `yaml:"invokeTimeout" json:"invokeTimeout"`
}

// PackageConfig holds the emitted package identity
type PackageConfig struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
}

// ContainerConfig holds build-container settings
type ContainerConfig struct {
	Engine     string            `yaml:"engine" json:"engine"`
	Images     map[string]string `yaml:"images" json:"images"`
	ReadyDelay time.Duration     `yaml:"readyDelay" json:"readyDelay"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// DefaultConfig provides sensible defaults for all configuration values
var DefaultConfig = Config{
	Version: "1.0",
	Directories: DirectoriesConfig{
		Root:         ".",
		Source:       "proto",
		Intermediate: "generated",
		Packages:     "packages",
		Artifacts:    "artifacts",
	},
	Toolchain: ToolchainConfig{
		ProtocVersion:  "25.3",
		GRPCVersion:    "1.62.1",
		RuntimeVersion: "4.25.3",
		InvokeTimeout:  5 * time.Minute,
	},
	Package: PackageConfig{
		Name:    "protopack-bindings",
		Version: "0.1.0",
	},
	Container: ContainerConfig{
		Engine:     "docker",
		Images:     map[string]string{},
		ReadyDelay: 2 * time.Second,
	},
	Logging: LoggingConfig{
		Level:  "INFO",
		Format: "text",
	},
}

// configSearchPaths are tried in order when no explicit path is given
var configSearchPaths = []string{
	"protopack.yml",
	"protopack.yaml",
	"/etc/protopack/protopack.yml",
}

// LoadConfig loads configuration from the given path, or from the first
// config file found in the search paths. A missing file is not an error;
// defaults are returned.
func LoadConfig(path string) (*Config, string, error) {
	cfg := DefaultConfig

	if path == "" {
		for _, candidate := range configSearchPaths {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				path = candidate
				break
			}
		}
	}

	if path == "" {
		return &cfg, "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, errors.WrapConfigError("file", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, errors.WrapConfigError("file", fmt.Errorf("parsing %s: %w", path, err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return &cfg, path, nil
}

// Validate checks the configuration for internally inconsistent values
func (c *Config) Validate() error {
	if c.Directories.Source == "" {
		return errors.WrapConfigError("directories.source", errors.ErrInvalidConfig)
	}
	if c.Directories.Intermediate == "" {
		return errors.WrapConfigError("directories.intermediate", errors.ErrInvalidConfig)
	}
	if c.Directories.Packages == "" {
		return errors.WrapConfigError("directories.packages", errors.ErrInvalidConfig)
	}
	if c.Directories.Artifacts == "" {
		return errors.WrapConfigError("directories.artifacts", errors.ErrInvalidConfig)
	}
	if c.Package.Name == "" {
		return errors.WrapConfigError("package.name", errors.ErrInvalidConfig)
	}
	if c.Package.Version == "" {
		return errors.WrapConfigError("package.version", errors.ErrInvalidConfig)
	}
	if !semver.IsValid(c.Package.Version) {
		return errors.WrapConfigError("package.version",
			fmt.Errorf("%q is not a valid semantic version: %w", c.Package.Version, errors.ErrInvalidConfig))
	}
	if c.Container.Engine == "" {
		return errors.WrapConfigError("container.engine", errors.ErrInvalidConfig)
	}
	if c.Toolchain.InvokeTimeout <= 0 {
		return errors.WrapConfigError("toolchain.invokeTimeout", errors.ErrInvalidConfig)
	}
	return nil
}

// ImageFor returns the configured build image for a target, if any
func (c *Config) ImageFor(target string) string {
	return c.Container.Images[target]
}
