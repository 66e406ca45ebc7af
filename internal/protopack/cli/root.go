// Package cli wires the protopack commands. Heavy lifting lives in the
// pipeline packages; commands only assemble configuration and report
// results.
package cli

import (
	"github.com/spf13/cobra"

	"protopack/pkg/config"
	"protopack/pkg/logger"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "protopack",
	Short: "protopack - build installable binding packages from proto sources",
	Long: `protopack drives external protobuf code generators inside a build
container and packages their output as a versioned, installable package
(Python wheel or npm tarball).

Typical usage:
  protopack build python --clean
  protopack build typescript --package-version 1.4.0`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to configuration file (searches common locations if not specified)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false,
		"Stream full external-tool output instead of suppressing it")

	rootCmd.AddCommand(NewBuildCmd())
	rootCmd.AddCommand(NewCleanCmd())
	rootCmd.AddCommand(NewTargetsCmd())
	rootCmd.AddCommand(NewVersionCmd())
}

// loadConfig loads the file configuration and installs the configured
// default logger.
func loadConfig() (*config.Config, error) {
	cfg, path, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logger.INFO
	}
	if verbose {
		level = logger.DEBUG
	}
	logger.SetDefault(logger.NewWithConfig(logger.Config{
		Level:  level,
		Format: cfg.Logging.Format,
	}))

	if path != "" {
		logger.Debug("configuration loaded", "path", path)
	}
	return cfg, nil
}
