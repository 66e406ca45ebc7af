// Package errors provides standardized error handling for the protopack
// pipeline. It implements structured error types with proper wrapping and
// classification following Go 1.20+ error handling best practices.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// Toolchain-related errors
	ErrToolchainTimeout = errors.New("toolchain invocation timed out")
	ErrToolNotFound     = errors.New("required tool not found on host")

	// Target-related errors
	ErrUnknownTarget = errors.New("unknown build target")

	// Workspace-related errors
	ErrNotADirectory = errors.New("path exists and is not a directory")
	ErrNotWritable   = errors.New("directory is not writable")

	// System-related errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// WorkspaceError represents an error during workspace setup or cleanup
type WorkspaceError struct {
	Path      string
	Operation string
	Err       error
}

func (e *WorkspaceError) Error() string {
	return fmt.Sprintf("workspace %s: operation %s: %v", e.Path, e.Operation, e.Err)
}

func (e *WorkspaceError) Unwrap() error {
	return e.Err
}

// ToolchainError represents a failed external tool invocation
type ToolchainError struct {
	Tool       string
	ExitCode   int
	StderrTail string
	Err        error
}

func (e *ToolchainError) Error() string {
	if e.StderrTail != "" {
		return fmt.Sprintf("toolchain %s: exit %d: %s", e.Tool, e.ExitCode, e.StderrTail)
	}
	return fmt.Sprintf("toolchain %s: exit %d: %v", e.Tool, e.ExitCode, e.Err)
}

func (e *ToolchainError) Unwrap() error {
	return e.Err
}

// PostProcessError represents an error during relocation or entry-point synthesis
type PostProcessError struct {
	Stage string
	Path  string
	Err   error
}

func (e *PostProcessError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("postprocess %s: %s: %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("postprocess %s: %v", e.Stage, e.Err)
}

func (e *PostProcessError) Unwrap() error {
	return e.Err
}

// PackagerError represents an error during manifest emission or native build
type PackagerError struct {
	Step string
	Err  error
}

func (e *PackagerError) Error() string {
	return fmt.Sprintf("packager %s: %v", e.Step, e.Err)
}

func (e *PackagerError) Unwrap() error {
	return e.Err
}

// ConfigError represents an error related to configuration
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Error wrapping constructors
func WrapWorkspaceError(path, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &WorkspaceError{Path: path, Operation: operation, Err: err}
}

func WrapToolchainError(tool string, exitCode int, stderrTail string, err error) error {
	if err == nil {
		return nil
	}
	return &ToolchainError{Tool: tool, ExitCode: exitCode, StderrTail: stderrTail, Err: err}
}

func WrapPostProcessError(stage, path string, err error) error {
	if err == nil {
		return nil
	}
	return &PostProcessError{Stage: stage, Path: path, Err: err}
}

func WrapPackagerError(step string, err error) error {
	if err == nil {
		return nil
	}
	return &PackagerError{Step: step, Err: err}
}

func WrapConfigError(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ConfigError{Field: field, Err: err}
}

// Error classification functions
func IsWorkspaceError(err error) bool {
	var we *WorkspaceError
	return errors.As(err, &we)
}

func IsToolchainError(err error) bool {
	var te *ToolchainError
	return errors.As(err, &te)
}

func IsToolchainTimeout(err error) bool {
	return errors.Is(err, ErrToolchainTimeout)
}

func IsPostProcessError(err error) bool {
	var pe *PostProcessError
	return errors.As(err, &pe)
}

func IsPackagerError(err error) bool {
	var pe *PackagerError
	return errors.As(err, &pe)
}

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// Is reports whether any error in err's chain matches target.
// Re-exported so callers need a single errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}
