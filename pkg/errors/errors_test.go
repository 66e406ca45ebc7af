package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapConstructors_NilPassthrough(t *testing.T) {
	if WrapWorkspaceError("/tmp/x", "create", nil) != nil {
		t.Error("WrapWorkspaceError(nil) should be nil")
	}
	if WrapToolchainError("protoc", 1, "", nil) != nil {
		t.Error("WrapToolchainError(nil) should be nil")
	}
	if WrapPostProcessError("relocate", "", nil) != nil {
		t.Error("WrapPostProcessError(nil) should be nil")
	}
	if WrapPackagerError("build", nil) != nil {
		t.Error("WrapPackagerError(nil) should be nil")
	}
	if WrapConfigError("field", nil) != nil {
		t.Error("WrapConfigError(nil) should be nil")
	}
}

func TestToolchainError_Unwrap(t *testing.T) {
	err := WrapToolchainError("protoc", -1, "", ErrToolchainTimeout)

	if !IsToolchainError(err) {
		t.Error("expected IsToolchainError")
	}
	if !IsToolchainTimeout(err) {
		t.Error("expected timeout to be visible through the wrapper")
	}

	var te *ToolchainError
	if !errors.As(err, &te) {
		t.Fatal("expected errors.As to find ToolchainError")
	}
	if te.Tool != "protoc" || te.ExitCode != -1 {
		t.Errorf("unexpected fields: %+v", te)
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"workspace", WrapWorkspaceError("/p", "create", ErrNotADirectory), IsWorkspaceError},
		{"postprocess", WrapPostProcessError("relocate", "a.py", fmt.Errorf("boom")), IsPostProcessError},
		{"packager", WrapPackagerError("build", fmt.Errorf("boom")), IsPackagerError},
		{"config", WrapConfigError("package.name", ErrInvalidConfig), IsConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("classifier rejected %v", tt.err)
			}
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !tt.check(wrapped) {
				t.Errorf("classifier rejected wrapped %v", wrapped)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	err := WrapToolchainError("pbjs", 2, "unexpected token", fmt.Errorf("exit status 2"))
	want := "toolchain pbjs: exit 2: unexpected token"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	werr := WrapWorkspaceError("/tmp/out", "create", ErrNotADirectory)
	if werr.Error() != "workspace /tmp/out: operation create: path exists and is not a directory" {
		t.Errorf("unexpected message: %q", werr.Error())
	}
}
