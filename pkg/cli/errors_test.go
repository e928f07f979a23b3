package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		name string
		err  *ConfigError
		want string
	}{
		{
			name: "without cause",
			err:  &ConfigError{Path: "headsup.yaml", Message: "engines.engine1.path is required"},
			want: "config error in headsup.yaml: engines.engine1.path is required",
		},
		{
			name: "with cause",
			err:  NewConfigError("headsup.yaml", "cannot read", fs.ErrNotExist),
			want: "config error in headsup.yaml: cannot read: file does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigErrorUnwrap(t *testing.T) {
	err := NewConfigError("headsup.yaml", "cannot read", fs.ErrNotExist)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestIsConfigError(t *testing.T) {
	wrapped := fmt.Errorf("startup: %w", NewConfigError("headsup.yaml", "invalid", nil))
	if !IsConfigError(wrapped) {
		t.Error("expected wrapped ConfigError to be detected")
	}
	if IsConfigError(errors.New("spawn failed")) {
		t.Error("plain error is not a ConfigError")
	}
}

func TestCommandError(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := NewCommandError("journal list", underlyingErr)

	expected := "command journal list failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is should find the underlying error")
	}
}
