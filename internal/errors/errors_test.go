package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileError(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := NewFileError("file access denied", "/tmp/x", FileAccessDenied, cause)

	assert.Equal(t, "file access denied: /tmp/x: permission denied", err.Error())
	assert.Equal(t, "/tmp/x", err.Path())
	assert.Equal(t, FileAccessDenied, err.Kind())
	assert.Equal(t, cause, Unwrap(err))
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("invalid configuration", "clean_files.ini", InvalidConfig, nil)
	assert.Equal(t, "invalid configuration: clean_files.ini", err.Error())
	assert.Equal(t, InvalidConfig, err.Kind())
}

func TestRuleError(t *testing.T) {
	err := NewRuleError("invalid rule", "old-logs", InvalidRule, nil)
	assert.Equal(t, "invalid rule: old-logs", err.Error())
	assert.Equal(t, "old-logs", err.Rule())
}

func TestAsUnwrapsThroughWrapping(t *testing.T) {
	inner := NewConfigError("invalid configuration", "c.ini", InvalidConfig, nil)
	wrapped := fmt.Errorf("loading: %w", inner)

	var cfgErr *ConfigError
	require.True(t, As(wrapped, &cfgErr))
	assert.Equal(t, InvalidConfig, cfgErr.Kind())
}
