// Package errors provides standardized error handling for the cleanfiles
// application. It defines common error types, kinds, and helpers for
// consistent error creation, wrapping, and inspection.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package functions re-exported for convenience.
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error.
type ErrorKind int

// Error kinds.
const (
	Unknown ErrorKind = iota
	// File error kinds
	FileNotFound
	FileAccessDenied
	InvalidPath
	FileOperationFailed
	// Config error kinds
	InvalidConfig
	ConfigNotFound
	// Rule error kinds
	InvalidRule
)

// Common error values for frequently occurring conditions.
var (
	ErrFileNotFound  = NewFileError("file not found", "", FileNotFound, nil)
	ErrFileAccess    = NewFileError("file access denied", "", FileAccessDenied, nil)
	ErrInvalidConfig = NewConfigError("invalid configuration", "", InvalidConfig, nil)
	ErrInvalidRule   = NewRuleError("invalid rule", "", InvalidRule, nil)
)

// ApplicationError is the base error type for all application errors.
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message.
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error.
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error.
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// FileError represents errors related to file operations.
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error.
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{msg: msg, err: err, kind: kind},
		path:             path,
	}
}

// Error returns the file error message.
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error.
func (e *FileError) Path() string {
	return e.path
}

// ConfigError represents configuration loading and validation errors.
type ConfigError struct {
	ApplicationError
	source string
}

// NewConfigError creates a new config error.
func NewConfigError(msg string, source string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{msg: msg, err: err, kind: kind},
		source:           source,
	}
}

// Error returns the config error message.
func (e *ConfigError) Error() string {
	if e.source != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.source, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.source)
	}
	return e.ApplicationError.Error()
}

// RuleError represents errors in rule definitions.
type RuleError struct {
	ApplicationError
	rule string
}

// NewRuleError creates a new rule error.
func NewRuleError(msg string, rule string, kind ErrorKind, err error) *RuleError {
	return &RuleError{
		ApplicationError: ApplicationError{msg: msg, err: err, kind: kind},
		rule:             rule,
	}
}

// Error returns the rule error message.
func (e *RuleError) Error() string {
	if e.rule != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.rule, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.rule)
	}
	return e.ApplicationError.Error()
}

// Rule returns the rule name associated with the error.
func (e *RuleError) Rule() string {
	return e.rule
}
