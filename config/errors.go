package config

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors. Callers check these with errors.Is().
var (
	// ErrNotFound indicates a named configuration file is absent. This
	// signals a deployment or setup defect and is never retried.
	ErrNotFound = errors.New("configuration file not found")

	// ErrNotLoaded indicates configuration was requested before a
	// successful Load.
	ErrNotLoaded = errors.New("configuration not loaded")
)

// NotFoundError reports a missing configuration file.
type NotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("configuration file not found: %s", e.Path)
}

// Is checks if the error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	_, ok := target.(*NotFoundError)
	return ok
}

// ParseError reports a malformed configuration document.
type ParseError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse configuration file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError represents a single configuration constraint violation.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors. Validation
// reports every violation it finds, not just the first.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, e[i].Error()))
	}
	return sb.String()
}

// HasErrors returns true if there are validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}
