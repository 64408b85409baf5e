// Package errors provides the structured error type (BuildError) used for
// category-based classification across the build pipeline and CLI.
package errors

import (
	"errors"
	"fmt"
)

// Category classifies a BuildError for propagation and presentation decisions.
type Category string

const (
	// User-facing configuration and input errors. Fatal; the CLI prints a
	// short message instead of a diagnostic dump.
	CategoryConfig Category = "config"

	// A stage could not enumerate its inputs at all (missing docs root,
	// unreadable library directory). Fatal.
	CategoryDiscovery Category = "discovery"

	// A single document or component failed to compile. Recoverable and
	// item-scoped; never escalated across stage boundaries.
	CategoryCompile Category = "compile"

	// Filesystem-level failures while preparing or writing outputs.
	CategoryFileSystem Category = "filesystem"

	// Plugin resolution or application failures.
	CategoryPlugin Category = "plugin"

	// Anything else. Fatal, logged with full diagnostic detail.
	CategoryInternal Category = "internal"
)

// Severity indicates how critical an error is.
type Severity string

const (
	SeverityFatal   Severity = "fatal"   // Stops the run.
	SeverityError   Severity = "error"   // Error, but siblings may proceed.
	SeverityWarning Severity = "warning" // Recorded, run continues.
)

// ContextFields carries structured context for a BuildError.
type ContextFields map[string]any

// BuildError is a structured error with category, severity, and context.
type BuildError struct {
	Category Category      `json:"category"`
	Severity Severity      `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap supports errors.Is / errors.As chains.
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// WithContext adds a context field to the error and returns it.
func (e *BuildError) WithContext(key string, value any) *BuildError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new BuildError.
func New(category Category, severity Severity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new BuildError that wraps an existing error.
func Wrap(err error, category Category, severity Severity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// Config creates a fatal configuration error.
func Config(message string) *BuildError {
	return New(CategoryConfig, SeverityFatal, message)
}

// Configf creates a fatal configuration error with a formatted message.
func Configf(format string, args ...any) *BuildError {
	return Config(fmt.Sprintf(format, args...))
}

// Discovery wraps err as a fatal discovery error.
func Discovery(err error, message string) *BuildError {
	return Wrap(err, CategoryDiscovery, SeverityFatal, message)
}

// Compile wraps err as a recoverable, item-scoped compile error.
func Compile(err error, item string) *BuildError {
	return Wrap(err, CategoryCompile, SeverityWarning, "compile failed").WithContext("item", item)
}

// IsCategory checks whether err (or anything it wraps) carries the category.
func IsCategory(err error, category Category) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Category == category
	}
	return false
}

// IsFatal reports whether err carries fatal severity. Errors that are not
// BuildErrors are treated as fatal: an unclassified failure must stop the run.
func IsFatal(err error) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Severity == SeverityFatal
	}
	return err != nil
}

// GetCategory extracts the category from an error, or CategoryInternal when
// err is not a BuildError.
func GetCategory(err error) Category {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Category
	}
	return CategoryInternal
}
