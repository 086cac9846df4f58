// Package validation provides pre-sync checks of the snippet stores.
package validation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauern/snippetsync/internal/model"
)

// Error represents a validation failure with context.
type Error struct {
	// Field is the name of the field or component that failed validation
	Field string
	// Message describes the validation failure
	Message string
	// Err is the underlying error (if any)
	Err error
}

// Error returns a formatted validation error message.
func (ve *Error) Error() string {
	if ve.Err != nil {
		return fmt.Sprintf("validation failed for %q: %s: %v", ve.Field, ve.Message, ve.Err)
	}
	return fmt.Sprintf("validation failed for %q: %s", ve.Field, ve.Message)
}

// Unwrap returns the underlying error for errors.Is/As.
func (ve *Error) Unwrap() error {
	return ve.Err
}

// Errors collects multiple validation errors.
type Errors []error

// Error returns a formatted error message for all validation failures.
func (ve Errors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}
	return fmt.Sprintf("%d validation errors:\n- %s", len(ve), errors.Join(ve...))
}

// Options configures validation behavior.
type Options struct {
	// RequireWritePermission checks that each snippets directory is writable
	RequireWritePermission bool
}

// DefaultOptions returns the default validation options.
func DefaultOptions() Options {
	return Options{RequireWritePermission: true}
}

// Result contains the outcome of a validation check.
type Result struct {
	// Valid indicates whether all validations passed
	Valid bool
	// Warnings contains non-fatal validation issues
	Warnings []string
	// Errors contains validation failures that prevent the operation
	Errors []error
}

// AddError adds an error to the validation result.
func (r *Result) AddError(err error) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

// AddWarning adds a warning to the validation result.
func (r *Result) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// HasErrors returns true if there are any validation errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns the combined validation error message.
func (r *Result) Error() error {
	if !r.HasErrors() {
		return nil
	}
	if len(r.Errors) == 1 {
		return r.Errors[0]
	}
	return Errors(r.Errors)
}

// Summary returns a human-readable summary of the validation result.
func (r *Result) Summary() string {
	if r.Valid && len(r.Warnings) == 0 {
		return "All validations passed"
	}
	var msg string
	if r.Valid {
		msg = "Validation passed with warnings"
	} else {
		msg = "Validation failed"
	}
	if len(r.Warnings) > 0 {
		msg += fmt.Sprintf(" (%d warning(s))", len(r.Warnings))
	}
	return msg
}

// ValidateStores checks both store roots before a sync. A missing root is a
// warning (the editor may simply not be installed yet); a snippets path that
// is not a directory, or is not writable, is an error.
func ValidateStores(roots model.Roots, opts Options) *Result {
	result := &Result{Valid: true}

	if err := roots.Validate(); err != nil {
		result.AddError(&Error{Field: "roots", Message: "store roots are not configured", Err: err})
		return result
	}

	for _, store := range model.AllStores() {
		root := roots.Root(store)
		if err := ValidatePath(root); err != nil {
			var ve *Error
			if errors.As(err, &ve) && errors.Is(ve.Err, os.ErrNotExist) {
				result.AddWarning(fmt.Sprintf("%s root does not exist: %s", store.DisplayName(), root))
			} else {
				result.AddError(err)
				continue
			}
		}

		dir := roots.SnippetsDir(store)
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			result.AddError(&Error{
				Field:   store.String() + " snippets",
				Message: fmt.Sprintf("not a directory: %s", dir),
			})
			continue
		}

		if opts.RequireWritePermission {
			if err := validateWritePermission(store, dir); err != nil {
				result.AddError(err)
			}
		}
	}

	return result
}

// validateWritePermission creates and removes a probe file in dir, or in its
// nearest existing ancestor when dir does not exist yet.
func validateWritePermission(store model.Store, dir string) error {
	path := dir
	for {
		if _, err := os.Stat(path); err == nil {
			break
		}
		parent := filepath.Dir(path)
		if parent == path {
			break
		}
		path = parent
	}

	testFile := filepath.Join(path, ".snippetsync-write-test")
	// #nosec G304 - testFile is constructed from a configured store path
	f, err := os.Create(testFile)
	if err != nil {
		return &Error{
			Field:   store.String() + " snippets",
			Message: fmt.Sprintf("directory is not writable: %s", path),
			Err:     err,
		}
	}
	_ = f.Close()
	_ = os.Remove(testFile)

	return nil
}

// ValidatePath checks that path is an existing directory.
func ValidatePath(path string) error {
	if path == "" {
		return &Error{
			Field:   "path",
			Message: "path cannot be empty",
		}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return &Error{
			Field:   "path",
			Message: "cannot convert to absolute path",
			Err:     err,
		}
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Error{
				Field:   "path",
				Message: fmt.Sprintf("path does not exist: %s", absPath),
				Err:     err,
			}
		}
		return &Error{
			Field:   "path",
			Message: fmt.Sprintf("cannot access path: %s", absPath),
			Err:     err,
		}
	}

	if !info.IsDir() {
		return &Error{
			Field:   "path",
			Message: fmt.Sprintf("path is not a directory: %s", absPath),
		}
	}

	return nil
}
