package config

import "fmt"

// ConfigurationError reports store roots that cannot be resolved. It is
// returned before any snippet file is touched.
type ConfigurationError struct {
	// Field names the setting that could not be resolved
	Field string
	// Message describes the problem
	Message string
	// Err is the underlying error (if any)
	Err error
}

// Error returns a formatted configuration error message.
func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error for %q: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("configuration error for %q: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
