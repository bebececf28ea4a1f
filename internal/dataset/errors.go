package dataset

import (
	"errors"
	"fmt"
)

// ConfigurationError reports an invalid combination of dataset options,
// such as a missing output root in Fixed mode. It is never retried.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

// IOError reports a filesystem failure during indexing or mirroring.
// A directory that already exists is never an IOError.
type IOError struct {
	Op   string // "walk", "stat", "mkdir"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsConfigurationError returns true if err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsIOError returns true if err is or wraps an IOError.
func IsIOError(err error) bool {
	var ie *IOError
	return errors.As(err, &ie)
}
