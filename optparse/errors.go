package optparse

import (
	"errors"
	"fmt"
)

// StatusUnknownError is the exit status for configuration and usage failures.
// Callers can only tell the two apart by the message.
const StatusUnknownError = 2

var (
	// ErrConfigLoad matches every *ConfigLoadError.
	ErrConfigLoad = errors.New("optparse: configuration load failed")
	// ErrCoercion matches every *CoercionError.
	ErrCoercion = errors.New("optparse: invalid option value")
	// ErrUsage matches every *UsageError.
	ErrUsage = errors.New("optparse: usage error")
	// ErrHelp is returned by Parse when -h/--help was requested and the
	// registry does not define its own help option.
	ErrHelp = errors.New("optparse: help requested")
)

// ConfigLoadError reports a store that could not be read or parsed.
type ConfigLoadError struct {
	Err error
}

func (e *ConfigLoadError) Error() string {
	if e == nil || e.Err == nil {
		return "configuration error"
	}
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigLoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *ConfigLoadError) Is(target error) bool {
	return target == ErrConfigLoad
}

// CoercionError reports a raw value that cannot be converted to the type its
// option requires.
type CoercionError struct {
	Option string
	Value  string
	Reason string
	Err    error
}

func (e *CoercionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("%s is not a valid value for %s option", e.Value, e.Option)
}

func (e *CoercionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *CoercionError) Is(target error) bool {
	return target == ErrCoercion
}

// UsageError reports invalid command line input.
type UsageError struct {
	Message string
	Err     error
}

func (e *UsageError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *UsageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *UsageError) Is(target error) bool {
	return target == ErrUsage
}
