package core

import (
	"fmt"
	"strings"
)

// ConfigurationError is returned when required configuration is missing or invalid
type ConfigurationError struct {
	Missing []string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

// InputFormatError is returned when the work breakdown file cannot be used
type InputFormatError struct {
	Path   string
	Reason string
	Err    error
}

func (e *InputFormatError) Error() string {
	msg := "invalid work breakdown structure"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InputFormatError) Unwrap() error {
	return e.Err
}

// ApiError is returned by tracker clients for non-2xx responses and transport failures.
// StatusCode is 0 when no response was received.
type ApiError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *ApiError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s failed: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *ApiError) Unwrap() error {
	return e.Err
}
