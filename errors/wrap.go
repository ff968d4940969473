package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// WrapClientError wraps an error as a ClientError if it isn't already one
func WrapClientError(err error, code ErrorCode, message string) *ClientError {
	if err == nil {
		return nil
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		clientErr.Context["wrapped_message"] = message
		return clientErr
	}

	return New(code, message, err)
}

// Is reports whether any error in err's chain matches target
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsCode checks if an error is a ClientError with the given code
func IsCode(err error, code ErrorCode) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Code == code
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.IsRetryable()
	}

	// Fall back to transport error patterns for errors raised below the
	// taxonomy, e.g. straight out of the RPC library.
	msg := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"too many requests",
		"rate limit",
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// GetSeverity returns the severity of an error
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityInfo
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Severity
	}
	return SeverityMedium
}
