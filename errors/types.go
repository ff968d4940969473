package errors

import (
	"fmt"
)

// ErrorCode represents different categories of errors
type ErrorCode string

const (
	// ErrCodeValidation indicates input validation errors
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeConfig indicates configuration errors
	ErrCodeConfig ErrorCode = "CONFIG"

	// ErrCodeProviderMissing indicates no wallet provider is available
	ErrCodeProviderMissing ErrorCode = "PROVIDER_MISSING"

	// ErrCodeUserRejected indicates the user declined a connect or sign prompt
	ErrCodeUserRejected ErrorCode = "USER_REJECTED"

	// ErrCodeRead indicates a remote account read failed
	ErrCodeRead ErrorCode = "READ"

	// ErrCodeInvoke indicates a submitted transaction was rejected or lost
	ErrCodeInvoke ErrorCode = "INVOKE"

	// ErrCodeRPC indicates RPC transport errors
	ErrCodeRPC ErrorCode = "RPC"

	// ErrCodeTimeout indicates timeout errors
	ErrCodeTimeout ErrorCode = "TIMEOUT"

	// ErrCodeBusy indicates another mutation is already in flight
	ErrCodeBusy ErrorCode = "BUSY"

	// ErrCodeInternal indicates internal errors
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Severity represents the severity level of an error
type Severity string

const (
	// SeverityCritical indicates errors that require immediate attention
	SeverityCritical Severity = "CRITICAL"

	// SeverityHigh indicates high priority errors
	SeverityHigh Severity = "HIGH"

	// SeverityMedium indicates medium priority errors
	SeverityMedium Severity = "MEDIUM"

	// SeverityLow indicates low priority errors
	SeverityLow Severity = "LOW"

	// SeverityInfo indicates informational errors
	SeverityInfo Severity = "INFO"
)

// ClientError is the error type carried across every operation boundary
// of the board client. The Message holds the remote diagnostic text
// when one is available, suitable for user-facing display.
type ClientError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Severity Severity               `json:"severity"`
	Cause    error                  `json:"-"`
	Context  map[string]interface{} `json:"context,omitempty"`
}

// New creates a new ClientError
func New(code ErrorCode, message string, cause error) *ClientError {
	return &ClientError{
		Code:     code,
		Message:  message,
		Severity: determineSeverity(code),
		Cause:    cause,
		Context:  make(map[string]interface{}),
	}
}

// Error implements the error interface
func (e *ClientError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message)
}

// Unwrap returns the underlying cause
func (e *ClientError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *ClientError) WithContext(key string, value interface{}) *ClientError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity overrides the default severity
func (e *ClientError) WithSeverity(severity Severity) *ClientError {
	e.Severity = severity
	return e
}

// IsRetryable returns true if the error is retryable. Only transport
// level failures qualify; rejected transactions and user decisions are
// final until the user acts again.
func (e *ClientError) IsRetryable() bool {
	switch e.Code {
	case ErrCodeRPC, ErrCodeTimeout, ErrCodeRead:
		return true
	default:
		return false
	}
}

func determineSeverity(code ErrorCode) Severity {
	switch code {
	case ErrCodeInternal:
		return SeverityCritical
	case ErrCodeInvoke:
		return SeverityHigh
	case ErrCodeRead, ErrCodeRPC, ErrCodeTimeout:
		return SeverityMedium
	case ErrCodeValidation, ErrCodeConfig, ErrCodeBusy:
		return SeverityLow
	case ErrCodeProviderMissing, ErrCodeUserRejected:
		return SeverityInfo
	default:
		return SeverityInfo
	}
}

// Common error constructors

// NewValidationError creates a validation error
func NewValidationError(message string) *ClientError {
	return New(ErrCodeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string) *ClientError {
	return New(ErrCodeConfig, message, nil)
}

// NewProviderMissingError creates a provider-missing error
func NewProviderMissingError(message string) *ClientError {
	return New(ErrCodeProviderMissing, message, nil)
}

// NewUserRejectedError creates a user-rejected error
func NewUserRejectedError(message string) *ClientError {
	return New(ErrCodeUserRejected, message, nil)
}

// NewReadError creates a remote read error
func NewReadError(message string, cause error) *ClientError {
	return New(ErrCodeRead, message, cause)
}

// NewInvokeError creates a remote invoke error
func NewInvokeError(message string, cause error) *ClientError {
	return New(ErrCodeInvoke, message, cause)
}

// NewRPCError creates an RPC transport error
func NewRPCError(message string, cause error) *ClientError {
	return New(ErrCodeRPC, message, cause)
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(message string) *ClientError {
	return New(ErrCodeTimeout, message, nil)
}

// NewBusyError creates an operation-in-flight error
func NewBusyError(message string) *ClientError {
	return New(ErrCodeBusy, message, nil)
}

// NewInternalError creates an internal error
func NewInternalError(message string, cause error) *ClientError {
	return New(ErrCodeInternal, message, cause)
}
