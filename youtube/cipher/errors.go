package cipher

import (
	"fmt"
)

// Error codes
const (
	ErrCodeJSParsingFailed   = "JS_PARSING_FAILED"
	ErrCodeJSExecutionFailed = "JS_EXECUTION_FAILED"
	ErrCodeFunctionNotFound  = "FUNCTION_NOT_FOUND"
	ErrCodeExecTimeout       = "EXEC_TIMEOUT"
)

// Error represents a structured error with code and details
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a new Error with the given code and message
func NewError(code string, message string, details ...any) *Error {
	e := &Error{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

// IsTimeout returns true if the error is an execution timeout
func IsTimeout(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == ErrCodeExecTimeout
	}
	return false
}

// IsJSError returns true if the error came from parsing or running script
func IsJSError(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == ErrCodeJSExecutionFailed || e.Code == ErrCodeJSParsingFailed
	}
	return false
}

// IsNotFound returns true if the extracted function was missing at call time
func IsNotFound(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == ErrCodeFunctionNotFound
	}
	return false
}
