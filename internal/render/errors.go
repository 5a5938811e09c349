// internal/render/errors.go
package render

import (
	"errors"
	"fmt"
)

// Common render errors
var (
	ErrBrowserNotFound = errors.New("chrome browser not found")
	ErrPoolClosed      = errors.New("browser pool is closed")
)

// ErrorCode represents a specific render failure condition
type ErrorCode string

const (
	CodeBrowser ErrorCode = "BROWSER"
	CodeTimeout ErrorCode = "TIMEOUT"
	CodeNetwork ErrorCode = "NETWORK"
	CodeParse   ErrorCode = "PARSE"
)

// RenderError wraps renderer failures with a classification code. An HTTP
// error status is not a RenderError; pages come back with their status code
// so callers can decide whether to skip or fail.
type RenderError struct {
	Code       ErrorCode
	Message    string
	Underlying error
}

// Error implements the error interface
func (e *RenderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *RenderError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *RenderError) Is(target error) bool {
	if t, ok := target.(*RenderError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// NewRenderError creates a new RenderError
func NewRenderError(code ErrorCode, message string, err error) *RenderError {
	return &RenderError{
		Code:       code,
		Message:    message,
		Underlying: err,
	}
}
