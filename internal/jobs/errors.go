// internal/jobs/errors.go
package jobs

import (
	"errors"
	"fmt"
)

// Common job errors
var (
	ErrNoMatchingTable = errors.New("no matching table found")
	ErrNoRows          = errors.New("no rows extracted")
)

// FailureCode classifies why a job failed
type FailureCode string

const (
	CodeNoMatch    FailureCode = "NO_MATCH"
	CodeNoRows     FailureCode = "NO_ROWS"
	CodeRender     FailureCode = "RENDER"
	CodeCheckpoint FailureCode = "CHECKPOINT"
	CodeUnexpected FailureCode = "UNEXPECTED"
)

// JobError is the terminal failure of one extraction job. Per-page problems
// never surface as JobError; they are logged and skipped. A JobError means
// the job as a whole produced nothing usable. The process itself keeps
// running: panics inside a job are converted into a CodeUnexpected JobError
// at the Run boundary.
type JobError struct {
	Code       FailureCode
	Message    string
	Underlying error
}

// Error implements the error interface
func (e *JobError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *JobError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *JobError) Is(target error) bool {
	if t, ok := target.(*JobError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// NewJobError creates a new JobError
func NewJobError(code FailureCode, message string, err error) *JobError {
	return &JobError{
		Code:       code,
		Message:    message,
		Underlying: err,
	}
}

// recoverJobError converts a panic into a CodeUnexpected JobError. Used with
// defer at every job Run boundary so a parsing or renderer fault can never
// take the process down.
func recoverJobError(err *error) {
	if r := recover(); r != nil {
		*err = NewJobError(CodeUnexpected, fmt.Sprintf("job panicked: %v", r), nil)
	}
}
