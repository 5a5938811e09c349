// Package reqctx tags every job run with a short random ID so log lines and
// errors from concurrent pulls can be told apart.
package reqctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

type key int

const runKey key = 0

// RunContext carries the identity of one job run.
type RunContext struct {
	RunID     string
	StartedAt time.Time
}

// WithRun attaches a fresh run identity to the context.
func WithRun(ctx context.Context) context.Context {
	return context.WithValue(ctx, runKey, &RunContext{
		RunID:     newRunID(),
		StartedAt: time.Now(),
	})
}

// FromContext returns the run identity, or a placeholder when the context
// never passed through WithRun.
func FromContext(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runKey).(*RunContext); ok {
		return rc
	}
	return &RunContext{RunID: "unknown", StartedAt: time.Now()}
}

// Elapsed returns how long the run has been going.
func (rc *RunContext) Elapsed() time.Duration {
	return time.Since(rc.StartedAt)
}

func newRunID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// RunError wraps an error with the run it came from.
type RunError struct {
	RunID string
	Err   error
}

// Error implements the error interface
func (e *RunError) Error() string {
	return fmt.Sprintf("[%s] %v", e.RunID, e.Err)
}

// Unwrap returns the underlying error
func (e *RunError) Unwrap() error {
	return e.Err
}

// NewRunError tags an error with the context's run ID.
func NewRunError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return &RunError{
		RunID: FromContext(ctx).RunID,
		Err:   err,
	}
}
