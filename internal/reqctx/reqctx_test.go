// internal/reqctx/reqctx_test.go
package reqctx

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestWithRunRoundTrip(t *testing.T) {
	ctx := WithRun(context.Background())

	rc := FromContext(ctx)
	if rc.RunID == "" || rc.RunID == "unknown" {
		t.Fatalf("expected a generated run ID, got %q", rc.RunID)
	}
	if len(rc.RunID) != 16 {
		t.Errorf("expected a 16 char hex ID, got %q", rc.RunID)
	}

	other := FromContext(WithRun(context.Background()))
	if other.RunID == rc.RunID {
		t.Error("two runs should not share an ID")
	}
}

func TestFromContextWithoutRun(t *testing.T) {
	rc := FromContext(context.Background())
	if rc.RunID != "unknown" {
		t.Errorf("expected the placeholder ID, got %q", rc.RunID)
	}
}

func TestNewRunErrorTagsAndUnwraps(t *testing.T) {
	ctx := WithRun(context.Background())
	base := errors.New("browser exited")

	err := NewRunError(ctx, base)
	if err == nil {
		t.Fatal("expected a wrapped error")
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error should unwrap to the original")
	}
	if !strings.Contains(err.Error(), FromContext(ctx).RunID) {
		t.Errorf("error %q should carry the run ID", err)
	}
}

func TestNewRunErrorNil(t *testing.T) {
	if err := NewRunError(WithRun(context.Background()), nil); err != nil {
		t.Errorf("nil error should stay nil, got %v", err)
	}
}
