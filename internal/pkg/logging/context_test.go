package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestFromContext_ReturnsStoredLogger(t *testing.T) {
	logger := zap.NewNop()
	ctx := ContextWithLogger(context.Background(), logger)

	if got := FromContext(ctx); got != logger {
		t.Error("expected the stored logger back")
	}
}

func TestFromContext_FallsBack(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Error("expected the global fallback, got nil")
	}
	var unset context.Context
	if FromContext(unset) == nil {
		t.Error("expected the global fallback for nil context, got nil")
	}
}

func TestWith_DerivesChildLogger(t *testing.T) {
	parent := zap.NewNop()
	ctx := ContextWithLogger(context.Background(), parent)

	child := With(ctx, zap.String("request_id", "r1"))
	if FromContext(child) == parent {
		t.Error("expected a derived logger, got the parent")
	}
	// The parent context keeps its own logger.
	if FromContext(ctx) != parent {
		t.Error("parent context logger must be untouched")
	}
}

func TestWith_NoFieldsIsNoop(t *testing.T) {
	ctx := ContextWithLogger(context.Background(), zap.NewNop())
	if With(ctx) != ctx {
		t.Error("expected the same context when no fields are given")
	}
}
