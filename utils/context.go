package utils

import (
	"context"

	"github.com/google/uuid"
)

type cycleIDKey struct{}

func GetCycleIDFromCtx(ctx context.Context) string {
	cycleID, ok := ctx.Value(cycleIDKey{}).(string)
	if !ok {
		return ""
	}
	return cycleID
}

// CreateCtxWithCycleID tags every log line of one refresh cycle with the same id.
func CreateCtxWithCycleID(ctx context.Context) context.Context {
	if cycleID := GetCycleIDFromCtx(ctx); cycleID != "" {
		return ctx
	}
	return context.WithValue(ctx, cycleIDKey{}, uuid.NewString())
}
