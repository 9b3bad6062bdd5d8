package contexthelpers

import (
	"context"
)

// IsAuthorized reports whether the request presented a valid API token.
func IsAuthorized(ctx context.Context) bool {
	isAuthorized, ok := ctx.Value(IsAuthorizedContextKey).(bool)
	if !ok {
		return false
	}

	return isAuthorized
}

// TraceID returns the request trace identifier or an empty string.
func TraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDContextKey).(string)
	if !ok {
		return ""
	}

	return traceID
}
