package contexthelpers

import (
	"context"
	"net/http"
)

// Authorize marks the request as carrying a valid API token.
func Authorize(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), IsAuthorizedContextKey, true)
	return r.WithContext(ctx)
}

// SetTraceID attaches the request trace identifier.
func SetTraceID(r *http.Request, traceID string) *http.Request {
	ctx := context.WithValue(r.Context(), TraceIDContextKey, traceID)
	return r.WithContext(ctx)
}
