package contexthelpers

type contextKey string

const IsAuthorizedContextKey = contextKey("isAuthorized")
const TraceIDContextKey = contextKey("traceID")
