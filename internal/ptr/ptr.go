package ptr

// Ref returns a pointer to the value passed as argument. Handy for filling
// optional telemetry fields in tests and fixtures.
func Ref[T any](v T) *T {
	return &v
}
