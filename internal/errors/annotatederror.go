// Package errors carries error values annotated with slog attributes and the
// location they were created at, so that failures log with full context
// without hand-threading fields through every call site. It re-exports the
// stdlib helpers so callers only need this one import.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

const maxStackDepth = 32

// annotatedError wraps an error with a message, slog attributes, and the call
// stack captured at creation time.
type annotatedError struct {
	msg   string
	err   error
	attrs []slog.Attr
	stack []uintptr
}

func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// New returns a plain stdlib error. Prefer NewSentinel for package-level
// sentinel values and Wrap for adding context to an underlying error.
func New(text string) error {
	return errors.New(text)
}

// NewSentinel creates an error intended to be declared once and matched with
// Is. The creation site is captured so SlogError can point at it.
func NewSentinel(msg string) error {
	return &annotatedError{
		msg:   msg,
		err:   nil,
		attrs: nil,
		stack: callers(),
	}
}

// Wrap annotates err with a message and optional slog attributes. The
// resulting Error() reads outermost first, e.g. "outer: inner: root cause".
// A nil err yields an error with just the message.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &annotatedError{
		msg:   msg,
		err:   err,
		attrs: attrs,
		stack: callers(),
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join wraps the non-nil given errors into a single error.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Unwrap returns the result of calling the Unwrap method on err, if any.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// DecoratePanic converts a recovered panic value into an error whose
// SlogError source points at the line that panicked.
func DecoratePanic(recovered any) error {
	if recovered == nil {
		return nil
	}
	return &annotatedError{
		msg:   fmt.Sprintf("panic: %v", recovered),
		err:   nil,
		attrs: nil,
		stack: callers(),
	}
}

// SlogError renders err as a single slog group attribute:
//
//	error.message, error.annotations.*, error.source
//
// Annotations are collected from every annotated error in the chain. The
// source is the file:line where the outermost annotated error was created,
// skipping frames from this file; for panics it is the panicking line.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}

	args := []any{slog.String("message", err.Error())}

	if attrs := collectAttrs(err); len(attrs) > 0 {
		annotationArgs := make([]any, 0, len(attrs))
		for _, attr := range attrs {
			annotationArgs = append(annotationArgs, attr)
		}
		args = append(args, slog.Group("annotations", annotationArgs...))
	}

	if source := sourceLocation(firstStack(err)); source != "" {
		args = append(args, slog.String("source", source))
	}

	return slog.Group("error", args...)
}

// collectAttrs walks the error chain and gathers annotation attributes,
// outermost first. Joined errors contribute from every branch.
func collectAttrs(err error) []slog.Attr {
	var attrs []slog.Attr
	for err != nil {
		var annotated *annotatedError
		if errors.As(err, &annotated) {
			attrs = append(attrs, annotated.attrs...)
			err = annotated.err
			continue
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, branch := range joined.Unwrap() {
				attrs = append(attrs, collectAttrs(branch)...)
			}
			return attrs
		}
		err = errors.Unwrap(err)
	}
	return attrs
}

// firstStack returns the call stack of the outermost annotated error in the
// chain, or nil if the chain has none.
func firstStack(err error) []uintptr {
	for err != nil {
		var annotated *annotatedError
		if errors.As(err, &annotated) {
			return annotated.stack
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, branch := range joined.Unwrap() {
				if stack := firstStack(branch); stack != nil {
					return stack
				}
			}
			return nil
		}
		err = errors.Unwrap(err)
	}
	return nil
}

func callers() []uintptr {
	var pcs [maxStackDepth]uintptr
	// Skip runtime.Callers and this function; our own frames are filtered
	// again when rendering.
	n := runtime.Callers(2, pcs[:])
	return pcs[:n]
}

// sourceLocation picks the most useful file:line out of a captured stack. It
// skips frames from this file and the runtime. When the stack crosses
// runtime.gopanic, the frame after it is the line that panicked, which beats
// the recover site.
func sourceLocation(stack []uintptr) string {
	if len(stack) == 0 {
		return ""
	}

	var first string
	afterPanic := false
	frames := runtime.CallersFrames(stack)
	for {
		frame, more := frames.Next()
		switch {
		case frame.File == "" || strings.HasSuffix(frame.File, "annotatederror.go"):
		case strings.HasPrefix(frame.Function, "runtime."):
			if frame.Function == "runtime.gopanic" {
				afterPanic = true
			}
		default:
			location := fmt.Sprintf("%s:%d", frame.File, frame.Line)
			if afterPanic {
				return location
			}
			if first == "" {
				first = location
			}
		}
		if !more {
			break
		}
	}
	return first
}
