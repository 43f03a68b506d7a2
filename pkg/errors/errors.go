// Package errors provides structured error handling for scrollwatch.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrInvalidTarget is returned when a target resolves to nothing.
var ErrInvalidTarget = stderrors.New("invalid target")

// ErrDestroyed is returned when a destroyed container is asked to watch
// something new.
var ErrDestroyed = stderrors.New("container destroyed")

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindInvalidTarget indicates a selector or target that resolved to no element.
	KindInvalidTarget
	// KindPlatform indicates a failure reported by the host platform.
	KindPlatform
	// KindConfig indicates an invalid configuration or scene file.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindDestroyed indicates use of a destroyed container.
	KindDestroyed
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidTarget:
		return "invalid-target"
	case KindPlatform:
		return "platform"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	case KindDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// ScrollError represents a structured error in scrollwatch.
type ScrollError struct {
	// Op is the operation that failed (e.g., "scroll.Container.Create").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Target describes the target involved, if any.
	Target string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *ScrollError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s [%s] target=%s: %v", e.Op, e.Kind, e.Target, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *ScrollError) Unwrap() error {
	return e.Err
}

// InvalidTarget builds the error returned when op could not resolve target.
func InvalidTarget(op, target string) *ScrollError {
	return &ScrollError{
		Op:        op,
		Kind:      KindInvalidTarget,
		Target:    target,
		Err:       ErrInvalidTarget,
		Timestamp: time.Now(),
	}
}

// Destroyed builds the error returned when op is called on a destroyed
// container.
func Destroyed(op, target string) *ScrollError {
	return &ScrollError{
		Op:        op,
		Kind:      KindDestroyed,
		Target:    target,
		Err:       ErrDestroyed,
		Timestamp: time.Now(),
	}
}

// IsKind reports whether err is a ScrollError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *ScrollError
	if stderrors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "diagnostics.broadcast").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by scrollwatch.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *ScrollError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
