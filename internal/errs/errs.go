// Package errs defines the error taxonomy shared by the orchestration core.
//
// Every failure surfaced to the CLI carries exactly one kind sentinel. Callers
// classify with the standard library:
//
//	if errors.Is(err, errs.NotFound) { ... }
//
// The wrapped cause stays reachable through errors.Is and errors.As as well.
package errs

import (
	"errors"
	"fmt"
)

// Kind sentinels.
var (
	// NotFound means an input, dark or flat directory is missing or unreadable.
	NotFound = errors.New("not found")
	// InvalidArgument means the request was rejected before any graph was built.
	InvalidArgument = errors.New("invalid argument")
	// UnknownKind means the registry has no plugin for a task kind.
	UnknownKind = errors.New("unknown task kind")
	// EngineFailure means a scheduler run failed.
	EngineFailure = errors.New("engine failure")
	// EmptyResult means an estimation run produced no values.
	EmptyResult = errors.New("empty result")
)

// Error attaches a kind and the failing operation to an underlying cause.
type Error struct {
	Kind error
	Op   string
	Err  error
}

// E builds an *Error. err may be nil when the kind alone describes the failure.
func E(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds an *Error whose cause is a formatted message.
func Errorf(kind error, op string, format string, args ...any) *Error {
	return E(kind, op, fmt.Errorf(format, args...))
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	case e.Op == "":
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the first kind sentinel found in err's chain, or nil.
func KindOf(err error) error {
	for _, k := range []error{NotFound, InvalidArgument, UnknownKind, EngineFailure, EmptyResult} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// ExitCode maps an error to the process exit status used by the CLI.
func ExitCode(err error) int {
	switch KindOf(err) {
	case nil:
		if err == nil {
			return 0
		}
		return 1
	case InvalidArgument, UnknownKind:
		return 2
	case NotFound:
		return 3
	case EngineFailure:
		return 4
	case EmptyResult:
		return 5
	}
	return 1
}
