// Package errors provides structured error types for versionit.
// Every failure surfaced by the core carries a Kind so that callers can tell
// an unreadable file from a dirty working tree without string matching.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Kind represents the category of an error.
type Kind uint8

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown Kind = iota
	// KindIO indicates a directory or file read/write failure.
	KindIO
	// KindParse indicates a malformed data file or a script with invalid syntax.
	KindParse
	// KindDirtyWorkingTree indicates the source-control precheck failed.
	KindDirtyWorkingTree
	// KindTag indicates the source-control tag (or commit) step failed.
	KindTag
	// KindValidation indicates an invalid command or option.
	KindValidation
	// KindConfig indicates a configuration error.
	KindConfig
	// KindCanceled indicates the operation was canceled.
	KindCanceled
	// KindInternal indicates an internal error.
	KindInternal
)

// String returns a human-readable string for the error kind.
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	case KindDirtyWorkingTree:
		return "dirty_working_tree"
	case KindTag:
		return "tag"
	case KindValidation:
		return "validation"
	case KindConfig:
		return "configuration"
	case KindCanceled:
		return "canceled"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the standard error type for versionit.
type Error struct {
	// Kind is the category of the error.
	Kind Kind
	// Op is the operation being performed when the error occurred.
	Op string
	// Path is the file or directory the error refers to, if any.
	Path string
	// Message is a human-readable error message.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		if msg == "" {
			msg = e.Path
		} else {
			msg = fmt.Sprintf("%s %s", msg, e.Path)
		}
	}
	if e.Op != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches this error.
// A target without Op matches by Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op == "" {
		return e.Kind == t.Kind
	}
	return e.Kind == t.Kind && e.Op == t.Op
}

// WithPath records the file the error refers to and returns the modified error.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// New creates a new Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// Newf creates a new Error with the given kind and formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, kind Kind, op string, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, kind Kind, op string, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// GetKind returns the Kind of an error.
// If the error is not an *Error, it returns KindUnknown.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind checks if an error is of a specific kind.
func IsKind(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// FromContext marks a bare context cancellation or deadline error as
// KindCanceled. Errors that already carry a Kind are returned unchanged.
func FromContext(err error, op string) error {
	if err == nil || GetKind(err) != KindUnknown {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, KindCanceled, op, "canceled")
	}
	return err
}

// IO creates an I/O error.
func IO(op, message string) *Error {
	return &Error{Kind: KindIO, Op: op, Message: message}
}

// IOWrap wraps an error as an I/O error.
func IOWrap(err error, op, message string) *Error {
	return Wrap(err, KindIO, op, message)
}

// Parse creates a parse error.
func Parse(op, message string) *Error {
	return &Error{Kind: KindParse, Op: op, Message: message}
}

// ParseWrap wraps an error as a parse error.
func ParseWrap(err error, op, message string) *Error {
	return Wrap(err, KindParse, op, message)
}

// DirtyWorkingTree creates a precheck failure error.
func DirtyWorkingTree(op, message string) *Error {
	return &Error{Kind: KindDirtyWorkingTree, Op: op, Message: message}
}

// DirtyWorkingTreeWrap wraps an error as a precheck failure.
func DirtyWorkingTreeWrap(err error, op, message string) *Error {
	return Wrap(err, KindDirtyWorkingTree, op, message)
}

// Tag creates a tagging error.
func Tag(op, message string) *Error {
	return &Error{Kind: KindTag, Op: op, Message: message}
}

// TagWrap wraps an error as a tagging error.
func TagWrap(err error, op, message string) *Error {
	return Wrap(err, KindTag, op, message)
}

// Validation creates a validation error.
func Validation(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

// ValidationWrap wraps an error as a validation error.
func ValidationWrap(err error, op, message string) *Error {
	return Wrap(err, KindValidation, op, message)
}

// Config creates a configuration error.
func Config(op, message string) *Error {
	return &Error{Kind: KindConfig, Op: op, Message: message}
}

// ConfigWrap wraps an error as a configuration error.
func ConfigWrap(err error, op, message string) *Error {
	return Wrap(err, KindConfig, op, message)
}

// Internal creates an internal error.
func Internal(op, message string) *Error {
	return &Error{Kind: KindInternal, Op: op, Message: message}
}

// InternalWrap wraps an error as an internal error.
func InternalWrap(err error, op, message string) *Error {
	return Wrap(err, KindInternal, op, message)
}
