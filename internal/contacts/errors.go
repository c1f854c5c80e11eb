package contacts

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies an error for the caller.
type Kind int

const (
	KindStorage Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindFormat
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindFormat:
		return "format"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "storage"
	}
}

// Error is the error type returned by the service and the stores.
type Error struct {
	Kind    Kind
	Op      string // operation, e.g. "create contact"
	Field   string // offending field or column, if any
	Message string
	Err     error // underlying cause, if any
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err. Errors that are not an *Error, including
// context cancellation, are reported as KindStorage.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Validationf returns a KindValidation error for field.
func Validationf(op, field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf returns a KindNotFound error.
func NotFoundf(op, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Conflictf returns a KindConflict error.
func Conflictf(op, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Formatf returns a KindFormat error.
func Formatf(op, format string, args ...any) *Error {
	return &Error{Kind: KindFormat, Op: op, Message: fmt.Sprintf(format, args...)}
}

// StorageError wraps a persistence failure. A nil err yields nil; an err
// that already is an *Error, or a context error, is returned unchanged.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &Error{Kind: KindStorage, Op: op, Err: err}
}
