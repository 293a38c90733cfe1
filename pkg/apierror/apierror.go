package apierror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnreachableSchema  Kind = "unreachable-schema"
	KindUnsupportedFormat  Kind = "unsupported-schema-format"
	KindEmptyCatalog       Kind = "empty-catalog"
	KindUnknownOperation   Kind = "unknown-operation"
	KindUnresolvedKeywords Kind = "unresolved-keywords"
	KindMissingPathParam   Kind = "missing-path-parameter"
	KindHTTP               Kind = "http-error"
	KindRetriesExhausted   Kind = "retries-exhausted"
)

// Error is the single error type surfaced by the client. Kind carries the
// sub-classification, Status and Payload are set for HTTP-level failures.
type Error struct {
	Kind Kind

	Status  int
	Payload any

	Message string

	Err error
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind: kind,

		Message: fmt.Sprintf(format, args...),
	}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	e := New(kind, format, args...)
	e.Err = err

	if inner := AsError(err); inner != nil {
		e.Status = inner.Status
		e.Payload = inner.Payload
	}

	return e
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match against a bare &Error{Kind: ...} sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	if !ok {
		return false
	}

	return t.Kind == e.Kind
}

func AsError(err error) *Error {
	var e *Error

	if errors.As(err, &e) {
		return e
	}

	return nil
}

func IsKind(err error, kind Kind) bool {
	if e := AsError(err); e != nil {
		return e.Kind == kind
	}

	return false
}
