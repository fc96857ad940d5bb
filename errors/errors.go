// api/errors/errors.go
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a request failure. Every failure the lifecycle engine
// produces carries exactly one kind plus a human-readable detail string.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindForbidden
	KindBadRequest
	KindConflict
	KindNotImplemented
	KindMethodNotAllowed
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindForbidden:
		return "FORBIDDEN"
	case KindBadRequest:
		return "BAD_REQUEST"
	case KindConflict:
		return "CONFLICT"
	case KindNotImplemented:
		return "NOT_IMPLEMENTED"
	case KindMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case KindInternal:
		return "INTERNAL"
	}
	return "UNKNOWN"
}

// HTTPStatus maps a failure kind to its transport status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotImplemented:
		return http.StatusNotImplemented
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	}
	return http.StatusInternalServerError
}

// Error is a terminal request failure: a machine-readable kind and a detail
// string intended for the response body.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Is lets callers match on kind sentinels with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind && (t.Detail == "" || t.Detail == e.Detail)
	}
	return false
}

// Kind sentinels for errors.Is matching.
var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrForbidden        = &Error{Kind: KindForbidden}
	ErrBadRequest       = &Error{Kind: KindBadRequest}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrNotImplemented   = &Error{Kind: KindNotImplemented}
	ErrMethodNotAllowed = &Error{Kind: KindMethodNotAllowed}
	ErrInternal         = &Error{Kind: KindInternal}
)

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Detail: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Detail: fmt.Sprintf(format, args...)}
}

func BadRequestf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindBadRequest, Detail: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Detail: fmt.Sprintf(format, args...)}
}

func NotImplementedf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotImplemented, Detail: fmt.Sprintf(format, args...)}
}

func MethodNotAllowedf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindMethodNotAllowed, Detail: fmt.Sprintf(format, args...)}
}

func Internalf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Detail: fmt.Sprintf(format, args...)}
}

// KindOf extracts the failure kind from an error chain, defaulting to
// KindInternal for unclassified persistence or runtime failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
