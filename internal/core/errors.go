package core

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrKind classifies service failures so the HTTP boundary can map them to
// status codes without matching on message strings.
type ErrKind string

const (
	KindNotFound        ErrKind = "not_found"
	KindUnauthorized    ErrKind = "unauthorized"
	KindForbidden       ErrKind = "forbidden"
	KindPaymentRequired ErrKind = "payment_required"
	KindConflict        ErrKind = "conflict"
	KindLimitExceeded   ErrKind = "limit_exceeded"
	KindInternal        ErrKind = "internal"
)

// Error is a typed service error. Message is safe to show to API clients.
type Error struct {
	Kind    ErrKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(msg string) *Error        { return &Error{Kind: KindNotFound, Message: msg} }
func Unauthorized(msg string) *Error    { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) *Error       { return &Error{Kind: KindForbidden, Message: msg} }
func PaymentRequired(msg string) *Error { return &Error{Kind: KindPaymentRequired, Message: msg} }
func Conflict(msg string) *Error        { return &Error{Kind: KindConflict, Message: msg} }
func LimitExceeded(msg string) *Error   { return &Error{Kind: KindLimitExceeded, Message: msg} }

// Internal wraps an unexpected failure. The message is shown to clients; the
// wrapped error stays in logs.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf extracts the error kind, defaulting to KindInternal for untyped
// errors.
func KindOf(err error) ErrKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation, optionally on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
