// Package apperr classifies application and datastore failures into the
// small taxonomy the API exposes: validation, not-found, conflict,
// unavailable, internal.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type Kind int

const (
	Validation Kind = iota + 1 // malformed or out-of-range input
	NotFound                   // referenced entity absent
	Conflict                   // duplicate-entry business rule
	Unavailable                // datastore connection/timeout
	Internal                   // everything else
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Classify turns an arbitrary error into an *Error. Already-classified
// errors pass through; gorm errors are mapped by constraint kind
// (unique -> conflict, foreign-key/not-null -> validation,
// connection/timeout -> unavailable); anything else is internal.
func Classify(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Wrap(NotFound, "record not found", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Wrap(Conflict, "duplicate record", err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return Wrap(Validation, "referenced record does not exist", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return Wrap(Unavailable, "datastore unavailable", err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"):
		return Wrap(Unavailable, "datastore unavailable", err)
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return Wrap(Validation, "missing required field", err)
	}

	return Wrap(Internal, "internal error", err)
}

// IsKind reports whether err classifies to kind.
func IsKind(err error, kind Kind) bool {
	return Classify(err).Kind == kind
}
