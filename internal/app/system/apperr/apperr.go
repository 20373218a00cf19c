// Package apperr defines the error kinds every service operation reports.
//
// Callers branch on Kind (or errors.Is against the Err* sentinels) rather
// than matching message text. Only KindStoreUnavailable is safe to retry
// automatically.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by who has to act on it.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindStoreUnavailable
	KindCorruptRecord
)

var kindNames = map[Kind]string{
	KindInternal:         "internal",
	KindValidation:       "validation",
	KindUnauthenticated:  "unauthenticated",
	KindForbidden:        "forbidden",
	KindNotFound:         "not_found",
	KindConflict:         "conflict",
	KindStoreUnavailable: "store_unavailable",
	KindCorruptRecord:    "corrupt_record",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "internal"
}

// Sentinels for errors.Is. An *Error matches the sentinel of its kind.
var (
	ErrValidation       = errors.New("validation")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrCorruptRecord    = errors.New("corrupt record")
)

var sentinels = map[Kind]error{
	KindValidation:       ErrValidation,
	KindUnauthenticated:  ErrUnauthenticated,
	KindForbidden:        ErrForbidden,
	KindNotFound:         ErrNotFound,
	KindConflict:         ErrConflict,
	KindStoreUnavailable: ErrStoreUnavailable,
	KindCorruptRecord:    ErrCorruptRecord,
}

// Error is the concrete error returned by services.
type Error struct {
	Kind   Kind
	Entity string // "group", "user", "message", "request"; may be empty
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, apperr.ErrConflict) match by kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the kind carried by err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Retryable reports whether the caller may retry err with backoff.
func Retryable(err error) bool {
	return KindOf(err) == KindStoreUnavailable
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

func Unauthenticated(msg string) error {
	return &Error{Kind: KindUnauthenticated, Msg: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

// NotFound reports that the named entity does not exist.
func NotFound(entity string) error {
	return &Error{Kind: KindNotFound, Entity: entity, Msg: entity + " not found"}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Msg: msg}
}

func Unavailable(err error) error {
	return &Error{Kind: KindStoreUnavailable, Msg: "store unavailable", Err: err}
}

func Corrupt(entity string, err error) error {
	return &Error{Kind: KindCorruptRecord, Entity: entity, Msg: "corrupt " + entity + " record", Err: err}
}

func Internal(err error) error {
	return &Error{Kind: KindInternal, Msg: "internal error", Err: err}
}
