package apperr

import (
	"context"
	"errors"

	"github.com/dalemusser/socraticos/internal/app/system/docstore"
)

// FromStore translates a docstore error for entity into an *Error.
// Errors that already carry a kind pass through untouched.
func FromStore(err error, entity string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return NotFound(entity)
	case errors.Is(err, docstore.ErrCorruptRecord):
		return Corrupt(entity, err)
	case errors.Is(err, docstore.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return Unavailable(err)
	case errors.Is(err, docstore.ErrVersionConflict):
		return &Error{Kind: KindConflict, Entity: entity, Msg: entity + " was modified concurrently", Err: err}
	default:
		return Internal(err)
	}
}
