package service

import (
	"context"
	"errors"

	domainerrors "github.com/NiGhtKinG17/LeafNote/internal/errors"
	"github.com/NiGhtKinG17/LeafNote/internal/store"
)

// storeError converts a backend failure into the store family of the
// taxonomy. Context errors pass through unchanged.
func storeError(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, store.ErrConflict):
		return domainerrors.Conflict(msg).WithCause(err)
	default:
		return domainerrors.Unavailable(msg).WithCause(err)
	}
}
