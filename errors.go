package segstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/segstore/model"
)

var (
	// ErrSchemaMismatch is returned when a row or column does not fit its projection.
	ErrSchemaMismatch = model.ErrSchemaMismatch

	// ErrKeyRangeViolation is returned when a row key lies outside the segment's range.
	ErrKeyRangeViolation = model.ErrKeyRangeViolation

	// ErrRangeConflict is returned when an append overlaps a committed or in-flight range.
	ErrRangeConflict = model.ErrRangeConflict

	// ErrDecode is returned when chunk bytes cannot be decoded.
	ErrDecode = model.ErrDecode

	// ErrDatasetNotFound is returned when a dataset version has no committed segments.
	ErrDatasetNotFound = model.ErrDatasetNotFound

	// ErrStoreUnavailable is returned for backend failures and exhausted capacity.
	ErrStoreUnavailable = model.ErrStoreUnavailable

	// ErrSegmentFinalized is returned when rows are added to a finalized writer.
	ErrSegmentFinalized = model.ErrSegmentFinalized

	// ErrSegmentNotFinalized is returned when an unfinalized writer is appended.
	ErrSegmentNotFinalized = model.ErrSegmentNotFinalized

	// ErrInvalidArgument is returned for malformed requests.
	ErrInvalidArgument = model.ErrInvalidArgument

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = model.ErrClosed
)

type (
	// SchemaMismatchError carries the column and row of a schema mismatch.
	SchemaMismatchError = model.SchemaMismatchError

	// KeyRangeViolationError carries the offending key and row.
	KeyRangeViolationError = model.KeyRangeViolationError

	// RangeConflictError carries the requested and the conflicting range.
	RangeConflictError = model.RangeConflictError

	// DecodeError carries the column and row that could not be decoded.
	DecodeError = model.DecodeError
)

// translateError normalises engine and backend errors into the public
// taxonomy. Errors already in the taxonomy pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrSchemaMismatch),
		errors.Is(err, ErrKeyRangeViolation),
		errors.Is(err, ErrRangeConflict),
		errors.Is(err, ErrDecode),
		errors.Is(err, ErrDatasetNotFound),
		errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, ErrSegmentFinalized),
		errors.Is(err, ErrSegmentNotFinalized),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrClosed):
		return err
	}

	// Context errors are the caller's and stay recognisable as such.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	// Anything else escaped the engine's classification: a missing blob
	// (blobstore.ErrNotFound), an exhausted memory budget
	// (resource.ErrMemoryLimitExceeded) or a raw backend error.
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
