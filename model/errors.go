package model

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaMismatch is returned when a row or column does not match the
	// declared schema (missing field, wrong type, null in a non-nullable column).
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrKeyRangeViolation is returned when a row's key falls outside the
	// key range of the segment it is written to.
	ErrKeyRangeViolation = errors.New("key range violation")

	// ErrRangeConflict is returned when an append overlaps a committed or
	// in-flight range of the same partition.
	ErrRangeConflict = errors.New("range conflict")

	// ErrDecode is returned when chunk bytes are malformed or truncated.
	ErrDecode = errors.New("decode error")

	// ErrDatasetNotFound is returned when a scan targets a dataset version
	// without committed segments.
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrStoreUnavailable is returned for backend failures and exhausted capacity.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrSegmentFinalized is returned when rows are added to a finalized writer segment.
	ErrSegmentFinalized = errors.New("segment already finalized")

	// ErrSegmentNotFinalized is returned when an unfinalized writer segment is appended.
	ErrSegmentNotFinalized = errors.New("segment not finalized")

	// ErrInvalidArgument is returned for malformed requests.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrClosed is returned when an operation is attempted on a closed store.
	ErrClosed = errors.New("store closed")
)

// SchemaMismatchError describes a schema violation.
type SchemaMismatchError struct {
	Column string
	Row    int // -1 when not row specific
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("schema mismatch: column %q row %d: %s", e.Column, e.Row, e.Reason)
	}
	return fmt.Sprintf("schema mismatch: column %q: %s", e.Column, e.Reason)
}

func (e *SchemaMismatchError) Unwrap() error { return ErrSchemaMismatch }

// KeyRangeViolationError reports a row whose key lies outside the segment range.
type KeyRangeViolationError struct {
	Range KeyRange
	Key   Key
	Row   int
}

func (e *KeyRangeViolationError) Error() string {
	return fmt.Sprintf("key range violation: row %d key %s outside %s", e.Row, e.Key, e.Range)
}

func (e *KeyRangeViolationError) Unwrap() error { return ErrKeyRangeViolation }

// RangeConflictError reports the range an append collided with.
type RangeConflictError struct {
	Range    KeyRange
	Existing KeyRange
	Pending  bool // Existing was still being committed
}

func (e *RangeConflictError) Error() string {
	state := "committed"
	if e.Pending {
		state = "pending"
	}
	return fmt.Sprintf("range conflict: %s overlaps %s range %s", e.Range, state, e.Existing)
}

func (e *RangeConflictError) Unwrap() error { return ErrRangeConflict }

// DecodeError reports the element at which chunk decoding failed.
//
// The underlying cause (if any) can be accessed via errors.Unwrap.
type DecodeError struct {
	Column string // empty when only the position is known
	Index  int    // column position in the projection
	Row    int
	cause  error
}

// NewDecodeError returns a DecodeError for the column at index, row, caused by err.
func NewDecodeError(column string, index, row int, err error) *DecodeError {
	return &DecodeError{Column: column, Index: index, Row: row, cause: err}
}

func (e *DecodeError) Error() string {
	col := e.Column
	if col == "" {
		col = fmt.Sprintf("#%d", e.Index)
	}
	if e.cause == nil {
		return fmt.Sprintf("decode error: column %q row %d", col, e.Row)
	}
	return fmt.Sprintf("decode error: column %q row %d: %v", col, e.Row, e.cause)
}

// Is matches ErrDecode.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func (e *DecodeError) Unwrap() error { return e.cause }
