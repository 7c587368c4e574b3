// Package model defines the value types shared by every layer of segstore.
//
// # Keys and Ranges
//
//   - Key: a sort-key value (int, float or string) with a total order
//   - KeyRange: half-open interval [Start, End) of keys owned by one
//     (dataset, partition) pair
//   - SegmentID: store-assigned identifier of a committed segment
//
// # Errors
//
// The error taxonomy (ErrSchemaMismatch, ErrKeyRangeViolation,
// ErrRangeConflict, ErrDecode, ErrDatasetNotFound, ErrStoreUnavailable) lives
// here so that the schema, segment and engine packages can return it without
// importing each other. Typed errors carry context and match their sentinel
// with errors.Is:
//
//	var rc *model.RangeConflictError
//	if errors.As(err, &rc) {
//	    log.Printf("range %s collides with %s", rc.Range, rc.Existing)
//	}
package model
