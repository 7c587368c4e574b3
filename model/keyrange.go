package model

import (
	"fmt"
)

// KeyRange is the half-open interval [Start, End) of sort keys a segment may
// hold within one (Dataset, Partition).
type KeyRange struct {
	Dataset   string `json:"dataset"`
	Partition string `json:"partition"`
	Start     Key    `json:"start"`
	End       Key    `json:"end"`
}

// NewKeyRange builds and validates a key range.
func NewKeyRange(dataset, partition string, start, end Key) (KeyRange, error) {
	r := KeyRange{Dataset: dataset, Partition: partition, Start: start, End: end}
	if err := r.Validate(); err != nil {
		return KeyRange{}, err
	}
	return r, nil
}

// Validate checks start <= end and that both bounds share one kind.
func (r KeyRange) Validate() error {
	if r.Dataset == "" {
		return fmt.Errorf("%w: key range without dataset", ErrInvalidArgument)
	}
	if !r.Start.IsValid() || !r.End.IsValid() {
		return fmt.Errorf("%w: key range %s has an unset bound", ErrInvalidArgument, r)
	}
	if r.Start.Kind() != r.End.Kind() {
		return fmt.Errorf("%w: key range bounds differ in kind (%s, %s)", ErrInvalidArgument, r.Start.Kind(), r.End.Kind())
	}
	if r.End.Less(r.Start) {
		return fmt.Errorf("%w: key range %s has start > end", ErrInvalidArgument, r)
	}
	return nil
}

// IsEmpty reports whether the range contains no key.
func (r KeyRange) IsEmpty() bool {
	return r.Start.Compare(r.End) >= 0
}

// Contains reports whether Start <= k < End.
func (r KeyRange) Contains(k Key) bool {
	return r.Start.Compare(k) <= 0 && k.Less(r.End)
}

// Intersects reports whether the intervals share a key, ignoring dataset and
// partition.
func (r KeyRange) Intersects(o KeyRange) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}
	return r.Start.Less(o.End) && o.Start.Less(r.End)
}

// Overlaps reports whether both ranges belong to the same dataset and
// partition and share at least one key.
func (r KeyRange) Overlaps(o KeyRange) bool {
	if r.Dataset != o.Dataset || r.Partition != o.Partition {
		return false
	}
	return r.Intersects(o)
}

func (r KeyRange) String() string {
	return fmt.Sprintf("%s/%s[%s, %s)", r.Dataset, r.Partition, r.Start, r.End)
}

// CompareByStart orders ranges by start key, then end key.
func CompareByStart(a, b KeyRange) int {
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	return a.End.Compare(b.End)
}
