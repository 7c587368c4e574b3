package engine

import "errors"

var (
	// ErrCorrupt is returned when a segment file fails validation (checksum, bounds).
	ErrCorrupt = errors.New("segment file corrupt")

	// ErrIncompatibleFormat is returned when a segment file has an unknown magic, version or codec.
	ErrIncompatibleFormat = errors.New("incompatible segment file format")
)
