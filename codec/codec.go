// Package codec centralizes segment footer encoding.
//
// Segment files record the codec ID in their trailer, so a store can open
// files written with a codec other than its current default.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ID is the stable one-byte identifier stored in segment trailers.
type ID uint8

const (
	IDJSON   ID = 1
	IDGoJSON ID = 2
)

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// ByID returns a built-in codec by its trailer identifier.
func ByID(id ID) (Codec, bool) {
	switch id {
	case IDJSON:
		return JSON{}, true
	case IDGoJSON:
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// IDOf returns the trailer identifier for a built-in codec.
func IDOf(c Codec) (ID, error) {
	switch c.Name() {
	case "json":
		return IDJSON, nil
	case "go-json":
		return IDGoJSON, nil
	default:
		return 0, fmt.Errorf("codec %q has no persistent identifier", c.Name())
	}
}
