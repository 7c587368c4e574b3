package chunk

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/segstore/schema"
)

const (
	Magic      = 0x5343 // "SC"
	Version    = 1
	HeaderSize = 2 + 1 + 1 + 1 + 1 + 4 + 4 + 4 + 4
)

const flagValidity = 1 << 0

var (
	ErrInvalidMagic   = errors.New("invalid chunk magic")
	ErrInvalidVersion = errors.New("unsupported chunk version")
	ErrTypeMismatch   = errors.New("chunk type mismatch")
	ErrTruncated      = errors.New("chunk truncated")
	ErrCorrupt        = errors.New("chunk corrupt")
)

// Compression selects the block compression of the values section.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionLZ4  Compression = 1
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// Header describes the layout of a chunk.
type Header struct {
	Magic        uint16
	Version      uint8
	Type         schema.ColumnType
	Compression  Compression
	Flags        uint8
	Count        uint32 // number of rows
	ValidityLen  uint32
	ValuesRawLen uint32 // uncompressed length of the values section
	ValuesLen    uint32 // stored length of the values section
}

// HasValidity reports whether a validity bitmap follows the header.
func (h *Header) HasValidity() bool { return h.Flags&flagValidity != 0 }

func (h *Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint16(buf[0:], h.Magic)
	buf[2] = h.Version
	buf[3] = uint8(h.Type)
	buf[4] = uint8(h.Compression)
	buf[5] = h.Flags
	binary.LittleEndian.PutUint32(buf[6:], h.Count)
	binary.LittleEndian.PutUint32(buf[10:], h.ValidityLen)
	binary.LittleEndian.PutUint32(buf[14:], h.ValuesRawLen)
	binary.LittleEndian.PutUint32(buf[18:], h.ValuesLen)
	return buf
}

// DecodeHeader parses the header at the start of buf.
func DecodeHeader(buf []byte) (*Header, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, header needs %d", ErrTruncated, len(buf), HeaderSize)
	}
	h := &Header{}
	h.Magic = binary.LittleEndian.Uint16(buf[0:])
	if h.Magic != Magic {
		return nil, ErrInvalidMagic
	}
	h.Version = buf[2]
	if h.Version != Version {
		return nil, ErrInvalidVersion
	}
	h.Type = schema.ColumnType(buf[3])
	if !h.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown column type %d", ErrCorrupt, buf[3])
	}
	h.Compression = Compression(buf[4])
	if h.Compression > CompressionZSTD {
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorrupt, buf[4])
	}
	h.Flags = buf[5]
	h.Count = binary.LittleEndian.Uint32(buf[6:])
	h.ValidityLen = binary.LittleEndian.Uint32(buf[10:])
	h.ValuesRawLen = binary.LittleEndian.Uint32(buf[14:])
	h.ValuesLen = binary.LittleEndian.Uint32(buf[18:])
	if h.Compression == CompressionNone && h.ValuesLen != h.ValuesRawLen {
		return nil, fmt.Errorf("%w: raw values length mismatch", ErrCorrupt)
	}
	return h, nil
}
