package engine

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/segstore/blobstore"
	"github.com/hupe1980/segstore/codec"
	"github.com/hupe1980/segstore/internal/hash"
	"github.com/hupe1980/segstore/schema"
	"github.com/hupe1980/segstore/segment"
)

// Segment file layout:
//
//	[chunk 0][chunk 1]...[chunk n-1][footer][trailer]
//
// The footer is encoded with the codec named in the trailer; the trailer has
// a fixed size so readers can locate the footer from the end of the file.
const (
	FileMagic   = 0x31474553 // "SEG1"
	FileVersion = 1
	TrailerSize = 4 + 1 + 1 + 2 + 4 + 4
)

// Trailer is the fixed-size tail of a segment file.
type Trailer struct {
	Magic     uint32
	Version   uint8
	Codec     codec.ID
	Reserved  uint16
	FooterLen uint32
	FooterCRC uint32 // CRC32C of the footer bytes
}

func (t *Trailer) Encode() []byte {
	buf := make([]byte, TrailerSize)
	binary.LittleEndian.PutUint32(buf[0:], t.Magic)
	buf[4] = t.Version
	buf[5] = uint8(t.Codec)
	binary.LittleEndian.PutUint16(buf[6:], t.Reserved)
	binary.LittleEndian.PutUint32(buf[8:], t.FooterLen)
	binary.LittleEndian.PutUint32(buf[12:], t.FooterCRC)
	return buf
}

// DecodeTrailer parses a trailer.
func DecodeTrailer(buf []byte) (*Trailer, error) {
	if len(buf) != TrailerSize {
		return nil, fmt.Errorf("%w: trailer is %d bytes", ErrCorrupt, len(buf))
	}
	t := &Trailer{}
	t.Magic = binary.LittleEndian.Uint32(buf[0:])
	if t.Magic != FileMagic {
		return nil, fmt.Errorf("%w: bad magic %#x", ErrIncompatibleFormat, t.Magic)
	}
	t.Version = buf[4]
	if t.Version != FileVersion {
		return nil, fmt.Errorf("%w: version %d", ErrIncompatibleFormat, t.Version)
	}
	t.Codec = codec.ID(buf[5])
	t.Reserved = binary.LittleEndian.Uint16(buf[6:])
	t.FooterLen = binary.LittleEndian.Uint32(buf[8:])
	t.FooterCRC = binary.LittleEndian.Uint32(buf[12:])
	return t, nil
}

// Footer describes the chunks of a segment file.
type Footer struct {
	Writer  string          `json:"writer"` // id of the store instance that wrote the file
	Meta    segment.Meta    `json:"meta"`
	Columns []schema.Column `json:"columns"`
	Chunks  []ChunkRef      `json:"chunks"`
}

// ChunkRef locates one column chunk within the file.
type ChunkRef struct {
	Offset int64 `json:"offset"`
	Length int64 `json:"length"`
}

// EncodeSegmentFile lays out chunks, footer and trailer in one buffer.
// f.Chunks is filled in.
func EncodeSegmentFile(f *Footer, chunks [][]byte, c codec.Codec) ([]byte, error) {
	id, err := codec.IDOf(c)
	if err != nil {
		return nil, err
	}

	var size int64
	f.Chunks = make([]ChunkRef, len(chunks))
	for i, ch := range chunks {
		f.Chunks[i] = ChunkRef{Offset: size, Length: int64(len(ch))}
		size += int64(len(ch))
	}

	footer, err := c.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode footer: %w", err)
	}

	buf := make([]byte, 0, size+int64(len(footer))+TrailerSize)
	for _, ch := range chunks {
		buf = append(buf, ch...)
	}
	buf = append(buf, footer...)
	t := Trailer{
		Magic:     FileMagic,
		Version:   FileVersion,
		Codec:     id,
		FooterLen: uint32(len(footer)),
		FooterCRC: hash.CRC32C(footer),
	}
	return append(buf, t.Encode()...), nil
}

// ReadFooter reads and validates the footer of a segment file.
func ReadFooter(ctx context.Context, b blobstore.Blob) (*Footer, error) {
	size := b.Size()
	if size < TrailerSize {
		return nil, fmt.Errorf("%w: file is %d bytes", ErrCorrupt, size)
	}
	tb, err := blobstore.ReadFull(ctx, b, size-TrailerSize, TrailerSize)
	if err != nil {
		return nil, err
	}
	t, err := DecodeTrailer(tb)
	if err != nil {
		return nil, err
	}
	c, ok := codec.ByID(t.Codec)
	if !ok {
		return nil, fmt.Errorf("%w: unknown codec %d", ErrIncompatibleFormat, t.Codec)
	}

	dataEnd := size - TrailerSize - int64(t.FooterLen)
	if dataEnd < 0 {
		return nil, fmt.Errorf("%w: footer length %d exceeds file", ErrCorrupt, t.FooterLen)
	}
	fb, err := blobstore.ReadFull(ctx, b, dataEnd, int64(t.FooterLen))
	if err != nil {
		return nil, err
	}
	if hash.CRC32C(fb) != t.FooterCRC {
		return nil, fmt.Errorf("%w: footer checksum mismatch", ErrCorrupt)
	}

	f := &Footer{}
	if err := c.Unmarshal(fb, f); err != nil {
		return nil, fmt.Errorf("%w: decode footer: %w", ErrCorrupt, err)
	}
	if len(f.Chunks) != len(f.Columns) {
		return nil, fmt.Errorf("%w: %d chunks for %d columns", ErrCorrupt, len(f.Chunks), len(f.Columns))
	}
	for i, ref := range f.Chunks {
		if ref.Offset < 0 || ref.Length < 0 || ref.Offset+ref.Length > dataEnd {
			return nil, fmt.Errorf("%w: chunk %d out of bounds", ErrCorrupt, i)
		}
	}
	return f, nil
}
