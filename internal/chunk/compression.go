package chunk

import (
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
	return enc
}

// maxValuesLen caps a decoded values section; ValuesRawLen is a uint32.
const maxValuesLen = math.MaxUint32

// lz4MaxRatio bounds how many output bytes one byte of an LZ4 block yields.
const lz4MaxRatio = 255

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderMaxMemory(maxValuesLen))
	return dec
}

// checkValuesLen rejects a declared values length that the row count or the
// stored length cannot produce. It runs before anything is allocated.
func checkValuesLen(h *Header) error {
	raw := uint64(h.ValuesRawLen)
	if size := h.Type.Size(); size > 0 {
		if want := uint64(h.Count) * uint64(size); raw != want {
			return fmt.Errorf("%w: %d value bytes for %d rows of %s", ErrCorrupt, raw, h.Count, h.Type)
		}
	} else if raw < uint64(h.Count) {
		return fmt.Errorf("%w: %d value bytes for %d strings", ErrCorrupt, raw, h.Count)
	}
	if h.Compression == CompressionLZ4 && raw > (uint64(h.ValuesLen)+1)*lz4MaxRatio {
		return fmt.Errorf("%w: %d bytes cannot expand to %d", ErrCorrupt, h.ValuesLen, raw)
	}
	return nil
}

// compress returns the compressed form of data, or nil if c is
// CompressionNone or compression saves less than 10%.
func compress(data []byte, c Compression) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var out []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, nil // incompressible
		}
		out = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		out = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, nil
	}

	if float64(len(out)) > float64(len(data))*0.9 {
		return nil, nil
	}
	return out, nil
}

func decompress(src []byte, c Compression, rawLen int) ([]byte, error) {
	switch c {
	case CompressionLZ4:
		dst := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(src, dst)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCorrupt, err)
		}
		if n != rawLen {
			return nil, fmt.Errorf("%w: lz4 produced %d bytes, want %d", ErrCorrupt, n, rawLen)
		}
		return dst, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		// The buffer grows with the actual output, not the declared length.
		dst, err := dec.DecodeAll(src, make([]byte, 0, min(rawLen, 4*len(src))))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCorrupt, err)
		}
		if len(dst) != rawLen {
			return nil, fmt.Errorf("%w: zstd produced %d bytes, want %d", ErrCorrupt, len(dst), rawLen)
		}
		return dst, nil
	default:
		return src, nil
	}
}
