package hash

import (
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32C returns the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

// Fields hashes a sequence of strings. Fields are NUL-separated, so
// ("ab", "c") and ("a", "bc") hash differently.
func Fields(fields ...string) uint32 {
	var sum uint32
	for i, f := range fields {
		if i > 0 {
			sum = crc32.Update(sum, castagnoli, []byte{0})
		}
		sum = crc32.Update(sum, castagnoli, []byte(f))
	}
	return sum
}

// Base64 encodes a checksum big-endian and base64, the form object stores
// expect in checksum headers.
func Base64(sum uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], sum)
	return base64.StdEncoding.EncodeToString(b[:])
}
