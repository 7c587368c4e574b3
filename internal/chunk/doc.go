// Package chunk encodes and decodes single column chunks.
//
// A chunk holds every value of one column of one segment:
//
//	[Header 22 bytes][validity bitmap][values]
//
// The validity bitmap is a serialized Roaring bitmap of null row positions and
// is omitted when the column has no nulls. Fixed width values are little
// endian; a null still occupies a zeroed slot so positions stay aligned.
// Strings are a uvarint length followed by the bytes. The values section may be
// LZ4 or ZSTD block compressed; it is stored raw when compression does not
// save at least 10%.
//
// Encoding is deterministic: identical input always produces identical bytes.
// Decoding is lazy and reports the exact row at which a chunk is malformed.
package chunk
