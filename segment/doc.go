// Package segment implements the writer and reader forms of a segment.
//
// A segment holds the rows of exactly one key range, stored as one encoded
// chunk per column. A Writer is filled once with AddRowsAsChunk and is then
// handed to the store. The store returns Readers from scans; a Reader owns no
// cursor state and produces rows lazily through RowIterator.
package segment
