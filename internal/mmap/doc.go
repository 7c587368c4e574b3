// Package mmap provides read-only memory-mapped access to segment files.
//
// # Usage
//
//	m, err := mmap.Open("segments/events/v1/p0/0000000000000001.seg")
//	if err != nil { ... }
//	defer m.Close()
//
//	// Column chunks are read at arbitrary offsets
//	m.Advise(mmap.AccessRandom)
//	n, err := m.ReadAt(buf, off)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (Advise is a no-op)
//
// Mappings are safe for concurrent reads. Close is idempotent; callers must
// not use slices returned by Bytes after Close.
package mmap
