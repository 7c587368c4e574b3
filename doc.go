// Package segstore provides a segment-oriented columnar storage engine.
//
// Rows keyed by an ordered sort key are grouped into immutable segments, one
// per key range and partition. Each segment stores one compressed binary
// chunk per column. Scans return segments lazily and rebuild rows on demand
// from the chunks of the projected columns only.
//
// # Quick Start
//
//	ctx := context.Background()
//	st, _ := segstore.Open(ctx)                                          // in memory
//	st, _ := segstore.Open(ctx, segstore.WithBlobStore(blobstore.NewLocalStore("./data")))
//
//	p, _ := schema.NewProjection(schema.Dataset{Name: "events", SortKeyColumn: "id"}, 1, cols)
//	r, _ := model.NewKeyRange("events", "2024-01", model.IntKey(0), model.IntKey(10000))
//
//	w, _ := st.NewWriter(p, r)
//	_ = w.AddRowsAsChunk(row.Slice(rows), nil)
//	res, err := st.AppendSegment(ctx, p, w, 0).Wait(ctx)
//
// # Scanning
//
//	scan, _ := st.ScanSegments(ctx, segstore.ScanRequest{Projection: p}).Wait(ctx)
//	for seg, err := range scan.Segments() {
//	    for r, err := range seg.Rows() {
//	        fmt.Println(r.GetLong(0))
//	    }
//	}
//
// # Guarantees
//
//   - An append is atomic: a segment is visible to scans only once fully stored
//   - Overlapping ranges in one partition are rejected with ErrRangeConflict;
//     of concurrent overlapping appends at most one succeeds
//   - A scan sees the segments committed when it started
//   - Segments come in key-range order within a partition, partitions in name order
//
// # Backends
//
// The in-memory backend shares chunk bytes with readers. With WithBlobStore
// each segment becomes one self-describing file in a blobstore.BlobStore
// (local filesystem, S3, MinIO) and the index is rebuilt from those files
// at Open.
package segstore
