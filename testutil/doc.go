// Package testutil provides testing utilities for segstore.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG and generators for projections and
// rows.
//
// # Random Rows
//
//	rng := testutil.NewRNG(seed)
//	p := testutil.EventsProjection("events", 1)
//	rows := rng.Rows(p, 0, 1000, 0.1) // keys 0..999, 10% nulls in nullable columns
//
// # Keyed Ranges
//
//	r := testutil.IntRange("events", "p0", 0, 5000)
package testutil
