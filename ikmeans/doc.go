// Package ikmeans implements integer k-means clustering.
//
// Data points are uint8 vectors and centers are int32 vectors; all
// accumulation happens in int64. A Model is trained once on a flat row-major
// buffer and can then assign any vector of the same dimensionality to its
// nearest center.
//
// Two training methods are available:
//
//   - Lloyd: the classic assign/update iteration.
//   - Elkan: the same iteration accelerated with triangle-inequality bounds,
//     which skips most distance computations once clusters stabilize.
//
// Centers are initialized from distinct data points chosen in a seeded random
// order, so training is deterministic for a given seed.
//
// Used by the hierarchical tree as the per-node clustering primitive.
package ikmeans
