// Package testutil provides testing utilities for hikmeans.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating deterministic integer datasets.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(seed)
//	data := rng.UniformBytes(1000, 128)                 // uniform [0, 255]
//	data, ids := rng.ClusteredBytes(1000, 128, 16, 4)   // 16 noisy clusters
//	data, ids := rng.SeparatedBytes(1000, 2, 4, 60, 5)  // non-overlapping clusters
package testutil
