// Package distance provides integer distance kernels for quantization trees.
//
// Data vectors are uint8 (for example SIFT descriptors) and cluster centers
// are int32. All squared distances are accumulated in int64 so they never
// overflow for realistic dimensionalities.
//
// # Usage
//
//	d2 := distance.SquaredL2(vec, center)
//	d := distance.L2(vec, center)
//	cc := distance.CenterSquaredL2(c0, c1)
package distance
