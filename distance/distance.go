package distance

import (
	"math"
)

// SquaredL2 calculates the squared Euclidean distance between a data vector
// and a center. Assumes both have the same length (caller's responsibility).
func SquaredL2(a []uint8, c []int32) int64 {
	var sum int64
	c = c[:len(a)]
	for i, v := range a {
		d := int64(v) - int64(c[i])
		sum += d * d
	}
	return sum
}

// L2 returns the Euclidean distance between a data vector and a center.
func L2(a []uint8, c []int32) float64 {
	return math.Sqrt(float64(SquaredL2(a, c)))
}

// CenterSquaredL2 calculates the squared Euclidean distance between two centers.
func CenterSquaredL2(a, b []int32) int64 {
	var sum int64
	b = b[:len(a)]
	for i, v := range a {
		d := int64(v) - int64(b[i])
		sum += d * d
	}
	return sum
}

// CenterL2 returns the Euclidean distance between two centers.
func CenterL2(a, b []int32) float64 {
	return math.Sqrt(float64(CenterSquaredL2(a, b)))
}

// Nearest returns the index of the center closest to vec and its squared
// distance. centers is a flat row-major buffer of k*dim values.
// Ties resolve to the lowest index. Returns -1 if there are no centers.
func Nearest(vec []uint8, centers []int32, dim int) (int, int64) {
	k := 0
	if dim > 0 {
		k = len(centers) / dim
	}
	best := -1
	bestDist := int64(math.MaxInt64)
	for j := 0; j < k; j++ {
		d := SquaredL2(vec, centers[j*dim:(j+1)*dim])
		if d < bestDist {
			bestDist = d
			best = j
		}
	}
	return best, bestDist
}
