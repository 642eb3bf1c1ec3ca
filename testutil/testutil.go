package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// FillUniform fills dst with random bytes.
// Locks only once per call (preferred over calling Intn in a loop).
func (r *RNG) FillUniform(dst []uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = uint8(r.rand.Intn(256))
	}
}

// UniformBytes generates num row-major vectors of length dim with uniform
// values in [0, 255].
func (r *RNG) UniformBytes(num, dim int) []uint8 {
	data := make([]uint8, num*dim)
	r.FillUniform(data)
	return data
}

// ClusteredBytes generates num row-major vectors around clusters random
// centroids, adding uniform noise in [-spread, spread] clamped to [0, 255].
// Vector i belongs to cluster i % clusters, which is also returned.
func (r *RNG) ClusteredBytes(num, dim, clusters, spread int) ([]uint8, []int) {
	centroids := r.UniformBytes(clusters, dim)

	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]uint8, num*dim)
	ids := make([]int, num)

	for i := range num {
		c := i % clusters
		ids[i] = c
		centroid := centroids[c*dim : (c+1)*dim]
		vec := data[i*dim : (i+1)*dim]
		for j := range dim {
			v := int(centroid[j])
			if spread > 0 {
				v += r.rand.Intn(2*spread+1) - spread
			}
			vec[j] = clamp(v)
		}
	}

	return data, ids
}

// SeparatedBytes generates num row-major vectors around clusters centroids
// placed on the diagonal, step apart, so clusters never overlap when
// spread < step/2. Vector i belongs to cluster i % clusters.
func (r *RNG) SeparatedBytes(num, dim, clusters, step, spread int) ([]uint8, []int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]uint8, num*dim)
	ids := make([]int, num)

	for i := range num {
		c := i % clusters
		ids[i] = c
		vec := data[i*dim : (i+1)*dim]
		for j := range dim {
			v := spread + c*step
			if spread > 0 {
				v += r.rand.Intn(2*spread+1) - spread
			}
			vec[j] = clamp(v)
		}
	}

	return data, ids
}

// Row returns vector i of a row-major buffer.
func Row(data []uint8, dim, i int) []uint8 {
	return data[i*dim : (i+1)*dim]
}

func clamp(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
