package ikmeans

import "math/rand"

// initRandData seeds the centers with k data points picked in a random
// order. Points equal to an already chosen center are skipped while distinct
// candidates remain; duplicates fill the rest.
func (m *Model) initRandData(data []uint8, n int) {
	dim, k := m.dim, m.k
	rng := rand.New(rand.NewSource(m.seed))
	perm := rng.Perm(n)

	chosen := 0
	used := make([]bool, n)
	for _, i := range perm {
		if chosen == k {
			break
		}
		vec := data[i*dim : (i+1)*dim]
		dup := false
		for j := 0; j < chosen; j++ {
			if equalCenter(vec, m.center(j)) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		setCenter(m.center(chosen), vec)
		used[i] = true
		chosen++
	}

	for _, i := range perm {
		if chosen == k {
			break
		}
		if used[i] {
			continue
		}
		setCenter(m.center(chosen), data[i*dim:(i+1)*dim])
		used[i] = true
		chosen++
	}
}

func equalCenter(vec []uint8, c []int32) bool {
	for i, v := range vec {
		if int32(v) != c[i] {
			return false
		}
	}
	return true
}

func setCenter(c []int32, vec []uint8) {
	for i, v := range vec {
		c[i] = int32(v)
	}
}
