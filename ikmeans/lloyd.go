package ikmeans

import (
	"context"

	"github.com/hupe1980/hikmeans/distance"
)

func (m *Model) trainLloyd(ctx context.Context, data []uint8, n int) error {
	dim, k := m.dim, m.k
	asgn := make([]uint32, n)
	counts := make([]int64, k)
	acc := make([]int64, k*dim)

	for iter := 0; iter < m.maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Assignment step
		changed := 0
		var energy int64
		for i := 0; i < n; i++ {
			best, d := distance.Nearest(data[i*dim:(i+1)*dim], m.centers, dim)
			energy += d
			if iter == 0 || asgn[i] != uint32(best) {
				asgn[i] = uint32(best)
				changed++
			}
		}

		m.debug("ikmeans: lloyd iteration",
			"iter", iter,
			"changed", changed,
			"energy", energy,
		)

		if iter > 0 && changed == 0 {
			break
		}

		// Update step
		clear(acc)
		clear(counts)
		for i := 0; i < n; i++ {
			c := int(asgn[i])
			counts[c]++
			row := acc[c*dim : (c+1)*dim]
			for d, v := range data[i*dim : (i+1)*dim] {
				row[d] += int64(v)
			}
		}
		for j := 0; j < k; j++ {
			// Empty clusters keep their previous center.
			if counts[j] == 0 {
				continue
			}
			c := m.center(j)
			for d := range c {
				c[d] = int32(acc[j*dim+d] / counts[j])
			}
		}
	}

	return nil
}
