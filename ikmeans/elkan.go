package ikmeans

import (
	"context"
	"math"

	"github.com/hupe1980/hikmeans/distance"
)

// trainElkan runs Lloyd's iteration with Elkan's bounds: an upper bound on
// each point's distance to its own center and a lower bound per (point,
// center) pair. A center j can only steal point i when
// upper[i] > lower[i][j] and upper[i] > cc[a][j]/2.
func (m *Model) trainElkan(ctx context.Context, data []uint8, n int) error {
	dim, k := m.dim, m.k
	asgn := make([]uint32, n)
	upper := make([]float64, n)
	lower := make([]float64, n*k)
	stale := make([]bool, n)
	cc := make([]float64, k*k)
	s := make([]float64, k)
	moved := make([]float64, k)
	old := make([]int32, k*dim)
	counts := make([]int64, k)
	acc := make([]int64, k*dim)

	for i := 0; i < n; i++ {
		vec := data[i*dim : (i+1)*dim]
		best, bestDist := 0, math.Inf(1)
		for j := 0; j < k; j++ {
			d := distance.L2(vec, m.center(j))
			lower[i*k+j] = d
			if d < bestDist {
				best, bestDist = j, d
			}
		}
		asgn[i] = uint32(best)
		upper[i] = bestDist
	}

	for iter := 0; iter < m.maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Update step
		copy(old, m.centers)
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
			if counts[j] == 0 {
				continue
			}
			c := m.center(j)
			for d := range c {
				c[d] = int32(acc[j*dim+d] / counts[j])
			}
		}

		for j := 0; j < k; j++ {
			moved[j] = distance.CenterL2(old[j*dim:(j+1)*dim], m.center(j))
		}
		for i := 0; i < n; i++ {
			if p := moved[asgn[i]]; p > 0 {
				upper[i] += p
				stale[i] = true
			}
			row := lower[i*k : (i+1)*k]
			for j := range row {
				row[j] = math.Max(0, row[j]-moved[j])
			}
		}

		for a := 0; a < k; a++ {
			s[a] = math.Inf(1)
			for b := 0; b < k; b++ {
				if a == b {
					cc[a*k+b] = 0
					continue
				}
				d := distance.CenterL2(m.center(a), m.center(b))
				cc[a*k+b] = d
				if d/2 < s[a] {
					s[a] = d / 2
				}
			}
		}

		// Assignment step
		changed := 0
		for i := 0; i < n; i++ {
			a := int(asgn[i])
			if upper[i] <= s[a] {
				continue
			}
			vec := data[i*dim : (i+1)*dim]
			for j := 0; j < k; j++ {
				if j == a || upper[i] <= lower[i*k+j] || upper[i] <= cc[a*k+j]/2 {
					continue
				}
				if stale[i] {
					d := distance.L2(vec, m.center(a))
					upper[i] = d
					lower[i*k+a] = d
					stale[i] = false
					if upper[i] <= lower[i*k+j] || upper[i] <= cc[a*k+j]/2 {
						continue
					}
				}
				d := distance.L2(vec, m.center(j))
				lower[i*k+j] = d
				if d < upper[i] {
					a = j
					upper[i] = d
				}
			}
			if uint32(a) != asgn[i] {
				asgn[i] = uint32(a)
				changed++
			}
		}

		m.debug("ikmeans: elkan iteration",
			"iter", iter,
			"changed", changed,
		)

		if changed == 0 {
			break
		}
	}

	return nil
}
