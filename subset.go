package hikmeans

import "fmt"

// labelCounts returns how many of the labels fall on each branch in [0, k).
func labelCounts(labels []uint32, k int) ([]int, error) {
	counts := make([]int, k)
	for i, l := range labels {
		if int(l) >= k {
			return nil, fmt.Errorf("label %d of point %d out of range [0, %d)", l, i, k)
		}
		counts[l]++
	}
	return counts, nil
}

// extractSubset copies every row of data whose label equals target into a
// fresh buffer, preserving input order. sizeHint is the expected row count
// and only affects the initial allocation.
func extractSubset(data []uint8, labels []uint32, n, dim int, target uint32, sizeHint int) ([]uint8, int) {
	out := make([]uint8, 0, sizeHint*dim)
	rows := 0
	for i := 0; i < n; i++ {
		if labels[i] != target {
			continue
		}
		out = append(out, data[i*dim:(i+1)*dim]...)
		rows++
	}
	return out, rows
}
