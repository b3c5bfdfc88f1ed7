package vectorspace

import "sort"

// TopIndices returns candidate row indices ordered by descending score, ties
// broken by original row order. To avoid sorting the whole corpus for a small
// k, it first partially selects a superset of max(2*topN, 10) highest-scoring
// candidates, then fully sorts only that superset. Callers still filter
// non-positive scores and stop at topN.
func TopIndices(scores []float64, topN int) []int {
	if topN <= 0 || len(scores) == 0 {
		return nil
	}
	size := 2 * topN
	if size < 10 {
		size = 10
	}
	if size > len(scores) {
		size = len(scores)
	}

	indices := make([]int, len(scores))
	for i := range indices {
		indices[i] = i
	}
	selectTop(indices, scores, size)

	top := indices[:size]
	sort.Slice(top, func(a, b int) bool {
		if scores[top[a]] != scores[top[b]] {
			return scores[top[a]] > scores[top[b]]
		}
		return top[a] < top[b]
	})
	return top
}

// selectTop partially sorts indices so that the k highest-scoring ones occupy
// the first k positions, in arbitrary order. Linear expected time (quickselect).
func selectTop(indices []int, scores []float64, k int) {
	lo, hi := 0, len(indices)-1
	for lo < hi {
		p := partition(indices, scores, lo, hi)
		switch {
		case p == k-1:
			return
		case p < k-1:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
}

func partition(indices []int, scores []float64, lo, hi int) int {
	// Median-of-three pivot to dodge the sorted-input worst case: order the
	// three probes descending, then move the median to lo as the pivot.
	mid := lo + (hi-lo)/2
	if scores[indices[mid]] > scores[indices[lo]] {
		indices[lo], indices[mid] = indices[mid], indices[lo]
	}
	if scores[indices[hi]] > scores[indices[lo]] {
		indices[lo], indices[hi] = indices[hi], indices[lo]
	}
	if scores[indices[hi]] > scores[indices[mid]] {
		indices[mid], indices[hi] = indices[hi], indices[mid]
	}
	indices[lo], indices[mid] = indices[mid], indices[lo]
	pivot := scores[indices[lo]]

	i := lo
	for j := lo + 1; j <= hi; j++ {
		if scores[indices[j]] > pivot {
			i++
			indices[i], indices[j] = indices[j], indices[i]
		}
	}
	indices[lo], indices[i] = indices[i], indices[lo]
	return i
}
