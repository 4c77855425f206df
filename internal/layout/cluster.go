package layout

import "sort"

// noise marks values that belong to no cluster
const noise = -1

// dbscan1D labels each value with a cluster id (0..k-1, numbered left to right) or noise.
// A value is a core point when at least minPts values (itself included) lie within eps.
// Clusters are chains of core points no more than eps apart, plus the border points they reach.
func dbscan1D(values []float64, eps float64, minPts int) []int {
	labels := make([]int, len(values))
	for i := range labels {
		labels[i] = noise
	}
	if len(values) == 0 {
		return labels
	}

	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	sorted := make([]float64, len(values))
	for i, idx := range order {
		sorted[i] = values[idx]
	}

	// neighbor counts via a sliding window over the sorted values
	core := make([]bool, len(sorted))
	lo, hi := 0, 0
	for i, v := range sorted {
		for sorted[lo] < v-eps {
			lo++
		}
		for hi+1 < len(sorted) && sorted[hi+1] <= v+eps {
			hi++
		}
		core[i] = hi-lo+1 >= minPts
	}

	cluster := -1
	lastCore := -1
	for i := range sorted {
		if !core[i] {
			continue
		}
		if lastCore < 0 || sorted[i]-sorted[lastCore] > eps {
			cluster++
		}
		labels[order[i]] = cluster
		lastCore = i
	}
	if cluster < 0 {
		return labels
	}

	// attach border points to the nearest core point within eps
	for i := range sorted {
		if core[i] {
			continue
		}
		best, bestDist := -1, eps
		for j := i - 1; j >= 0 && sorted[i]-sorted[j] <= eps; j-- {
			if core[j] {
				if d := sorted[i] - sorted[j]; d <= bestDist {
					best, bestDist = j, d
				}
				break
			}
		}
		for j := i + 1; j < len(sorted) && sorted[j]-sorted[i] <= eps; j++ {
			if core[j] {
				if d := sorted[j] - sorted[i]; d < bestDist || best < 0 {
					best = j
				}
				break
			}
		}
		if best >= 0 {
			labels[order[i]] = labels[order[best]]
		}
	}

	return labels
}
