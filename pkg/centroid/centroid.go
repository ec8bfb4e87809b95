// Centroid selection: per cluster, the sequence with the smallest
// average distance to the rest of its cluster, with genome-of-interest
// and noise overrides.

package centroid

import "sort"

// Lookup resolves a pairwise distance between two sequence ids. The
// shared distance matrix implements it; tests may substitute an
// instrumented fake.
type Lookup interface {
	Get(i, j int) float64
}

// Select returns the representative sequence ids for a clustering.
//
// For every cluster except noise: a singleton's only member is its
// centroid outright, with no distance lookup. A genome-of-interest
// member is added unconditionally and overrides the minimum-search:
// when a cluster holds goi members, the cluster is represented by
// them, and the would-be natural centroid is dropped unless it is the
// only non-goi member left. Without goi members, the member with the
// strictly smallest average distance to all other members wins, ties
// going to the first member in ascending id order.
//
// The noise cluster (-1) contributes only its goi members; its other
// members get no representative.
func Select(clusters map[int][]int, dists Lookup, goi map[int]bool) []int {
	labels := make([]int, 0, len(clusters))
	for label := range clusters {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	var centroids []int
	for _, label := range labels {
		members := append([]int(nil), clusters[label]...)
		sort.Ints(members)

		if label == -1 {
			for _, id := range members {
				if goi[id] {
					centroids = append(centroids, id)
				}
			}
			continue
		}

		if len(members) == 1 {
			centroids = append(centroids, members[0])
			continue
		}

		var rest []int
		hasGOI := false
		for _, id := range members {
			if goi[id] {
				hasGOI = true
				centroids = append(centroids, id)
			} else {
				rest = append(rest, id)
			}
		}
		if hasGOI {
			if len(rest) == 1 {
				centroids = append(centroids, rest[0])
			}
			continue
		}

		best := -1
		bestAvg := 0.0
		for _, id := range members {
			sum := 0.0
			for _, other := range members {
				if other == id {
					continue
				}
				sum += dists.Get(id, other)
			}
			avg := sum / float64(len(members)-1)

			if best == -1 || avg < bestAvg {
				best = id
				bestAvg = avg
			}
		}
		centroids = append(centroids, best)
	}
	return centroids
}
