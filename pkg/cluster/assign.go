package cluster

import (
	"fmt"

	"github.com/humilityai/hdbscan"
)

// Noise is the reserved label for unassigned points.
const Noise = -1

// DefaultMinClusterSize matches the density clusterer's usual default.
const DefaultMinClusterSize = 5

// Assignment holds one label and one membership confidence per input
// point, in input order.
type Assignment struct {
	Labels        []int
	Probabilities []float64
}

// Distinct counts distinct labels, noise included.
func (a Assignment) Distinct() int {
	seen := make(map[int]bool)
	for _, l := range a.Labels {
		seen[l] = true
	}
	return len(seen)
}

// NoiseCount counts points labeled as noise.
func (a Assignment) NoiseCount() int {
	n := 0
	for _, l := range a.Labels {
		if l == Noise {
			n++
		}
	}
	return n
}

// MaxLabel returns the highest cluster label, or Noise when there is
// no cluster at all.
func (a Assignment) MaxLabel() int {
	max := Noise
	for _, l := range a.Labels {
		if l > max {
			max = l
		}
	}
	return max
}

// Assigner produces a cluster label and confidence per embedded point.
type Assigner interface {
	Assign(points [][]float64) (Assignment, error)
}

// HDBSCANAssigner runs hierarchical density-based clustering on the
// embedded points. Points that end up in no cluster keep the Noise
// label and zero confidence.
type HDBSCANAssigner struct {
	MinClusterSize int
}

func (a HDBSCANAssigner) Assign(points [][]float64) (Assignment, error) {
	minSize := a.MinClusterSize
	if minSize < 2 {
		minSize = DefaultMinClusterSize
	}

	clustering, err := hdbscan.NewClustering(points, minSize)
	if err != nil {
		return Assignment{}, fmt.Errorf("hdbscan: %w", err)
	}
	if err := clustering.Run(hdbscan.EuclideanDistance, hdbscan.VarianceScore, true); err != nil {
		return Assignment{}, fmt.Errorf("hdbscan: %w", err)
	}

	labels := make([]int, len(points))
	probs := make([]float64, len(points))
	for i := range labels {
		labels[i] = Noise
	}

	for label, cl := range clustering.Clusters {
		for _, p := range cl.Points {
			if p < 0 || p >= len(points) {
				return Assignment{}, fmt.Errorf("hdbscan: point index %d out of range", p)
			}
			labels[p] = label
			probs[p] = 1
		}
	}

	return Assignment{Labels: labels, Probabilities: probs}, nil
}
