// Cosine distances between k-mer profiles and the shared symmetric
// distance matrix they are collected into.

package distance

import (
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// Cosine returns the cosine distance 1 - similarity, in [0, 2].
// A zero-norm profile has no direction; its distance to anything is
// defined as 1 (neutral), keeping degenerate sequences bounded.
func Cosine(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - floats.Dot(a, b)/(na*nb)
}

// Matrix is a symmetric distance matrix indexed by sequence id.
// It is pre-sized for the whole id space of one run; only same-cluster
// pairs ever get populated.
type Matrix struct {
	n     int
	cells [][]float64
}

func NewMatrix(n int) *Matrix {
	cells := make([][]float64, n)
	for i := range cells {
		cells[i] = make([]float64, n)
	}
	return &Matrix{n: n, cells: cells}
}

func (m *Matrix) Len() int { return m.n }

// Set writes both symmetric cells for the pair (i, j).
func (m *Matrix) Set(i, j int, d float64) {
	m.cells[i][j] = d
	m.cells[j][i] = d
}

func (m *Matrix) Get(i, j int) float64 {
	return m.cells[i][j]
}

// FillCluster computes cosine distances for every unordered pair of
// cluster members and stores them in m. One task per pair; each task
// writes only its own two symmetric cells, so the writes are disjoint
// and the pre-sized matrix needs no lock.
func FillCluster(m *Matrix, members []int, profiles map[int][]float64, workers int) error {
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for x := 0; x < len(members); x++ {
		for y := x + 1; y < len(members); y++ {
			i, j := members[x], members[y]
			pi, ok := profiles[i]
			if !ok {
				return fmt.Errorf("no profile for sequence %d", i)
			}
			pj, ok := profiles[j]
			if !ok {
				return fmt.Errorf("no profile for sequence %d", j)
			}
			g.Go(func() error {
				m.Set(i, j, Cosine(pi, pj))
				return nil
			})
		}
	}

	return g.Wait()
}
