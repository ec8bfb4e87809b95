// Dimensionality reduction of k-mer profiles before density
// clustering. The contract is vectors in, 20-dimensional vectors out,
// deterministic for a fixed configuration.

package cluster

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// EmbedConfig carries the embedding parameters of one invocation.
// Neighbors and MinDist select coarse (top-level) versus fine
// (subcluster) grouping; Seed is part of the collaborator contract and
// kept even where the implementation is fully deterministic.
type EmbedConfig struct {
	Neighbors  int
	MinDist    float64
	Components int
	Seed       int64
}

// TopLevelConfig favors coarse clade structure.
var TopLevelConfig = EmbedConfig{Neighbors: 50, MinDist: 0.25, Components: 20, Seed: 42}

// SubclusterConfig favors fine-grained local structure.
var SubclusterConfig = EmbedConfig{Neighbors: 5, MinDist: 0.0, Components: 20, Seed: 42}

// Embedder projects profile vectors into a low-dimensional space.
type Embedder interface {
	Embed(cfg EmbedConfig, vectors [][]float64) ([][]float64, error)
}

// PCAEmbedder embeds by principal-component projection. Rows are
// L2-normalized first so that euclidean structure in the embedded
// space follows cosine structure in profile space.
type PCAEmbedder struct{}

func (PCAEmbedder) Embed(cfg EmbedConfig, vectors [][]float64) ([][]float64, error) {
	n := len(vectors)
	if n == 0 {
		return nil, errors.New("embed: no vectors")
	}
	d := len(vectors[0])
	if d == 0 {
		return nil, errors.New("embed: empty vectors")
	}

	data := mat.NewDense(n, d, nil)
	for i, vec := range vectors {
		if len(vec) != d {
			return nil, errors.New("embed: ragged vectors")
		}
		norm := 0.0
		for _, x := range vec {
			norm += x * x
		}
		if norm > 0 {
			inv := 1 / math.Sqrt(norm)
			for j, x := range vec {
				data.Set(i, j, x*inv)
			}
		}
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, errors.New("embed: principal component decomposition failed")
	}

	components := cfg.Components
	if limit := min(n, d); components > limit {
		components = limit
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	// Column-center before projecting; PC directions are relative to
	// the column means.
	means := make([]float64, d)
	for j := 0; j < d; j++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += data.At(i, j)
		}
		means[j] = sum / float64(n)
	}
	centered := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			centered.Set(i, j, data.At(i, j)-means[j])
		}
	}

	var projected mat.Dense
	projected.Mul(centered, vecs.Slice(0, d, 0, components))

	points := make([][]float64, n)
	for i := range points {
		row := make([]float64, components)
		for j := 0; j < components; j++ {
			row[j] = projected.At(i, j)
		}
		points[i] = row
	}
	return points, nil
}
