// The sequence store keeps every parsed genome of one run under a
// stable integer id and tracks which ids belong to the genome of
// interest. One Context is built per top-level invocation and handed
// down to subcluster invocations, which resolve headers against the
// same id space instead of assigning new ids.

package store

import (
	"fmt"
	"sort"

	"github.com/Kenkeni-ZJU/viralClust/pkg/distance"
	"github.com/Kenkeni-ZJU/viralClust/pkg/fasta"
)

// MinSequences is the smallest input the embedding step can handle
// meaningfully. Below this the caller copies the input through
// unclustered.
const MinSequences = 21

// Context is the shared state of one clustering run.
type Context struct {
	ID2Header map[int]string
	Header2ID map[string]int

	// GOI flags ids parsed from the genome-of-interest file.
	GOI map[int]bool

	// GOI2Cluster records, per goi header, the cluster it landed in.
	GOI2Cluster map[string]int

	// Profiles holds the k-mer profile of every top-level sequence.
	Profiles map[int][]float64

	// Matrix is sized once, after the top-level parse.
	Matrix *distance.Matrix

	nextID int
}

func NewContext() *Context {
	return &Context{
		ID2Header:   make(map[int]string),
		Header2ID:   make(map[string]int),
		GOI:         make(map[int]bool),
		GOI2Cluster: make(map[string]int),
		Profiles:    make(map[int][]float64),
	}
}

func (c *Context) register(rec fasta.Record) int {
	id := c.nextID
	c.nextID++
	c.ID2Header[id] = rec.Header
	c.Header2ID[rec.Header] = id
	return id
}

// ReadSequences parses the main input and assigns fresh ids.
func (c *Context) ReadSequences(path string) (map[int]string, error) {
	records, err := fasta.ReadFile(path)
	if err != nil {
		return nil, err
	}
	seqs := make(map[int]string, len(records))
	for _, rec := range records {
		seqs[c.register(rec)] = rec.Seq
	}
	return seqs, nil
}

// ReadGOI parses the genome-of-interest file into the same id space
// and flags every record.
func (c *Context) ReadGOI(path string) (map[int]string, error) {
	records, err := fasta.ReadFile(path)
	if err != nil {
		return nil, err
	}
	seqs := make(map[int]string, len(records))
	for _, rec := range records {
		id := c.register(rec)
		c.GOI[id] = true
		seqs[id] = rec.Seq
	}
	return seqs, nil
}

// ResolveSubset parses a per-cluster FASTA written earlier in the run
// and maps its records back onto existing ids.
func (c *Context) ResolveSubset(path string) (map[int]string, error) {
	records, err := fasta.ReadFile(path)
	if err != nil {
		return nil, err
	}
	seqs := make(map[int]string, len(records))
	for _, rec := range records {
		id, ok := c.Header2ID[rec.Header]
		if !ok {
			return nil, fmt.Errorf("unknown sequence %q in %s", rec.Header, path)
		}
		seqs[id] = rec.Seq
	}
	return seqs, nil
}

// Size is the number of sequences registered so far.
func (c *Context) Size() int { return c.nextID }

// InitMatrix pre-sizes the shared distance matrix for the full id space.
func (c *Context) InitMatrix() {
	c.Matrix = distance.NewMatrix(c.nextID)
}

// SortedIDs returns the keys of a sequence map in ascending order.
// All per-sequence iteration in the pipeline goes through this, which
// is what makes centroid tie-breaking deterministic.
func SortedIDs(seqs map[int]string) []int {
	ids := make([]int, 0, len(seqs))
	for id := range seqs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
