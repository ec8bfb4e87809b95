// K-mer frequency profiles over the DNA alphabet.
//
// The vocabulary enumerates {A,C,G,T}^k once into dense base-4 indices
// and is immutable afterwards; all profile computations share it
// read-only.

package kmer

import (
	"strings"

	"golang.org/x/sync/errgroup"
)

// Alphabet is the profile alphabet; anything else is skipped.
const Alphabet = "ACGT"

var codes = buildCodes()

func buildCodes() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		t[Alphabet[i]] = int8(i)
	}
	return t
}

// Vocabulary maps every k-mer over the alphabet to a dense index in
// [0, 4^k). Built once per k value.
type Vocabulary struct {
	k    int
	size int
}

func NewVocabulary(k int) Vocabulary {
	size := 1
	for i := 0; i < k; i++ {
		size *= len(Alphabet)
	}
	return Vocabulary{k: k, size: size}
}

func (v Vocabulary) K() int    { return v.k }
func (v Vocabulary) Size() int { return v.size }

// Index returns the dense index of a k-mer, or false if it is not a
// valid word over the alphabet.
func (v Vocabulary) Index(kmer string) (int, bool) {
	if len(kmer) != v.k {
		return 0, false
	}
	idx := 0
	for i := 0; i < len(kmer); i++ {
		c := codes[kmer[i]]
		if c < 0 {
			return 0, false
		}
		idx = idx*len(Alphabet) + int(c)
	}
	return idx, true
}

// Kmer returns the k-mer string for a dense index.
func (v Vocabulary) Kmer(idx int) string {
	var b strings.Builder
	b.Grow(v.k)
	div := v.size
	for i := 0; i < v.k; i++ {
		div /= len(Alphabet)
		b.WriteByte(Alphabet[(idx/div)%len(Alphabet)])
	}
	return b.String()
}

// Profile computes the normalized k-mer frequency vector of a
// sequence. Windows containing a non-alphabet byte are skipped. A
// sequence with no valid window yields an all-zero vector; callers
// treat that as a degenerate profile, not an error.
func (v Vocabulary) Profile(seq string) []float64 {
	profile := make([]float64, v.size)
	if len(seq) < v.k {
		return profile
	}

	total := 0
	for start := 0; start+v.k <= len(seq); start++ {
		idx, ok := v.Index(seq[start : start+v.k])
		if !ok {
			continue
		}
		profile[idx]++
		total++
	}
	if total == 0 {
		return profile
	}

	for i := range profile {
		profile[i] /= float64(total)
	}
	return profile
}

// Profiles computes profiles for a set of sequences with a bounded
// worker pool, one task per sequence. Each task writes only its own
// id's slot, and the pool is joined before the result map is built, so
// results always zip back onto the right ids regardless of completion
// order.
func Profiles(v Vocabulary, seqs map[int]string, ids []int, workers int) (map[int][]float64, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([][]float64, len(ids))

	var g errgroup.Group
	g.SetLimit(workers)
	for slot, id := range ids {
		slot, id := slot, id
		g.Go(func() error {
			results[slot] = v.Profile(seqs[id])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	profiles := make(map[int][]float64, len(ids))
	for slot, id := range ids {
		profiles[id] = results[slot]
	}
	return profiles, nil
}
