package kmer

import (
	"math"
	"strings"
	"testing"
)

func TestVocabularySize(t *testing.T) {
	for k, want := range map[int]int{1: 4, 2: 16, 3: 64, 7: 16384} {
		if got := NewVocabulary(k).Size(); got != want {
			t.Errorf("size(k=%d) = %d, want %d", k, got, want)
		}
	}
}

func TestIndexKmerRoundTrip(t *testing.T) {
	v := NewVocabulary(3)
	for idx := 0; idx < v.Size(); idx++ {
		kmer := v.Kmer(idx)
		got, ok := v.Index(kmer)
		if !ok || got != idx {
			t.Fatalf("Index(Kmer(%d)) = %d, %v", idx, got, ok)
		}
	}
	if _, ok := v.Index("ANT"); ok {
		t.Error("k-mer with non-alphabet byte must not index")
	}
}

func TestProfileSumsToOne(t *testing.T) {
	v := NewVocabulary(4)
	seqs := []string{
		"ACGTACGTACGTACGT",
		strings.Repeat("A", 100),
		"ACGTNNNNACGTACGT", // windows over N are skipped, rest still normalizes
	}
	for _, seq := range seqs {
		profile := v.Profile(seq)
		sum := 0.0
		for _, x := range profile {
			sum += x
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("profile sum for %q = %g, want 1.0", seq, sum)
		}
	}
}

func TestProfileCounts(t *testing.T) {
	v := NewVocabulary(2)
	profile := v.Profile("AAAC") // windows: AA, AA, AC
	idxAA, _ := v.Index("AA")
	idxAC, _ := v.Index("AC")
	if math.Abs(profile[idxAA]-2.0/3.0) > 1e-9 {
		t.Errorf("AA frequency = %g, want 2/3", profile[idxAA])
	}
	if math.Abs(profile[idxAC]-1.0/3.0) > 1e-9 {
		t.Errorf("AC frequency = %g, want 1/3", profile[idxAC])
	}
}

// A sequence shorter than k, or with no valid window, yields a defined
// all-zero vector rather than an error or a division by zero.
func TestProfileDegenerate(t *testing.T) {
	v := NewVocabulary(5)
	for _, seq := range []string{"", "ACG", "NNNNNNNN"} {
		profile := v.Profile(seq)
		if len(profile) != v.Size() {
			t.Fatalf("profile length = %d, want %d", len(profile), v.Size())
		}
		for i, x := range profile {
			if x != 0 {
				t.Fatalf("profile[%d] = %g for %q, want all zeroes", i, x, seq)
			}
		}
	}
}

func TestProfilesParallelZipBack(t *testing.T) {
	v := NewVocabulary(2)
	seqs := map[int]string{
		0: strings.Repeat("A", 50),
		3: strings.Repeat("C", 50),
		7: strings.Repeat("G", 50),
	}
	ids := []int{0, 3, 7}

	profiles, err := Profiles(v, seqs, ids, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 3 {
		t.Fatalf("got %d profiles", len(profiles))
	}

	idxAA, _ := v.Index("AA")
	idxCC, _ := v.Index("CC")
	idxGG, _ := v.Index("GG")
	if profiles[0][idxAA] != 1 || profiles[3][idxCC] != 1 || profiles[7][idxGG] != 1 {
		t.Error("profiles did not zip back onto their originating ids")
	}
}
