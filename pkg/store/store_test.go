package store

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFasta(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadSequencesAssignsStableIDs(t *testing.T) {
	path := writeFasta(t, "in.fasta", ">a 1\nACGT\n>b:2\nGGTT\n>c\nTTAA\n")

	ctx := NewContext()
	seqs, err := ctx.ReadSequences(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(seqs) != 3 || ctx.Size() != 3 {
		t.Fatalf("got %d sequences, size %d", len(seqs), ctx.Size())
	}
	if ctx.ID2Header[0] != "a_1" || ctx.ID2Header[1] != "b_2" || ctx.ID2Header[2] != "c" {
		t.Errorf("headers not registered in parse order: %+v", ctx.ID2Header)
	}
	for id, header := range ctx.ID2Header {
		if ctx.Header2ID[header] != id {
			t.Errorf("id map not bidirectional for %q", header)
		}
	}
}

func TestReadGOIAppendsToIDSpace(t *testing.T) {
	main := writeFasta(t, "in.fasta", ">a\nACGT\n>b\nGGTT\n")
	goi := writeFasta(t, "goi.fasta", ">special\nACAC\n")

	ctx := NewContext()
	if _, err := ctx.ReadSequences(main); err != nil {
		t.Fatal(err)
	}
	goiSeqs, err := ctx.ReadGOI(goi)
	if err != nil {
		t.Fatal(err)
	}
	if len(goiSeqs) != 1 {
		t.Fatalf("got %d goi sequences", len(goiSeqs))
	}
	id := ctx.Header2ID["special"]
	if id != 2 {
		t.Errorf("goi id = %d, want appended id 2", id)
	}
	if !ctx.GOI[id] {
		t.Error("goi id not flagged")
	}
	if ctx.GOI[0] || ctx.GOI[1] {
		t.Error("main ids must not be flagged as goi")
	}
}

func TestResolveSubset(t *testing.T) {
	main := writeFasta(t, "in.fasta", ">a\nACGT\n>b\nGGTT\n>c\nTTAA\n")
	sub := writeFasta(t, "cluster0.fasta", ">c\nTTAA\n>a\nACGT\n")

	ctx := NewContext()
	if _, err := ctx.ReadSequences(main); err != nil {
		t.Fatal(err)
	}
	subset, err := ctx.ResolveSubset(sub)
	if err != nil {
		t.Fatal(err)
	}
	if len(subset) != 2 {
		t.Fatalf("got %d subset sequences", len(subset))
	}
	if _, ok := subset[ctx.Header2ID["a"]]; !ok {
		t.Error("subset did not resolve to the existing id for a")
	}
	if ctx.Size() != 3 {
		t.Errorf("subset resolution must not grow the id space, size = %d", ctx.Size())
	}
}

func TestResolveSubsetUnknownHeader(t *testing.T) {
	main := writeFasta(t, "in.fasta", ">a\nACGT\n")
	sub := writeFasta(t, "cluster0.fasta", ">stranger\nACGT\n")

	ctx := NewContext()
	if _, err := ctx.ReadSequences(main); err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.ResolveSubset(sub); err == nil {
		t.Fatal("want error for unknown header")
	}
}

func TestSortedIDs(t *testing.T) {
	got := SortedIDs(map[int]string{9: "", 2: "", 5: ""})
	want := []int{2, 5, 9}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedIDs = %v, want %v", got, want)
		}
	}
}
