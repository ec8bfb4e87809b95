package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestArchiveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clusters.db")

	archive, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	run := Run{ID: "run-test", Input: "virus.fasta", K: 7, Sequences: 25, Clusters: 3}
	clusters := []ClusterRow{
		{Label: -1, Centroid: "", Size: 5},
		{Label: 0, Centroid: "a0", Size: 10},
		{Label: 1, Centroid: "c3", Size: 10},
	}
	members := []Member{
		{Label: 0, Header: "a0", GOI: false},
		{Label: 0, Header: "a1", GOI: false},
		{Label: 1, Header: "c3", GOI: true},
	}
	if err := archive.Archive(run, clusters, members); err != nil {
		t.Fatal(err)
	}
	if err := archive.Close(); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM clusters WHERE run_id = ?`, run.ID).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("clusters rows = %d, want 3", count)
	}

	var goi int
	if err := db.QueryRow(`SELECT goi FROM members WHERE header = ?`, "c3").Scan(&goi); err != nil {
		t.Fatal(err)
	}
	if goi != 1 {
		t.Errorf("goi flag = %d, want 1", goi)
	}

	var k int
	if err := db.QueryRow(`SELECT k FROM runs WHERE run_id = ?`, run.ID).Scan(&k); err != nil {
		t.Fatal(err)
	}
	if k != 7 {
		t.Errorf("k = %d, want 7", k)
	}
}

func TestArchiveRequiresRunID(t *testing.T) {
	archive, err := Open(filepath.Join(t.TempDir(), "clusters.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer archive.Close()

	if err := archive.Archive(Run{}, nil, nil); err != ErrNoRunID {
		t.Errorf("err = %v, want ErrNoRunID", err)
	}
}
