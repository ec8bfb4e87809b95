// Optional sqlite archive of a clustering run. One run writes one row
// set keyed by its run id, so several runs can share an archive file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNoRunID = errors.New("archive requires a run id")

type ClusterDB struct {
	db *sql.DB
}

// Run is the per-invocation summary row.
type Run struct {
	ID        string
	Input     string
	K         int
	Sequences int
	Clusters  int
}

// ClusterRow describes one discovered cluster.
type ClusterRow struct {
	Label    int
	Centroid string
	Size     int
}

// Member describes one sequence's cluster membership.
type Member struct {
	Label  int
	Header string
	GOI    bool
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	input      TEXT NOT NULL,
	k          INTEGER NOT NULL,
	sequences  INTEGER NOT NULL,
	clusters   INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS clusters (
	run_id   TEXT NOT NULL REFERENCES runs(run_id),
	label    INTEGER NOT NULL,
	centroid TEXT NOT NULL,
	size     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS members (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	label  INTEGER NOT NULL,
	header TEXT NOT NULL,
	goi    INTEGER NOT NULL
);`

// Open opens (creating if needed) a cluster archive at path.
func Open(path string) (*ClusterDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &ClusterDB{db: db}, nil
}

func (c *ClusterDB) Close() error {
	return c.db.Close()
}

// Archive stores one run with its clusters and memberships in a single
// transaction.
func (c *ClusterDB) Archive(run Run, clusters []ClusterRow, members []Member) error {
	if run.ID == "" {
		return ErrNoRunID
	}

	ctx := context.TODO()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, input, k, sequences, clusters, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Input, run.K, run.Sequences, run.Clusters,
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	clusterStm, err := tx.PrepareContext(ctx,
		`INSERT INTO clusters (run_id, label, centroid, size) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer clusterStm.Close()

	for _, row := range clusters {
		if _, err := clusterStm.ExecContext(ctx, run.ID, row.Label, row.Centroid, row.Size); err != nil {
			return err
		}
	}

	memberStm, err := tx.PrepareContext(ctx,
		`INSERT INTO members (run_id, label, header, goi) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer memberStm.Close()

	for _, m := range members {
		if _, err := memberStm.ExecContext(ctx, run.ID, m.Label, m.Header, boolToInt(m.GOI)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
