// The pipeline wires the stages together: sequence store, k-mer
// profiles, embedding, density assignment, per-cluster distances and
// centroid selection, plus the output artifacts of each invocation.

package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kenkeni-ZJU/viralClust/internal/util"
	"github.com/Kenkeni-ZJU/viralClust/logger"
	"github.com/Kenkeni-ZJU/viralClust/pkg/centroid"
	"github.com/Kenkeni-ZJU/viralClust/pkg/cluster"
	"github.com/Kenkeni-ZJU/viralClust/pkg/db"
	"github.com/Kenkeni-ZJU/viralClust/pkg/distance"
	"github.com/Kenkeni-ZJU/viralClust/pkg/kmer"
	"github.com/Kenkeni-ZJU/viralClust/pkg/store"
)

// Outcome distinguishes a completed clustering from the two recovered
// degenerate cases.
type Outcome int

const (
	OK Outcome = iota
	// InsufficientData: fewer sequences than the embedding minimum.
	InsufficientData
	// NoStructure: assignment collapsed to a single label.
	NoStructure
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case InsufficientData:
		return "insufficient data"
	case NoStructure:
		return "no structure"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Config carries one top-level invocation's parameters.
type Config struct {
	Input      string
	GOI        string
	OutDir     string
	K          int
	Workers    int
	Subcluster bool
	SQLitePath string
}

// Result summarizes one (sub)invocation.
type Result struct {
	Outcome   Outcome
	Clusters  map[int][]int // label -> member ids
	Centroids []int
}

type Pipeline struct {
	cfg      Config
	runID    string
	ctx      *store.Context
	vocab    kmer.Vocabulary
	embedder cluster.Embedder
	assigner cluster.Assigner
}

// New builds a pipeline with the production embedder and assigner.
func New(cfg Config) *Pipeline {
	return NewWith(cfg, cluster.PCAEmbedder{}, cluster.HDBSCANAssigner{MinClusterSize: cluster.DefaultMinClusterSize})
}

// NewWith lets callers substitute the external collaborators, which is
// also how the tests drive the pipeline deterministically.
func NewWith(cfg Config, e cluster.Embedder, a cluster.Assigner) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		runID:    "run-" + uuid.New().String(),
		ctx:      store.NewContext(),
		vocab:    kmer.NewVocabulary(cfg.K),
		embedder: e,
		assigner: a,
	}
}

// Context exposes the shared run context (id maps, goi set, profiles,
// matrix) for inspection after Run.
func (p *Pipeline) Context() *store.Context { return p.ctx }

// RunID identifies this invocation in logs and the sqlite archive.
func (p *Pipeline) RunID() string { return p.runID }

// Run executes the whole top-level invocation, including optional
// subclustering and archiving. Degenerate inputs (too few sequences,
// no structure) are recovered by a pass-through copy and are not
// errors.
func (p *Pipeline) Run() (Result, error) {
	logger.Info("Reading sequences", zap.String("run", p.runID), zap.String("input", p.cfg.Input))

	seqs, err := p.ctx.ReadSequences(p.cfg.Input)
	if err != nil {
		return Result{}, err
	}
	if p.cfg.GOI != "" {
		goiSeqs, err := p.ctx.ReadGOI(p.cfg.GOI)
		if err != nil {
			return Result{}, err
		}
		for id, seq := range goiSeqs {
			seqs[id] = seq
		}
		logger.Info("Found genome(s) of interest", zap.Int("count", len(goiSeqs)))
	}
	p.ctx.InitMatrix()

	if len(seqs) < store.MinSequences {
		logger.Warn("Too few sequences for clustering, copying input through",
			zap.Int("sequences", len(seqs)), zap.Int("minimum", store.MinSequences))
		if err := p.passThrough(p.cfg.Input); err != nil {
			return Result{}, err
		}
		return Result{Outcome: InsufficientData}, nil
	}

	logger.Info("Determining k-mer profiles for all sequences",
		zap.Int("k", p.vocab.K()), zap.Int("sequences", len(seqs)))
	ids := store.SortedIDs(seqs)
	profiles, err := kmer.Profiles(p.vocab, seqs, ids, p.cfg.Workers)
	if err != nil {
		return Result{}, err
	}
	p.ctx.Profiles = profiles

	logger.Info("Clustering", zap.Int("components", cluster.TopLevelConfig.Components))
	res, err := p.clusterOnce(p.cfg.Input, seqs, cluster.TopLevelConfig, true)
	if err != nil || res.Outcome != OK {
		return res, err
	}

	if p.cfg.SQLitePath != "" {
		if err := p.archive(res); err != nil {
			return res, err
		}
	}

	if p.cfg.Subcluster {
		if err := p.subcluster(res); err != nil {
			return res, err
		}
	}

	return res, nil
}

// clusterOnce runs embed, assign, distance fill and centroid selection
// for one working set.
func (p *Pipeline) clusterOnce(input string, seqs map[int]string, embedCfg cluster.EmbedConfig, top bool) (Result, error) {
	ids := store.SortedIDs(seqs)

	vectors := make([][]float64, len(ids))
	for i, id := range ids {
		profile, ok := p.ctx.Profiles[id]
		if !ok {
			return Result{}, fmt.Errorf("no profile for sequence %d", id)
		}
		vectors[i] = profile
	}

	points, err := p.embedder.Embed(embedCfg, vectors)
	if err != nil {
		return Result{}, err
	}
	asg, err := p.assigner.Assign(points)
	if err != nil {
		return Result{}, err
	}
	if len(asg.Labels) != len(ids) {
		return Result{}, fmt.Errorf("assigner returned %d labels for %d points", len(asg.Labels), len(ids))
	}

	if asg.Distinct() == 1 {
		logger.Warn("All sequences fall into one cluster, copying input through",
			zap.String("input", filepath.Base(input)))
		if err := p.passThrough(input); err != nil {
			return Result{}, err
		}
		return Result{Outcome: NoStructure}, nil
	}

	clusters := make(map[int][]int)
	for i, id := range ids {
		label := asg.Labels[i]
		clusters[label] = append(clusters[label], id)
		// The report maps genomes of interest to their top-level
		// cluster; subcluster labels are local and must not leak in.
		if top && p.ctx.GOI[id] {
			p.ctx.GOI2Cluster[p.ctx.ID2Header[id]] = label
		}
	}

	if top {
		logger.Info("Summarized sequences into clusters",
			zap.Int("sequences", len(ids)),
			zap.Int("clusters", asg.MaxLabel()+1),
			zap.Int("noise", asg.NoiseCount()))
		if err := p.writeMembership(seqs, clusters); err != nil {
			return Result{}, err
		}

		for _, label := range sortedLabels(clusters) {
			members := clusters[label]
			if label == cluster.Noise || len(members) < 2 {
				continue
			}
			if err := distance.FillCluster(p.ctx.Matrix, members, p.ctx.Profiles, p.cfg.Workers); err != nil {
				return Result{}, err
			}
		}
	}

	centroids := centroid.Select(clusters, p.ctx.Matrix, p.ctx.GOI)

	if err := p.writeCentroids(input, seqs, clusters, centroids); err != nil {
		return Result{}, err
	}

	return Result{Outcome: OK, Clusters: clusters, Centroids: centroids}, nil
}

// subcluster re-runs the pipeline on each non-noise cluster's FASTA
// with the fine-grained embedding parameters. Each subcluster recovers
// independently; siblings continue after a degenerate one.
func (p *Pipeline) subcluster(top Result) error {
	for _, label := range sortedLabels(top.Clusters) {
		if label == cluster.Noise {
			continue
		}
		file := filepath.Join(p.cfg.OutDir, fmt.Sprintf("cluster%d.fasta", label))

		subSeqs, err := p.ctx.ResolveSubset(file)
		if err != nil {
			return err
		}
		if len(subSeqs) < store.MinSequences {
			logger.Warn("Too few sequences for subclustering, copying cluster through",
				zap.String("cluster", filepath.Base(file)), zap.Int("sequences", len(subSeqs)))
			if err := p.passThrough(file); err != nil {
				return err
			}
			continue
		}

		res, err := p.clusterOnce(file, subSeqs, cluster.SubclusterConfig, false)
		if err != nil {
			return err
		}
		if res.Outcome != OK {
			continue
		}
		logger.Info("Subclustered", zap.Int("cluster", label), zap.Int("subclusters", len(res.Clusters)))
	}
	return nil
}

func (p *Pipeline) archive(res Result) error {
	archive, err := db.Open(p.cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer archive.Close()

	centroidSet := make(map[int]bool, len(res.Centroids))
	for _, id := range res.Centroids {
		centroidSet[id] = true
	}

	var clusterRows []db.ClusterRow
	var memberRows []db.Member
	for _, label := range sortedLabels(res.Clusters) {
		members := res.Clusters[label]
		rep := ""
		for _, id := range members {
			if centroidSet[id] {
				rep = p.ctx.ID2Header[id]
				break
			}
		}
		clusterRows = append(clusterRows, db.ClusterRow{Label: label, Centroid: rep, Size: len(members)})
		for _, id := range members {
			memberRows = append(memberRows, db.Member{
				Label:  label,
				Header: p.ctx.ID2Header[id],
				GOI:    p.ctx.GOI[id],
			})
		}
	}

	run := db.Run{
		ID:        p.runID,
		Input:     p.cfg.Input,
		K:         p.vocab.K(),
		Sequences: p.ctx.Size(),
		Clusters:  len(res.Clusters),
	}
	return archive.Archive(run, clusterRows, memberRows)
}

// passThrough copies the input verbatim to the centroid output path,
// the signal that no clustering was performed for this file.
func (p *Pipeline) passThrough(input string) error {
	return util.CopyFile(input, p.centroidPath(input))
}

func (p *Pipeline) centroidPath(input string) string {
	return filepath.Join(p.cfg.OutDir, util.BaseNoExt(input)+"_hdbscan.fasta")
}
