package main

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kenkeni-ZJU/viralClust/internal/util"
	"github.com/Kenkeni-ZJU/viralClust/logger"
	"github.com/Kenkeni-ZJU/viralClust/pkg/pipeline"
)

const VERSION = "0.1.0"

// Exit codes: 1 for missing inputs, 2 for unparsable numeric options.
const (
	exitBadFile = 1
	exitBadOpt  = 2
)

var (
	flagOutput     string
	flagKmer       string
	flagProcess    string
	flagSubcluster bool
	flagVerbose    bool
	flagSQLite     string
)

func main() {

	root := &cobra.Command{
		Use:   "viralclust <inputSequences> [<genomeOfInterest>]",
		Short: "Cluster viral genomes by k-mer composition and pick centroid sequences",
		Long: `viralclust groups viral genome sequences into clades by k-mer
composition, embeds the profiles into a low-dimensional space, assigns
clusters with density-based clustering and selects one centroid
sequence per clade. Genomes of interest are always kept as
representatives.`,
		Version: VERSION,
		Args:    cobra.RangeArgs(1, 2),
		Run:     run,
	}

	root.Flags().StringVarP(&flagOutput, "output", "o", "", "output directory (default: working directory)")
	root.Flags().StringVarP(&flagKmer, "kmer", "k", "7", "length of the considered k-mer")
	root.Flags().StringVarP(&flagProcess, "process", "p", "1", "number of worker processes")
	root.Flags().BoolVar(&flagSubcluster, "subcluster", false, "analyze each cluster for finer local structure")
	root.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "extra information during calculation")
	root.Flags().StringVar(&flagSQLite, "sqlite", "", "also archive the run into this sqlite database")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) {

	if err := logger.InitLogger(flagVerbose); err != nil {
		panic(err)
	}
	defer logger.Sync() // Make sure that the buffered is flushed.

	// Try load env
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env found, using local environment")
	}

	input := args[0]
	goi := ""
	if len(args) == 2 {
		goi = args[1]
	}

	if !util.FileExists(input) {
		logger.Error("Couldn't find input sequences. Check your file", zap.String("path", input))
		logger.Sync()
		os.Exit(exitBadFile)
	}
	if goi != "" && !util.FileExists(goi) {
		logger.Error("Couldn't find genome of interest. Check your file", zap.String("path", goi))
		logger.Sync()
		os.Exit(exitBadFile)
	}

	k, err := strconv.Atoi(flagKmer)
	if err != nil || k < 1 {
		logger.Error("Invalid parameter for k-mer size. Please input a number", zap.String("kmer", flagKmer))
		logger.Sync()
		os.Exit(exitBadOpt)
	}
	workers, err := strconv.Atoi(flagProcess)
	if err != nil || workers < 1 {
		logger.Error("Invalid number for worker processes. Please input a number", zap.String("process", flagProcess))
		logger.Sync()
		os.Exit(exitBadOpt)
	}

	outdir := flagOutput
	if outdir == "" {
		outdir = os.Getenv("VIRALCLUST_OUTPUT")
	}
	if outdir == "" {
		outdir, err = os.Getwd()
		if err != nil {
			logger.Fatal("Cannot resolve working directory", zap.Error(err))
		}
	}
	if util.DirExists(outdir) {
		logger.Warn("The output directory exists. Files will be overwritten", zap.String("outdir", outdir))
	} else if err := os.MkdirAll(outdir, 0o755); err != nil {
		logger.Fatal("Cannot create output directory", zap.String("outdir", outdir), zap.Error(err))
	} else {
		logger.Info("Creating output directory", zap.String("outdir", outdir))
	}

	logger.Info("Start", zap.String("Version", VERSION))
	logger.Info("Starting to cluster your data. Stay tuned.")

	p := pipeline.New(pipeline.Config{
		Input:      input,
		GOI:        goi,
		OutDir:     outdir,
		K:          k,
		Workers:    workers,
		Subcluster: flagSubcluster,
		SQLitePath: flagSQLite,
	})

	res, err := p.Run()
	if err != nil {
		logger.Fatal("Clustering failed", zap.Error(err))
	}

	for header, label := range p.Context().GOI2Cluster {
		logger.Info("Genome of interest placed",
			zap.String("genome", header), zap.Int("cluster", label))
	}
	logger.Info("Done", zap.String("outcome", res.Outcome.String()), zap.String("outdir", outdir))

	latest := filepath.Join(filepath.Dir(outdir), "latest")
	if err := util.ReplaceSymlink(outdir, latest); err != nil {
		logger.Warn("Could not update latest symlink", zap.Error(err))
	}
}
