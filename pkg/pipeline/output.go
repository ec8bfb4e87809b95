package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Kenkeni-ZJU/viralClust/pkg/fasta"
)

// nonCentroidMark is the placeholder emitted for cluster members that
// were not selected, kept in the cd-hit .clstr style downstream tools
// expect.
const nonCentroidMark = "at +/13.37%"

func sortedLabels(clusters map[int][]int) []int {
	labels := make([]int, 0, len(clusters))
	for label := range clusters {
		labels = append(labels, label)
	}
	sort.Ints(labels)
	return labels
}

// writeMembership writes cluster.txt and one cluster<label>.fasta per
// discovered cluster. Member sequences are truncated at long ambiguous
// runs; the membership report lists every member, noise included.
func (p *Pipeline) writeMembership(seqs map[int]string, clusters map[int][]int) error {
	report, err := os.Create(filepath.Join(p.cfg.OutDir, "cluster.txt"))
	if err != nil {
		return err
	}
	defer report.Close()

	w := bufio.NewWriter(report)
	for _, label := range sortedLabels(clusters) {
		members := append([]int(nil), clusters[label]...)
		sort.Ints(members)

		records := make([]fasta.Record, 0, len(members))
		fmt.Fprintf(w, ">Cluster %d\n", label)
		for _, id := range members {
			header := p.ctx.ID2Header[id]
			fmt.Fprintf(w, "%s\n", header)
			records = append(records, fasta.Record{
				Header: header,
				Seq:    fasta.TrimAmbiguous(seqs[id]),
			})
		}
		fmt.Fprintln(w)

		path := filepath.Join(p.cfg.OutDir, fmt.Sprintf("cluster%d.fasta", label))
		if err := fasta.WriteFile(path, records); err != nil {
			return err
		}
	}
	return w.Flush()
}

// writeCentroids writes the centroid FASTA (full, untrimmed sequences)
// and the .clstr annotation next to it.
func (p *Pipeline) writeCentroids(input string, seqs map[int]string, clusters map[int][]int, centroids []int) error {
	outPath := p.centroidPath(input)

	centroidSet := make(map[int]bool, len(centroids))
	records := make([]fasta.Record, 0, len(centroids))
	for _, id := range centroids {
		if centroidSet[id] {
			continue
		}
		centroidSet[id] = true
		records = append(records, fasta.Record{
			Header: p.ctx.ID2Header[id],
			Seq:    seqs[id],
		})
	}
	if err := fasta.WriteFile(outPath, records); err != nil {
		return err
	}

	annot, err := os.Create(outPath + ".clstr")
	if err != nil {
		return err
	}
	defer annot.Close()

	w := bufio.NewWriter(annot)
	for _, label := range sortedLabels(clusters) {
		members := append([]int(nil), clusters[label]...)
		sort.Ints(members)

		fmt.Fprintf(w, ">Cluster %d\n", label)
		for i, id := range members {
			fmt.Fprintf(w, "%d\t%dnt, >%s ", i, len(seqs[id]), p.ctx.ID2Header[id])
			if centroidSet[id] {
				fmt.Fprintln(w, "*")
			} else {
				fmt.Fprintln(w, nonCentroidMark)
			}
		}
	}
	return w.Flush()
}
