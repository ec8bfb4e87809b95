// FASTA reading and writing for the clustering pipeline.
//
// Headers are sanitized on read (':' and ' ' become '_', the leading
// marker is dropped) and sequences are normalized to upper-case DNA
// with U rewritten to T, so every later stage works on one canonical
// representation.

package fasta

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// A Record is one parsed FASTA entry.
type Record struct {
	Header string
	Seq    string
}

// ambiguousRun marks the start of a low-quality region; member output
// truncates sequences at the first occurrence.
const ambiguousRun = "XXXXXXXXXX"

// SanitizeHeader rewrites a raw header line into the canonical form:
// ':' and ' ' replaced by '_', leading and trailing '>' / '_' trimmed.
func SanitizeHeader(line string) string {
	h := strings.TrimRight(line, "\n")
	h = strings.ReplaceAll(h, ":", "_")
	h = strings.ReplaceAll(h, " ", "_")
	return strings.Trim(h, ">_")
}

// NormalizeSeq upper-cases a sequence line and rewrites U to T.
func NormalizeSeq(line string) string {
	s := strings.ToUpper(strings.TrimSpace(line))
	return strings.ReplaceAll(s, "U", "T")
}

// Read parses all records from r. Records start at a '>' line; sequence
// lines are concatenated until the next header.
func Read(r io.Reader) ([]Record, error) {
	var records []Record
	var header string
	var seq strings.Builder
	started := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			if started {
				records = append(records, Record{Header: header, Seq: seq.String()})
			}
			header = SanitizeHeader(line)
			seq.Reset()
			started = true
			continue
		}
		if !started {
			// Leading junk before the first header is ignored.
			continue
		}
		seq.WriteString(NormalizeSeq(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if started {
		records = append(records, Record{Header: header, Seq: seq.String()})
	}
	return records, nil
}

// ReadFile parses all records from the file at path.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// TrimAmbiguous cuts a sequence at the first run of ten or more 'X'.
func TrimAmbiguous(seq string) string {
	if i := strings.Index(seq, ambiguousRun); i >= 0 {
		return seq[:i]
	}
	return seq
}

// Write writes records to w, one header line and one sequence line each.
func Write(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := bw.WriteString(">" + rec.Header + "\n" + rec.Seq + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes records to the file at path, replacing it.
func WriteFile(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
