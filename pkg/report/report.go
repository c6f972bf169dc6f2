// Package report writes the learner's output files.
package report

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/japaniel/wordbreaker/pkg/candidate"
	"github.com/japaniel/wordbreaker/pkg/evaluate"
	"github.com/japaniel/wordbreaker/pkg/learn"
	"github.com/japaniel/wordbreaker/pkg/lexicon"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Paths names the files of one run.
type Paths struct {
	Dir             string
	Log             string
	Corpus          string
	Lexicon         string
	RecallPrecision string
	Summary         string
}

// OutputPaths returns the file names under <datafolder>/<language>/wordbreaking
// for a corpus and a cycle count.
func OutputPaths(datafolder, lang, corpusFile string, cycles int) Paths {
	dir := filepath.Join(datafolder, lang, "wordbreaking")
	stem := strings.TrimSuffix(filepath.Base(corpusFile), filepath.Ext(corpusFile))
	prefix := filepath.Join(dir, fmt.Sprintf("wordbreaker-%s-%d", stem, cycles))
	return Paths{
		Dir:             dir,
		Log:             prefix + "i.txt",
		Corpus:          prefix + "_brokencorpus.txt",
		Lexicon:         prefix + "_lexicon.txt",
		RecallPrecision: prefix + "_RecallPrecision.tsv",
		Summary:         prefix + "_summary.json",
	}
}

// FormatCount renders a count with thousands separators. Whole numbers have
// no decimals.
func FormatCount(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return printer.Sprintf("%d", int64(v))
	}
	return printer.Sprintf("%.3f", v)
}

// Header describes a run at the top of the log.
type Header struct {
	Corpus        string
	Cycles        int
	Lines         int
	Candidates    int
	DistinctWords int
}

// WriteHeader writes the run description as comment lines.
func WriteHeader(w io.Writer, h Header) error {
	_, err := fmt.Fprintf(w, "#%s\n#%d cycles.\n#%d lines in the original corpus.\n#%d candidates on each cycle.\n#%d distinct words in the original corpus.\n",
		h.Corpus, h.Cycles, h.Lines, h.Candidates, h.DistinctWords)
	return err
}

// WriteCycle writes one cycle's nomination table, costs and scores.
func WriteCycle(w io.Writer, r learn.CycleResult) error {
	if r.Cycle > 0 {
		if _, err := fmt.Fprintf(w, "\n\nIteration number %d\n", r.Cycle); err != nil {
			return err
		}
		if err := WriteNominations(w, r.Nominations); err != nil {
			return err
		}
	}
	if len(r.Deleted) > 0 {
		if _, err := fmt.Fprintf(w, "Deleted: %s\n", strings.Join(r.Deleted, " ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "\nCorpus cost: %s\nDictionary cost: %s\nTotal cost: %s\n",
		FormatCount(r.CorpusLength), FormatCount(r.DictionaryLength), FormatCount(r.TotalLength())); err != nil {
		return err
	}
	return WriteScore(w, r.Score)
}

// WriteNominations writes the admitted nominees as an aligned table.
func WriteNominations(w io.Writer, noms []candidate.Nomination) error {
	tw := tabwriter.NewWriter(w, 0, 8, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "piece\tcount\t")
	for _, n := range noms {
		fmt.Fprintf(tw, "%s\t%s\t\n", n.Piece, printer.Sprintf("%d", n.Count))
	}
	return tw.Flush()
}

// WriteScore writes the three precision/recall pairs and any diagnostics.
func WriteScore(w io.Writer, s evaluate.Score) error {
	const format = "%-30s %6.4f %10s %6.4f\n"
	rows := []struct {
		name string
		pr   evaluate.PR
	}{
		{"Break based Word Precision", s.Break},
		{"Token_based Word Precision", s.Token},
		{"Type_based Word Precision", s.Type},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, format, r.name, r.pr.Precision, "recall", r.pr.Recall); err != nil {
			return err
		}
	}
	for _, d := range s.Diagnostics {
		if _, err := fmt.Fprintf(w, "Warning: %s\n", d); err != nil {
			return err
		}
	}
	return nil
}

// WriteParsedCorpus writes one parsed line per line, pieces separated by a
// space.
func WriteParsedCorpus(w io.Writer, parsed [][]string) error {
	bw := bufio.NewWriter(w)
	for _, line := range parsed {
		bw.WriteString(strings.Join(line, " "))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteLexicon writes every entry sorted by key with its count history,
// followed by the deletion log.
func WriteLexicon(w io.Writer, lex *lexicon.Lexicon) error {
	bw := bufio.NewWriter(w)
	for _, e := range lex.Entries() {
		fmt.Fprintf(bw, "%-20s\n", e.Key)
		for _, h := range e.History {
			fmt.Fprintf(bw, "%6d %10s\n", h.Cycle, FormatCount(h.Count))
		}
	}
	for _, d := range lex.Deletions() {
		fmt.Fprintf(bw, "%d %s\n", d.Cycle, d.Key)
	}
	return bw.Flush()
}

// WriteRecallPrecision writes the history as tab separated values, one row
// per cycle.
func WriteRecallPrecision(w io.Writer, history []learn.Row) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "cycle\tdictionary\tcorpus\tbreak_precision\tbreak_recall\ttoken_precision\ttoken_recall\ttype_precision\ttype_recall")
	for _, r := range history {
		fmt.Fprintf(bw, "%d\t%d\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			r.Cycle, int64(r.DictionaryLength), int64(r.CorpusLength),
			r.Break.Precision, r.Break.Recall, r.Token.Precision, r.Token.Recall, r.Type.Precision, r.Type.Recall)
	}
	return bw.Flush()
}
