package report

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/japaniel/wordbreaker/pkg/learn"
	"github.com/japaniel/wordbreaker/pkg/lexicon"
)

// Summary is the machine readable outcome of a run.
type Summary struct {
	RunID      string  `json:"run_id,omitempty"`
	Language   string  `json:"language"`
	Corpus     string  `json:"corpus"`
	Lines      int     `json:"lines"`
	Cycles     int     `json:"cycles"`
	Candidates int     `json:"candidates"`
	Entries    int     `json:"entries"`
	Deletions  int     `json:"deletions"`
	Final      *Cycle  `json:"final,omitempty"`
	History    []Cycle `json:"history"`
	Top        []Piece `json:"top_entries"`
}

// Cycle is one history row in the summary.
type Cycle struct {
	Cycle            int     `json:"cycle"`
	DictionaryLength float64 `json:"dictionary_length"`
	CorpusLength     float64 `json:"corpus_length"`
	Entries          int     `json:"entries"`
	BreakPrecision   float64 `json:"break_precision"`
	BreakRecall      float64 `json:"break_recall"`
	TokenPrecision   float64 `json:"token_precision"`
	TokenRecall      float64 `json:"token_recall"`
	TypePrecision    float64 `json:"type_precision"`
	TypeRecall       float64 `json:"type_recall"`
}

// Piece is a multi-character entry listed in the summary.
type Piece struct {
	Key   string  `json:"key"`
	Count float64 `json:"count"`
}

// NewSummary builds a summary from the learner's state. topN bounds the
// number of multi-character entries listed, highest count first.
func NewSummary(l *learn.Learner, topN int) Summary {
	s := Summary{
		Cycles:     l.Cycles,
		Candidates: l.Candidates,
		History:    []Cycle{},
		Top:        []Piece{},
	}
	if l.Corpus != nil {
		s.Lines = l.Corpus.Len()
	}
	for _, r := range l.History() {
		s.History = append(s.History, Cycle{
			Cycle:            r.Cycle,
			DictionaryLength: r.DictionaryLength,
			CorpusLength:     r.CorpusLength,
			Entries:          r.Entries,
			BreakPrecision:   r.Break.Precision,
			BreakRecall:      r.Break.Recall,
			TokenPrecision:   r.Token.Precision,
			TokenRecall:      r.Token.Recall,
			TypePrecision:    r.Type.Precision,
			TypeRecall:       r.Type.Recall,
		})
	}
	if n := len(s.History); n > 0 {
		final := s.History[n-1]
		s.Final = &final
	}
	if lex := l.Lexicon(); lex != nil {
		s.Entries = lex.Len()
		s.Deletions = len(lex.Deletions())
		s.Top = topPieces(lex, topN)
	}
	return s
}

func topPieces(lex *lexicon.Lexicon, n int) []Piece {
	out := []Piece{}
	for _, e := range lex.Entries() {
		if e.Length() > 1 {
			out = append(out, Piece{Key: e.Key, Count: e.Count})
		}
	}
	// Entries come sorted by key, so equal counts stay in key order.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// WriteSummary encodes s as indented JSON.
func WriteSummary(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
