// Package evaluate scores a segmentation against the gold standard by
// breaks, by running tokens and by types.
package evaluate

import (
	"fmt"
	"log"
	"math"

	"github.com/japaniel/wordbreaker/pkg/lexicon"
)

// PR is a precision/recall pair.
type PR struct {
	Precision float64
	Recall    float64
}

// Score holds the three measures for one cycle.
type Score struct {
	Cycle int
	Break PR
	Token PR
	Type  PR

	Alignment Alignment
	// Skipped lists the lines left out of the break measure.
	Skipped []int
	// Diagnostics explains every measure that could not be computed.
	Diagnostics []string
}

// Evaluator holds the gold standard. It never feeds back into learning.
type Evaluator struct {
	Breaks       [][]int
	Gold         map[string]int
	RunningWords int
	// Logger receives warnings about skipped lines and metrics. nil means no logging.
	Logger *log.Logger
}

// Evaluate scores the parse of one cycle. hypothesized is the number of
// pieces in the parse.
func (ev *Evaluator) Evaluate(cycle int, parsed [][]string, lex *lexicon.Lexicon, hypothesized int) Score {
	s := Score{Cycle: cycle}
	ev.breakScore(&s, parsed)
	ev.tokenScore(&s, lex, hypothesized)
	ev.typeScore(&s, lex)
	return s
}

func (ev *Evaluator) breakScore(s *Score, parsed [][]string) {
	var hypTotal, goldTotal int
	n := len(ev.Breaks)
	if len(parsed) < n {
		n = len(parsed)
	}
	for i := 0; i < n; i++ {
		truth := ev.Breaks[i]
		if len(truth) < 2 {
			s.Skipped = append(s.Skipped, i)
			ev.warnf("skipping line %d: %d gold break(s)", i, len(truth))
			continue
		}
		hyp := Offsets(parsed[i])
		s.Alignment.add(Align(truth, hyp))
		hypTotal += len(hyp)
		goldTotal += len(truth)
	}
	s.Break = ev.ratio(s, "break", float64(s.Alignment.TruePositives), float64(hypTotal), float64(goldTotal))
}

func (ev *Evaluator) tokenScore(s *Score, lex *lexicon.Lexicon, hypothesized int) {
	var tp float64
	for _, e := range lex.Entries() {
		if gold, ok := ev.Gold[e.Key]; ok {
			tp += math.Min(float64(gold), e.Count)
		}
	}
	s.Token = ev.ratio(s, "token", tp, float64(hypothesized), float64(ev.RunningWords))
}

func (ev *Evaluator) typeScore(s *Score, lex *lexicon.Lexicon) {
	var tp int
	for _, key := range lex.Keys() {
		if _, ok := ev.Gold[key]; ok {
			tp++
		}
	}
	s.Type = ev.ratio(s, "type", float64(tp), float64(lex.Len()), float64(len(ev.Gold)))
}

func (ev *Evaluator) ratio(s *Score, name string, tp, hyp, gold float64) PR {
	var pr PR
	if hyp > 0 {
		pr.Precision = tp / hyp
	} else {
		s.Diagnostics = append(s.Diagnostics, fmt.Sprintf("%s precision: no hypothesized items", name))
		ev.warnf("%s precision undefined: no hypothesized items", name)
	}
	if gold > 0 {
		pr.Recall = tp / gold
	} else {
		s.Diagnostics = append(s.Diagnostics, fmt.Sprintf("%s recall: no gold items", name))
		ev.warnf("%s recall undefined: no gold items", name)
	}
	return pr
}

func (ev *Evaluator) warnf(format string, args ...interface{}) {
	if ev.Logger != nil {
		ev.Logger.Printf("Warning: "+format, args...)
	}
}
