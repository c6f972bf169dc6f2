// Package learn runs the MDL refinement loop: nominate, re-parse, prune,
// and score, once per cycle.
package learn

import (
	"context"
	"fmt"
	"io"
	"log"
	"runtime"

	"github.com/japaniel/wordbreaker/pkg/candidate"
	"github.com/japaniel/wordbreaker/pkg/corpus"
	"github.com/japaniel/wordbreaker/pkg/evaluate"
	"github.com/japaniel/wordbreaker/pkg/lexicon"
	"github.com/japaniel/wordbreaker/pkg/segment"
)

// Row is one line of the per-cycle history.
type Row struct {
	Cycle            int
	DictionaryLength float64
	CorpusLength     float64
	Entries          int
	Break            evaluate.PR
	Token            evaluate.PR
	Type             evaluate.PR
}

// TotalLength is the MDL objective: corpus cost plus lexicon cost.
func (r Row) TotalLength() float64 { return r.DictionaryLength + r.CorpusLength }

// CycleResult describes what happened during one cycle.
type CycleResult struct {
	Row
	Nominations []candidate.Nomination
	Deleted     []string
	Score       evaluate.Score
}

// Recorder receives every finished cycle, e.g. to persist it.
type Recorder interface {
	RecordCycle(ctx context.Context, r CycleResult) error
}

// Learner owns the lexicon and drives it through the refinement cycles.
type Learner struct {
	Corpus *corpus.Corpus
	// Cycles is the number of nomination cycles after the initial parse.
	Cycles int
	// Candidates is the number of nominees admitted per cycle.
	Candidates int
	// Workers parallelizes the per-cycle parse. 1 parses sequentially.
	Workers int

	// Logger is used for per-cycle summaries and warnings. nil means no logging.
	Logger *log.Logger
	// Trace receives the DP trace of every parsed line. Forces a sequential parse.
	Trace io.Writer
	// OnCycle is called after every cycle, including cycle 0.
	OnCycle  func(CycleResult)
	Recorder Recorder

	lex     *lexicon.Lexicon
	eval    *evaluate.Evaluator
	results []segment.Result
	history []Row
}

// NewLearner creates a Learner over c with the default schedule.
func NewLearner(c *corpus.Corpus) *Learner {
	return &Learner{
		Corpus:     c,
		Cycles:     200,
		Candidates: 25,
		Workers:    runtime.NumCPU(),
	}
}

// Run performs cycle 0 with single characters only, then Cycles
// nomination cycles. A canceled run, including one canceled in the middle of
// a parse, keeps the lexicon, parse and history of the last completed cycle.
func (l *Learner) Run(ctx context.Context) error {
	if l.Corpus == nil {
		return fmt.Errorf("learner has no corpus")
	}
	l.lex = lexicon.New()
	for _, line := range l.Corpus.Lines {
		l.lex.AddLetters(line)
	}
	l.lex.ComputeFrequencies()
	l.eval = &evaluate.Evaluator{
		Breaks:       l.Corpus.Breaks,
		Gold:         l.Corpus.Gold,
		RunningWords: l.Corpus.RunningWords,
		Logger:       l.Logger,
	}
	l.history = l.history[:0]

	if err := l.cycle(ctx, 0, nil); err != nil {
		return err
	}
	for n := 1; n <= l.Cycles; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		noms := candidate.Generate(segment.Pieces(l.results), l.lex, l.Candidates)
		if err := l.cycle(ctx, n, noms); err != nil {
			return err
		}
	}
	return nil
}

func (l *Learner) cycle(ctx context.Context, n int, noms []candidate.Nomination) error {
	seg := segment.NewSegmenter(l.lex.Snapshot())
	seg.Trace = l.Trace
	results, err := segment.ParseCorpus(ctx, seg, l.Corpus.Lines, l.Workers)
	if err != nil {
		// Leave the lexicon as the previous cycle left it.
		keys := make([]string, len(noms))
		for i, nom := range noms {
			keys[i] = nom.Piece
		}
		l.lex.Withdraw(keys...)
		return fmt.Errorf("cycle %d: %w", n, err)
	}
	l.results = results

	usage, running := segment.Tally(results)
	l.lex.ResetCounts()
	l.lex.AddUsage(usage)
	deleted := l.lex.FilterZeroCountEntries(n)
	l.lex.RecordCounts(n)
	l.lex.ComputeFrequencies()
	dictLen := l.lex.ComputeDictionaryLength()

	score := l.eval.Evaluate(n, segment.Pieces(results), l.lex, running)
	row := Row{
		Cycle:            n,
		DictionaryLength: dictLen,
		CorpusLength:     segment.TotalCost(results),
		Entries:          l.lex.Len(),
		Break:            score.Break,
		Token:            score.Token,
		Type:             score.Type,
	}
	l.history = append(l.history, row)

	if l.Logger != nil {
		l.Logger.Printf("cycle %d: %d entries, %d nominated, %d deleted, dictionary %.3f + corpus %.3f = %.3f bits",
			n, row.Entries, len(noms), len(deleted), row.DictionaryLength, row.CorpusLength, row.TotalLength())
	}

	res := CycleResult{Row: row, Nominations: noms, Deleted: deleted, Score: score}
	if l.Recorder != nil {
		if err := l.Recorder.RecordCycle(ctx, res); err != nil {
			return fmt.Errorf("cycle %d: record: %w", n, err)
		}
	}
	if l.OnCycle != nil {
		l.OnCycle(res)
	}
	return nil
}

// Lexicon returns the learned lexicon. It is nil before Run.
func (l *Learner) Lexicon() *lexicon.Lexicon { return l.lex }

// Parsed returns the pieces of the last parse.
func (l *Learner) Parsed() [][]string { return segment.Pieces(l.results) }

// History returns the per-cycle rows, cycle 0 first.
func (l *Learner) History() []Row {
	out := make([]Row, len(l.history))
	copy(out, l.history)
	return out
}
