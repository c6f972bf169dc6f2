package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/japaniel/wordbreaker/pkg/learn"
	"github.com/japaniel/wordbreaker/pkg/lexicon"
)

// Recorder persists learner cycles of one run through a BatchWriter.
type Recorder struct {
	RunID string
	bw    *BatchWriter
}

// NewRecorder creates a recorder for an existing run.
func NewRecorder(conn *sql.DB, runID string) *Recorder {
	return &Recorder{
		RunID: runID,
		bw:    NewBatchWriter(conn, 16, 250*time.Millisecond),
	}
}

// RecordCycle queues the cycle summary, its nominations and its deletions
// as one write. An earlier failed commit is returned so the run stops.
func (r *Recorder) RecordCycle(_ context.Context, res learn.CycleResult) error {
	if err := r.bw.Err(); err != nil {
		return err
	}
	row := Cycle{
		Cycle:            res.Cycle,
		Entries:          res.Entries,
		DictionaryLength: res.DictionaryLength,
		CorpusLength:     res.CorpusLength,
		BreakPrecision:   res.Break.Precision,
		BreakRecall:      res.Break.Recall,
		TokenPrecision:   res.Token.Precision,
		TokenRecall:      res.Token.Recall,
		TypePrecision:    res.Type.Precision,
		TypeRecall:       res.Type.Recall,
	}
	noms := make([]Nomination, len(res.Nominations))
	for i, n := range res.Nominations {
		noms[i] = Nomination{Cycle: res.Cycle, Rank: i + 1, Piece: n.Piece, Count: n.Count}
	}
	deleted := append([]string(nil), res.Deleted...)

	return r.bw.Submit(func(_ context.Context, tx *sql.Tx) error {
		if err := InsertCycle(tx, r.RunID, row); err != nil {
			return err
		}
		for _, n := range noms {
			if err := InsertNomination(tx, r.RunID, n); err != nil {
				return err
			}
		}
		for _, key := range deleted {
			if err := InsertDeletion(tx, r.RunID, lexicon.Deletion{Key: key, Cycle: res.Cycle}); err != nil {
				return err
			}
		}
		return nil
	})
}

// Finish stores the final lexicon, marks the run finished and closes the
// writer. lex may be nil when the run was aborted before the first cycle.
func (r *Recorder) Finish(lex *lexicon.Lexicon) error {
	now := time.Now()
	err := r.bw.Submit(func(_ context.Context, tx *sql.Tx) error {
		if lex != nil {
			if err := SaveLexicon(tx, r.RunID, lex); err != nil {
				return err
			}
		}
		return FinishRun(tx, r.RunID, now)
	})
	if cerr := r.bw.Close(); err == nil {
		err = cerr
	}
	return err
}

// Close releases the writer without storing the lexicon.
func (r *Recorder) Close() error {
	return r.bw.Close()
}
