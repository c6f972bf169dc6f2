package db

import "time"

// Run is one invocation of the learner.
type Run struct {
	ID         string
	Language   string
	Corpus     string
	Lines      int
	Cycles     int
	Candidates int
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Cycle is the stored summary of one learning cycle.
type Cycle struct {
	Cycle            int
	Entries          int
	DictionaryLength float64
	CorpusLength     float64
	BreakPrecision   float64
	BreakRecall      float64
	TokenPrecision   float64
	TokenRecall      float64
	TypePrecision    float64
	TypeRecall       float64
}

// Nomination is a candidate admitted during a cycle, ranked by count.
type Nomination struct {
	Cycle int
	Rank  int
	Piece string
	Count int
}

// HistoryPoint is one recorded count of a stored entry.
type HistoryPoint struct {
	Cycle int
	Count float64
}

// Entry is a lexicon entry of a finished run.
type Entry struct {
	Piece     string
	Count     float64
	Frequency float64
	History   []HistoryPoint
}
