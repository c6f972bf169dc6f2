package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/japaniel/wordbreaker/pkg/lexicon"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// CreateRun inserts a run with a fresh id and returns it.
func CreateRun(db DBExecutor, r Run) (string, error) {
	if strings.TrimSpace(r.Corpus) == "" {
		return "", fmt.Errorf("corpus must be non-empty")
	}
	id := uuid.New().String()
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	_, err := db.Exec(
		`INSERT INTO runs (id, language, corpus, lines, cycles, candidates, started_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, r.Language, r.Corpus, r.Lines, r.Cycles, r.Candidates, r.StartedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// FinishRun stamps the run's completion time.
func FinishRun(db DBExecutor, runID string, at time.Time) error {
	res, err := db.Exec(`UPDATE runs SET finished_at = ? WHERE id = ?`, at, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// GetRun loads a run by id.
func GetRun(db DBExecutor, runID string) (*Run, error) {
	var r Run
	var finished sql.NullTime
	err := db.QueryRow(
		`SELECT id, language, corpus, lines, cycles, candidates, started_at, finished_at FROM runs WHERE id = ?`, runID,
	).Scan(&r.ID, &r.Language, &r.Corpus, &r.Lines, &r.Cycles, &r.Candidates, &r.StartedAt, &finished)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		t := finished.Time
		r.FinishedAt = &t
	}
	return &r, nil
}

// InsertCycle stores the summary row of a cycle.
func InsertCycle(db DBExecutor, runID string, c Cycle) error {
	_, err := db.Exec(`INSERT INTO cycles (run_id, cycle, entries, dictionary_length, corpus_length,
		break_precision, break_recall, token_precision, token_recall, type_precision, type_recall)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, c.Cycle, c.Entries, c.DictionaryLength, c.CorpusLength,
		c.BreakPrecision, c.BreakRecall, c.TokenPrecision, c.TokenRecall, c.TypePrecision, c.TypeRecall)
	if err != nil {
		return fmt.Errorf("insert cycle %d: %w", c.Cycle, err)
	}
	return nil
}

// GetCycles returns the cycles of a run in order.
func GetCycles(db DBExecutor, runID string) ([]Cycle, error) {
	rows, err := db.Query(`SELECT cycle, entries, dictionary_length, corpus_length,
		break_precision, break_recall, token_precision, token_recall, type_precision, type_recall
		FROM cycles WHERE run_id = ? ORDER BY cycle`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Cycle
	for rows.Next() {
		var c Cycle
		if err := rows.Scan(&c.Cycle, &c.Entries, &c.DictionaryLength, &c.CorpusLength,
			&c.BreakPrecision, &c.BreakRecall, &c.TokenPrecision, &c.TokenRecall, &c.TypePrecision, &c.TypeRecall); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// InsertNomination stores one admitted candidate. Rank starts at 1.
func InsertNomination(db DBExecutor, runID string, n Nomination) error {
	if n.Rank < 1 {
		return fmt.Errorf("rank must be positive, got %d", n.Rank)
	}
	_, err := db.Exec(`INSERT INTO nominations (run_id, cycle, rank, piece, count) VALUES (?, ?, ?, ?, ?)`,
		runID, n.Cycle, n.Rank, n.Piece, n.Count)
	if err != nil {
		return fmt.Errorf("insert nomination %q: %w", n.Piece, err)
	}
	return nil
}

// GetNominations returns the nominations of one cycle by rank.
func GetNominations(db DBExecutor, runID string, cycle int) ([]Nomination, error) {
	rows, err := db.Query(`SELECT cycle, rank, piece, count FROM nominations WHERE run_id = ? AND cycle = ? ORDER BY rank`, runID, cycle)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Nomination
	for rows.Next() {
		var n Nomination
		if err := rows.Scan(&n.Cycle, &n.Rank, &n.Piece, &n.Count); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// InsertDeletion records a pruned piece. A piece is pruned at most once per
// run; a repeated insert is ignored.
func InsertDeletion(db DBExecutor, runID string, d lexicon.Deletion) error {
	_, err := db.Exec(`INSERT OR IGNORE INTO deletions (run_id, piece, cycle) VALUES (?, ?, ?)`, runID, d.Key, d.Cycle)
	if err != nil {
		return fmt.Errorf("insert deletion %q: %w", d.Key, err)
	}
	return nil
}

// GetDeletions returns the deletion log of a run ordered by cycle then piece.
func GetDeletions(db DBExecutor, runID string) ([]lexicon.Deletion, error) {
	rows, err := db.Query(`SELECT piece, cycle FROM deletions WHERE run_id = ? ORDER BY cycle, piece`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []lexicon.Deletion
	for rows.Next() {
		var d lexicon.Deletion
		if err := rows.Scan(&d.Key, &d.Cycle); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SaveLexicon stores every entry of lex together with its count history,
// replacing whatever was stored for the run before.
func SaveLexicon(db DBExecutor, runID string, lex *lexicon.Lexicon) error {
	if _, err := db.Exec(`DELETE FROM entry_history WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("clear entry history: %w", err)
	}
	if _, err := db.Exec(`DELETE FROM entries WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	for _, e := range lex.Entries() {
		if _, err := db.Exec(`INSERT INTO entries (run_id, piece, count, frequency) VALUES (?, ?, ?, ?)`,
			runID, e.Key, e.Count, e.Frequency); err != nil {
			return fmt.Errorf("insert entry %q: %w", e.Key, err)
		}
		for _, h := range e.History {
			if _, err := db.Exec(`INSERT INTO entry_history (run_id, piece, cycle, count) VALUES (?, ?, ?, ?)`,
				runID, e.Key, h.Cycle, h.Count); err != nil {
				return fmt.Errorf("insert history of %q: %w", e.Key, err)
			}
		}
	}
	return nil
}

// GetEntries returns the stored lexicon of a run sorted by piece, each with
// its count history.
func GetEntries(db DBExecutor, runID string) ([]Entry, error) {
	rows, err := db.Query(`SELECT piece, count, frequency FROM entries WHERE run_id = ? ORDER BY piece`, runID)
	if err != nil {
		return nil, err
	}
	var out []Entry
	index := make(map[string]int)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Piece, &e.Count, &e.Frequency); err != nil {
			rows.Close()
			return nil, err
		}
		index[e.Piece] = len(out)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	hrows, err := db.Query(`SELECT piece, cycle, count FROM entry_history WHERE run_id = ? ORDER BY piece, cycle`, runID)
	if err != nil {
		return nil, err
	}
	defer hrows.Close()
	for hrows.Next() {
		var piece string
		var h HistoryPoint
		if err := hrows.Scan(&piece, &h.Cycle, &h.Count); err != nil {
			return nil, err
		}
		if i, ok := index[piece]; ok {
			out[i].History = append(out[i].History, h)
		}
	}
	return out, hrows.Err()
}
