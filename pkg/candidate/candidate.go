// Package candidate nominates new lexicon pieces from the concatenations of
// adjacent pieces in the current parse.
package candidate

import (
	"sort"

	"github.com/japaniel/wordbreaker/pkg/lexicon"
)

// Nomination is a candidate piece with the number of times its two halves
// appeared next to each other in the parse.
type Nomination struct {
	Piece string
	Count int
}

// Count tallies every adjacent concatenation that is not already an entry.
// The result is ordered by descending count, ties kept in first-seen order.
func Count(parsed [][]string, lex *lexicon.Lexicon) []Nomination {
	index := make(map[string]int)
	var nominees []Nomination
	for _, line := range parsed {
		for i := 0; i+1 < len(line); i++ {
			piece := line[i] + line[i+1]
			if lex.Contains(piece) {
				continue
			}
			if j, ok := index[piece]; ok {
				nominees[j].Count++
				continue
			}
			index[piece] = len(nominees)
			nominees = append(nominees, Nomination{Piece: piece, Count: 1})
		}
	}
	sort.SliceStable(nominees, func(i, j int) bool {
		return nominees[i].Count > nominees[j].Count
	})
	return nominees
}

// Generate admits the top k non-blacklisted nominees into the lexicon,
// each seeded with its observed count, and recomputes frequencies.
// It returns the nominees actually admitted.
func Generate(parsed [][]string, lex *lexicon.Lexicon, k int) []Nomination {
	if k <= 0 {
		return nil
	}
	var admitted []Nomination
	for _, n := range Count(parsed, lex) {
		if lex.Blacklisted(n.Piece) {
			continue
		}
		if lex.AddEntry(n.Piece, float64(n.Count)) {
			admitted = append(admitted, n)
		}
		if len(admitted) == k {
			break
		}
	}
	lex.ComputeFrequencies()
	return admitted
}
