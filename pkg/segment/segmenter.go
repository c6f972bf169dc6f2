package segment

import (
	"errors"
	"fmt"
	"io"

	"github.com/japaniel/wordbreaker/pkg/lexicon"
)

// ErrUncovered is returned when some position of a line cannot be reached
// by any known piece. With every corpus character in the lexicon this
// cannot happen, so it signals a broken single-character floor.
var ErrUncovered = errors.New("segment: line not covered by known pieces")

// Result is the best segmentation of one line.
type Result struct {
	Pieces []string
	// Cost is the sum of −ln(frequency) over the pieces.
	Cost float64
}

// Segmenter finds the lowest-cost decomposition of a line into pieces of a
// lexicon snapshot.
type Segmenter struct {
	Snap *lexicon.Snapshot
	// Trace receives a step-by-step dump of the DP when non-nil.
	Trace io.Writer
}

// NewSegmenter creates a segmenter over the given snapshot.
func NewSegmenter(snap *lexicon.Snapshot) *Segmenter {
	return &Segmenter{Snap: snap}
}

// ParseLine runs the DP over end positions 1..len(line). For each end it
// scans start positions in increasing order within the max entry length
// window and keeps the first minimum it finds.
func (s *Segmenter) ParseLine(line string) (Result, error) {
	runes := []rune(line)
	n := len(runes)
	if n == 0 {
		return Result{}, nil
	}

	maxLen := s.Snap.MaxEntryLength()
	best := make([]float64, n+1)
	from := make([]int, n+1)
	reached := make([]bool, n+1)
	reached[0] = true

	if s.Trace != nil {
		fmt.Fprintf(s.Trace, "\nOuter\tInner\nscan:\tscan:\tPiece\tFound?\n")
	}

	for end := 1; end <= n; end++ {
		start := 0
		if end > maxLen {
			start = end - maxLen
		}
		for st := start; st < end; st++ {
			piece := string(runes[st:end])
			cost, ok := s.Snap.Cost(piece)
			if s.Trace != nil {
				fmt.Fprintf(s.Trace, " %3d\t%3d\t%5s\t%t\n", end, st, piece, ok)
			}
			if !ok || !reached[st] {
				continue
			}
			v := best[st] + cost
			if !reached[end] || v < best[end] {
				best[end] = v
				from[end] = st
				reached[end] = true
			}
		}
		if s.Trace != nil && reached[end] {
			fmt.Fprintf(s.Trace, "\t\t\tchosen: %s %7.3f\n", string(runes[from[end]:end]), best[end])
		}
	}

	if !reached[n] {
		for i := 1; i <= n; i++ {
			if !reached[i] {
				return Result{}, fmt.Errorf("%w: offset %d of %q", ErrUncovered, i, line)
			}
		}
	}

	var pieces []string
	for end := n; end > 0; end = from[end] {
		pieces = append(pieces, string(runes[from[end]:end]))
	}
	for i, j := 0, len(pieces)-1; i < j; i, j = i+1, j-1 {
		pieces[i], pieces[j] = pieces[j], pieces[i]
	}
	return Result{Pieces: pieces, Cost: best[n]}, nil
}
