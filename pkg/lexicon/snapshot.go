package lexicon

// Snapshot is a read-only copy of the entry costs taken at a cycle
// boundary. It is safe for concurrent readers.
type Snapshot struct {
	cost           map[string]float64
	maxEntryLength int
}

// NewSnapshot builds a snapshot from piece frequencies. Pieces with a
// non-positive frequency are left out.
func NewSnapshot(freq map[string]float64) *Snapshot {
	l := New()
	for key, f := range freq {
		if f <= 0 || !l.AddEntry(key, 0) {
			continue
		}
		l.entries[key].Frequency = f
	}
	return l.Snapshot()
}

// Cost returns the plog of a piece and whether the piece is known.
func (s *Snapshot) Cost(piece string) (float64, bool) {
	c, ok := s.cost[piece]
	return c, ok
}

func (s *Snapshot) MaxEntryLength() int { return s.maxEntryLength }

func (s *Snapshot) Len() int { return len(s.cost) }
