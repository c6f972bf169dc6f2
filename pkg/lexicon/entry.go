package lexicon

// CountRecord is one point of an entry's count history.
type CountRecord struct {
	Cycle int
	Count float64
}

// Entry is a piece of the lexicon together with its usage statistics.
type Entry struct {
	Key       string
	Count     float64
	Frequency float64
	// History holds (cycle, count) pairs, appended only when the count
	// observed at the end of a cycle differs from the previous record.
	History []CountRecord
}

// Length returns the length of the key in characters.
func (e *Entry) Length() int {
	return len([]rune(e.Key))
}

func (e *Entry) record(cycle int) {
	if n := len(e.History); n > 0 && e.History[n-1].Count == e.Count {
		return
	}
	e.History = append(e.History, CountRecord{Cycle: cycle, Count: e.Count})
}

func (e *Entry) clone() Entry {
	c := *e
	c.History = append([]CountRecord(nil), e.History...)
	return c
}

// Deletion records a nominated entry that was pruned for lack of use.
type Deletion struct {
	Key   string
	Cycle int
}
