package lexicon

import (
	"math"
	"sort"
	"unicode/utf8"
)

// Lexicon owns the entry table, the letter model used to price entries,
// and the permanent blacklist of pruned candidates.
//
// A Lexicon is not safe for concurrent use. Parsers read a Snapshot instead.
type Lexicon struct {
	entries        map[string]*Entry
	maxEntryLength int

	letterCounts map[rune]float64
	letterFreq   map[rune]float64
	letterPlog   map[rune]float64

	blacklist map[string]struct{}
	deletions []Deletion

	dictionaryLength  float64
	dictionaryHistory []float64
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		entries:      make(map[string]*Entry),
		letterCounts: make(map[rune]float64),
		letterFreq:   make(map[rune]float64),
		letterPlog:   make(map[rune]float64),
		blacklist:    make(map[string]struct{}),
	}
}

// AddLetters counts every character of a corpus line, both as a
// single-character entry and in the letter table.
func (l *Lexicon) AddLetters(line string) {
	for _, r := range line {
		key := string(r)
		if e, ok := l.entries[key]; ok {
			e.Count++
		} else {
			l.entries[key] = &Entry{Key: key, Count: 1}
		}
		l.letterCounts[r]++
	}
	if len(l.entries) > 0 && l.maxEntryLength < 1 {
		l.maxEntryLength = 1
	}
}

// AddEntry inserts a new entry seeded with count. It is a no-op returning
// false when the key is empty, already present or blacklisted.
func (l *Lexicon) AddEntry(key string, count float64) bool {
	if key == "" {
		return false
	}
	if _, ok := l.entries[key]; ok {
		return false
	}
	if _, ok := l.blacklist[key]; ok {
		return false
	}
	l.entries[key] = &Entry{Key: key, Count: count}
	if n := utf8.RuneCountInString(key); n > l.maxEntryLength {
		l.maxEntryLength = n
	}
	return true
}

// Withdraw removes entries that never took part in a parse, such as the
// nominees of a cycle that was abandoned. Unlike pruning, the keys are not
// blacklisted and no deletion is logged. Frequencies are recomputed.
func (l *Lexicon) Withdraw(keys ...string) {
	for _, key := range keys {
		delete(l.entries, key)
	}
	l.maxEntryLength = 0
	for key := range l.entries {
		if n := utf8.RuneCountInString(key); n > l.maxEntryLength {
			l.maxEntryLength = n
		}
	}
	l.ComputeFrequencies()
}

// FilterZeroCountEntries deletes and blacklists every multi-character entry
// with a zero count. Single-character entries are floored at 1 instead.
// It returns the removed keys in sorted order.
func (l *Lexicon) FilterZeroCountEntries(cycle int) []string {
	var removed []string
	for _, key := range l.Keys() {
		e := l.entries[key]
		if e.Count != 0 {
			continue
		}
		if utf8.RuneCountInString(key) == 1 {
			e.Count = 1
			continue
		}
		removed = append(removed, key)
		l.deletions = append(l.deletions, Deletion{Key: key, Cycle: cycle})
		l.blacklist[key] = struct{}{}
		delete(l.entries, key)
	}
	return removed
}

// ComputeFrequencies recomputes entry frequencies from counts and the
// letter frequencies and plogs from raw letter counts.
func (l *Lexicon) ComputeFrequencies() {
	total := l.TotalCount()
	for _, e := range l.entries {
		if total > 0 {
			e.Frequency = e.Count / total
		} else {
			e.Frequency = 0
		}
	}

	var letters float64
	for _, c := range l.letterCounts {
		letters += c
	}
	for r, c := range l.letterCounts {
		if letters == 0 {
			continue
		}
		f := c / letters
		l.letterFreq[r] = f
		l.letterPlog[r] = -math.Log(f)
	}
}

// ComputeDictionaryLength prices the lexicon as the sum of the letter plogs
// of every entry and appends the result to the dictionary history.
func (l *Lexicon) ComputeDictionaryLength() float64 {
	var length float64
	for _, key := range l.Keys() {
		for _, r := range key {
			length += l.letterPlog[r]
		}
	}
	l.dictionaryLength = length
	l.dictionaryHistory = append(l.dictionaryHistory, length)
	return length
}

// ResetCounts zeroes every entry count ahead of a fresh tally.
func (l *Lexicon) ResetCounts() {
	for _, e := range l.entries {
		e.Count = 0
	}
}

// AddUsage adds observed usage to the matching entries. Unknown keys are
// ignored.
func (l *Lexicon) AddUsage(usage map[string]float64) {
	for key, n := range usage {
		if e, ok := l.entries[key]; ok {
			e.Count += n
		}
	}
}

// RecordCounts appends the current count to each entry history when it
// changed since the last record.
func (l *Lexicon) RecordCounts(cycle int) {
	for _, e := range l.entries {
		e.record(cycle)
	}
}

// Snapshot returns an immutable view of the current frequencies.
func (l *Lexicon) Snapshot() *Snapshot {
	s := &Snapshot{
		cost:           make(map[string]float64, len(l.entries)),
		maxEntryLength: l.maxEntryLength,
	}
	for key, e := range l.entries {
		if e.Frequency > 0 {
			s.cost[key] = -math.Log(e.Frequency)
		}
	}
	return s
}

// Entry returns a copy of the entry stored under key.
func (l *Lexicon) Entry(key string) (Entry, bool) {
	e, ok := l.entries[key]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// Entries returns copies of all entries sorted by key.
func (l *Lexicon) Entries() []Entry {
	out := make([]Entry, 0, len(l.entries))
	for _, key := range l.Keys() {
		out = append(out, l.entries[key].clone())
	}
	return out
}

// Contains reports whether key is an active entry.
func (l *Lexicon) Contains(key string) bool {
	_, ok := l.entries[key]
	return ok
}

// Blacklisted reports whether key was pruned in an earlier cycle.
func (l *Lexicon) Blacklisted(key string) bool {
	_, ok := l.blacklist[key]
	return ok
}

// Keys returns the active keys in sorted order.
func (l *Lexicon) Keys() []string {
	keys := make([]string, 0, len(l.entries))
	for k := range l.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (l *Lexicon) Len() int { return len(l.entries) }

func (l *Lexicon) MaxEntryLength() int { return l.maxEntryLength }

// TotalCount is the sum of all entry counts.
func (l *Lexicon) TotalCount() float64 {
	var total float64
	for _, e := range l.entries {
		total += e.Count
	}
	return total
}

// LetterPlog returns −ln of the letter frequency of r.
func (l *Lexicon) LetterPlog(r rune) (float64, bool) {
	p, ok := l.letterPlog[r]
	return p, ok
}

func (l *Lexicon) Deletions() []Deletion {
	return append([]Deletion(nil), l.deletions...)
}

func (l *Lexicon) DictionaryLength() float64 { return l.dictionaryLength }

func (l *Lexicon) DictionaryHistory() []float64 {
	return append([]float64(nil), l.dictionaryHistory...)
}
