package candidate

import (
	"testing"

	"github.com/japaniel/wordbreaker/pkg/lexicon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLexicon(lines ...string) *lexicon.Lexicon {
	l := lexicon.New()
	for _, line := range lines {
		l.AddLetters(line)
	}
	l.ComputeFrequencies()
	return l
}

func TestCountOrdersByFrequencyThenFirstSeen(t *testing.T) {
	lex := newLexicon("abab", "abba")
	parsed := [][]string{
		{"a", "b", "a", "b"},
		{"a", "b", "b", "a"},
	}

	got := Count(parsed, lex)
	assert.Equal(t, []Nomination{
		{Piece: "ab", Count: 3},
		{Piece: "ba", Count: 2},
		{Piece: "bb", Count: 1},
	}, got)
}

func TestCountSkipsKnownEntries(t *testing.T) {
	lex := newLexicon("abab")
	lex.AddEntry("ab", 2)

	got := Count([][]string{{"ab", "ab"}, {"a", "b"}}, lex)
	assert.Equal(t, []Nomination{{Piece: "abab", Count: 1}}, got)
}

func TestGenerateAdmitsTopK(t *testing.T) {
	lex := newLexicon("abab", "abba")
	parsed := [][]string{
		{"a", "b", "a", "b"},
		{"a", "b", "b", "a"},
	}

	got := Generate(parsed, lex, 2)
	assert.Equal(t, []Nomination{{Piece: "ab", Count: 3}, {Piece: "ba", Count: 2}}, got)

	ab, ok := lex.Entry("ab")
	require.True(t, ok)
	assert.Equal(t, 3.0, ab.Count)
	assert.InDelta(t, 3.0/13.0, ab.Frequency, 1e-12)
	assert.False(t, lex.Contains("bb"))
	assert.Equal(t, 2, lex.MaxEntryLength())
}

func TestGenerateSkipsBlacklisted(t *testing.T) {
	lex := newLexicon("abab", "abba")
	lex.AddEntry("ab", 1)
	lex.ResetCounts()
	lex.AddUsage(map[string]float64{"a": 4, "b": 4})
	require.Equal(t, []string{"ab"}, lex.FilterZeroCountEntries(1))

	parsed := [][]string{
		{"a", "b", "a", "b"},
		{"a", "b", "b", "a"},
	}
	got := Generate(parsed, lex, 1)
	assert.Equal(t, []Nomination{{Piece: "ba", Count: 2}}, got)
	assert.False(t, lex.Contains("ab"))
}

func TestGenerateZeroQuota(t *testing.T) {
	lex := newLexicon("ab")
	assert.Empty(t, Generate([][]string{{"a", "b"}}, lex, 0))
	assert.False(t, lex.Contains("ab"))
}
