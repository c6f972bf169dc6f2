package evaluate

import (
	"bytes"
	"log"
	"testing"

	"github.com/japaniel/wordbreaker/pkg/lexicon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name  string
		state State
		truth int
		hyp   int
		want  Step
	}{
		{"match from aligned", Aligned, 3, 3, Step{Next: Aligned, AdvanceTruth: true, AdvanceHypothesis: true, Match: true}},
		{"match ends truth lag", TruthAhead, 5, 5, Step{Next: Aligned, AdvanceTruth: true, AdvanceHypothesis: true, Match: true, Merged: true}},
		{"match ends hypothesis lag", HypothesisAhead, 5, 5, Step{Next: Aligned, AdvanceTruth: true, AdvanceHypothesis: true, Match: true, Split: true}},
		{"truth smaller", Aligned, 2, 4, Step{Next: TruthAhead, AdvanceTruth: true}},
		{"truth still smaller", TruthAhead, 3, 4, Step{Next: TruthAhead, AdvanceTruth: true}},
		{"hypothesis smaller", Aligned, 4, 2, Step{Next: HypothesisAhead, AdvanceHypothesis: true}},
		{"lag flips", TruthAhead, 6, 5, Step{Next: HypothesisAhead, AdvanceHypothesis: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Transition(tt.state, tt.truth, tt.hyp))
		})
	}
}

func TestAlign(t *testing.T) {
	got := Align([]int{2, 5, 7}, []int{2, 3, 7})
	assert.Equal(t, Alignment{TruePositives: 2, Merged: 1}, got)

	got = Align([]int{2, 4}, []int{1, 2, 3, 4})
	assert.Equal(t, Alignment{TruePositives: 2, Split: 2}, got)
}

func TestOffsets(t *testing.T) {
	assert.Equal(t, []int{2, 3, 6}, Offsets([]string{"ab", "c", "日本語"}))
	assert.Empty(t, Offsets(nil))
}

// gold "ab ab" / "ab ba"
func goldEvaluator() *Evaluator {
	return &Evaluator{
		Breaks:       [][]int{{2, 4}, {2, 4}},
		Gold:         map[string]int{"ab": 3, "ba": 1},
		RunningWords: 4,
	}
}

func learnedLexicon(t *testing.T, usage map[string]float64) *lexicon.Lexicon {
	t.Helper()
	l := lexicon.New()
	l.AddLetters("abab")
	l.AddLetters("abba")
	for key := range usage {
		if len(key) > 1 {
			require.True(t, l.AddEntry(key, 1))
		}
	}
	l.ResetCounts()
	l.AddUsage(usage)
	l.FilterZeroCountEntries(1)
	l.ComputeFrequencies()
	return l
}

func TestEvaluatePerfectSegmentation(t *testing.T) {
	ev := goldEvaluator()
	lex := learnedLexicon(t, map[string]float64{"ab": 3, "ba": 1})
	parsed := [][]string{{"ab", "ab"}, {"ab", "ba"}}

	s := ev.Evaluate(4, parsed, lex, 4)
	assert.Equal(t, 4, s.Cycle)
	assert.Equal(t, PR{Precision: 1, Recall: 1}, s.Break)
	assert.Equal(t, PR{Precision: 1, Recall: 1}, s.Token)
	assert.Equal(t, PR{Precision: 0.5, Recall: 1}, s.Type)
	assert.Empty(t, s.Skipped)
	assert.Empty(t, s.Diagnostics)
}

func TestEvaluateSingleCharacters(t *testing.T) {
	ev := goldEvaluator()
	lex := learnedLexicon(t, map[string]float64{"a": 4, "b": 4})
	parsed := [][]string{{"a", "b", "a", "b"}, {"a", "b", "b", "a"}}

	s := ev.Evaluate(0, parsed, lex, 8)
	assert.Equal(t, PR{Precision: 0.5, Recall: 1}, s.Break)
	assert.Equal(t, Alignment{TruePositives: 4, Split: 4}, s.Alignment)
	assert.Equal(t, PR{}, s.Token)
	assert.Equal(t, PR{}, s.Type)
}

func TestEvaluateSkipsShortLines(t *testing.T) {
	var buf bytes.Buffer
	ev := &Evaluator{
		Breaks:       [][]int{{3}},
		Gold:         map[string]int{},
		RunningWords: 0,
		Logger:       log.New(&buf, "", 0),
	}
	lex := lexicon.New()
	lex.AddLetters("abc")
	lex.ComputeFrequencies()

	s := ev.Evaluate(1, [][]string{{"a", "b", "c"}}, lex, 3)
	assert.Equal(t, []int{0}, s.Skipped)
	assert.Equal(t, PR{}, s.Break)
	assert.NotEmpty(t, s.Diagnostics)
	assert.Contains(t, buf.String(), "skipping line 0")
}
