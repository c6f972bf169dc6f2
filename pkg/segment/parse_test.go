package segment

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCorpusParallelMatchesSequential(t *testing.T) {
	var lines []string
	for i := 0; i < 200; i++ {
		lines = append(lines, fmt.Sprintf("thecat%dsatonthemat%d", i%7, i%3))
	}
	l := letterLexicon(lines...)
	l.AddEntry("the", 10)
	l.AddEntry("cat", 5)
	l.AddEntry("mat", 5)
	l.ComputeFrequencies()
	seg := NewSegmenter(l.Snapshot())

	seq, err := ParseCorpus(context.Background(), seg, lines, 1)
	require.NoError(t, err)
	par, err := ParseCorpus(context.Background(), seg, lines, 8)
	require.NoError(t, err)

	assert.Equal(t, seq, par)
	assert.Equal(t, TotalCost(seq), TotalCost(par))
}

func TestParseCorpusReportsUncoveredLine(t *testing.T) {
	seg := NewSegmenter(letterLexicon("ab").Snapshot())
	lines := []string{"ab", "ba", "abx", "ab"}

	for _, workers := range []int{1, 4} {
		_, err := ParseCorpus(context.Background(), seg, lines, workers)
		require.Error(t, err, "workers=%d", workers)
		assert.True(t, errors.Is(err, ErrUncovered), "workers=%d", workers)
	}
}

func TestParseCorpusCanceled(t *testing.T) {
	seg := NewSegmenter(letterLexicon("ab").Snapshot())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseCorpus(ctx, seg, []string{"ab", "ba"}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTally(t *testing.T) {
	results := []Result{
		{Pieces: []string{"ab", "ab"}, Cost: 1},
		{Pieces: []string{"ab", "b", "a"}, Cost: 2},
	}
	usage, running := Tally(results)
	assert.Equal(t, map[string]float64{"ab": 3, "a": 1, "b": 1}, usage)
	assert.Equal(t, 5, running)
	assert.Equal(t, 3.0, TotalCost(results))
	assert.Equal(t, [][]string{{"ab", "ab"}, {"ab", "b", "a"}}, Pieces(results))
}
