package segment

import (
	"context"
	"fmt"
	"sync"
)

// ParseCorpus parses every line against the segmenter's snapshot. With more
// than one worker the lines are fanned out over a WorkerPool; each job
// writes only its own slot of the result slice, so the output is identical
// to a sequential parse. A segmenter with a Trace writer always runs
// sequentially.
func ParseCorpus(ctx context.Context, seg *Segmenter, lines []string, workers int) ([]Result, error) {
	results := make([]Result, len(lines))
	if workers <= 1 || seg.Trace != nil || len(lines) < 2 {
		for i, line := range lines {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			r, err := seg.ParseLine(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i, err)
			}
			results[i] = r
		}
		return results, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var firstErr error
	var errMu sync.Mutex
	wp := NewWorkerPool(workers, workers*2)
	wp.OnError = func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		errMu.Unlock()
	}
	wp.Start(ctx)

	for i := range lines {
		idx := i
		job := func(ctx context.Context) error {
			r, err := seg.ParseLine(lines[idx])
			if err != nil {
				return fmt.Errorf("line %d: %w", idx, err)
			}
			results[idx] = r
			return nil
		}
		if err := wp.SubmitCtx(ctx, job); err != nil {
			break
		}
	}
	wp.Close()

	errMu.Lock()
	defer errMu.Unlock()
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Tally counts how often each piece was used across the results and the
// total number of pieces.
func Tally(results []Result) (usage map[string]float64, running int) {
	usage = make(map[string]float64)
	for _, r := range results {
		for _, p := range r.Pieces {
			usage[p]++
			running++
		}
	}
	return usage, running
}

// Pieces returns the piece sequences of the results.
func Pieces(results []Result) [][]string {
	out := make([][]string, len(results))
	for i, r := range results {
		out[i] = r.Pieces
	}
	return out
}

// TotalCost sums the line costs.
func TotalCost(results []Result) float64 {
	var total float64
	for _, r := range results {
		total += r.Cost
	}
	return total
}
