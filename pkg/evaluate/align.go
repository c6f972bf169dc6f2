package evaluate

// State of the break alignment walk.
type State int

const (
	// Aligned: the last compared offsets matched.
	Aligned State = iota
	// TruthAhead: the last step consumed a gold offset the hypothesis lacked.
	TruthAhead
	// HypothesisAhead: the last step consumed a hypothesized offset the gold lacked.
	HypothesisAhead
)

func (s State) String() string {
	switch s {
	case Aligned:
		return "aligned"
	case TruthAhead:
		return "truth-ahead"
	case HypothesisAhead:
		return "hypothesis-ahead"
	}
	return "unknown"
}

// Step is the outcome of one transition.
type Step struct {
	Next              State
	AdvanceTruth      bool
	AdvanceHypothesis bool
	Match             bool
	// Merged and Split qualify a match that ends a lag state.
	Merged bool
	Split  bool
}

// Transition applies the walk rules to the next gold and hypothesized
// offsets. A match advances both and returns to Aligned from any state; a
// mismatch advances the smaller offset and moves to the matching lag state.
func Transition(state State, truth, hyp int) Step {
	switch {
	case truth == hyp:
		return Step{
			Next:              Aligned,
			AdvanceTruth:      true,
			AdvanceHypothesis: true,
			Match:             true,
			Merged:            state == TruthAhead,
			Split:             state == HypothesisAhead,
		}
	case truth < hyp:
		return Step{Next: TruthAhead, AdvanceTruth: true}
	default:
		return Step{Next: HypothesisAhead, AdvanceHypothesis: true}
	}
}

// Alignment summarizes the walk over one or more lines.
type Alignment struct {
	TruePositives int
	// Merged counts matches reached from TruthAhead: the hypothesis ran
	// over one or more gold breaks.
	Merged int
	// Split counts matches reached from HypothesisAhead: the hypothesis
	// broke inside a gold word.
	Split int
}

func (a *Alignment) add(o Alignment) {
	a.TruePositives += o.TruePositives
	a.Merged += o.Merged
	a.Split += o.Split
}

// Align walks two increasing offset sequences and counts shared breaks.
func Align(truth, hyp []int) Alignment {
	var out Alignment
	state := Aligned
	i, j := 0, 0
	for i < len(truth) && j < len(hyp) {
		step := Transition(state, truth[i], hyp[j])
		if step.Match {
			out.TruePositives++
		}
		if step.Merged {
			out.Merged++
		}
		if step.Split {
			out.Split++
		}
		if step.AdvanceTruth {
			i++
		}
		if step.AdvanceHypothesis {
			j++
		}
		state = step.Next
	}
	return out
}

// Offsets returns the cumulative character offsets of the pieces.
func Offsets(pieces []string) []int {
	out := make([]int, 0, len(pieces))
	n := 0
	for _, p := range pieces {
		n += len([]rune(p))
		out = append(out, n)
	}
	return out
}
