package pricing

import (
	"fmt"
	"time"

	"github.com/rev-net/revdash/internal/fixedpoint"
	"github.com/rev-net/revdash/internal/types"
)

// NextWeight returns the weight of the following cycle: current * (1 - decay), truncated.
func NextWeight(current fixedpoint.Amount, decay fixedpoint.Percent) (fixedpoint.Amount, error) {
	if err := decay.Validate(); err != nil {
		return fixedpoint.Amount{}, err
	}
	if decay.IsZero() {
		return current, nil
	}
	return current.MulDiv(decay.Complement().ValueInt(), decay.ScaleInt())
}

// PreviousWeight inverts NextWeight: current / (1 - decay). A full decay wipes the weight,
// so there is nothing to invert.
func PreviousWeight(current fixedpoint.Amount, decay fixedpoint.Percent) (fixedpoint.Amount, error) {
	if err := decay.Validate(); err != nil {
		return fixedpoint.Amount{}, err
	}
	if decay.IsZero() {
		return current, nil
	}
	if decay.IsFull() {
		return fixedpoint.Amount{}, fmt.Errorf("%w: previous weight under 100%% decay", fixedpoint.ErrDivisionByZero)
	}
	return current.MulDiv(decay.ScaleInt(), decay.Complement().ValueInt())
}

// WeightAfter applies n successive decays, truncating after each one like the protocol does
// when it derives a cycle's weight from its predecessor.
func WeightAfter(current fixedpoint.Amount, decay fixedpoint.Percent, n int) (fixedpoint.Amount, error) {
	if n < 0 {
		return fixedpoint.Amount{}, fmt.Errorf("%w: negative cycle count %d", fixedpoint.ErrParse, n)
	}
	w := current
	for i := 0; i < n && !w.IsZero(); i++ {
		next, err := NextWeight(w, decay)
		if err != nil {
			return fixedpoint.Amount{}, err
		}
		w = next
	}
	return w, nil
}

// maxCycles bounds the iterative decay a single quote will run.
const maxCycles = 1_000_000

// CurrentWeight returns the weight in force at now and the number of decays applied. Before
// the stage starts, or without a decay frequency, that is the initial weight.
func CurrentWeight(stage types.Stage, now time.Time) (fixedpoint.Amount, int, error) {
	if stage.DecayFrequency <= 0 || !now.After(stage.StartTime) {
		return stage.InitialWeight, 0, nil
	}
	elapsed := now.Sub(stage.StartTime)
	if end, finite := stage.End(); finite && now.After(end) {
		elapsed = end.Sub(stage.StartTime)
	}
	n := int(elapsed / stage.DecayFrequency)
	if n > maxCycles {
		return fixedpoint.Amount{}, 0, fmt.Errorf("%w: %d decay cycles", fixedpoint.ErrOverflow, n)
	}
	w, err := WeightAfter(stage.InitialWeight, stage.DecayPercent, n)
	if err != nil {
		return fixedpoint.Amount{}, 0, err
	}
	return w, n, nil
}
