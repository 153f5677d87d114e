/*

Stage timeline: which stage of a network is active at a given instant, when the next
transition happens and how long until it does. Every function takes "now" explicitly.

*/

package timeline

import (
	"sort"
	"time"

	"github.com/rev-net/revdash/internal/types"
)

// Timeline holds a network's stages in activation order.
type Timeline struct {
	stages []types.Stage
}

// New copies and orders the stages ascending by start time. Stages that share a start keep
// declaration order, so the later-declared one sits later and takes precedence.
func New(stages []types.Stage) *Timeline {
	sorted := make([]types.Stage, len(stages))
	copy(sorted, stages)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].StartTime.Equal(sorted[j].StartTime) {
			return sorted[i].StartTime.Before(sorted[j].StartTime)
		}
		return sorted[i].Index < sorted[j].Index
	})
	return &Timeline{stages: sorted}
}

// Stages returns the ordered stages.
func (t *Timeline) Stages() []types.Stage {
	out := make([]types.Stage, len(t.stages))
	copy(out, t.stages)
	return out
}

func (t *Timeline) Len() int { return len(t.stages) }

// Stage returns the stage at position i in activation order.
func (t *Timeline) Stage(i int) (types.Stage, bool) {
	if i < 0 || i >= len(t.stages) {
		return types.Stage{}, false
	}
	return t.stages[i], true
}

// ActiveIndex returns the position of the latest started stage, provided it is indefinite
// or has not yet run out.
// Earlier stages are superseded once a later one starts, so an expired latest stage leaves
// nothing active even when an earlier stage was indefinite.
func (t *Timeline) ActiveIndex(now time.Time) (int, bool) {
	i := t.lastStarted(now)
	if i < 0 {
		return 0, false
	}
	if end, finite := t.stages[i].End(); finite && !now.Before(end) {
		return 0, false
	}
	return i, true
}

// Active returns the active stage itself.
func (t *Timeline) Active(now time.Time) (types.Stage, bool) {
	i, ok := t.ActiveIndex(now)
	if !ok {
		return types.Stage{}, false
	}
	return t.stages[i], true
}

// NextTransition returns the start of the first stage that has not begun. Without one, a
// finite active stage transitions when it ends; an indefinite one never does.
func (t *Timeline) NextTransition(now time.Time) (time.Time, bool) {
	if j := t.lastStarted(now) + 1; j < len(t.stages) {
		return t.stages[j].StartTime, true
	}
	if i, ok := t.ActiveIndex(now); ok {
		return t.stages[i].End()
	}
	return time.Time{}, false
}

// Countdown is the time left until NextTransition, never negative.
func (t *Timeline) Countdown(now time.Time) (time.Duration, bool) {
	next, ok := t.NextTransition(now)
	if !ok {
		return 0, false
	}
	if d := next.Sub(now); d > 0 {
		return d, true
	}
	return 0, true
}

func (t *Timeline) lastStarted(now time.Time) int {
	// first position whose start is after now
	j := sort.Search(len(t.stages), func(i int) bool {
		return t.stages[i].StartTime.After(now)
	})
	return j - 1
}

// ActiveStageIndex is the one-shot form of New(stages).ActiveIndex(now). The index is a
// position in activation order.
func ActiveStageIndex(stages []types.Stage, now time.Time) (int, bool) {
	return New(stages).ActiveIndex(now)
}

// NextTransitionTime is the one-shot form of New(stages).NextTransition(now).
func NextTransitionTime(stages []types.Stage, now time.Time) (time.Time, bool) {
	return New(stages).NextTransition(now)
}
