package timeline

import "time"

// Navigator is the stage picker shown next to the network details. It is a value: every
// move returns a new Navigator and leaves the receiver untouched.
type Navigator struct {
	selected int
	count    int
}

// NewNavigator starts on the active stage, or on the first one when none is active.
func NewNavigator(t *Timeline, now time.Time) Navigator {
	i, ok := t.ActiveIndex(now)
	if !ok {
		i = 0
	}
	return Navigator{selected: i, count: t.Len()}
}

func (n Navigator) Selected() int { return n.selected }

// Select jumps to position i, clamped to the available stages.
func (n Navigator) Select(i int) Navigator {
	switch {
	case n.count == 0:
		i = 0
	case i < 0:
		i = 0
	case i >= n.count:
		i = n.count - 1
	}
	return Navigator{selected: i, count: n.count}
}

func (n Navigator) Next() Navigator { return n.Select(n.selected + 1) }
func (n Navigator) Prev() Navigator { return n.Select(n.selected - 1) }

func (n Navigator) HasNext() bool { return n.selected+1 < n.count }
func (n Navigator) HasPrev() bool { return n.selected > 0 }
