// Package reorder translates a pointer drag gesture over rendered cards into
// a single atomic move against the entry store. The speculative reordering
// shown during the gesture is visual-only; nothing is persisted until the
// drop.
package reorder

import (
	"errors"
	"fmt"
)

// Mover commits the final move. The board store satisfies it.
type Mover interface {
	Move(from, to int) error
}

// State is the gesture lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateDropped
	StateCancelled
)

var (
	ErrNotDragging = errors.New("no drag gesture in progress")
	ErrOutOfRange  = errors.New("position outside the rendered sequence")
)

// Gesture holds the state of one drag. One instance per active gesture; the
// caller owns its lifecycle, there is no shared package state.
type Gesture struct {
	mover  Mover
	state  State
	source int
	target int

	// rendered is the speculative visual order, expressed as original
	// positions. rendered[i] answers: which pre-gesture card currently sits
	// at visual slot i.
	rendered []int
}

// New creates an idle gesture that will commit through mover.
func New(mover Mover) *Gesture {
	return &Gesture{mover: mover, state: StateIdle}
}

func (g *Gesture) State() State {
	return g.state
}

// Begin starts a drag over the card at sourcePos within a rendered sequence
// of length n.
func (g *Gesture) Begin(n, sourcePos int) error {
	if sourcePos < 0 || sourcePos >= n {
		return fmt.Errorf("%w: source %d of %d", ErrOutOfRange, sourcePos, n)
	}

	g.state = StateDragging
	g.source = sourcePos
	g.target = sourcePos
	g.rendered = make([]int, n)
	for i := range g.rendered {
		g.rendered[i] = i
	}
	return nil
}

// HoverOver records a hover over the card currently rendered at targetSlot
// and speculatively reorders the visual sequence for feedback: the dragged
// card lands after the target when moving down, before it when moving up.
// Positions refer to the current (already speculatively reordered) sequence.
func (g *Gesture) HoverOver(targetSlot int) error {
	if g.state != StateDragging {
		return ErrNotDragging
	}
	if targetSlot < 0 || targetSlot >= len(g.rendered) {
		return fmt.Errorf("%w: target %d of %d", ErrOutOfRange, targetSlot, len(g.rendered))
	}

	curSlot := g.slotOf(g.source)
	if targetSlot == curSlot {
		return nil
	}

	g.target = g.rendered[targetSlot]

	// Splice the dragged card out and back in around the target.
	dragged := g.rendered[curSlot]
	g.rendered = append(g.rendered[:curSlot], g.rendered[curSlot+1:]...)

	insert := g.slotOf(g.target)
	if curSlot < targetSlot {
		insert++
	}
	g.rendered = append(g.rendered[:insert], append([]int{dragged}, g.rendered[insert:]...)...)
	return nil
}

// Drop ends the gesture. When the source and last hovered target positions
// differ it commits exactly one move; equal positions commit nothing. The
// caller re-renders from the persisted order afterwards, which supersedes
// the speculative sequence.
func (g *Gesture) Drop() (bool, error) {
	if g.state != StateDragging {
		return false, ErrNotDragging
	}
	g.state = StateDropped

	if g.source == g.target {
		return false, nil
	}
	if err := g.mover.Move(g.source, g.target); err != nil {
		return false, err
	}
	return true, nil
}

// Cancel aborts the gesture without touching the store. The speculative
// order is discarded by the next full render.
func (g *Gesture) Cancel() {
	if g.state == StateDragging {
		g.state = StateCancelled
	}
}

// RenderedOrder exposes the current speculative order as original positions,
// for the presentation layer's live feedback.
func (g *Gesture) RenderedOrder() []int {
	out := make([]int, len(g.rendered))
	copy(out, g.rendered)
	return out
}

func (g *Gesture) slotOf(original int) int {
	for i, v := range g.rendered {
		if v == original {
			return i
		}
	}
	return -1
}
