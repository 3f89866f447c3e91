package rewind

import (
	"reflect"

	"github.com/dshills/rewind/internal/notify"
)

// CellFlag is a bit mask of recognized Cell behaviors.
type CellFlag uint8

const (
	// FlagDoNotPersistCurrentValue marks a Cell whose serialized form
	// should carry its initial value rather than its live value. The
	// engine itself never persists anything; this flag is read by
	// whatever serialization helper a host uses (see internal/persist).
	FlagDoNotPersistCurrentValue CellFlag = 1 << iota
)

// Cell is a scalar adapter of type T: reading is free, writing installs a
// reversible CellWrite action on the ambient history, coalescing
// successive writes within one command into a single action.
type Cell[T any] struct {
	value   T
	initial T
	flags   CellFlag
	bus     *notify.Bus
}

// NewCell creates a Cell holding initial as both its current and its
// persisted-initial value.
func NewCell[T any](initial T, flags ...CellFlag) *Cell[T] {
	c := &Cell[T]{value: initial, initial: initial, bus: notify.NewBus()}
	for _, f := range flags {
		c.flags |= f
	}
	return c
}

// Bus returns the notify.Bus this Cell publishes CellValueChanged events
// to.
func (c *Cell[T]) Bus() *notify.Bus { return c.bus }

// HasFlag reports whether flag is set on this Cell.
func (c *Cell[T]) HasFlag(flag CellFlag) bool { return c.flags&flag != 0 }

// Initial returns the value the Cell was constructed with, which is what
// a do-not-persist-current-value-flagged Cell's serialization hook
// should write instead of Get().
func (c *Cell[T]) Initial() T { return c.initial }

// Get returns the current value.
func (c *Cell[T]) Get() T { return c.value }

// Set installs v as the Cell's value. If the ambient history's current
// command's last action is already a CellWrite targeting this Cell, that
// action's target value is updated and re-applied in place (coalescing);
// otherwise a new CellWrite is constructed, capturing the pre-write value,
// and submitted through the ambient AddAction.
//
// Coalescing assumes the live value still matches what that CellWrite last
// wrote. A suspended fire-and-forget write breaks that assumption (it
// mutates the cell directly, without updating the pending CellWrite), so
// if the live value has since diverged from the CellWrite's recorded
// new_value, the CellWrite's old_value is rebased to the live value before
// coalescing continues — otherwise reverting it would skip back past a
// write that was never recorded and can never be redone.
func (c *Cell[T]) Set(v T) error {
	if last := LastAction(); last != nil {
		if w, ok := last.(*cellWrite[T]); ok && w.cell == c {
			if !reflect.DeepEqual(w.newValue, c.value) {
				w.oldValue = c.value
			}
			w.newValue = v
			return w.Apply()
		}
	}
	w := &cellWrite[T]{cell: c, oldValue: c.value, newValue: v}
	return AddAction(w)
}

// cellWrite is the reversible action behind Cell[T].Set.
type cellWrite[T any] struct {
	cell     *Cell[T]
	oldValue T
	newValue T
}

// Apply writes newValue and emits CellValueChanged(old, new). If the
// notification fails, the write is undone before the error is returned.
func (w *cellWrite[T]) Apply() error {
	prev := w.cell.value
	w.cell.value = w.newValue
	if err := w.cell.notify(prev, w.newValue); err != nil {
		w.cell.value = prev
		return err
	}
	return nil
}

// Revert restores oldValue and emits CellValueChanged(new, old). If the
// notification fails, the forward value is restored before the error is
// returned.
func (w *cellWrite[T]) Revert() error {
	prev := w.cell.value
	w.cell.value = w.oldValue
	if err := w.cell.notify(prev, w.oldValue); err != nil {
		w.cell.value = prev
		return err
	}
	return nil
}

func (c *Cell[T]) notify(old, new_ T) error {
	return newObserverError(string(notify.CellValueChanged), c.bus.Publish(notify.Event{
		Kind:   notify.CellValueChanged,
		Source: c,
		Payload: notify.CellPayload{
			Old: old,
			New: new_,
		},
	}))
}
