package rewind

import "github.com/dshills/rewind/internal/notify"

// Sequence is an ordered-container adapter of type T mirroring standard
// list operations. Every structural mutator installs a reversible action
// on the ambient history. A read-only Sequence rejects mutators with
// ErrReadOnly.
type Sequence[T comparable] struct {
	items    []T
	readOnly bool
	bus      *notify.Bus
}

// NewSequence creates a Sequence seeded with a copy of initial.
func NewSequence[T comparable](initial []T, readOnly bool) *Sequence[T] {
	items := make([]T, len(initial))
	copy(items, initial)
	return &Sequence[T]{items: items, readOnly: readOnly, bus: notify.NewBus()}
}

// Bus returns the notify.Bus this Sequence publishes structural events to.
func (s *Sequence[T]) Bus() *notify.Bus { return s.bus }

// Len returns the number of items.
func (s *Sequence[T]) Len() int { return len(s.items) }

// Get returns the item at index i.
func (s *Sequence[T]) Get(i int) (T, error) {
	var zero T
	if i < 0 || i >= len(s.items) {
		return zero, ErrOutOfRange
	}
	return s.items[i], nil
}

// Contains reports whether x is present.
func (s *Sequence[T]) Contains(x T) bool { return s.IndexOf(x) >= 0 }

// IndexOf returns the index of the first occurrence of x, or -1.
func (s *Sequence[T]) IndexOf(x T) int {
	for i, v := range s.items {
		if v == x {
			return i
		}
	}
	return -1
}

// ToArray returns a copy of the Sequence's contents.
func (s *Sequence[T]) ToArray() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Insert inserts x at index i.
func (s *Sequence[T]) Insert(i int, x T) error {
	return s.InsertRange(i, []T{x})
}

// Add appends x to the end.
func (s *Sequence[T]) Add(x T) error {
	return s.InsertRange(len(s.items), []T{x})
}

// AddRange appends xs to the end.
func (s *Sequence[T]) AddRange(xs []T) error {
	return s.InsertRange(len(s.items), xs)
}

// InsertRange inserts xs starting at index i.
func (s *Sequence[T]) InsertRange(i int, xs []T) error {
	if s.readOnly {
		return ErrReadOnly
	}
	if i < 0 || i > len(s.items) {
		return ErrOutOfRange
	}
	if len(xs) == 0 {
		return nil
	}
	items := make([]T, len(xs))
	copy(items, xs)
	return AddAction(&sequenceInsert[T]{seq: s, index: i, items: items})
}

// RemoveAt removes the item at index i.
func (s *Sequence[T]) RemoveAt(i int) error {
	return s.RemoveRange(i, 1)
}

// RemoveRange removes n items starting at index i.
func (s *Sequence[T]) RemoveRange(i, n int) error {
	if s.readOnly {
		return ErrReadOnly
	}
	if n == 0 {
		return nil
	}
	if i < 0 || n < 0 || i+n > len(s.items) {
		return ErrOutOfRange
	}
	removed := make([]T, n)
	copy(removed, s.items[i:i+n])
	return AddAction(&sequenceRemove[T]{seq: s, index: i, items: removed})
}

// Remove removes the first occurrence of x, resolved by a forward scan.
// It returns false (without recording any action) if x is not present.
func (s *Sequence[T]) Remove(x T) (bool, error) {
	if s.readOnly {
		return false, ErrReadOnly
	}
	i := s.IndexOf(x)
	if i < 0 {
		return false, nil
	}
	if err := s.RemoveRange(i, 1); err != nil {
		return false, err
	}
	return true, nil
}

// Set replaces the item at index i with x.
func (s *Sequence[T]) Set(i int, x T) error {
	if s.readOnly {
		return ErrReadOnly
	}
	if i < 0 || i >= len(s.items) {
		return ErrOutOfRange
	}
	old := s.items[i]
	return AddAction(&sequenceReplaceItem[T]{seq: s, index: i, oldValue: old, newValue: x})
}

// ReplaceAll replaces the entire contents with xs.
func (s *Sequence[T]) ReplaceAll(xs []T) error {
	if s.readOnly {
		return ErrReadOnly
	}
	old := make([]T, len(s.items))
	copy(old, s.items)
	newItems := make([]T, len(xs))
	copy(newItems, xs)
	return AddAction(&sequenceReplaceList[T]{seq: s, oldItems: old, newItems: newItems})
}

// Clear removes every item.
func (s *Sequence[T]) Clear() error {
	if s.readOnly {
		return ErrReadOnly
	}
	if len(s.items) == 0 {
		return nil
	}
	old := make([]T, len(s.items))
	copy(old, s.items)
	return AddAction(&sequenceClear[T]{seq: s, oldItems: old})
}

func (s *Sequence[T]) publish(kind notify.Kind, index int, old, new_ []T) error {
	payload := notify.SequencePayload{Index: index}
	if old != nil {
		payload.Old = toAnySlice(old)
	}
	if new_ != nil {
		payload.New = toAnySlice(new_)
	}
	return newObserverError(string(kind), s.bus.Publish(notify.Event{
		Kind: kind, Source: s, Payload: payload,
	}))
}

func toAnySlice[T any](xs []T) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

// sequenceInsert is the Insert action variant: insert(i,x)/insert_range/
// add/add_range.
type sequenceInsert[T comparable] struct {
	seq   *Sequence[T]
	index int
	items []T
}

func (a *sequenceInsert[T]) Apply() error {
	s := a.seq
	before := append([]T{}, s.items[:a.index]...)
	after := append([]T{}, s.items[a.index:]...)
	merged := append(before, append(append([]T{}, a.items...), after...)...)
	s.items = merged
	if err := s.publish(notify.SequenceItemsAdded, a.index, nil, a.items); err != nil {
		s.items = append(before, after...)
		return err
	}
	return nil
}

func (a *sequenceInsert[T]) Revert() error {
	s := a.seq
	n := len(a.items)
	before := append([]T{}, s.items[:a.index]...)
	after := append([]T{}, s.items[a.index+n:]...)
	s.items = append(before, after...)
	if err := s.publish(notify.SequenceItemsRemoved, a.index, a.items, nil); err != nil {
		merged := append(before, append(append([]T{}, a.items...), after...)...)
		s.items = merged
		return err
	}
	return nil
}

// sequenceRemove is the Remove action variant: remove_at/remove_range/
// remove(x).
type sequenceRemove[T comparable] struct {
	seq   *Sequence[T]
	index int
	items []T
}

func (a *sequenceRemove[T]) Apply() error {
	s := a.seq
	n := len(a.items)
	before := append([]T{}, s.items[:a.index]...)
	after := append([]T{}, s.items[a.index+n:]...)
	s.items = append(before, after...)
	if err := s.publish(notify.SequenceItemsRemoved, a.index, a.items, nil); err != nil {
		merged := append(before, append(append([]T{}, a.items...), after...)...)
		s.items = merged
		return err
	}
	return nil
}

func (a *sequenceRemove[T]) Revert() error {
	s := a.seq
	before := append([]T{}, s.items[:a.index]...)
	after := append([]T{}, s.items[a.index:]...)
	s.items = append(before, append(append([]T{}, a.items...), after...)...)
	if err := s.publish(notify.SequenceItemsAdded, a.index, nil, a.items); err != nil {
		s.items = append(before, after...)
		return err
	}
	return nil
}

// sequenceReplaceItem is the ReplaceItem action variant: set(i,x).
type sequenceReplaceItem[T comparable] struct {
	seq      *Sequence[T]
	index    int
	oldValue T
	newValue T
}

func (a *sequenceReplaceItem[T]) Apply() error {
	s := a.seq
	prev := s.items[a.index]
	s.items[a.index] = a.newValue
	if err := s.publish(notify.SequenceItemsReplaced, a.index, []T{a.oldValue}, []T{a.newValue}); err != nil {
		s.items[a.index] = prev
		return err
	}
	return nil
}

func (a *sequenceReplaceItem[T]) Revert() error {
	s := a.seq
	prev := s.items[a.index]
	s.items[a.index] = a.oldValue
	if err := s.publish(notify.SequenceItemsReplaced, a.index, []T{a.newValue}, []T{a.oldValue}); err != nil {
		s.items[a.index] = prev
		return err
	}
	return nil
}

// sequenceReplaceList is the ReplaceList action variant: replace_all(xs).
type sequenceReplaceList[T comparable] struct {
	seq      *Sequence[T]
	oldItems []T
	newItems []T
}

func (a *sequenceReplaceList[T]) Apply() error {
	s := a.seq
	prev := s.items
	s.items = append([]T{}, a.newItems...)
	if err := s.publish(notify.SequenceItemsReplaced, 0, a.oldItems, a.newItems); err != nil {
		s.items = prev
		return err
	}
	return nil
}

func (a *sequenceReplaceList[T]) Revert() error {
	s := a.seq
	prev := s.items
	s.items = append([]T{}, a.oldItems...)
	if err := s.publish(notify.SequenceItemsReplaced, 0, a.newItems, a.oldItems); err != nil {
		s.items = prev
		return err
	}
	return nil
}

// sequenceClear is the Clear action variant: clear().
type sequenceClear[T comparable] struct {
	seq      *Sequence[T]
	oldItems []T
}

func (a *sequenceClear[T]) Apply() error {
	s := a.seq
	prev := s.items
	s.items = nil
	if err := s.publish(notify.SequenceListCleared, -1, a.oldItems, nil); err != nil {
		s.items = prev
		return err
	}
	return nil
}

func (a *sequenceClear[T]) Revert() error {
	s := a.seq
	prev := s.items
	s.items = append([]T{}, a.oldItems...)
	if err := s.publish(notify.SequenceItemsAdded, 0, nil, a.oldItems); err != nil {
		s.items = prev
		return err
	}
	return nil
}
