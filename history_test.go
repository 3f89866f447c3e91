package rewind

import (
	"errors"
	"testing"

	"github.com/dshills/rewind/internal/notify"
)

// S1: basic undo/redo.
func TestScenarioBasicUndoRedo(t *testing.T) {
	h := NewHistory()
	cell := NewCell(0)

	h.BeginCommand("a")
	cell.Set(1)
	if err := h.EndCommand(false); err != nil {
		t.Fatalf("EndCommand: %v", err)
	}
	if cell.Get() != 1 || h.Position() != 0 {
		t.Fatalf("cell=%d pos=%d, want 1,0", cell.Get(), h.Position())
	}

	if err := h.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if cell.Get() != 0 || h.Position() != -1 {
		t.Fatalf("cell=%d pos=%d, want 0,-1", cell.Get(), h.Position())
	}

	if err := h.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if cell.Get() != 1 || h.Position() != 0 {
		t.Fatalf("cell=%d pos=%d, want 1,0", cell.Get(), h.Position())
	}
}

// S2: coalescing.
func TestScenarioCoalescing(t *testing.T) {
	h := NewHistory()
	cell := NewCell(0)

	h.BeginCommand("a")
	cell.Set(1)
	cell.Set(2)
	cell.Set(3)
	h.EndCommand(false)

	if h.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", h.Count())
	}
	if err := h.Undo(); err != nil || cell.Get() != 0 {
		t.Fatalf("after Undo: cell=%d err=%v, want 0,nil", cell.Get(), err)
	}
	if err := h.Redo(); err != nil || cell.Get() != 3 {
		t.Fatalf("after Redo: cell=%d err=%v, want 3,nil", cell.Get(), err)
	}
}

// S3: cancel.
func TestScenarioCancel(t *testing.T) {
	h := NewHistory()
	seq := NewSequence[int](nil, false)

	h.BeginCommand("a")
	seq.Add(10)
	seq.Add(20)
	if err := h.CancelCommand(); err != nil {
		t.Fatalf("CancelCommand: %v", err)
	}
	if seq.Len() != 0 {
		t.Fatalf("seq.Len() = %d, want 0", seq.Len())
	}
	if h.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", h.Count())
	}
}

// S4: mixed sequence ops.
func TestScenarioSequenceMixed(t *testing.T) {
	h := NewHistory()
	seq := NewSequence([]int{1, 2, 3}, false)

	h.BeginCommand("x")
	seq.RemoveAt(0)
	seq.Insert(1, 9)
	h.EndCommand(false)

	assertIntSlice(t, seq.ToArray(), []int{2, 9, 3})

	h.Undo()
	assertIntSlice(t, seq.ToArray(), []int{1, 2, 3})

	h.Redo()
	assertIntSlice(t, seq.ToArray(), []int{2, 9, 3})
}

// S5: eviction + save-point.
func TestScenarioEvictionAndSavePoint(t *testing.T) {
	h := NewHistory(WithSizeLimit(2))
	seq := NewSequence[int](nil, false)

	h.BeginCommand("c1")
	seq.Add(1)
	h.EndCommand(false)

	h.BeginCommand("c2")
	seq.Add(2)
	h.EndCommand(false)

	h.SetSavePoint()

	h.BeginCommand("c3")
	seq.Add(3)
	h.EndCommand(false)

	if !h.HasUnsavedChanges() {
		t.Fatal("HasUnsavedChanges should be true after c3")
	}
	if h.Count() != 2 {
		t.Fatalf("Count() = %d, want 2 (c1 evicted)", h.Count())
	}
	if h.Position() != 1 {
		t.Fatalf("Position() = %d, want 1", h.Position())
	}

	if err := h.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if h.Position() != 0 {
		t.Fatalf("Position() = %d, want 0", h.Position())
	}
	assertIntSlice(t, seq.ToArray(), []int{1, 2})
	if h.HasUnsavedChanges() {
		t.Fatal("HasUnsavedChanges should be false at the save-point")
	}
}

// S6: merge.
func TestScenarioMerge(t *testing.T) {
	h := NewHistory()
	cell := NewCell(0)

	h.BeginCommand("edit")
	cell.Set(1)
	h.EndCommand(true)

	h.BeginCommand("edit")
	cell.Set(2)
	h.EndCommand(true)

	if h.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", h.Count())
	}
	if err := h.Undo(); err != nil || cell.Get() != 0 {
		t.Fatalf("after Undo: cell=%d err=%v, want 0,nil", cell.Get(), err)
	}
	if err := h.Redo(); err != nil || cell.Get() != 2 {
		t.Fatalf("after Redo: cell=%d err=%v, want 2,nil", cell.Get(), err)
	}
}

// S7: suspend.
func TestScenarioSuspend(t *testing.T) {
	h := NewHistory()
	cell := NewCell(0)

	h.BeginCommand("a")
	cell.Set(1)
	h.SuspendCommand()
	cell.Set(2)
	h.ResumeCommand()
	cell.Set(3)
	h.EndCommand(false)

	if err := h.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if cell.Get() != 2 {
		t.Fatalf("cell = %d, want 2 (suspended write survives undo)", cell.Get())
	}
}

// Property: empty command elision.
func TestEmptyCommandElision(t *testing.T) {
	h := NewHistory()
	h.BeginCommand("noop")
	if err := h.EndCommand(false); err != nil {
		t.Fatalf("EndCommand: %v", err)
	}
	if h.Count() != 0 || h.Position() != -1 {
		t.Fatalf("Count()=%d Position()=%d, want 0,-1", h.Count(), h.Position())
	}
}

func TestBeginCommandWhileBusyFails(t *testing.T) {
	h := NewHistory()
	h.BeginCommand("a")
	defer h.CancelCommand()

	if err := h.BeginCommand("b"); !errors.Is(err, ErrBusyHistory) {
		t.Fatalf("err = %v, want ErrBusyHistory", err)
	}
}

func TestEndCommandWithoutBeginFails(t *testing.T) {
	h := NewHistory()
	if err := h.EndCommand(false); !errors.Is(err, ErrNoCurrentCommand) {
		t.Fatalf("err = %v, want ErrNoCurrentCommand", err)
	}
}

func TestCancelCommandWithoutBeginFails(t *testing.T) {
	h := NewHistory()
	if err := h.CancelCommand(); !errors.Is(err, ErrNoCurrentCommand) {
		t.Fatalf("err = %v, want ErrNoCurrentCommand", err)
	}
}

func TestUndoAtBoundaryFails(t *testing.T) {
	h := NewHistory()
	if err := h.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("err = %v, want ErrNothingToUndo", err)
	}
}

func TestRedoAtBoundaryFails(t *testing.T) {
	h := NewHistory()
	if err := h.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Fatalf("err = %v, want ErrNothingToRedo", err)
	}
}

func TestSetPositionJumpsMultipleCommands(t *testing.T) {
	h := NewHistory()
	cell := NewCell(0)

	for i := 1; i <= 3; i++ {
		h.BeginCommand("step")
		cell.Set(i)
		h.EndCommand(false)
	}

	if err := h.SetPosition(0); err != nil {
		t.Fatalf("SetPosition(0): %v", err)
	}
	if cell.Get() != 1 {
		t.Fatalf("cell = %d, want 1", cell.Get())
	}

	if err := h.SetPosition(2); err != nil {
		t.Fatalf("SetPosition(2): %v", err)
	}
	if cell.Get() != 3 {
		t.Fatalf("cell = %d, want 3", cell.Get())
	}
}

func TestCursorConsistencyInvariant(t *testing.T) {
	h := NewHistory()
	cell := NewCell(0)
	for i := 0; i < 3; i++ {
		h.BeginCommand("x")
		cell.Set(i)
		h.EndCommand(false)

		pos := h.Position()
		count := h.Count()
		if pos < -1 || pos >= count {
			t.Fatalf("cursor %d out of [-1, %d)", pos, count)
		}
		if h.CanUndo() != (pos >= 0) {
			t.Fatalf("CanUndo() = %v, want %v", h.CanUndo(), pos >= 0)
		}
		if h.CanRedo() != (pos < count-1) {
			t.Fatalf("CanRedo() = %v, want %v", h.CanRedo(), pos < count-1)
		}
	}
}

func TestClearResetsHistory(t *testing.T) {
	h := NewHistory()
	cell := NewCell(0)
	h.BeginCommand("a")
	cell.Set(1)
	h.EndCommand(false)
	h.SetSavePoint()
	h.Clear()

	if h.Count() != 0 || h.Position() != -1 {
		t.Fatalf("Count()=%d Position()=%d after Clear, want 0,-1", h.Count(), h.Position())
	}
	if h.HasUnsavedChanges() {
		t.Fatal("HasUnsavedChanges should be false right after Clear")
	}
}

// command-ended fires while the command is still open, so a handler's
// write is recorded in the command (here it coalesces into the cell's
// existing action) before the command is finalized.
func TestCommandEndedAllowsLateAdder(t *testing.T) {
	h := NewHistory()
	cell := NewCell(0)

	h.BeginCommand("a")
	cell.Set(1)
	h.Bus().Subscribe(notify.CommandEnded, func(notify.Event) error {
		return cell.Set(99)
	})
	if err := h.EndCommand(false); err != nil {
		t.Fatalf("EndCommand: %v", err)
	}
	if cell.Get() != 99 {
		t.Fatalf("cell = %d, want 99 (late-adder ran before finalization)", cell.Get())
	}

	if err := h.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if cell.Get() != 0 {
		t.Fatalf("cell = %d, want 0 (late write rolled back with the rest)", cell.Get())
	}

	if err := h.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if cell.Get() != 99 {
		t.Fatalf("cell = %d, want 99 (late write was recorded in the command)", cell.Get())
	}
}

// CancelCommand must still roll back applied mutations and release the
// ambient binding even when the command-cancelled observer fails.
func TestCancelCommandRollsBackDespiteObserverFailure(t *testing.T) {
	h := NewHistory()
	cell := NewCell(0)
	boom := errors.New("boom")

	h.BeginCommand("a")
	cell.Set(1)
	h.Bus().Subscribe(notify.CommandCancelled, func(notify.Event) error {
		return boom
	})

	err := h.CancelCommand()
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want to wrap boom", err)
	}
	if cell.Get() != 0 {
		t.Fatalf("cell = %d, want 0 (rollback must still run)", cell.Get())
	}
	if h.IsCommandStarted() {
		t.Fatal("IsCommandStarted() should be false after a cancelled command")
	}
	if err := h.BeginCommand("b"); err != nil {
		t.Fatalf("BeginCommand after cancel: %v (ambient binding should be released)", err)
	}
}

func assertIntSlice(t *testing.T, got, want []int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
