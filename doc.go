// Package rewind implements a general-purpose undo/redo engine for
// interactive applications.
//
// The engine records reversible mutations to in-memory state, groups them
// into atomic user-visible commands, and lets callers linearly traverse the
// history forward (redo) and backward (undo). Two adapters sit on top of
// the core so that ordinary program state — scalar values and ordered
// sequences — can participate in undo/redo transparently.
//
// # History
//
// A History owns an ordered list of finalized commands and a cursor into
// that list:
//
//	h := rewind.NewHistory(rewind.WithSizeLimit(100))
//	if err := h.BeginCommand("rename"); err != nil {
//	    log.Fatal(err)
//	}
//	rewind.AddAction(myAction)
//	if err := h.EndCommand(false); err != nil {
//	    log.Fatal(err)
//	}
//	h.Undo()
//	h.Redo()
//
// # Ambient binding
//
// Code that mutates a Cell or Sequence does not need a reference to the
// History that is recording it. BeginCommand installs the History as the
// ambient history for the calling goroutine; AddAction and LastAction
// consult whichever History is ambient:
//
//	cell := rewind.NewCell(0)
//	h.BeginCommand("increment")
//	cell.Set(cell.Get() + 1)
//	h.EndCommand(false)
//
// # Cell and Sequence
//
// Cell[T] is a scalar slot whose writes coalesce within one command.
// Sequence[T] is an ordered container whose structural mutations —
// insert, remove, replace, clear — are captured as reversible range
// operations. Both adapters notify observers through the channels
// described in their own doc comments.
//
// # Notifications
//
// Observers subscribe through the internal/notify package's Bus, which a
// History publishes command-lifecycle events to, and which Cell/Sequence
// publish value/structural events to.
package rewind
