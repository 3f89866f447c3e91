// Package script implements Action as a pair of Lua functions, letting
// application code express a reversible mutation without compiling a Go
// type for it.
//
// It wraps gopher-lua directly: every Action call happens synchronously
// on the calling goroutine, matching the engine's concurrency contract
// (no suspension points, single goroutine per history) rather than
// routing through a queued executor.
//
// # Bridge
//
// Bridge converts between Go and Lua values so an Action's apply/revert
// functions can receive and return ordinary Go data:
//
//	L := lua.NewState()
//	bridge := script.NewBridge(L)
//	action, err := script.NewAction(bridge, applyFn, revertFn)
//	h.BeginCommand("lua-edit")
//	rewind.AddAction(action)
//	h.EndCommand(false)
package script
