package script

import lua "github.com/yuin/gopher-lua"

// Action is a rewind.Action whose Apply/Revert bodies are Lua functions,
// called synchronously through a Bridge on the calling goroutine.
//
// A scripted plugin typically constructs one Action per mutation it wants
// to make undoable, handing Go state in and out through args/results
// rather than sharing Lua tables across calls:
//
//	a, err := script.NewAction(bridge, applyFn, revertFn, currentValue)
//	rewind.AddAction(a)
type Action struct {
	bridge *Bridge
	apply  *lua.LFunction
	revert *lua.LFunction
	args   []interface{}

	applied bool
}

// NewAction builds an Action that calls apply/revert through bridge.
// args are passed to whichever function runs next; a function's return
// values replace args for the subsequent call, so apply can hand state
// forward to a later revert (e.g. the old value it overwrote).
func NewAction(bridge *Bridge, apply, revert *lua.LFunction, args ...interface{}) (*Action, error) {
	if apply == nil || revert == nil {
		return nil, ErrMissingFunction
	}
	return &Action{bridge: bridge, apply: apply, revert: revert, args: args}, nil
}

// Apply calls the apply function. It fails with ErrWrongApplyRevertOrder
// if the action is already in the applied state.
func (a *Action) Apply() error {
	if a.applied {
		return ErrWrongApplyRevertOrder
	}
	results, err := a.bridge.CallFunc(a.apply, a.args...)
	if err != nil {
		return err
	}
	if len(results) > 0 {
		a.args = results
	}
	a.applied = true
	return nil
}

// Revert calls the revert function. It fails with ErrWrongApplyRevertOrder
// if the action is not currently applied.
func (a *Action) Revert() error {
	if !a.applied {
		return ErrWrongApplyRevertOrder
	}
	results, err := a.bridge.CallFunc(a.revert, a.args...)
	if err != nil {
		return err
	}
	if len(results) > 0 {
		a.args = results
	}
	a.applied = false
	return nil
}
