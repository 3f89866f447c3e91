package script

import "errors"

// ErrMissingFunction is returned when an Action is constructed without
// both an apply and a revert Lua function.
var ErrMissingFunction = errors.New("script: action requires both apply and revert functions")

// ErrWrongApplyRevertOrder is returned when Apply or Revert is called
// out of the alternating sequence the Action protocol requires.
var ErrWrongApplyRevertOrder = errors.New("script: apply/revert called out of order")
