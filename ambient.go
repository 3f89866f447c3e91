package rewind

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// The ambient binding is the goroutine-local slot the spec describes as
// "thread-local": each goroutine has at most one active History — the one
// with a command in progress or a cursor move in flight. Go has no
// goroutine-local storage primitive, so the binding is implemented as a
// mutex-guarded map keyed by the calling goroutine's numeric ID, which is
// recovered by parsing the header line of runtime.Stack. This is strictly
// an in-process bookkeeping aid. A traversal (moveTo) clears its binding
// with a deferred clear; a binding set by BeginCommand is cleared by
// EndCommand or CancelCommand, so an entry stays in the map for as long as
// its command is open, even if the goroutine exits first. A goroutine that
// never touches the ambient binding never appears in the map.
var (
	ambientMu sync.Mutex
	ambient   = make(map[uint64]*History)
)

// goroutineID extracts the numeric ID Go's runtime assigns the calling
// goroutine from the "goroutine N [...]" header that runtime.Stack always
// emits first.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	line := buf[:n]

	const prefix = "goroutine "
	if !bytes.HasPrefix(line, []byte(prefix)) {
		return 0
	}
	line = line[len(prefix):]

	end := bytes.IndexByte(line, ' ')
	if end < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(line[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// setAmbient installs h as the ambient history for the calling goroutine.
func setAmbient(h *History) {
	gid := goroutineID()
	ambientMu.Lock()
	ambient[gid] = h
	ambientMu.Unlock()
}

// clearAmbient removes the ambient binding for the calling goroutine, if
// it currently points at h. Clearing is a no-op when another history has
// since taken the slot, which cannot legitimately happen under the
// single-history-per-goroutine contract but is guarded against rather than
// assumed away.
func clearAmbient(h *History) {
	gid := goroutineID()
	ambientMu.Lock()
	if ambient[gid] == h {
		delete(ambient, gid)
	}
	ambientMu.Unlock()
}

// currentHistory returns the ambient history for the calling goroutine,
// or nil if none is bound.
func currentHistory() *History {
	gid := goroutineID()
	ambientMu.Lock()
	h := ambient[gid]
	ambientMu.Unlock()
	return h
}

// AddAction records a on the calling goroutine's ambient history and
// applies it. Adapters (Cell, Sequence) call this to attach actions
// without holding a reference to the History that is recording them.
//
// If there is no ambient history, or the ambient history has no current
// command, or the ambient history is suspended, a is applied and
// discarded — it executes exactly once and is never recorded or reversed
// by a later Undo. Otherwise a is recorded in the current command and
// then applied; recording before applying means a failing Apply still
// leaves a in the command, which the command's own crash-rollback (see
// Command.execute) copes with.
func AddAction(a Action) error {
	h := currentHistory()
	if h == nil {
		return a.Apply()
	}
	return h.addAction(a)
}

// LastAction returns the calling goroutine's ambient history's current
// command's last action, or nil if there is no ambient history, no
// current command, or the history is suspended.
func LastAction() Action {
	h := currentHistory()
	if h == nil {
		return nil
	}
	return h.lastAction()
}
