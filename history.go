package rewind

import (
	"errors"
	"sync"

	"github.com/dshills/rewind/internal/notify"
)

// savePointPoison is the sentinel save_point value that can never equal a
// legal cursor, used to mark "the save-point command was evicted" so
// HasUnsavedChanges stays true forever afterward.
const savePointPoison = -2

// History is the undo/redo engine: it owns a sequence of completed
// commands, a cursor into that sequence, a bounded size, a save-point,
// and the command currently under construction (if any).
//
// A History is safe for concurrent use by multiple goroutines in the
// sense that its internal bookkeeping will not race, but the engine's
// contract is single-goroutine-per-history: only one
// goroutine may have a command in progress or a traversal in flight on a
// given History at a time.
type History struct {
	mu sync.Mutex

	commands  []*Command
	cursor    int
	sizeLimit int
	savePoint int

	currentCommand *Command
	suspendDepth   int
	isUndoing      bool
	isRedoing      bool

	identEqual func(a, b string) bool
	bus        *notify.Bus
}

// NewHistory creates an empty History with cursor and save-point both at
// -1 and no size limit, configured by the given options.
func NewHistory(opts ...Option) *History {
	h := &History{
		cursor:     -1,
		savePoint:  -1,
		identEqual: func(a, b string) bool { return a == b },
		bus:        notify.NewBus(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Bus returns the notify.Bus this History publishes command-lifecycle
// events to.
func (h *History) Bus() *notify.Bus { return h.bus }

func (h *History) publish(kind notify.Kind, payload notify.CommandPayload) error {
	return newObserverError(string(kind), h.bus.Publish(notify.Event{
		Kind: kind, Source: h, Payload: payload,
	}))
}

// ambientBusy reports whether the calling goroutine already has an
// ambient history bound — either a command in progress or a traversal in
// flight, on this History or any other. Reentrant begin/undo/redo/
// position calls from inside an observer are rejected with this check.
func ambientBusy() bool {
	return currentHistory() != nil
}

// BeginCommand opens a new command with the given identifier (a random
// one is generated if id is empty) and installs this History as the
// calling goroutine's ambient history. It fails with ErrBusyHistory if
// the calling goroutine already has an ambient history bound, or if this
// History already has a command in progress.
func (h *History) BeginCommand(id string) error {
	if ambientBusy() {
		return ErrBusyHistory
	}

	h.mu.Lock()
	if h.currentCommand != nil {
		h.mu.Unlock()
		return ErrBusyHistory
	}
	cmd := newCommand(id)
	h.currentCommand = cmd
	h.mu.Unlock()

	setAmbient(h)
	return h.publish(notify.CommandStarted, notify.CommandPayload{ID: cmd.ID})
}

// addAction is the internal half of the package-level AddAction function:
// it records a in the current command (if any, and not suspended) then
// applies it, or just applies it in fire-and-forget mode otherwise.
func (h *History) addAction(a Action) error {
	h.mu.Lock()
	if h.currentCommand == nil || h.suspendDepth > 0 {
		h.mu.Unlock()
		return a.Apply()
	}
	cmd := h.currentCommand
	h.mu.Unlock()

	cmd.addAction(a)
	return a.Apply()
}

// lastAction is the internal half of the package-level LastAction
// function.
func (h *History) lastAction() Action {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.currentCommand == nil || h.suspendDepth > 0 {
		return nil
	}
	return h.currentCommand.lastAction()
}

// EndCommand finalizes the current command: an empty command is dropped
// silently; a mergeable command whose identifier matches the command at
// the cursor is merged onto it; otherwise the command is appended,
// discarding any redo tail, with oldest-first eviction if this exceeds
// the size limit. It fails with ErrNoCurrentCommand if no command is in
// progress.
//
// command-ended is emitted while cmd is still the current command and the
// ambient binding still points at this History, so a handler can call the
// ambient AddAction to attach one more action to cmd before it is
// finalized. Only once that event has been delivered is the command
// appended/merged and the ambient binding cleared, followed by
// command-discarded (on eviction) and command-executed.
func (h *History) EndCommand(mergeable bool) error {
	h.mu.Lock()
	if h.currentCommand == nil {
		h.mu.Unlock()
		return ErrNoCurrentCommand
	}
	cmd := h.currentCommand
	h.mu.Unlock()

	if err := h.publish(notify.CommandEnded, notify.CommandPayload{ID: cmd.ID, ActionCount: len(cmd.Actions())}); err != nil {
		return err
	}

	h.mu.Lock()
	var evictedID string
	evicted := false

	switch {
	case cmd.Empty():
		// Dropped: no addition, no merge, no discard event.
	case mergeable && h.cursor >= 0 && h.identEqual(h.commands[h.cursor].ID, cmd.ID):
		h.commands[h.cursor].merge(cmd)
	default:
		h.commands = append(h.commands[:h.cursor+1], cmd)
		h.cursor = len(h.commands) - 1
		if h.sizeLimit > 0 && len(h.commands) > h.sizeLimit {
			evictedCmd := h.commands[0]
			h.commands = h.commands[1:]
			h.cursor--
			switch {
			case h.savePoint == 0:
				h.savePoint = savePointPoison
			case h.savePoint > 0:
				h.savePoint--
			}
			evictedID = evictedCmd.ID
			evicted = true
		}
	}

	h.currentCommand = nil
	h.suspendDepth = 0
	h.mu.Unlock()

	clearAmbient(h)

	if evicted {
		if err := h.publish(notify.CommandDiscarded, notify.CommandPayload{ID: evictedID}); err != nil {
			return err
		}
	}
	return h.publish(notify.CommandExecuted, notify.CommandPayload{ID: cmd.ID, ActionCount: len(cmd.Actions())})
}

// CancelCommand rolls back every action recorded in the current command
// and discards it. It fails with ErrNoCurrentCommand if no command is in
// progress.
//
// The rollback and the ambient/suspend cleanup always run, even if the
// command-cancelled observer fails: cancellation must restore storage to
// its pre-command state and leave the History free for the next
// begin/undo/redo regardless of an observer's behavior, or a failing
// observer would both leave the cancelled mutations applied and wedge the
// History with a command that can never be begun, undone or redone again.
func (h *History) CancelCommand() error {
	h.mu.Lock()
	if h.currentCommand == nil {
		h.mu.Unlock()
		return ErrNoCurrentCommand
	}
	cmd := h.currentCommand
	h.mu.Unlock()

	publishErr := h.publish(notify.CommandCancelled, notify.CommandPayload{ID: cmd.ID, ActionCount: len(cmd.Actions())})

	h.mu.Lock()
	h.currentCommand = nil
	h.mu.Unlock()

	rollbackErr := cmd.rollback()

	h.mu.Lock()
	h.suspendDepth = 0
	h.mu.Unlock()
	clearAmbient(h)

	return errors.Join(publishErr, rollbackErr)
}

// SuspendCommand increments the suspend depth of the command in progress.
// While suspended, actions added via the ambient AddAction execute
// irrevocably: they are applied but not recorded, and survive Undo. It is
// a no-op if no command is in progress.
func (h *History) SuspendCommand() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.currentCommand == nil {
		return
	}
	h.suspendDepth++
}

// ResumeCommand decrements the suspend depth, saturating at zero. It is a
// no-op if no command is in progress.
func (h *History) ResumeCommand() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.currentCommand == nil || h.suspendDepth == 0 {
		return
	}
	h.suspendDepth--
}

// Undo moves the cursor back by one command, rolling it back. It fails
// with ErrNothingToUndo if the cursor is already at -1.
func (h *History) Undo() error {
	if ambientBusy() {
		return ErrBusyHistory
	}
	h.mu.Lock()
	cursor := h.cursor
	if cursor < 0 {
		h.mu.Unlock()
		return ErrNothingToUndo
	}
	h.isUndoing = true
	h.mu.Unlock()

	err := h.moveTo(cursor - 1)

	h.mu.Lock()
	h.isUndoing = false
	h.mu.Unlock()
	return err
}

// Redo moves the cursor forward by one command, executing it. It fails
// with ErrNothingToRedo if the cursor is already at the last command.
func (h *History) Redo() error {
	if ambientBusy() {
		return ErrBusyHistory
	}
	h.mu.Lock()
	cursor := h.cursor
	n := len(h.commands)
	if cursor >= n-1 {
		h.mu.Unlock()
		return ErrNothingToRedo
	}
	h.isRedoing = true
	h.mu.Unlock()

	err := h.moveTo(cursor + 1)

	h.mu.Lock()
	h.isRedoing = false
	h.mu.Unlock()
	return err
}

// SetPosition moves the cursor to target, clamped to [-1, Count()-1],
// executing or rolling back every command crossed. It fails with
// ErrBusyHistory if a command is in progress or a traversal is already in
// flight on the calling goroutine.
func (h *History) SetPosition(target int) error {
	if ambientBusy() {
		return ErrBusyHistory
	}
	h.mu.Lock()
	if h.currentCommand != nil {
		h.mu.Unlock()
		return ErrBusyHistory
	}
	h.mu.Unlock()
	return h.moveTo(target)
}

// moveTo performs the actual cursor traversal shared by Undo, Redo and
// SetPosition: it installs the ambient binding for the duration, executes
// or rolls back each crossed command in order, and emits command-executed
// / command-rolled-back per command. On a failure it stops, leaving the
// cursor at the last successfully-crossed position.
func (h *History) moveTo(target int) error {
	h.mu.Lock()
	n := len(h.commands)
	if target < -1 {
		target = -1
	}
	if target > n-1 {
		target = n - 1
	}
	cursor := h.cursor
	h.mu.Unlock()

	setAmbient(h)
	defer clearAmbient(h)

	if target > cursor {
		for i := cursor + 1; i <= target; i++ {
			h.mu.Lock()
			cmd := h.commands[i]
			h.mu.Unlock()

			if err := cmd.execute(); err != nil {
				h.mu.Lock()
				h.cursor = i - 1
				h.mu.Unlock()
				return err
			}
			if err := h.publish(notify.CommandExecuted, notify.CommandPayload{ID: cmd.ID, ActionCount: len(cmd.Actions())}); err != nil {
				h.mu.Lock()
				h.cursor = i
				h.mu.Unlock()
				return err
			}
			h.mu.Lock()
			h.cursor = i
			h.mu.Unlock()
		}
		return nil
	}

	for i := cursor; i >= target+1; i-- {
		h.mu.Lock()
		cmd := h.commands[i]
		h.mu.Unlock()

		if err := cmd.rollback(); err != nil {
			h.mu.Lock()
			h.cursor = i
			h.mu.Unlock()
			return err
		}
		if err := h.publish(notify.CommandRolledBack, notify.CommandPayload{ID: cmd.ID, ActionCount: len(cmd.Actions())}); err != nil {
			h.mu.Lock()
			h.cursor = i - 1
			h.mu.Unlock()
			return err
		}
		h.mu.Lock()
		h.cursor = i - 1
		h.mu.Unlock()
	}
	return nil
}

// SetSize sets the size limit. Negative values are ignored. If the new
// limit is smaller than the current command count, the oldest commands
// are dropped immediately and the save-point/cursor are adjusted exactly
// as an EndCommand-triggered eviction would adjust them.
func (h *History) SetSize(n int) {
	if n < 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sizeLimit = n
	if n > 0 && len(h.commands) > n {
		delta := len(h.commands) - n
		h.commands = h.commands[delta:]

		switch {
		case h.savePoint < 0:
			// -1 (never set) or already poisoned: unaffected.
		case h.savePoint < delta:
			h.savePoint = savePointPoison
		default:
			h.savePoint -= delta
		}

		h.cursor -= delta
		if h.cursor < -1 {
			h.cursor = -1
		}
	}
	if h.cursor > len(h.commands)-1 {
		h.cursor = len(h.commands) - 1
	}
}

// Clear empties the history and resets the cursor and save-point to -1.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commands = nil
	h.cursor = -1
	h.savePoint = -1
}

// SetSavePoint records the current cursor as the save-point.
func (h *History) SetSavePoint() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.savePoint = h.cursor
}

// Count returns the number of finalized commands.
func (h *History) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.commands)
}

// Position returns the current cursor.
func (h *History) Position() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

// Size returns the configured size limit (0 means unbounded).
func (h *History) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sizeLimit
}

// CanUndo reports whether Undo would succeed.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor >= 0
}

// CanRedo reports whether Redo would succeed.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor < len(h.commands)-1
}

// HasUnsavedChanges reports whether the cursor has moved away from the
// save-point (or the save-point was evicted, in which case this is true
// forever).
func (h *History) HasUnsavedChanges() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.savePoint != h.cursor
}

// IsCommandStarted reports whether a command is currently in progress.
func (h *History) IsCommandStarted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentCommand != nil
}

// IsCommandSuspended reports whether the current command is suspended.
func (h *History) IsCommandSuspended() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.suspendDepth > 0
}

// IsUndoing reports whether an Undo call is in progress on this History.
func (h *History) IsUndoing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.isUndoing
}

// IsRedoing reports whether a Redo call is in progress on this History.
func (h *History) IsRedoing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.isRedoing
}

// CurrentCommandID returns the in-progress command's identifier, and
// false if no command is in progress.
func (h *History) CurrentCommandID() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.currentCommand == nil {
		return "", false
	}
	return h.currentCommand.ID, true
}

// Commands returns the identifiers of every finalized command, oldest to
// newest.
func (h *History) Commands() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, len(h.commands))
	for i, c := range h.commands {
		ids[i] = c.ID
	}
	return ids
}

// IdentifierAt returns the identifier of the command at index i, and
// false if i is out of range.
func (h *History) IdentifierAt(i int) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if i < 0 || i >= len(h.commands) {
		return "", false
	}
	return h.commands[i].ID, true
}

// Snapshot is an immutable copy of a History's introspectable properties,
// taken atomically under one lock acquisition.
type Snapshot struct {
	Count              int
	Position           int
	Size               int
	CanUndo            bool
	CanRedo            bool
	HasUnsavedChanges  bool
	IsCommandStarted   bool
	IsCommandSuspended bool
	IsUndoing          bool
	IsRedoing          bool
	CurrentCommandID   string
	Commands           []string
}

// Snapshot returns a consistent snapshot of every introspectable property
// in one call, so an observer doesn't see a torn read across several
// individually-locked getters.
func (h *History) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := make([]string, len(h.commands))
	for i, c := range h.commands {
		ids[i] = c.ID
	}
	s := Snapshot{
		Count:              len(h.commands),
		Position:           h.cursor,
		Size:               h.sizeLimit,
		CanUndo:            h.cursor >= 0,
		CanRedo:            h.cursor < len(h.commands)-1,
		HasUnsavedChanges:  h.savePoint != h.cursor,
		IsCommandStarted:   h.currentCommand != nil,
		IsCommandSuspended: h.suspendDepth > 0,
		IsUndoing:          h.isUndoing,
		IsRedoing:          h.isRedoing,
		Commands:           ids,
	}
	if h.currentCommand != nil {
		s.CurrentCommandID = h.currentCommand.ID
	}
	return s
}
