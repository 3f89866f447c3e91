package notify

// Kind identifies the fixed set of notifications a History, Cell or
// Sequence can publish.
type Kind string

// History lifecycle notifications, emitted in the order documented on
// the corresponding History methods.
const (
	CommandStarted    Kind = "command-started"
	CommandEnded      Kind = "command-ended"
	CommandCancelled  Kind = "command-cancelled"
	CommandExecuted   Kind = "command-executed"
	CommandRolledBack Kind = "command-rolled-back"
	CommandDiscarded  Kind = "command-discarded"
)

// Cell adapter notifications.
const (
	CellValueChanged Kind = "cell-value-changed"
)

// Sequence adapter notifications.
const (
	SequenceItemsAdded    Kind = "sequence-items-added"
	SequenceItemsRemoved  Kind = "sequence-items-removed"
	SequenceItemsReplaced Kind = "sequence-items-replaced"
	SequenceListCleared   Kind = "sequence-list-cleared"
)

// CommandPayload is the payload carried by command-lifecycle events.
type CommandPayload struct {
	// ID is the command's identifier.
	ID string
	// ActionCount is the number of actions the command holds at the
	// time the event is emitted.
	ActionCount int
}

// CellPayload is the payload carried by CellValueChanged, describing the
// value transition the event reflects.
type CellPayload struct {
	Old any
	New any
}

// SequencePayload is the payload carried by Sequence structural events.
type SequencePayload struct {
	// Index is the position the operation occurred at. Unused (-1) for
	// SequenceListCleared.
	Index int
	// Old holds removed/replaced items, as applicable to the event kind.
	Old []any
	// New holds added/replacing items, as applicable to the event kind.
	New []any
}
