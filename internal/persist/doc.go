// Package persist implements the engine's one specified persistence hook:
// a Cell's do-not-persist-current-value flag. It reads and writes a
// single JSON value at a dotted path inside a larger document, using
// gjson for reads and sjson for writes rather than a struct-tag-driven
// encoding/json round trip — the engine has no schema of its own to
// reflect over, just a single named value per Cell/Sequence.
//
// # Cell
//
//	doc := `{"title": "untitled"}`
//	doc, err := persist.SaveCell(doc, "title", cell)
//
// SaveCell writes cell.Initial() instead of cell.Get() when the Cell
// carries FlagDoNotPersistCurrentValue, per the engine's §4.4 contract.
//
// # Sequence
//
//	doc, err := persist.SaveSequence(doc, "items", seq.ToArray())
package persist
