package persist

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/rewind"
)

// SaveCell writes cell's persisted value into doc at path, returning the
// updated document. If cell carries FlagDoNotPersistCurrentValue, the
// value written is cell.Initial() rather than cell.Get(), per the
// engine's do-not-persist-current-value contract.
func SaveCell[T any](doc, path string, cell *rewind.Cell[T]) (string, error) {
	value := cell.Get()
	if cell.HasFlag(rewind.FlagDoNotPersistCurrentValue) {
		value = cell.Initial()
	}
	return sjson.Set(doc, path, value)
}

// LoadCellValue reads the raw JSON value at path out of doc, leaving
// type conversion to the caller (json.Unmarshal into T, or gjson's own
// typed accessors), since gjson.Result does not know the Cell's T.
func LoadCellValue(doc, path string) (raw string, ok bool) {
	result := gjson.Get(doc, path)
	if !result.Exists() {
		return "", false
	}
	return result.Raw, true
}
