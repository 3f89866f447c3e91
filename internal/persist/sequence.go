package persist

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// SaveSequence writes items into doc at path as a JSON array, returning
// the updated document.
func SaveSequence[T any](doc, path string, items []T) (string, error) {
	return sjson.Set(doc, path, items)
}

// LoadSequenceRaw returns the raw JSON array text at path, or ok=false
// if path does not exist or is not an array.
func LoadSequenceRaw(doc, path string) (raw string, ok bool) {
	result := gjson.Get(doc, path)
	if !result.Exists() || !result.IsArray() {
		return "", false
	}
	return result.Raw, true
}
