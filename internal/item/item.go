package item

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/tidwall/gjson"
)

// Item is a structured record. The zero value is an empty item ready for use.
type Item struct {
	keys   []string
	values map[string]any
}

// New builds an item from alternating key/value pairs.
func New(pairs ...any) Item {
	var it Item
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		it.Set(key, pairs[i+1])
	}
	return it
}

// FromMap converts a map into an item. Map iteration order is undefined, so
// fields are ordered by name.
func FromMap(m map[string]any) Item {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	it := Item{keys: keys, values: make(map[string]any, len(m))}
	for _, key := range keys {
		it.values[key] = m[key]
	}
	return it
}

// Set stores value under key. New keys are appended after existing ones.
func (it *Item) Set(key string, value any) {
	if it.values == nil {
		it.values = make(map[string]any)
	}
	if _, exists := it.values[key]; !exists {
		it.keys = append(it.keys, key)
	}
	it.values[key] = value
}

// Get returns the value stored under key.
func (it Item) Get(key string) (any, bool) {
	value, ok := it.values[key]
	return value, ok
}

// Has reports whether key is present, including keys holding null.
func (it Item) Has(key string) bool {
	_, ok := it.values[key]
	return ok
}

// Keys returns the field names in order.
func (it Item) Keys() []string {
	out := make([]string, len(it.keys))
	copy(out, it.keys)
	return out
}

// Len reports the number of fields.
func (it Item) Len() int { return len(it.keys) }

// Map returns a shallow copy of the fields as a plain map.
func (it Item) Map() map[string]any {
	out := make(map[string]any, len(it.values))
	for key, value := range it.values {
		out[key] = value
	}
	return out
}

// Clone returns a copy that shares no top-level storage with it.
func (it Item) Clone() Item {
	return Item{keys: it.Keys(), values: it.Map()}
}

// Equal reports whether both items hold the same fields with equal values.
// Field order is not compared.
func (it Item) Equal(other Item) bool {
	if len(it.values) != len(other.values) {
		return false
	}
	for key, value := range it.values {
		otherValue, ok := other.values[key]
		if !ok || !reflect.DeepEqual(value, otherValue) {
			return false
		}
	}
	return true
}

// String renders the item as compact JSON.
func (it Item) String() string {
	raw, err := it.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<item: %v>", err)
	}
	return string(raw)
}

// MarshalJSON encodes the item as a JSON object with fields in order.
func (it Item) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range it.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		encodedValue, err := json.Marshal(it.values[key])
		if err != nil {
			return nil, fmt.Errorf("encode field %q: %w", key, err)
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(encodedValue)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ErrNotObject is returned when decoding JSON that is not an object.
var ErrNotObject = errors.New("item must be a JSON object")

// UnmarshalJSON decodes a JSON object, keeping its field order. Numbers decode
// as float64 and nested values use the encoding/json generic shapes.
func (it *Item) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("decode item: invalid JSON")
	}
	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return ErrNotObject
	}
	decoded := Item{}
	parsed.ForEach(func(key, value gjson.Result) bool {
		decoded.Set(key.String(), value.Value())
		return true
	})
	*it = decoded
	return nil
}

// CloneAll copies a list of items.
func CloneAll(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// EqualAll reports whether two lists hold equal items in the same order.
func EqualAll(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// DecodeList parses a JSON array of objects.
func DecodeList(data []byte) ([]Item, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("decode items: invalid JSON")
	}
	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("decode items: expected a JSON array")
	}
	var (
		items []Item
		err   error
	)
	parsed.ForEach(func(_, value gjson.Result) bool {
		var it Item
		if decodeErr := it.UnmarshalJSON([]byte(value.Raw)); decodeErr != nil {
			err = fmt.Errorf("decode items: element %d: %w", len(items), decodeErr)
			return false
		}
		items = append(items, it)
		return true
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}
