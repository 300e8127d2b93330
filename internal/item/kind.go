package item

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Kind names the primitive shape of a field value.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
)

// ParseKind normalizes a declared kind name. Unrecognized names are returned
// as-is so that Validate can treat them permissively.
func ParseKind(name string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(name)))
}

// Known reports whether k is one of the five recognized kinds.
func (k Kind) Known() bool {
	switch k {
	case KindString, KindNumber, KindBoolean, KindObject, KindArray:
		return true
	}
	return false
}

// KindOf returns the kind of a runtime value. The second result is false for
// null and for values with no JSON equivalent.
func KindOf(value any) (Kind, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return KindString, true
	case bool:
		return KindBoolean, true
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return KindNumber, true
	case Item:
		return KindObject, true
	case *Item:
		if v == nil {
			return "", false
		}
		return KindObject, true
	case map[string]any:
		if v == nil {
			return "", false
		}
		return KindObject, true
	case []any:
		if v == nil {
			return "", false
		}
		return KindArray, true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return "", false
		}
		return KindArray, true
	case reflect.Array:
		return KindArray, true
	case reflect.Map:
		if rv.IsNil() {
			return "", false
		}
		return KindObject, true
	case reflect.Struct:
		return KindObject, true
	case reflect.Pointer:
		if rv.IsNil() {
			return "", false
		}
		return KindOf(rv.Elem().Interface())
	}
	return "", false
}

// Matches reports whether value satisfies the declared kind. Unknown kinds
// accept every value.
func (k Kind) Matches(value any) bool {
	if !k.Known() {
		return true
	}
	actual, ok := KindOf(value)
	return ok && actual == k
}
