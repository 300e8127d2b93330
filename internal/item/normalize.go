package item

// Normalize returns a copy of it with values converted to the shapes JSON
// decoding produces: integers become float64, nested maps become
// map[string]any and nested slices become []any. Configuration decoders hand
// back int64 and typed slices, which would otherwise fail kind checks and
// round-trip comparisons against stored items.
func Normalize(it Item) Item {
	out := Item{}
	for _, key := range it.keys {
		out.Set(key, normalizeValue(it.values[key]))
	}
	return out
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	case Item:
		return normalizeValue(v.Map())
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, nested := range v {
			out[key] = normalizeValue(nested)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, nested := range v {
			out[i] = normalizeValue(nested)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, nested := range v {
			out[i] = normalizeValue(nested)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, nested := range v {
			out[i] = nested
		}
		return out
	}
	return value
}
