package item

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var numericCell = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// CoerceCell converts a flat text cell to its typed value: numeric text
// becomes a float64, "true"/"false" in any case become booleans, and
// everything else stays a string.
func CoerceCell(cell string) any {
	if numericCell.MatchString(cell) {
		if n, err := strconv.ParseFloat(cell, 64); err == nil {
			return n
		}
	}
	switch {
	case strings.EqualFold(cell, "true"):
		return true
	case strings.EqualFold(cell, "false"):
		return false
	}
	return cell
}

// CellString renders a value as a flat text cell. Objects and arrays are
// written as JSON.
func CellString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	}
	if kind, ok := KindOf(value); ok && kind == KindNumber {
		return fmt.Sprint(value)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(raw)
}

// RowItem assembles an item from a header row and one data row, coercing each
// cell. Missing trailing cells become empty strings.
func RowItem(headers []string, row []string) Item {
	var it Item
	for i, header := range headers {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		it.Set(header, CoerceCell(cell))
	}
	return it
}

// Headers returns the column layout for writing items: the first item's
// field order. An empty first item falls back to every field across the
// list in first-seen order.
func Headers(items []Item) []string {
	if len(items) == 0 {
		return nil
	}
	if keys := items[0].Keys(); len(keys) > 0 {
		return keys
	}
	var keys []string
	seen := make(map[string]bool)
	for _, it := range items {
		for _, k := range it.Keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// Row renders it against a header layout.
func Row(it Item, headers []string) []string {
	row := make([]string, len(headers))
	for i, header := range headers {
		if value, ok := it.Get(header); ok {
			row[i] = CellString(value)
		}
	}
	return row
}
