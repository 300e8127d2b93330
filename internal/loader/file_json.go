package loader

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/pretty"

	"itemqueue/internal/item"
)

var jsonPrettyOptions = &pretty.Options{Indent: "  "}

// NewJSON builds a loader storing each template as {id}.json holding a
// top-level array of objects.
func NewJSON(cfg FileConfig) *File {
	return newFile(cfg, fileCodec{
		name:   "json",
		ext:    ".json",
		decode: decodeJSONItems,
		encode: encodeJSONItems,
	})
}

func decodeJSONItems(data []byte) ([]item.Item, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []item.Item{}, nil
	}
	return item.DecodeList(data)
}

func encodeJSONItems(items []item.Item) ([]byte, error) {
	if items == nil {
		items = []item.Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(raw, jsonPrettyOptions), nil
}
