package loader

import (
	"bytes"
	"encoding/csv"
	"strings"

	"itemqueue/internal/item"
)

// NewCSV builds a loader storing each template as {id}.csv: a header row
// followed by one row per item. Cells are coerced on read; columns follow the
// first item's field order on write, and fields missing from that item are
// not written.
func NewCSV(cfg FileConfig) *File {
	return newFile(cfg, fileCodec{
		name:   "csv",
		ext:    ".csv",
		decode: decodeCSVItems,
		encode: encodeCSVItems,
	})
}

func decodeCSVItems(data []byte) ([]item.Item, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []item.Item{}, nil
	}
	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}
	items := make([]item.Item, 0, len(records)-1)
	for _, row := range records[1:] {
		items = append(items, item.RowItem(headers, row))
	}
	return items, nil
}

func encodeCSVItems(items []item.Item) ([]byte, error) {
	headers := item.Headers(items)
	if len(headers) == 0 {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(headers); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := writer.Write(item.Row(it, headers)); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
