package restapi

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// ParseRecords decodes a response body keeping numbers as json.Number. A list
// yields its object elements in order, an object yields itself, any other
// shape or an empty body yields no records.
func ParseRecords(body io.Reader) ([]map[string]any, error) {
	decoder := json.NewDecoder(body)
	decoder.UseNumber()

	var payload any
	if err := decoder.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode response body: %s", err)
	}

	switch value := payload.(type) {
	case []any:
		records := make([]map[string]any, 0, len(value))
		for _, elem := range value {
			if record, ok := elem.(map[string]any); ok {
				records = append(records, record)
			}
		}
		return records, nil
	case map[string]any:
		return []map[string]any{value}, nil
	default:
		return nil, nil
	}
}
