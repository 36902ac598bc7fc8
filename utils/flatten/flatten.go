package flatten

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

type Flattener interface {
	FlattenObject(record map[string]any) (map[string]any, error)
}

type FlattenerImpl struct {
	omitNilValues bool
}

func NewFlattener() Flattener {
	return &FlattenerImpl{
		omitNilValues: true,
	}
}

// FlattenObject flatten object e.g. from {"key1":{"key2":123}} to {"key1_key2":123}
// from {"$key1":1} to {"_key1":1}
// arrays are kept as JSON strings: {"tags":["a"]} to {"tags":"[\"a\"]"}
func (f *FlattenerImpl) FlattenObject(record map[string]any) (map[string]any, error) {
	flattenMap := make(map[string]any)
	for key, value := range record {
		if err := f.flatten(Reformat(key), value, flattenMap); err != nil {
			return nil, err
		}
	}

	emptyKeyValue, hasEmptyKey := flattenMap[""]
	if hasEmptyKey {
		flattenMap["_unnamed"] = emptyKeyValue
		delete(flattenMap, "")
	}
	return flattenMap, nil
}

// recursive function for flatten key (if value is inner object -> recursion call)
func (f *FlattenerImpl) flatten(key string, value any, destination map[string]any) error {
	switch value := value.(type) {
	case map[string]any:
		for k, v := range value {
			newKey := Reformat(k)
			if key != "" {
				newKey = key + "_" + newKey
			}
			if err := f.flatten(newKey, v, destination); err != nil {
				return err
			}
		}
	case []any, []map[string]any:
		b, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal array with key %s: %s", key, err)
		}
		destination[key] = string(b)
	case nil:
		if !f.omitNilValues {
			destination[key] = nil
		}
	default:
		destination[key] = value
	}

	return nil
}

// Reformat makes all keys to lower case and replaces all special symbols with '_'
func Reformat(key string) string {
	key = strings.ToLower(key)
	var result strings.Builder
	for _, symbol := range key {
		if IsLetterOrNumber(symbol) {
			result.WriteByte(byte(symbol))
		} else {
			result.WriteRune('_')
		}
	}
	return result.String()
}

// IsLetterOrNumber returns true if input symbol is:
//
//	A - Z: 65-90
//	a - z: 97-122
func IsLetterOrNumber(symbol int32) bool {
	return ('a' <= symbol && symbol <= 'z') ||
		('A' <= symbol && symbol <= 'Z') ||
		('0' <= symbol && symbol <= '9')
}
