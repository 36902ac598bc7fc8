package types

import (
	"fmt"
	"sort"
	"sync"

	"github.com/datazip-inc/greenhouse-tap/utils"
	"github.com/goccy/go-json"
)

type TypeSchema struct {
	mu         sync.Mutex
	Properties sync.Map `json:"-"`
}

func NewTypeSchema() *TypeSchema {
	return &TypeSchema{
		mu:         sync.Mutex{},
		Properties: sync.Map{},
	}
}

// MarshalJSON custom marshaller to handle sync.Map encoding
func (t *TypeSchema) MarshalJSON() ([]byte, error) {
	propertiesMap := make(map[string]*Property)
	t.Properties.Range(func(key, value interface{}) bool {
		strKey, ok := key.(string)
		if !ok {
			return false
		}
		prop, ok := value.(*Property)
		if !ok {
			return false
		}
		propertiesMap[strKey] = prop
		return true
	})

	// Create an alias to avoid infinite recursion
	type Alias TypeSchema
	return json.Marshal(&struct {
		*Alias
		Properties map[string]*Property `json:"properties,omitempty"`
	}{
		Alias:      (*Alias)(t),
		Properties: propertiesMap,
	})
}

// UnmarshalJSON custom unmarshaller to handle sync.Map decoding
func (t *TypeSchema) UnmarshalJSON(data []byte) error {
	type Alias TypeSchema
	aux := &struct {
		*Alias
		Properties map[string]*Property `json:"properties,omitempty"`
	}{
		Alias: (*Alias)(t),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	for key, value := range aux.Properties {
		t.Properties.Store(key, value)
	}

	return nil
}

func (t *TypeSchema) GetType(column string) (DataType, error) {
	p, found := t.Properties.Load(column)
	if !found {
		return "", fmt.Errorf("column [%s] missing from type schema", column)
	}

	return p.(*Property).DataType(), nil
}

func (t *TypeSchema) AddTypes(column string, types ...DataType) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, found := t.Properties.Load(column)
	if !found {
		t.Properties.Store(column, &Property{
			Type: NewSet(types...),
		})
		return
	}

	property := p.(*Property)
	property.Type.Insert(types...)
}

func (t *TypeSchema) GetProperty(column string) (bool, *Property) {
	p, found := t.Properties.Load(column)
	if !found {
		return false, nil
	}

	return true, p.(*Property)
}

// Columns returns the sorted column names
func (t *TypeSchema) Columns() []string {
	columns := []string{}
	t.Properties.Range(func(key, _ interface{}) bool {
		columns = append(columns, key.(string))
		return true
	})
	sort.Strings(columns)

	return columns
}

// ToJSONSchema renders the schema as the JSON schema tree carried by SCHEMA messages
func (t *TypeSchema) ToJSONSchema() map[string]any {
	properties := map[string]any{}
	t.Properties.Range(func(key, value interface{}) bool {
		properties[key.(string)] = value.(*Property).ToJSONSchema()
		return true
	})

	return map[string]any{
		"type":       "object",
		"properties": properties,
	}
}

// Property is a dto for catalog properties representation
type Property struct {
	Type *Set[DataType] `json:"type,omitempty"`
}

func (p *Property) DataType() DataType {
	types := p.Type.Array()
	i, found := utils.ArrayContains(types, func(elem DataType) bool {
		return elem != Null
	})
	if !found {
		return Null
	}

	return types[i]
}

func (p *Property) Nullable() bool {
	_, found := utils.ArrayContains(p.Type.Array(), func(elem DataType) bool {
		return elem == Null
	})

	return found
}

func (p *Property) ToJSONSchema() map[string]any {
	typ, format := p.DataType().JSONSchemaType()
	schemaTypes := []string{typ}
	if p.Nullable() && typ != string(Null) {
		schemaTypes = append(schemaTypes, string(Null))
	}

	schema := map[string]any{"type": schemaTypes}
	if format != "" {
		schema["format"] = format
	}

	return schema
}
