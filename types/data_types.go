package types

type DataType string

const (
	Null      DataType = "null"
	Int64     DataType = "integer"
	Float64   DataType = "number"
	String    DataType = "string"
	Bool      DataType = "boolean"
	Object    DataType = "object"
	Array     DataType = "array"
	Timestamp DataType = "timestamp"
)

// JSONSchemaType returns the JSON schema type and format for the data type
func (d DataType) JSONSchemaType() (string, string) {
	switch d {
	case Timestamp:
		return string(String), "date-time"
	case Null, Int64, Float64, String, Bool, Object, Array:
		return string(d), ""
	default:
		return string(String), ""
	}
}

func (d DataType) Valid() bool {
	switch d {
	case Null, Int64, Float64, String, Bool, Object, Array, Timestamp:
		return true
	default:
		return false
	}
}
