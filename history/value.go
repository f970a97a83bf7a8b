package history

// ValueType is the type name of a variable value, as recorded by historic variable instances and details.
type ValueType string

const (
	ValueBoolean ValueType = "boolean"
	ValueBytes   ValueType = "bytes"
	ValueDate    ValueType = "date"
	ValueDouble  ValueType = "double"
	ValueFile    ValueType = "file"
	ValueInteger ValueType = "integer"
	ValueJson    ValueType = "json"
	ValueLong    ValueType = "long"
	ValueNull    ValueType = "null"
	ValueObject  ValueType = "object"
	ValueShort   ValueType = "short"
	ValueString  ValueType = "string"
)

// IsBinary determines if values of the type are stored as byte array.
func (v ValueType) IsBinary() bool {
	return v == ValueBytes || v == ValueFile
}

// IsValid determines if the type is known.
func (v ValueType) IsValid() bool {
	switch v {
	case ValueBoolean, ValueBytes, ValueDate, ValueDouble, ValueFile, ValueInteger, ValueJson, ValueLong, ValueNull, ValueObject, ValueShort, ValueString:
		return true
	default:
		return false
	}
}

// TypedValue is a serialized variable value, as provided by the execution engine.
type TypedValue struct {
	// Value type.
	Type ValueType `json:"type" validate:"required,value_type"`
	// Serialized value, used for all non-binary types. Dates are formatted as RFC 3339.
	Value string `json:"value,omitempty"`
	// Value of a binary type.
	Bytes []byte `json:"bytes,omitempty"`
	// Name of the object type - only set for [ValueObject].
	ObjectTypeName string `json:"objectTypeName,omitempty"`
	// Data format of the serialized object, e.g. "application/json" - only set for [ValueObject].
	SerializationDataFormat string `json:"serializationDataFormat,omitempty"`
}

// ObjectDeserializer deserializes an object value of a specific type from its serialized form.
type ObjectDeserializer func(serializationDataFormat string, value string) (any, error)
