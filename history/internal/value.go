package internal

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/jackc/pgx/v5/pgtype"
)

const jsonDataFormat = "application/json"

// ValueEntity is the stored form of a variable value. Binary values are stored as bytes, all others as text.
type ValueEntity struct {
	Type                    history.ValueType
	Text                    pgtype.Text
	Bytes                   []byte
	ObjectTypeName          pgtype.Text
	SerializationDataFormat pgtype.Text
}

// ValueOptions control, how a stored value is converted.
type ValueOptions struct {
	DisableBinaryFetching              bool
	DisableCustomObjectDeserialization bool
	ObjectDeserializers                map[string]history.ObjectDeserializer
}

func newValueEntity(v history.TypedValue) (ValueEntity, error) {
	e := ValueEntity{Type: v.Type}

	var err error
	switch v.Type {
	case history.ValueNull:
		return e, nil
	case history.ValueBytes, history.ValueFile:
		e.Bytes = v.Bytes
		return e, nil
	case history.ValueBoolean:
		_, err = strconv.ParseBool(v.Value)
	case history.ValueDate:
		var t time.Time
		if t, err = time.Parse(time.RFC3339Nano, v.Value); err == nil {
			v.Value = t.UTC().Format(time.RFC3339Nano)
		}
	case history.ValueDouble:
		_, err = strconv.ParseFloat(v.Value, 64)
	case history.ValueInteger:
		_, err = strconv.ParseInt(v.Value, 10, 32)
	case history.ValueLong:
		_, err = strconv.ParseInt(v.Value, 10, 64)
	case history.ValueShort:
		_, err = strconv.ParseInt(v.Value, 10, 16)
	case history.ValueObject:
		e.ObjectTypeName = text(v.ObjectTypeName)
		e.SerializationDataFormat = text(v.SerializationDataFormat)
	}

	if err != nil {
		return e, history.Error{
			Type:   history.ErrorValidation,
			Title:  "failed to convert value",
			Detail: fmt.Sprintf("value %q is not a valid %s value", v.Value, v.Type),
		}
	}

	e.Text = pgtype.Text{String: v.Value, Valid: true}
	return e, nil
}

// removedValueEntity is the value of a removed variable.
func removedValueEntity() ValueEntity {
	return ValueEntity{Type: history.ValueNull}
}

// VariableValue converts the stored value. A value, that cannot be deserialized, results in an error message.
func (e ValueEntity) VariableValue(o ValueOptions) history.VariableValue {
	v := history.VariableValue{
		Type:                    e.Type,
		ObjectTypeName:          e.ObjectTypeName.String,
		SerializationDataFormat: e.SerializationDataFormat.String,
	}

	if e.Type.IsBinary() {
		if !o.DisableBinaryFetching && e.Bytes != nil {
			v.Value = e.Bytes
		}
		return v
	}

	if !e.Text.Valid {
		return v
	}

	s := e.Text.String

	var (
		value any
		err   error
	)

	switch e.Type {
	case history.ValueBoolean:
		value, err = strconv.ParseBool(s)
	case history.ValueDate:
		value, err = time.Parse(time.RFC3339Nano, s)
	case history.ValueDouble:
		value, err = strconv.ParseFloat(s, 64)
	case history.ValueInteger, history.ValueLong, history.ValueShort:
		value, err = strconv.ParseInt(s, 10, 64)
	case history.ValueJson:
		v.SerializedValue = s
		err = json.Unmarshal([]byte(s), &value)
	case history.ValueObject:
		v.SerializedValue = s
		if o.DisableCustomObjectDeserialization {
			return v
		}
		value, err = deserializeObject(o, e.ObjectTypeName.String, e.SerializationDataFormat.String, s)
	case history.ValueString:
		value = s
	}

	if err != nil {
		v.ErrorMessage = fmt.Sprintf("failed to deserialize %s value: %v", e.Type, err)
		return v
	}

	v.Value = value
	return v
}

func deserializeObject(o ValueOptions, objectTypeName string, serializationDataFormat string, s string) (any, error) {
	if deserializer, ok := o.ObjectDeserializers[objectTypeName]; ok {
		return deserializer(serializationDataFormat, s)
	}

	if serializationDataFormat == jsonDataFormat {
		var value any
		err := json.Unmarshal([]byte(s), &value)
		return value, err
	}

	return nil, fmt.Errorf("no deserializer registered for object type %s and data format %s", objectTypeName, serializationDataFormat)
}
