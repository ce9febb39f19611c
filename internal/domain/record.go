package domain

import "fmt"

// FieldType enumerates the value types a record field can hold.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeDouble FieldType = "double"
	TypeDate   FieldType = "date"
)

// Record is a single row: field name to value. Values are string, float64,
// or Date depending on the declared field type. Field order lives in the
// Schema, not the record.
type Record map[string]any

// Column is one named, typed field of a schema.
type Column struct {
	Name string
	Type FieldType
}

// Schema is an ordered column list describing a record set.
type Schema []Column

// ColumnCount returns the number of columns in the schema.
func (s Schema) ColumnCount() int { return len(s) }

// Column returns the column with the given name, or false if absent.
func (s Schema) Column(name string) (Column, bool) {
	for _, c := range s {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// TypeOf reports the dynamic FieldType of a record value.
func TypeOf(v any) (FieldType, error) {
	switch v.(type) {
	case string:
		return TypeString, nil
	case float64:
		return TypeDouble, nil
	case Date:
		return TypeDate, nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
