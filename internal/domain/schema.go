package domain

import (
	"fmt"
	"strings"
)

// DataType is the semantic type of a schema field.
type DataType string

// Supported data types.
const (
	DataTypeInteger DataType = "Integer"
	DataTypeNumber  DataType = "Number"
	DataTypeString  DataType = "String"
	DataTypeDate    DataType = "Date"
	DataTypeBoolean DataType = "Boolean"
	DataTypeBinary  DataType = "Binary"
)

// IsNumeric reports whether values of the type can be summed.
func (t DataType) IsNumeric() bool {
	return t == DataTypeInteger || t == DataTypeNumber
}

// Valid reports whether t is one of the supported data types.
func (t DataType) Valid() bool {
	switch t {
	case DataTypeInteger, DataTypeNumber, DataTypeString, DataTypeDate, DataTypeBoolean, DataTypeBinary:
		return true
	}
	return false
}

// ParseDataType resolves a data type name case-insensitively.
func ParseDataType(s string) (DataType, error) {
	for _, t := range []DataType{
		DataTypeInteger, DataTypeNumber, DataTypeString, DataTypeDate, DataTypeBoolean, DataTypeBinary,
	} {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", ErrValidation("unknown data type %q", s)
}

// SchemaField is one column of a tabular output.
type SchemaField struct {
	LogicalName  string
	PhysicalName string
	Type         DataType
}

// TableSchema is an ordered, immutable field list.
type TableSchema struct {
	fields []SchemaField
}

// NewTableSchema captures fields in declaration order. Physical names must be
// unique (case-insensitive) and every type must be supported.
func NewTableSchema(fields ...SchemaField) (*TableSchema, error) {
	seen := make(map[string]struct{}, len(fields))
	out := make([]SchemaField, 0, len(fields))
	for _, f := range fields {
		if f.PhysicalName == "" {
			return nil, ErrValidation("schema field has no physical name")
		}
		if !f.Type.Valid() {
			return nil, ErrValidation("field %q has unsupported type %q", f.PhysicalName, f.Type)
		}
		key := strings.ToLower(f.PhysicalName)
		if _, dup := seen[key]; dup {
			return nil, ErrValidation("duplicate column %q", f.PhysicalName)
		}
		seen[key] = struct{}{}
		if f.LogicalName == "" {
			f.LogicalName = f.PhysicalName
		}
		out = append(out, f)
	}
	return &TableSchema{fields: out}, nil
}

// MustTableSchema is NewTableSchema for static fixtures; it panics on error.
func MustTableSchema(fields ...SchemaField) *TableSchema {
	s, err := NewTableSchema(fields...)
	if err != nil {
		panic(fmt.Sprintf("invalid table schema: %v", err))
	}
	return s
}

// Len returns the number of fields.
func (s *TableSchema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// IsEmpty reports whether the schema has no fields.
func (s *TableSchema) IsEmpty() bool { return s.Len() == 0 }

// Fields returns a copy of the fields in declaration order.
func (s *TableSchema) Fields() []SchemaField {
	if s == nil {
		return nil
	}
	out := make([]SchemaField, len(s.fields))
	copy(out, s.fields)
	return out
}

// Column finds a field by physical column name (case-insensitive).
func (s *TableSchema) Column(name string) (SchemaField, bool) {
	if s == nil {
		return SchemaField{}, false
	}
	for _, f := range s.fields {
		if strings.EqualFold(f.PhysicalName, name) {
			return f, true
		}
	}
	return SchemaField{}, false
}

// Logical finds a field by its logical name (exact match).
func (s *TableSchema) Logical(name string) (SchemaField, bool) {
	if s == nil {
		return SchemaField{}, false
	}
	for _, f := range s.fields {
		if f.LogicalName == name {
			return f, true
		}
	}
	return SchemaField{}, false
}
