// Package schemasource provides the schema sources a model is synthesized
// from: the field layout of a table output step and live database tables.
package schemasource

import (
	"context"
	"strings"

	"refinery-modeler/internal/domain"
)

// RowField is one field of the row written by a table output.
type RowField struct {
	Name string          `json:"name" yaml:"name"`
	Type domain.DataType `json:"type" yaml:"type"`
}

// FieldMapping pairs an incoming stream field with the database column it is
// written to.
type FieldMapping struct {
	Stream string `json:"stream" yaml:"stream"`
	Column string `json:"column" yaml:"column"`
}

// StreamSource derives a schema from the fields a table output inserts. With
// a mapping, each pairing whose column is among the row fields yields a field
// named after the stream field; row fields without a pairing are left out.
// Without a mapping every row field maps to itself.
type StreamSource struct {
	fields  []RowField
	mapping []FieldMapping
}

// NewStreamSource creates a StreamSource.
func NewStreamSource(fields []RowField, mapping []FieldMapping) *StreamSource {
	return &StreamSource{
		fields:  append([]RowField(nil), fields...),
		mapping: append([]FieldMapping(nil), mapping...),
	}
}

// FetchSchema implements domain.SchemaSource.
func (s *StreamSource) FetchSchema(_ context.Context) (*domain.TableSchema, error) {
	if len(s.mapping) == 0 {
		out := make([]domain.SchemaField, 0, len(s.fields))
		for _, f := range s.fields {
			out = append(out, domain.SchemaField{LogicalName: f.Name, PhysicalName: f.Name, Type: f.Type})
		}
		return domain.NewTableSchema(out...)
	}

	var out []domain.SchemaField
	for _, m := range s.mapping {
		f, ok := s.rowField(m.Column)
		if !ok {
			continue
		}
		logical := m.Stream
		if logical == "" {
			logical = f.Name
		}
		out = append(out, domain.SchemaField{LogicalName: logical, PhysicalName: f.Name, Type: f.Type})
	}
	return domain.NewTableSchema(out...)
}

func (s *StreamSource) rowField(column string) (RowField, bool) {
	for _, f := range s.fields {
		if strings.EqualFold(f.Name, column) {
			return f, true
		}
	}
	return RowField{}, false
}

var _ domain.SchemaSource = (*StreamSource)(nil)
