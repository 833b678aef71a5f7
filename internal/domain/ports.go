package domain

import "context"

// SchemaSource supplies the tabular schema of the output being modeled.
type SchemaSource interface {
	FetchSchema(ctx context.Context) (*TableSchema, error)
}

// SchemaSourceFunc adapts a function to SchemaSource.
type SchemaSourceFunc func(ctx context.Context) (*TableSchema, error)

// FetchSchema implements SchemaSource.
func (f SchemaSourceFunc) FetchSchema(ctx context.Context) (*TableSchema, error) { return f(ctx) }

// SharedDimensionRepository is the meta store holding shared dimension
// definitions, keyed by group name.
type SharedDimensionRepository interface {
	Save(ctx context.Context, group *AnnotationGroup) error
	Get(ctx context.Context, name string) (*AnnotationGroup, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// Connection identifies the database table a model is published against.
type Connection struct {
	Name   string // connection (and JNDI) name
	Schema string
	Table  string
}
