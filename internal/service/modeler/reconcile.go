package modeler

import (
	"refinery-modeler/internal/domain"
)

// Reconcile checks a candidate schema against the columns an existing model
// remembers. Every remembered column must be present in the candidate (by
// name, case-insensitive) with the same data type; the first violation in
// remembered-column order is returned. The result keeps the candidate fields
// the existing model uses, in candidate order; other candidate fields are
// dropped.
func Reconcile(existing, candidate *domain.TableSchema) (*domain.TableSchema, error) {
	for _, want := range existing.Fields() {
		got, ok := candidate.Column(want.PhysicalName)
		if !ok {
			return nil, domain.ErrMissingColumn(want.PhysicalName)
		}
		if got.Type != want.Type {
			return nil, domain.ErrTypeMismatch(want.PhysicalName, want.Type, got.Type)
		}
	}

	var usable []domain.SchemaField
	for _, f := range candidate.Fields() {
		prev, ok := existing.Column(f.PhysicalName)
		if !ok {
			continue
		}
		// The existing model keeps the logical names it was published with.
		f.LogicalName = prev.LogicalName
		usable = append(usable, f)
	}
	return domain.NewTableSchema(usable...)
}
