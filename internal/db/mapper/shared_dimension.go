// Package mapper provides conversion functions between domain and database types.
package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"refinery-modeler/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05"

// ParseTime reads a SQLite datetime('now') value. Unparseable input yields
// the zero time.
func ParseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

// SharedDimensionRow is the stored form of a shared dimension group.
type SharedDimensionRow struct {
	Name        string
	Annotations string
	CreatedAt   string
	UpdatedAt   string
}

// SharedDimensionToDB encodes a group for storage. Null annotations are not
// persisted.
func SharedDimensionToDB(g *domain.AnnotationGroup) (SharedDimensionRow, error) {
	stored := struct {
		Annotations []*domain.Annotation `json:"annotations"`
	}{Annotations: make([]*domain.Annotation, 0, g.Len())}
	for _, a := range g.Annotations {
		if !a.IsNull() {
			stored.Annotations = append(stored.Annotations, a)
		}
	}
	b, err := json.Marshal(stored)
	if err != nil {
		return SharedDimensionRow{}, fmt.Errorf("encode shared dimension %q: %w", g.Name, err)
	}
	return SharedDimensionRow{Name: g.Name, Annotations: string(b)}, nil
}

// SharedDimensionFromDB decodes a stored group.
func SharedDimensionFromDB(row SharedDimensionRow) (*domain.AnnotationGroup, error) {
	var stored struct {
		Annotations []*domain.Annotation `json:"annotations"`
	}
	if err := json.Unmarshal([]byte(row.Annotations), &stored); err != nil {
		return nil, fmt.Errorf("decode shared dimension %q: %w", row.Name, err)
	}
	return &domain.AnnotationGroup{Name: row.Name, Annotations: stored.Annotations}, nil
}
