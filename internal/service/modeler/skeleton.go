package modeler

import (
	"strings"
	"unicode"

	"refinery-modeler/internal/domain"
)

// buildSkeleton creates the base model for a fresh schema: one category
// named after the model, one SUM measure per numeric field, the auto geo
// dimension (when geo roles match) and one auto dimension per other field.
func (s *Service) buildSkeleton(name string, schema *domain.TableSchema, conn domain.Connection) (*domain.Domain, error) {
	physical := domain.NewPhysicalModel(conn.Schema, conn.Table, schema, s.dataSource(conn))
	d := &domain.Domain{
		ID:       domain.NewID(),
		Name:     name,
		Physical: physical,
		Relational: &domain.RelationalModel{
			ID:         domain.NewID(),
			Name:       name,
			Categories: []*domain.Category{domain.NewCategory(name, physical)},
		},
		Analysis: &domain.AnalysisModel{
			ID:         domain.NewID(),
			Name:       analysisName(name),
			CatalogRef: name,
			Cube:       &domain.OlapCube{Name: name},
		},
	}
	analysis := d.Analysis

	consumed := make(map[string]bool)
	if s.geo != nil {
		geoDim, err := s.autoGeoDimension(schema)
		if err != nil {
			return nil, err
		}
		if geoDim != nil {
			if err := analysis.AddDimension(geoDim, ""); err != nil {
				return nil, err
			}
			for _, h := range geoDim.Hierarchies {
				for _, l := range h.Levels {
					consumed[strings.ToLower(l.Column)] = true
				}
			}
		}
	}

	for _, f := range schema.Fields() {
		if !f.Type.IsNumeric() {
			continue
		}
		analysis.Cube.Measures = append(analysis.Cube.Measures, &domain.OlapMeasure{
			Name:        DisplayName(f.LogicalName),
			Column:      f.PhysicalName,
			Aggregation: domain.AggregationSum,
			Auto:        true,
		})
	}

	for _, f := range schema.Fields() {
		if consumed[strings.ToLower(f.PhysicalName)] {
			continue
		}
		dimName := DisplayName(f.LogicalName)
		dim := &domain.OlapDimension{
			Name: dimName,
			Type: domain.DimensionStandard,
			Auto: true,
			Hierarchies: []*domain.OlapHierarchy{{
				Name:   dimName,
				Levels: []*domain.OlapHierarchyLevel{{Name: dimName, Column: f.PhysicalName, Auto: true}},
			}},
		}
		if err := analysis.AddDimension(dim, ""); err != nil {
			s.logger.Debug("skipping auto dimension", "field", f.LogicalName, "error", err)
		}
	}
	return d, nil
}

// autoGeoDimension gathers the fields named after a geo role (or one of its
// aliases) into a single geography hierarchy. It returns nil when no field
// matches.
func (s *Service) autoGeoDimension(schema *domain.TableSchema) (*domain.OlapDimension, error) {
	fields := s.geo.DetectGeoFields(schema)
	if len(fields) == 0 {
		return nil, nil
	}
	name := s.geo.DimensionName()
	hier := &domain.OlapHierarchy{Name: name}
	for _, gf := range fields {
		level := &domain.OlapHierarchyLevel{Name: DisplayName(gf.Field.LogicalName), Column: gf.Field.PhysicalName, Auto: true}
		if err := s.geo.Annotate(level, gf.Role); err != nil {
			return nil, err
		}
		hier.Levels = append(hier.Levels, level)
	}
	ordered, err := s.geo.OrderHierarchyLevels(hier.Levels)
	if err != nil {
		return nil, err
	}
	hier.Levels = ordered
	return &domain.OlapDimension{
		Name:        name,
		Type:        domain.DimensionStandard,
		Auto:        true,
		Hierarchies: []*domain.OlapHierarchy{hier},
	}, nil
}

func (s *Service) dataSource(conn domain.Connection) domain.DataSource {
	if s.nativeDataSource {
		return domain.DataSource{Type: domain.DataSourceNative, DatabaseName: conn.Name}
	}
	return domain.DataSource{Type: domain.DataSourceJNDI, DatabaseName: conn.Name}
}

func analysisName(model string) string { return model + " OLAP" }

// DisplayName turns a field name into a caption: camel case humps and
// underscores become word breaks, so "QuantityOrdered" is "Quantity Ordered"
// and "order_date" is "order date".
func DisplayName(field string) string {
	runes := []rune(strings.TrimSpace(field))
	var b strings.Builder
	for i, r := range runes {
		if r == '_' {
			b.WriteRune(' ')
			continue
		}
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteRune(' ')
			}
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
